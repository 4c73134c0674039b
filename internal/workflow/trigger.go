package workflow

import (
	"context"
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"receiptly/internal/config"
	"receiptly/internal/port"
)

// SigningKeyHeader carries the shared secret between the trigger and the workflow endpoint.
const SigningKeyHeader = "X-Workflow-Signing-Key"

// Trigger sends extraction events to the workflow endpoint as CloudEvents over HTTP.
type Trigger struct {
	client cloudevents.Client
	target string
	source string
	logger *zap.Logger
}

// NewTrigger creates an ExtractionTrigger from the workflow config.
func NewTrigger(cfg *config.WorkflowConfig, logger *zap.Logger) (port.ExtractionTrigger, error) {
	var opts []cehttp.Option
	if cfg.SigningKey != "" {
		opts = append(opts, cehttp.WithHeader(SigningKeyHeader, cfg.SigningKey))
	}

	client, err := cloudevents.NewClientHTTP(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating cloudevents client: %w", err)
	}
	return NewTriggerWithClient(client, cfg.Endpoint, cfg.Source, logger), nil
}

// NewTriggerWithClient creates a Trigger around an existing CloudEvents client.
func NewTriggerWithClient(client cloudevents.Client, target, source string, logger *zap.Logger) *Trigger {
	if source == "" {
		source = "receiptly/api"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger{client: client, target: target, source: source, logger: logger}
}

// Extract emits exactly one EventExtractReceipt event. It does not retry and
// returns as soon as the endpoint acknowledges delivery.
func (t *Trigger) Extract(ctx context.Context, url string, receiptID uuid.UUID) error {
	ev := cloudevents.NewEvent()
	ev.SetID(uuid.NewString())
	ev.SetSource(t.source)
	ev.SetType(EventExtractReceipt)
	if err := ev.SetData(cloudevents.ApplicationJSON, ExtractPayload{
		URL:       url,
		ReceiptID: receiptID.String(),
	}); err != nil {
		return fmt.Errorf("encoding extraction event: %w", err)
	}

	ctx = cloudevents.ContextWithTarget(ctx, t.target)
	if result := t.client.Send(ctx, ev); !cloudevents.IsACK(result) {
		t.logger.Error("extraction event not acknowledged",
			zap.String("receipt_id", receiptID.String()), zap.String("event_id", ev.ID()), zap.Error(result))
		return fmt.Errorf("sending %s: %w", EventExtractReceipt, result)
	}

	t.logger.Info("extraction event sent",
		zap.String("receipt_id", receiptID.String()), zap.String("event_id", ev.ID()))
	return nil
}
