package agent

import (
	"context"
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"receiptly/internal/workflow"
)

// ExtractionFunctionID identifies the extraction function in the workflow engine.
const ExtractionFunctionID = "extract-pdf-and-save-to-database"

// NewExtractionFunction binds the network to EventExtractReceipt. The run
// output is the saved receipt id, or nil if the network ended without saving.
func NewExtractionFunction(network *Network) workflow.Function {
	return workflow.Function{
		ID:    ExtractionFunctionID,
		Event: workflow.EventExtractReceipt,
		Handler: func(ctx context.Context, ev cloudevents.Event, step workflow.Step) (any, error) {
			var payload workflow.ExtractPayload
			if err := ev.DataAs(&payload); err != nil {
				return nil, fmt.Errorf("decoding %s payload: %w", ev.Type(), err)
			}
			if payload.URL == "" {
				return nil, fmt.Errorf("%s payload has no url", ev.Type())
			}
			receiptID, err := uuid.Parse(payload.ReceiptID)
			if err != nil {
				return nil, fmt.Errorf("%s payload has invalid receiptId %q: %w", ev.Type(), payload.ReceiptID, err)
			}

			rc, err := network.Run(ctx, step, Request{URL: payload.URL, ReceiptID: receiptID})
			if err != nil {
				return nil, err
			}
			id, _ := rc.State.Get(KeyReceipt)
			return id, nil
		},
	}
}
