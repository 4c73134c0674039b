package agent

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"receiptly/internal/domain"
	"receiptly/internal/port"
)

// ScanResult is the structured output of the parse-pdf tool.
type ScanResult struct {
	Data  json.RawMessage `json:"data"`
	Model string          `json:"model"`
}

// ScanningAgent extracts structured receipt data from a PDF URL.
type ScanningAgent struct {
	scanner port.DocumentScanner
	logger  *zap.Logger
}

// NewScanningAgent creates a ScanningAgent.
func NewScanningAgent(scanner port.DocumentScanner, logger *zap.Logger) *ScanningAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanningAgent{scanner: scanner, logger: logger}
}

func (a *ScanningAgent) Name() string { return "receipt-scanning" }

// Run invokes parse-pdf. Inference errors are logged and returned so the step fails.
func (a *ScanningAgent) Run(ctx context.Context, rc *RunContext) (any, error) {
	out, err := rc.Step.Run(ctx, "parse-pdf", func(ctx context.Context) (any, error) {
		return a.ParsePDF(ctx, rc.Request.URL)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParsePDF is the parse-pdf tool.
func (a *ScanningAgent) ParsePDF(ctx context.Context, pdfURL string) (*ScanResult, error) {
	out, err := a.scanner.Scan(ctx, port.ScanInput{URL: pdfURL, ContentType: domain.ContentTypePDF})
	if err != nil {
		a.logger.Error("parse-pdf failed", zap.Error(err))
		return nil, err
	}
	return &ScanResult{Data: out.Data, Model: out.ModelUsed}, nil
}
