package port

import (
	"context"
	"encoding/json"
)

// ScanInput carries the data needed to scan a receipt document.
type ScanInput struct {
	URL         string
	ContentType string
}

// ScanOutput contains the structured result from a document-understanding model.
type ScanOutput struct {
	Data       json.RawMessage
	ModelUsed  string
	PromptUsed string
}

// DocumentScanner abstracts LLM-based receipt scanning.
type DocumentScanner interface {
	Scan(ctx context.Context, input ScanInput) (*ScanOutput, error)
}
