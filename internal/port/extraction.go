package port

import (
	"context"

	"github.com/google/uuid"
)

// ExtractionTrigger emits the event that starts extraction for a stored receipt.
type ExtractionTrigger interface {
	Extract(ctx context.Context, url string, receiptID uuid.UUID) error
}

// PDFInspector validates PDF content and reports its page count.
type PDFInspector interface {
	Inspect(ctx context.Context, content []byte) (pages int, err error)
}
