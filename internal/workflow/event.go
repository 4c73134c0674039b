// Package workflow hosts event-triggered functions in process: a CloudEvents
// trigger on the sending side and a bounded engine with named steps on the
// receiving side.
package workflow

// EventExtractReceipt is emitted once per uploaded receipt that is ready for extraction.
const EventExtractReceipt = "EXTRACT_DATA_FROM_PDF_AND_SAVED_TO_DATABASE"

// ExtractPayload is the JSON data carried by EventExtractReceipt.
type ExtractPayload struct {
	URL       string `json:"url"`
	ReceiptID string `json:"receiptId"`
}
