package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LineItem is one purchased item on a receipt.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// LineItems is stored as a jsonb array.
type LineItems []LineItem

// Value implements driver.Valuer.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *LineItems) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("LineItems.Scan: unsupported type %T", src)
	}
	items := LineItems{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("LineItems.Scan: %w", err)
	}
	*l = items
	return nil
}

// Receipt is a persisted receipt record with its optional extracted fields.
type Receipt struct {
	ID                uuid.UUID     `db:"id" json:"id"`
	UserID            string        `db:"user_id" json:"userId"`
	FileID            uuid.UUID     `db:"file_id" json:"fileId"`
	FileName          string        `db:"file_name" json:"fileName"`
	FileDisplayName   *string       `db:"file_display_name" json:"fileDisplayName,omitempty"`
	Size              int64         `db:"size" json:"size"`
	MimeType          string        `db:"mime_type" json:"mimeType"`
	UploadedAt        time.Time     `db:"uploaded_at" json:"uploadedAt"`
	Status            ReceiptStatus `db:"status" json:"status"`
	MerchantName      *string       `db:"merchant_name" json:"merchantName,omitempty"`
	MerchantAddress   *string       `db:"merchant_address" json:"merchantAddress,omitempty"`
	MerchantContact   *string       `db:"merchant_contact" json:"merchantContact,omitempty"`
	TransactionDate   *string       `db:"transaction_date" json:"transactionDate,omitempty"`
	TransactionAmount *string       `db:"transaction_amount" json:"transactionAmount,omitempty"`
	Currency          *string       `db:"currency" json:"currency,omitempty"`
	ReceiptSummary    *string       `db:"receipt_summary" json:"receiptSummary,omitempty"`
	Items             LineItems     `db:"items" json:"items"`
	PageCount         int           `db:"page_count" json:"pageCount"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`
}

// DisplayName returns the extracted display name, falling back to the original file name.
func (r *Receipt) DisplayName() string {
	if r.FileDisplayName != nil && *r.FileDisplayName != "" {
		return *r.FileDisplayName
	}
	return r.FileName
}

// ExtractedData is the full set of fields written by the extraction network.
// Every field is required; partial saves are rejected before reaching the store.
type ExtractedData struct {
	FileDisplayName   string    `json:"fileDisplayName"`
	MerchantName      string    `json:"merchantName"`
	MerchantAddress   string    `json:"merchantAddress"`
	MerchantContact   string    `json:"merchantContact"`
	TransactionDate   string    `json:"transactionDate"`
	TransactionAmount string    `json:"transactionAmount"`
	ReceiptSummary    string    `json:"receiptSummary"`
	Currency          string    `json:"currency"`
	Items             LineItems `json:"items"`
}

// StoredFile is blob metadata owned by the document store.
type StoredFile struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"userId"`
	Bucket      string     `db:"bucket" json:"bucket"`
	ObjectKey   string     `db:"object_key" json:"objectKey"`
	ContentType string     `db:"content_type" json:"contentType"`
	Size        int64      `db:"size" json:"size"`
	Status      FileStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// UploadTicket is returned by GenerateUploadURL.
type UploadTicket struct {
	FileID    uuid.UUID `json:"fileId"`
	UploadURL string    `json:"uploadUrl"`
}

// NewReceipt describes a record to create from an already stored file.
type NewReceipt struct {
	FileID   uuid.UUID `json:"fileId"`
	FileName string    `json:"fileName"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mimeType"`
}

// UploadResult is the outcome of the server-side upload action.
type UploadResult struct {
	ReceiptID   uuid.UUID `json:"receiptId"`
	DownloadURL string    `json:"downloadUrl"`
}
