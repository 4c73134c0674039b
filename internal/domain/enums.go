package domain

import "strings"

// ContentTypePDF is the only MIME type accepted for receipt uploads.
const ContentTypePDF = "application/pdf"

// IsPDF reports whether a file is a PDF by MIME type or by a case-insensitive .pdf suffix.
func IsPDF(fileName, contentType string) bool {
	if strings.EqualFold(strings.TrimSpace(contentType), ContentTypePDF) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(fileName), ".pdf")
}

// ReceiptStatus represents the lifecycle of a receipt record.
type ReceiptStatus string

const (
	ReceiptStatusPending   ReceiptStatus = "pending"
	ReceiptStatusProcessed ReceiptStatus = "processed"
	ReceiptStatusError     ReceiptStatus = "error"
)

// Valid reports whether s is a known status.
func (s ReceiptStatus) Valid() bool {
	switch s {
	case ReceiptStatusPending, ReceiptStatusProcessed, ReceiptStatusError:
		return true
	}
	return false
}

// CanTransitionTo reports whether a record in status s may move to next.
// Records only leave pending; processed may be rewritten by extraction.
func (s ReceiptStatus) CanTransitionTo(next ReceiptStatus) bool {
	switch s {
	case ReceiptStatusPending:
		return next == ReceiptStatusProcessed || next == ReceiptStatusError
	case ReceiptStatusProcessed:
		return next == ReceiptStatusProcessed
	}
	return false
}

// FileStatus represents the lifecycle of a stored blob.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
)

// SortField names a sortable receipt column.
type SortField string

const (
	SortByUploadedAt SortField = "uploaded_at"
	SortByName       SortField = "name"
	SortBySize       SortField = "size"
	SortByAmount     SortField = "amount"
	SortByStatus     SortField = "status"
)

// ReceiptSort describes the ordering of a receipt listing.
type ReceiptSort struct {
	Field SortField
	Desc  bool
}

// DefaultReceiptSort is newest upload first.
var DefaultReceiptSort = ReceiptSort{Field: SortByUploadedAt, Desc: true}

// ParseReceiptSort builds a ReceiptSort from query values, falling back to the default
// for unknown fields. order is "asc" or "desc".
func ParseReceiptSort(field, order string) ReceiptSort {
	s := DefaultReceiptSort
	switch SortField(strings.ToLower(field)) {
	case SortByUploadedAt, "":
	case SortByName:
		s.Field = SortByName
	case SortBySize:
		s.Field = SortBySize
	case SortByAmount:
		s.Field = SortByAmount
	case SortByStatus:
		s.Field = SortByStatus
	}
	switch strings.ToLower(order) {
	case "asc":
		s.Desc = false
	case "desc":
		s.Desc = true
	}
	return s
}

// ExportFormat is a supported receipt export format.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
