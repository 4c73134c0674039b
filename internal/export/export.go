// Package export writes a user's receipts as CSV or XLSX.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"receiptly/internal/domain"
)

// columns is the header row shared by both formats.
var columns = []string{
	"Receipt ID",
	"Name",
	"File Name",
	"Status",
	"Uploaded At",
	"Size (bytes)",
	"Pages",
	"Merchant",
	"Merchant Address",
	"Merchant Contact",
	"Transaction Date",
	"Amount",
	"Currency",
	"Line Item Count",
	"Summary",
}

// Exporter writes receipts to w.
type Exporter interface {
	ContentType() string
	Extension() string
	Write(w io.Writer, receipts []domain.Receipt) error
}

// New returns the exporter for format.
func New(format domain.ExportFormat) (Exporter, error) {
	switch format {
	case domain.ExportCSV, "":
		return csvExporter{}, nil
	case domain.ExportXLSX:
		return xlsxExporter{}, nil
	}
	return nil, domain.ErrUnsupportedExportFormat
}

// receiptToRow converts one receipt into the column order above. Extracted
// columns stay empty until the record has been processed.
func receiptToRow(r *domain.Receipt) []string {
	row := make([]string, len(columns))
	row[0] = r.ID.String()
	row[1] = r.DisplayName()
	row[2] = r.FileName
	row[3] = string(r.Status)
	row[4] = r.UploadedAt.UTC().Format(time.RFC3339)
	row[5] = strconv.FormatInt(r.Size, 10)
	row[6] = strconv.Itoa(r.PageCount)
	row[7] = deref(r.MerchantName)
	row[8] = deref(r.MerchantAddress)
	row[9] = deref(r.MerchantContact)
	row[10] = deref(r.TransactionDate)
	row[11] = deref(r.TransactionAmount)
	row[12] = deref(r.Currency)
	row[13] = strconv.Itoa(len(r.Items))
	row[14] = deref(r.ReceiptSummary)
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces everything but letters, digits, - and _ with _,
// collapses repeats and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {prefix}_{YYYY-MM-DD}.{ext} for Content-Disposition.
func BuildFilename(prefix string, e Exporter, now time.Time) string {
	name := SanitizeFilename(prefix)
	if name == "" {
		name = "receipts"
	}
	return fmt.Sprintf("%s_%s.%s", name, now.Format("2006-01-02"), e.Extension())
}
