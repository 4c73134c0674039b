package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{2048, "2 KB"},
		{1048576, "1 MB"},
		{1234567, "1.18 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.in), "size %d", tt.in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "-", FormatAmount(nil, strPtr("USD")))
	assert.Equal(t, "-", FormatAmount(strPtr("  "), nil))
	assert.Equal(t, "USD 4.50", FormatAmount(strPtr("4.5"), strPtr("usd")))
	assert.Equal(t, "USD 20.00", FormatAmount(strPtr("$20"), strPtr("USD")))
	assert.Equal(t, "JPY 500", FormatAmount(strPtr("500"), strPtr("JPY")))
	assert.Equal(t, "12.00", FormatAmount(strPtr("12"), nil))
	assert.Equal(t, "12.00 POINTS", FormatAmount(strPtr("12"), strPtr("points")))
	assert.Equal(t, "about ten", FormatAmount(strPtr("about ten"), strPtr("USD")))
	assert.Contains(t, FormatAmount(strPtr("1234.5"), strPtr("EUR")), "EUR")
}

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, Badge{Label: "Pending", Color: "yellow"}, StatusBadge(domain.ReceiptStatusPending))
	assert.Equal(t, Badge{Label: "Processed", Color: "green"}, StatusBadge(domain.ReceiptStatusProcessed))
	assert.Equal(t, Badge{Label: "Error", Color: "red"}, StatusBadge(domain.ReceiptStatusError))
	assert.Equal(t, "red", StatusBadge("unknown").Color)
}

func TestBuild_States(t *testing.T) {
	assert.Equal(t, StateLoading, Loading().State)

	empty := Build(nil, nil)
	assert.Equal(t, StateEmpty, empty.State)
	assert.Equal(t, "No receipts have been uploaded yet.", empty.Message)
	assert.NotNil(t, empty.Rows)

	ready := Build([]domain.Receipt{{
		ID:         uuid.New(),
		FileName:   "invoice.pdf",
		Size:       2048,
		UploadedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Status:     domain.ReceiptStatusProcessed,
	}}, nil)
	require.Equal(t, StateReady, ready.State)
	require.Len(t, ready.Rows, 1)
	row := ready.Rows[0]
	assert.Equal(t, "invoice.pdf", row.Name)
	assert.Equal(t, "2 KB", row.Size)
	assert.Equal(t, "-", row.Amount)
	assert.Equal(t, "Processed", row.Status.Label)
	assert.Equal(t, "2024-05-01 09:00", row.UploadedAt)
}

func TestNewRow_PrefersDisplayName(t *testing.T) {
	r := &domain.Receipt{FileName: "scan_001.pdf", FileDisplayName: strPtr("Acme Co lunch")}
	assert.Equal(t, "Acme Co lunch", NewRow(r, nil).Name)

	r.FileDisplayName = strPtr("")
	assert.Equal(t, "scan_001.pdf", NewRow(r, nil).Name)
}

func TestSortReceipts(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	receipts := []domain.Receipt{
		{FileName: "b.pdf", Size: 300, UploadedAt: base, TransactionAmount: strPtr("10")},
		{FileName: "a.pdf", Size: 100, UploadedAt: base.Add(2 * time.Hour)},
		{FileName: "C.pdf", Size: 200, UploadedAt: base.Add(time.Hour), TransactionAmount: strPtr("2.5")},
	}
	names := func() []string {
		var out []string
		for _, r := range receipts {
			out = append(out, r.FileName)
		}
		return out
	}

	SortReceipts(receipts, domain.DefaultReceiptSort)
	assert.Equal(t, []string{"a.pdf", "C.pdf", "b.pdf"}, names())

	SortReceipts(receipts, domain.ReceiptSort{Field: domain.SortByName})
	assert.Equal(t, []string{"a.pdf", "b.pdf", "C.pdf"}, names())

	SortReceipts(receipts, domain.ReceiptSort{Field: domain.SortBySize, Desc: true})
	assert.Equal(t, []string{"b.pdf", "C.pdf", "a.pdf"}, names())

	SortReceipts(receipts, domain.ReceiptSort{Field: domain.SortByAmount})
	assert.Equal(t, []string{"C.pdf", "b.pdf", "a.pdf"}, names())

	SortReceipts(receipts, domain.ReceiptSort{Field: domain.SortByAmount, Desc: true})
	assert.Equal(t, []string{"b.pdf", "C.pdf", "a.pdf"}, names())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, Build(nil, nil)))
	assert.Equal(t, EmptyMessage+"\n", buf.String())

	buf.Reset()
	v := Build([]domain.Receipt{
		{FileName: "invoice.pdf", Size: 2048, Status: domain.ReceiptStatusPending},
		{FileName: "領収書.pdf", Size: 10, Status: domain.ReceiptStatusError},
	}, nil)
	require.NoError(t, RenderTable(&buf, v))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "2 KB")
	assert.Contains(t, lines[1], "Pending")
	assert.Contains(t, lines[2], "Error")
	// Columns line up by display width, so UPLOADED starts at the same cell everywhere.
	assert.Equal(t, strings.Index(lines[0], "UPLOADED"), strings.Index(lines[1], "0001-01-01"))
}
