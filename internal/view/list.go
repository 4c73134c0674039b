package view

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"receiptly/internal/domain"
)

// State is the list screen state.
type State string

const (
	StateLoading State = "loading"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

// EmptyMessage is shown when the user has no receipts.
const EmptyMessage = "No receipts have been uploaded yet."

// LoadingMessage is shown while the first snapshot is fetched.
const LoadingMessage = "Loading receipts..."

const timeLayout = "2006-01-02 15:04"

// Row is one rendered receipt.
type Row struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	UploadedAt string    `json:"uploadedAt"`
	Size       string    `json:"size"`
	Amount     string    `json:"amount"`
	Status     Badge     `json:"status"`
}

// NewRow renders a receipt, showing times in loc (UTC if nil).
func NewRow(r *domain.Receipt, loc *time.Location) Row {
	if loc == nil {
		loc = time.UTC
	}
	return Row{
		ID:         r.ID,
		Name:       r.DisplayName(),
		UploadedAt: r.UploadedAt.In(loc).Format(timeLayout),
		Size:       FormatFileSize(r.Size),
		Amount:     FormatAmount(r.TransactionAmount, r.Currency),
		Status:     StatusBadge(r.Status),
	}
}

// ListView is the receipts list screen.
type ListView struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
	Rows    []Row  `json:"rows"`
}

// Loading returns the view shown before data arrives.
func Loading() ListView {
	return ListView{State: StateLoading, Message: LoadingMessage, Rows: []Row{}}
}

// Build renders receipts in the given order.
func Build(receipts []domain.Receipt, loc *time.Location) ListView {
	if len(receipts) == 0 {
		return ListView{State: StateEmpty, Message: EmptyMessage, Rows: []Row{}}
	}
	rows := make([]Row, 0, len(receipts))
	for i := range receipts {
		rows = append(rows, NewRow(&receipts[i], loc))
	}
	return ListView{State: StateReady, Rows: rows}
}

// SortReceipts orders receipts in place the same way the store does. Records
// without an amount sort last in either direction.
func SortReceipts(receipts []domain.Receipt, s domain.ReceiptSort) {
	sort.SliceStable(receipts, func(i, j int) bool {
		a, b := &receipts[i], &receipts[j]
		c := compare(a, b, s.Field)
		if c == 0 {
			return false
		}
		if s.Field == domain.SortByAmount {
			_, aok := amountValue(a)
			_, bok := amountValue(b)
			if aok != bok {
				return aok
			}
		}
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b *domain.Receipt, field domain.SortField) int {
	switch field {
	case domain.SortByName:
		return strings.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName()))
	case domain.SortBySize:
		return cmpInt64(a.Size, b.Size)
	case domain.SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case domain.SortByAmount:
		av, aok := amountValue(a)
		bv, bok := amountValue(b)
		switch {
		case aok && bok:
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		case aok != bok:
			return 1
		}
		return 0
	default:
		return cmpInt64(a.UploadedAt.UnixNano(), b.UploadedAt.UnixNano())
	}
}

func amountValue(r *domain.Receipt) (float64, bool) {
	if r.TransactionAmount == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(*r.TransactionAmount, ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
