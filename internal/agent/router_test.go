package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		in   Snapshot
		want Phase
	}{
		{"fresh run scans first", Snapshot{}, PhaseScanning},
		{"scan available persists", Snapshot{HasScan: true}, PhasePersisting},
		{"saved terminates", Snapshot{Saved: true, ReceiptID: "r1", HasScan: true}, PhaseDone},
		{"saved without scan still terminates", Snapshot{Saved: true}, PhaseDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.in))
		})
	}
}

func TestNext_IsPure(t *testing.T) {
	s := Snapshot{HasScan: true}
	for i := 0; i < 3; i++ {
		assert.Equal(t, PhasePersisting, Next(s))
	}
}

func TestState_MarkSavedSetsBothKeys(t *testing.T) {
	s := NewState()

	_, ok := s.Saved()
	assert.False(t, ok)
	_, ok = s.Get(KeyReceipt)
	assert.False(t, ok)

	s.markSaved("8a4f1c3e-0000-4000-8000-000000000001")

	id, ok := s.Saved()
	assert.True(t, ok)
	assert.Equal(t, "8a4f1c3e-0000-4000-8000-000000000001", id)

	values := s.Values()
	assert.Equal(t, true, values[KeySavedToDatabase])
	assert.Equal(t, id, values[KeyReceipt])

	values[KeyReceipt] = "mutated"
	got, _ := s.Get(KeyReceipt)
	assert.Equal(t, id, got)
}

func TestDecodeSaveArgs_MissingFields(t *testing.T) {
	_, err := decodeSaveArgs([]byte(`{"receiptId":"x","merchantName":"Shop"}`))
	assert.ErrorIs(t, err, ErrIncompleteToolCall)
	assert.Contains(t, err.Error(), "fileDisplayName")
	assert.Contains(t, err.Error(), "items")
	assert.NotContains(t, err.Error(), "merchantName")
}

func TestDecodeSaveArgs_IncompleteItem(t *testing.T) {
	_, err := decodeSaveArgs([]byte(`{
		"fileDisplayName":"a","receiptId":"b","merchantName":"c","merchantAddress":"d",
		"merchantContact":"e","transactionDate":"f","transactionAmount":"g",
		"receiptSummary":"h","currency":"USD",
		"items":[{"name":"Coffee","quantity":1}]
	}`))
	assert.ErrorIs(t, err, ErrIncompleteToolCall)
	assert.Contains(t, err.Error(), "items[0]")
}

func TestDecodeSaveArgs_EmptyStringsAccepted(t *testing.T) {
	got, err := decodeSaveArgs([]byte(`{
		"fileDisplayName":"","receiptId":"b","merchantName":"","merchantAddress":"",
		"merchantContact":"","transactionDate":"","transactionAmount":"",
		"receiptSummary":"","currency":"","items":[]
	}`))
	assert.NoError(t, err)
	assert.Equal(t, "b", got.receiptID)
	assert.Empty(t, got.data.Items)
}
