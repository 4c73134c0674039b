package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"receiptly/internal/port"
)

// MockDocumentScanner is a mock implementation of port.DocumentScanner.
type MockDocumentScanner struct {
	mock.Mock
}

func (m *MockDocumentScanner) Scan(ctx context.Context, input port.ScanInput) (*port.ScanOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ScanOutput), args.Error(1)
}
