package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockExtractionTrigger is a mock implementation of port.ExtractionTrigger.
type MockExtractionTrigger struct {
	mock.Mock
}

func (m *MockExtractionTrigger) Extract(ctx context.Context, url string, receiptID uuid.UUID) error {
	args := m.Called(ctx, url, receiptID)
	return args.Error(0)
}

// MockPDFInspector is a mock implementation of port.PDFInspector.
type MockPDFInspector struct {
	mock.Mock
}

func (m *MockPDFInspector) Inspect(ctx context.Context, content []byte) (int, error) {
	args := m.Called(ctx, content)
	return args.Int(0), args.Error(1)
}
