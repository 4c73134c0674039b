package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"receiptly/internal/domain"
	"receiptly/internal/export"
	"receiptly/internal/service"
)

// MockReceiptService is a mock implementation of service.ReceiptService.
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) GenerateUploadURL(ctx context.Context, userID string) (*domain.UploadTicket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadTicket), args.Error(1)
}

func (m *MockReceiptService) Create(ctx context.Context, userID string, input domain.NewReceipt) (*domain.Receipt, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) Upload(ctx context.Context, input service.ReceiptUploadInput) (*domain.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadResult), args.Error(1)
}

func (m *MockReceiptService) List(ctx context.Context, userID string, sort domain.ReceiptSort) ([]domain.Receipt, error) {
	args := m.Called(ctx, userID, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) GetByID(ctx context.Context, callerID string, id uuid.UUID) (*domain.Receipt, error) {
	args := m.Called(ctx, callerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) UpdateStatus(ctx context.Context, callerID string, id uuid.UUID, status domain.ReceiptStatus) (*domain.Receipt, error) {
	args := m.Called(ctx, callerID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) Delete(ctx context.Context, callerID string, id uuid.UUID) error {
	args := m.Called(ctx, callerID, id)
	return args.Error(0)
}

func (m *MockReceiptService) UpdateWithExtractedData(ctx context.Context, id uuid.UUID, data *domain.ExtractedData) (string, error) {
	args := m.Called(ctx, id, data)
	return args.String(0), args.Error(1)
}

func (m *MockReceiptService) GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}

func (m *MockReceiptService) Export(ctx context.Context, userID string, format domain.ExportFormat, w io.Writer) (export.Exporter, error) {
	args := m.Called(ctx, userID, format, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(export.Exporter), args.Error(1)
}

func (m *MockReceiptService) Subscribe(userID string) (<-chan struct{}, func()) {
	args := m.Called(userID)
	return args.Get(0).(<-chan struct{}), args.Get(1).(func())
}
