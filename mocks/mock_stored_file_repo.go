package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"receiptly/internal/domain"
)

// MockStoredFileRepo is a mock implementation of port.StoredFileRepository.
type MockStoredFileRepo struct {
	mock.Mock
}

func (m *MockStoredFileRepo) Create(ctx context.Context, file *domain.StoredFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockStoredFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredFile), args.Error(1)
}

func (m *MockStoredFileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStoredFileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
