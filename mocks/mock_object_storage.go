package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"receiptly/internal/port"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, obj port.PutObject) (*port.ObjectInfo, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ObjectInfo), args.Error(1)
}

func (m *MockObjectStorage) Stat(ctx context.Context, ref port.ObjectRef) (*port.ObjectInfo, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ObjectInfo), args.Error(1)
}

func (m *MockObjectStorage) Remove(ctx context.Context, ref port.ObjectRef) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *MockObjectStorage) PresignGet(ctx context.Context, ref port.ObjectRef, ttl time.Duration) (string, error) {
	args := m.Called(ctx, ref, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) PresignPut(ctx context.Context, ref port.ObjectRef, contentType string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, ref, contentType, ttl)
	return args.String(0), args.Error(1)
}
