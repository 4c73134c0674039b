package port

import (
	"context"

	"github.com/google/uuid"

	"receiptly/internal/domain"
)

// ReceiptRepository defines the contract for receipt record persistence.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *domain.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	// GetByFileID returns the record built from a stored file, or domain.ErrNotFound.
	GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.Receipt, error)
	ListByUser(ctx context.Context, userID string, sort domain.ReceiptSort) ([]domain.Receipt, error)
	// UpdateStatus moves a record from one status to another. It returns
	// domain.ErrInvalidStatusTransition when the record is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ReceiptStatus) error
	// UpdateExtractedData writes every extracted field and marks the record processed
	// in a single statement, returning the owning user id.
	UpdateExtractedData(ctx context.Context, id uuid.UUID, data *domain.ExtractedData) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StoredFileRepository defines the contract for blob metadata persistence.
type StoredFileRepository interface {
	Create(ctx context.Context, file *domain.StoredFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
