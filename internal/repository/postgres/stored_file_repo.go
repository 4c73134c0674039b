package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"receiptly/internal/domain"
	"receiptly/internal/port"
)

type storedFileRepo struct {
	db *sqlx.DB
}

// NewStoredFileRepo creates a new PostgreSQL-backed StoredFileRepository.
func NewStoredFileRepo(db *sqlx.DB) port.StoredFileRepository {
	return &storedFileRepo{db: db}
}

func (r *storedFileRepo) Create(ctx context.Context, file *domain.StoredFile) error {
	file.CreatedAt = time.Now().UTC()

	query := `INSERT INTO stored_files
		(id, user_id, bucket, object_key, content_type, size, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.UserID, file.Bucket, file.ObjectKey, file.ContentType,
		file.Size, file.Status, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("storedFileRepo.Create: %w", err)
	}
	return nil
}

func (r *storedFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error) {
	var file domain.StoredFile
	err := r.db.GetContext(ctx, &file, "SELECT * FROM stored_files WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storedFileRepo.GetByID: %w", err)
	}
	return &file, nil
}

func (r *storedFileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE stored_files SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("storedFileRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the row outright so later download-url requests fail with not found.
func (r *storedFileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM stored_files WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("storedFileRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
