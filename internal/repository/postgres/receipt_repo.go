package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"receiptly/internal/domain"
	"receiptly/internal/port"
)

var receiptColumns = []string{
	"id", "user_id", "file_id", "file_name", "file_display_name", "size", "mime_type",
	"uploaded_at", "status", "merchant_name", "merchant_address", "merchant_contact",
	"transaction_date", "transaction_amount", "currency", "receipt_summary", "items",
	"page_count", "updated_at",
}

// amountPattern is what a stripped amount must look like to be cast. Anything
// else ("Rs. 1,000.00" strips to ".1000.00") sorts as NULL, matching the
// in-memory ordering of internal/view.
const amountPattern = `^-?([0-9]+\.?[0-9]*|\.[0-9]+)$`

const amountDigits = `regexp_replace(COALESCE(transaction_amount, ''), '[^0-9.\-]', '', 'g')`

// sortExpressions maps sortable fields to SQL order expressions.
var sortExpressions = map[domain.SortField]string{
	domain.SortByUploadedAt: "uploaded_at",
	domain.SortByName:       "LOWER(COALESCE(file_display_name, file_name))",
	domain.SortBySize:       "size",
	domain.SortByAmount:     "CASE WHEN " + amountDigits + " ~ '" + amountPattern + "' THEN (" + amountDigits + ")::numeric END",
	domain.SortByStatus:     "status",
}

type receiptRepo struct {
	db *sqlx.DB
}

// NewReceiptRepo creates a new PostgreSQL-backed ReceiptRepository.
func NewReceiptRepo(db *sqlx.DB) port.ReceiptRepository {
	return &receiptRepo{db: db}
}

func (r *receiptRepo) Create(ctx context.Context, receipt *domain.Receipt) error {
	now := time.Now().UTC()
	receipt.UploadedAt = now
	receipt.UpdatedAt = now
	if receipt.Items == nil {
		receipt.Items = domain.LineItems{}
	}

	query, args, err := squirrel.Insert("receipts").
		Columns("id", "user_id", "file_id", "file_name", "size", "mime_type",
			"uploaded_at", "status", "items", "page_count", "updated_at").
		Values(receipt.ID, receipt.UserID, receipt.FileID, receipt.FileName, receipt.Size,
			receipt.MimeType, receipt.UploadedAt, receipt.Status, receipt.Items,
			receipt.PageCount, receipt.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("receiptRepo.Create build: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "uq_receipts_file_id") {
			return domain.ErrFileAlreadyAttached
		}
		return fmt.Errorf("receiptRepo.Create: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

func (r *receiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

func (r *receiptRepo) GetByFileID(ctx context.Context, fileID uuid.UUID) (*domain.Receipt, error) {
	return r.getOne(ctx, "GetByFileID", squirrel.Eq{"file_id": fileID})
}

func (r *receiptRepo) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Receipt, error) {
	query, args, err := squirrel.Select(receiptColumns...).
		From("receipts").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("receiptRepo.%s build: %w", op, err)
	}

	var receipt domain.Receipt
	if err := r.db.GetContext(ctx, &receipt, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("receiptRepo.%s: %w", op, err)
	}
	return &receipt, nil
}

func (r *receiptRepo) ListByUser(ctx context.Context, userID string, sort domain.ReceiptSort) ([]domain.Receipt, error) {
	query, args, err := listByUserQuery(userID, sort)
	if err != nil {
		return nil, fmt.Errorf("receiptRepo.ListByUser build: %w", err)
	}

	receipts := []domain.Receipt{}
	if err := r.db.SelectContext(ctx, &receipts, query, args...); err != nil {
		return nil, fmt.Errorf("receiptRepo.ListByUser: %w", err)
	}
	return receipts, nil
}

func listByUserQuery(userID string, sort domain.ReceiptSort) (string, []any, error) {
	expr, ok := sortExpressions[sort.Field]
	if !ok {
		expr = sortExpressions[domain.SortByUploadedAt]
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return squirrel.Select(receiptColumns...).
		From("receipts").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy(fmt.Sprintf("%s %s NULLS LAST", expr, dir), "id "+dir).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *receiptRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ReceiptStatus) error {
	if !from.CanTransitionTo(to) {
		return domain.ErrInvalidStatusTransition
	}

	query, args, err := squirrel.Update("receipts").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": from}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("receiptRepo.UpdateStatus build: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("receiptRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

func (r *receiptRepo) UpdateExtractedData(ctx context.Context, id uuid.UUID, data *domain.ExtractedData) (string, error) {
	items := data.Items
	if items == nil {
		items = domain.LineItems{}
	}

	query, args, err := squirrel.Update("receipts").
		Set("file_display_name", data.FileDisplayName).
		Set("merchant_name", data.MerchantName).
		Set("merchant_address", data.MerchantAddress).
		Set("merchant_contact", data.MerchantContact).
		Set("transaction_date", data.TransactionDate).
		Set("transaction_amount", data.TransactionAmount).
		Set("currency", data.Currency).
		Set("receipt_summary", data.ReceiptSummary).
		Set("items", items).
		Set("status", domain.ReceiptStatusProcessed).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": domain.ReceiptStatusError}).
		Suffix("RETURNING user_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("receiptRepo.UpdateExtractedData build: %w", err)
	}

	var userID string
	if err := r.db.GetContext(ctx, &userID, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", r.missOrConflict(ctx, id)
		}
		return "", fmt.Errorf("receiptRepo.UpdateExtractedData: %w", err)
	}
	return userID, nil
}

func (r *receiptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("receiptRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// missOrConflict distinguishes a missing record from a guarded update that matched nothing.
func (r *receiptRepo) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM receipts WHERE id = $1)", id)
	if err != nil {
		return fmt.Errorf("receiptRepo.exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidStatusTransition
}
