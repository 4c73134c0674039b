package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"receiptly/internal/config"
	"receiptly/internal/domain"
	"receiptly/internal/export"
	"receiptly/internal/port"
)

// ReceiptUploadInput is the DTO for the server-side upload action.
type ReceiptUploadInput struct {
	UserID string
	File   multipart.File
	Header *multipart.FileHeader
}

// ReceiptService defines the document store contract.
type ReceiptService interface {
	GenerateUploadURL(ctx context.Context, userID string) (*domain.UploadTicket, error)
	Create(ctx context.Context, userID string, input domain.NewReceipt) (*domain.Receipt, error)
	Upload(ctx context.Context, input ReceiptUploadInput) (*domain.UploadResult, error)
	List(ctx context.Context, userID string, sort domain.ReceiptSort) ([]domain.Receipt, error)
	GetByID(ctx context.Context, callerID string, id uuid.UUID) (*domain.Receipt, error)
	UpdateStatus(ctx context.Context, callerID string, id uuid.UUID, status domain.ReceiptStatus) (*domain.Receipt, error)
	Delete(ctx context.Context, callerID string, id uuid.UUID) error
	UpdateWithExtractedData(ctx context.Context, id uuid.UUID, data *domain.ExtractedData) (string, error)
	GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error)
	Export(ctx context.Context, userID string, format domain.ExportFormat, w io.Writer) (export.Exporter, error)
	Subscribe(userID string) (<-chan struct{}, func())
}

type receiptService struct {
	receiptRepo port.ReceiptRepository
	fileRepo    port.StoredFileRepository
	storage     port.ObjectStorage
	inspector   port.PDFInspector
	trigger     port.ExtractionTrigger
	feed        *ChangeFeed
	cfg         *config.StorageConfig
	logger      *zap.Logger
}

// NewReceiptService creates a new ReceiptService implementation.
func NewReceiptService(
	receiptRepo port.ReceiptRepository,
	fileRepo port.StoredFileRepository,
	storage port.ObjectStorage,
	inspector port.PDFInspector,
	trigger port.ExtractionTrigger,
	feed *ChangeFeed,
	cfg *config.StorageConfig,
	logger *zap.Logger,
) ReceiptService {
	if feed == nil {
		feed = NewChangeFeed()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &receiptService{
		receiptRepo: receiptRepo,
		fileRepo:    fileRepo,
		storage:     storage,
		inspector:   inspector,
		trigger:     trigger,
		feed:        feed,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *receiptService) GenerateUploadURL(ctx context.Context, userID string) (*domain.UploadTicket, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	file := &domain.StoredFile{
		ID:          uuid.New(),
		UserID:      userID,
		Bucket:      s.cfg.Bucket,
		ContentType: domain.ContentTypePDF,
		Status:      domain.FileStatusPending,
	}
	file.ObjectKey = objectKey(userID, file.ID, "receipt.pdf")

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("creating stored file: %w", err)
	}

	url, err := s.storage.PresignPut(ctx, fileRef(file), file.ContentType, s.presignTTL())
	if err != nil {
		s.logger.Error("presigning upload failed", zap.String("file_id", file.ID.String()), zap.Error(err))
		_ = s.fileRepo.Delete(ctx, file.ID)
		return nil, fmt.Errorf("presigning upload: %w", err)
	}

	return &domain.UploadTicket{FileID: file.ID, UploadURL: url}, nil
}

// Create inserts a pending record for a file uploaded through a presigned URL
// and schedules extraction.
func (s *receiptService) Create(ctx context.Context, userID string, input domain.NewReceipt) (*domain.Receipt, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !domain.IsPDF(input.FileName, input.MimeType) {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.Size > s.maxBytes() {
		return nil, domain.ErrFileTooLarge
	}

	file, err := s.fileRepo.GetByID(ctx, input.FileID)
	if err != nil {
		return nil, err
	}
	if file.UserID != userID {
		return nil, domain.ErrForbidden
	}
	switch _, err := s.receiptRepo.GetByFileID(ctx, file.ID); {
	case err == nil:
		return nil, domain.ErrFileAlreadyAttached
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("checking file attachment: %w", err)
	}

	size := input.Size
	if file.Status != domain.FileStatusUploaded {
		if size, err = s.confirmUpload(ctx, file, size); err != nil {
			return nil, err
		}
	}

	receipt := s.newRecord(userID, file.ID, input.FileName, size, input.MimeType, 0)
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("creating receipt: %w", err)
	}
	s.feed.Publish(userID)

	if _, err := s.scheduleExtraction(ctx, receipt, file); err != nil {
		return nil, err
	}
	return receipt, nil
}

// confirmUpload checks that the presigned PUT actually landed and marks the
// file uploaded. The stored size wins over the client-reported one.
func (s *receiptService) confirmUpload(ctx context.Context, file *domain.StoredFile, reported int64) (int64, error) {
	info, err := s.storage.Stat(ctx, fileRef(file))
	if errors.Is(err, domain.ErrNotFound) {
		return 0, domain.ErrFileNotUploaded
	}
	if err != nil {
		return 0, fmt.Errorf("checking uploaded blob: %w", err)
	}

	size := reported
	if info.Size > 0 {
		size = info.Size
	}
	if size > s.maxBytes() {
		_ = s.storage.Remove(ctx, fileRef(file))
		return 0, domain.ErrFileTooLarge
	}

	if err := s.fileRepo.UpdateStatus(ctx, file.ID, domain.FileStatusUploaded); err != nil {
		return 0, fmt.Errorf("updating stored file status: %w", err)
	}
	file.Status = domain.FileStatusUploaded
	file.Size = size
	return size, nil
}

// discardUpload removes a stored blob and its row when no record will point at it.
func (s *receiptService) discardUpload(ctx context.Context, file *domain.StoredFile) {
	if err := s.storage.Remove(ctx, fileRef(file)); err != nil {
		s.logger.Error("removing orphaned blob failed", zap.String("file_id", file.ID.String()), zap.Error(err))
		return
	}
	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		s.logger.Error("removing orphaned stored file failed", zap.String("file_id", file.ID.String()), zap.Error(err))
	}
}

// Upload validates and stores a PDF, creates its record and fires the extraction trigger.
func (s *receiptService) Upload(ctx context.Context, input ReceiptUploadInput) (*domain.UploadResult, error) {
	if input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if input.Header == nil || input.File == nil {
		return nil, domain.ErrUnsupportedFileType
	}

	fileName := path.Base(strings.ReplaceAll(input.Header.Filename, "\\", "/"))
	contentType := input.Header.Header.Get("Content-Type")
	if !domain.IsPDF(fileName, contentType) {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.maxBytes()
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	content, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(content)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	pages, err := s.inspector.Inspect(ctx, content)
	if err != nil {
		return nil, err
	}

	file := &domain.StoredFile{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Bucket:      s.cfg.Bucket,
		ContentType: domain.ContentTypePDF,
		Size:        int64(len(content)),
		Status:      domain.FileStatusPending,
	}
	file.ObjectKey = objectKey(input.UserID, file.ID, fileName)

	s.logger.Info("uploading receipt",
		zap.String("user_id", input.UserID),
		zap.String("file_name", fileName),
		zap.Int64("size", file.Size),
		zap.Int("pages", pages),
	)

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("creating stored file: %w", err)
	}

	if _, err := s.storage.Put(ctx, port.PutObject{
		Ref:         fileRef(file),
		Body:        bytes.NewReader(content),
		ContentType: file.ContentType,
		Size:        file.Size,
	}); err != nil {
		s.logger.Error("blob upload failed", zap.String("file_id", file.ID.String()), zap.Error(err))
		_ = s.fileRepo.Delete(ctx, file.ID)
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.UpdateStatus(ctx, file.ID, domain.FileStatusUploaded); err != nil {
		s.discardUpload(ctx, file)
		return nil, fmt.Errorf("updating stored file status: %w", err)
	}
	file.Status = domain.FileStatusUploaded

	receipt := s.newRecord(input.UserID, file.ID, fileName, file.Size, domain.ContentTypePDF, pages)
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		s.discardUpload(ctx, file)
		return nil, fmt.Errorf("creating receipt: %w", err)
	}
	s.feed.Publish(input.UserID)

	url, err := s.scheduleExtraction(ctx, receipt, file)
	if err != nil {
		return nil, err
	}
	return &domain.UploadResult{ReceiptID: receipt.ID, DownloadURL: url}, nil
}

func (s *receiptService) List(ctx context.Context, userID string, sort domain.ReceiptSort) ([]domain.Receipt, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.receiptRepo.ListByUser(ctx, userID, sort)
}

func (s *receiptService) GetByID(ctx context.Context, callerID string, id uuid.UUID) (*domain.Receipt, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt.UserID != callerID {
		return nil, domain.ErrForbidden
	}
	return receipt, nil
}

// UpdateStatus lets an owner mark a pending record as failed. Every other
// transition belongs to the extraction network.
func (s *receiptService) UpdateStatus(ctx context.Context, callerID string, id uuid.UUID, status domain.ReceiptStatus) (*domain.Receipt, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	receipt, err := s.GetByID(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if status != domain.ReceiptStatusError || receipt.Status != domain.ReceiptStatusPending {
		return nil, domain.ErrInvalidStatusTransition
	}

	if err := s.receiptRepo.UpdateStatus(ctx, id, domain.ReceiptStatusPending, domain.ReceiptStatusError); err != nil {
		return nil, err
	}
	receipt.Status = domain.ReceiptStatusError
	s.feed.Publish(callerID)
	return receipt, nil
}

// Delete removes the blob before the rows so no blob is ever orphaned.
func (s *receiptService) Delete(ctx context.Context, callerID string, id uuid.UUID) error {
	receipt, err := s.GetByID(ctx, callerID, id)
	if err != nil {
		return err
	}

	file, err := s.fileRepo.GetByID(ctx, receipt.FileID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Warn("receipt has no stored file", zap.String("receipt_id", id.String()))
	case err != nil:
		return fmt.Errorf("loading stored file: %w", err)
	default:
		if err := s.storage.Remove(ctx, fileRef(file)); err != nil {
			return fmt.Errorf("deleting blob: %w", err)
		}
		if err := s.fileRepo.Delete(ctx, file.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("deleting stored file: %w", err)
		}
	}

	if err := s.receiptRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("receipt deleted", zap.String("receipt_id", id.String()), zap.String("user_id", callerID))
	s.feed.Publish(callerID)
	return nil
}

func (s *receiptService) UpdateWithExtractedData(ctx context.Context, id uuid.UUID, data *domain.ExtractedData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("extracted data is required")
	}
	if data.Items == nil {
		data.Items = domain.LineItems{}
	}
	userID, err := s.receiptRepo.UpdateExtractedData(ctx, id, data)
	if err != nil {
		return "", err
	}
	s.logger.Info("receipt processed", zap.String("receipt_id", id.String()), zap.Int("items", len(data.Items)))
	s.feed.Publish(userID)
	return userID, nil
}

func (s *receiptService) GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	if file.Status != domain.FileStatusUploaded {
		return "", domain.ErrFileNotUploaded
	}
	return s.storage.PresignGet(ctx, fileRef(file), s.presignTTL())
}

func (s *receiptService) Export(ctx context.Context, userID string, format domain.ExportFormat, w io.Writer) (export.Exporter, error) {
	exporter, err := export.New(format)
	if err != nil {
		return nil, err
	}
	receipts, err := s.List(ctx, userID, domain.DefaultReceiptSort)
	if err != nil {
		return nil, err
	}
	if err := exporter.Write(w, receipts); err != nil {
		return nil, fmt.Errorf("writing %s export: %w", exporter.Extension(), err)
	}
	return exporter, nil
}

func (s *receiptService) Subscribe(userID string) (<-chan struct{}, func()) {
	return s.feed.Subscribe(userID)
}

// scheduleExtraction issues a download URL for the blob and fires the trigger.
// If the event cannot be delivered the record is marked error so it does not
// stay pending forever.
func (s *receiptService) scheduleExtraction(ctx context.Context, receipt *domain.Receipt, file *domain.StoredFile) (string, error) {
	url, err := s.storage.PresignGet(ctx, fileRef(file), s.presignTTL())
	if err == nil {
		err = s.trigger.Extract(ctx, url, receipt.ID)
	}
	if err == nil {
		return url, nil
	}

	s.logger.Error("extraction not scheduled", zap.String("receipt_id", receipt.ID.String()), zap.Error(err))
	if uerr := s.receiptRepo.UpdateStatus(ctx, receipt.ID, domain.ReceiptStatusPending, domain.ReceiptStatusError); uerr != nil {
		s.logger.Error("marking receipt as error failed", zap.String("receipt_id", receipt.ID.String()), zap.Error(uerr))
	} else {
		receipt.Status = domain.ReceiptStatusError
		s.feed.Publish(receipt.UserID)
	}
	return "", fmt.Errorf("%w: %v", domain.ErrExtractionNotScheduled, err)
}

func (s *receiptService) newRecord(userID string, fileID uuid.UUID, fileName string, size int64, mimeType string, pages int) *domain.Receipt {
	now := time.Now().UTC()
	return &domain.Receipt{
		ID:         uuid.New(),
		UserID:     userID,
		FileID:     fileID,
		FileName:   fileName,
		Size:       size,
		MimeType:   mimeType,
		UploadedAt: now,
		Status:     domain.ReceiptStatusPending,
		Items:      domain.LineItems{},
		PageCount:  pages,
		UpdatedAt:  now,
	}
}

func (s *receiptService) maxBytes() int64 {
	mb := s.cfg.MaxFileSizeMB
	if mb <= 0 {
		mb = 20
	}
	return mb * 1024 * 1024
}

func fileRef(f *domain.StoredFile) port.ObjectRef {
	return port.ObjectRef{Bucket: f.Bucket, Key: f.ObjectKey}
}

func (s *receiptService) presignTTL() time.Duration {
	return time.Duration(s.cfg.PresignExpiry) * time.Second
}

func objectKey(userID string, fileID uuid.UUID, fileName string) string {
	return fmt.Sprintf("users/%s/receipts/%s/%s", userID, fileID, fileName)
}
