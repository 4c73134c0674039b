package uploadclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"receiptly/internal/domain"
)

// ReceiptsView is where the uploader navigates after a successful batch.
const ReceiptsView = "/receipts"

// DefaultClearAfter is how long uploaded names stay listed after a batch.
const DefaultClearAfter = 5 * time.Second

var (
	ErrMissingIdentity = errors.New("sign in before uploading receipts")
	ErrNotPDF          = errors.New("only PDF files can be uploaded")
	ErrNoFiles         = errors.New("no files selected")
)

// File is one selected file. Open is only called when the file is sent.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

func (f File) contentType() string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return domain.ContentTypePDF
}

// FromPath describes a local file, guessing its content type from the extension.
func FromPath(path string) File {
	return File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BatchRejectedError lists the files that failed validation.
type BatchRejectedError struct {
	Rejected []string
}

func (e *BatchRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotPDF, strings.Join(e.Rejected, ", "))
}

func (e *BatchRejectedError) Unwrap() error { return ErrNotPDF }

// Sender uploads a single file for the signed-in user.
type Sender interface {
	Token() string
	UploadFile(ctx context.Context, f File) (*domain.UploadResult, error)
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(ctx context.Context, view string) error
}

// Uploader submits batches of receipts.
type Uploader struct {
	sender     Sender
	nav        Navigator
	clearAfter time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	uploaded []string
	gen      int
	clear    *time.Timer
}

// NewUploader creates an Uploader. A non-positive clearAfter uses DefaultClearAfter.
func NewUploader(sender Sender, nav Navigator, clearAfter time.Duration, logger *zap.Logger) *Uploader {
	if clearAfter <= 0 {
		clearAfter = DefaultClearAfter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{sender: sender, nav: nav, clearAfter: clearAfter, logger: logger}
}

// Validate checks the identity and that every file is a PDF. Nothing is sent.
func (u *Uploader) Validate(files []File) error {
	if u.sender.Token() == "" {
		return ErrMissingIdentity
	}
	if len(files) == 0 {
		return ErrNoFiles
	}
	var rejected []string
	for _, f := range files {
		if !domain.IsPDF(f.Name, f.ContentType) {
			rejected = append(rejected, f.Name)
		}
	}
	if len(rejected) > 0 {
		return &BatchRejectedError{Rejected: rejected}
	}
	return nil
}

// Submit validates the batch, then uploads the files one at a time. The first
// failure stops the batch; results for files already sent are still returned.
func (u *Uploader) Submit(ctx context.Context, files []File) ([]domain.UploadResult, error) {
	if err := u.Validate(files); err != nil {
		return nil, err
	}

	results := make([]domain.UploadResult, 0, len(files))
	names := make([]string, 0, len(files))
	for _, f := range files {
		res, err := u.sender.UploadFile(ctx, f)
		if err != nil {
			u.logger.Warn("upload failed, aborting batch",
				zap.String("file", f.Name), zap.Int("sent", len(results)), zap.Int("total", len(files)), zap.Error(err))
			return results, fmt.Errorf("uploading %s: %w", f.Name, err)
		}
		u.logger.Info("receipt uploaded", zap.String("file", f.Name), zap.String("receipt_id", res.ReceiptID.String()))
		results = append(results, *res)
		names = append(names, f.Name)
	}

	u.remember(names)
	if u.nav != nil {
		if err := u.nav.Navigate(ctx, ReceiptsView); err != nil {
			return results, fmt.Errorf("opening receipts list: %w", err)
		}
	}
	return results, nil
}

// Uploaded returns the names from the last successful batch until they are cleared.
func (u *Uploader) Uploaded() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, len(u.uploaded))
	copy(out, u.uploaded)
	return out
}

// Close stops a pending clear.
func (u *Uploader) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.clear != nil {
		u.clear.Stop()
	}
}

func (u *Uploader) remember(names []string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded = names
	u.gen++
	gen := u.gen
	if u.clear != nil {
		u.clear.Stop()
	}
	u.clear = time.AfterFunc(u.clearAfter, func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.gen == gen {
			u.uploaded = nil
		}
	})
}
