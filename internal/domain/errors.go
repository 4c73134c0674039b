package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("not authenticated")
	ErrForbidden               = errors.New("not authorized")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed            = errors.New("file upload to storage failed")
	ErrInvalidPDF              = errors.New("file is not a valid pdf document")
	ErrInvalidStatus           = errors.New("invalid receipt status")
	ErrInvalidStatusTransition = errors.New("receipt status transition not allowed")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrExtractionNotScheduled  = errors.New("extraction could not be scheduled")
	ErrFileNotUploaded         = errors.New("file has not been uploaded")
	ErrFileAlreadyAttached     = errors.New("file already belongs to a receipt")
)
