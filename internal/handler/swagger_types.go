package handler

import (
	"receiptly/internal/domain"
	"receiptly/internal/view"
	"receiptly/internal/workflow"
)

// Swagger type definitions for API documentation.

// CreateReceiptRequest registers a file uploaded through a presigned URL.
type CreateReceiptRequest struct {
	FileID   string `json:"fileId" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	FileName string `json:"fileName" binding:"required" example:"invoice.pdf"`
	Size     int64  `json:"size" binding:"min=0" example:"2048"`
	MimeType string `json:"mimeType" example:"application/pdf"`
}

// UpdateStatusRequest represents the status update body.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"error"`
}

// UploadResponse is returned by the upload action.
type UploadResponse struct {
	Success     bool   `json:"success" example:"true"`
	ReceiptID   string `json:"receiptId" example:"660e8400-e29b-41d4-a716-446655440001"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// ReceiptList is the list endpoint payload: raw records plus the rendered view.
type ReceiptList struct {
	Receipts []domain.Receipt `json:"receipts"`
	View     view.ListView    `json:"view"`
}

// DownloadURLResponse wraps a presigned download URL.
type DownloadURLResponse struct {
	URL string `json:"url" example:"https://bucket.s3.amazonaws.com/users/u/receipts/f/invoice.pdf?X-Amz-Signature=..."`
}

// MessageResponse is a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message" example:"receipt deleted"`
}

// DispatchResponse lists the runs started for a delivered event.
type DispatchResponse struct {
	EventID string   `json:"eventId"`
	RunIDs  []string `json:"runIds"`
}

// FunctionManifest describes one registered workflow function.
type FunctionManifest struct {
	ID    string `json:"id" example:"extract-pdf-and-save-to-database"`
	Event string `json:"event" example:"EXTRACT_DATA_FROM_PDF_AND_SAVED_TO_DATABASE"`
}

// WorkflowIntrospection is returned by GET /api/workflow.
type WorkflowIntrospection struct {
	Functions []FunctionManifest `json:"functions"`
	Runs      []workflow.Run     `json:"runs"`
}

// Response is a generic success envelope used in annotations.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody is the error envelope used in annotations.
type ErrorResponseBody struct {
	Success bool     `json:"success" example:"false"`
	Error   APIError `json:"error"`
}
