package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"receiptly/internal/domain"
	"receiptly/internal/export"
	"receiptly/internal/service"
	"receiptly/internal/view"
)

// ReceiptHandler handles receipt endpoints.
type ReceiptHandler struct {
	receiptService service.ReceiptService
	logger         *zap.Logger
	heartbeat      time.Duration
	now            func() time.Time
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService service.ReceiptService, logger *zap.Logger) *ReceiptHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptHandler{
		receiptService: receiptService,
		logger:         logger,
		heartbeat:      25 * time.Second,
		now:            time.Now,
	}
}

// SetHeartbeat overrides the stream keep-alive interval.
func (h *ReceiptHandler) SetHeartbeat(d time.Duration) {
	h.heartbeat = d
}

// UploadURL handles POST /api/v1/receipts/upload-url
// @Summary Get a presigned upload URL
// @Description Reserve a stored file and return a presigned PUT URL for the PDF
// @Tags receipts
// @Produce json
// @Success 201 {object} Response{data=domain.UploadTicket}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /v1/receipts/upload-url [post]
func (h *ReceiptHandler) UploadURL(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ticket, err := h.receiptService.GenerateUploadURL(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, ticket)
}

// Create handles POST /api/v1/receipts
// @Summary Create a receipt record
// @Description Create a pending record for a file uploaded through a presigned URL and start extraction
// @Tags receipts
// @Accept json
// @Produce json
// @Param request body CreateReceiptRequest true "Uploaded file"
// @Success 201 {object} Response{data=domain.Receipt}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "File belongs to another user"
// @Security BearerAuth
// @Router /v1/receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = domain.ContentTypePDF
	}

	receipt, err := h.receiptService.Create(c.Request.Context(), userID, domain.NewReceipt{
		FileID:   fileID,
		FileName: req.FileName,
		Size:     req.Size,
		MimeType: mimeType,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, receipt)
}

// Upload handles POST /api/v1/receipts/upload
// @Summary Upload a receipt PDF
// @Description Store a PDF, create its pending record and start extraction
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt PDF"
// @Success 201 {object} Response{data=UploadResponse}
// @Failure 400 {object} ErrorResponseBody "Missing file or not a PDF"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 502 {object} ErrorResponseBody "Extraction could not be started"
// @Security BearerAuth
// @Router /v1/receipts/upload [post]
func (h *ReceiptHandler) Upload(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.receiptService.Upload(c.Request.Context(), service.ReceiptUploadInput{
		UserID: userID,
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, UploadResponse{
		Success:     true,
		ReceiptID:   result.ReceiptID.String(),
		DownloadURL: result.DownloadURL,
	})
}

// List handles GET /api/v1/receipts
// @Summary List receipts
// @Description List the caller's receipts with their rendered rows
// @Tags receipts
// @Produce json
// @Param sort query string false "uploaded_at, name, size, amount or status" default(uploaded_at)
// @Param order query string false "asc or desc" default(desc)
// @Success 200 {object} Response{data=ReceiptList}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /v1/receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sort := domain.ParseReceiptSort(c.Query("sort"), c.Query("order"))
	list, err := h.snapshot(c, userID, sort)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, list)
}

// Stream handles GET /api/v1/receipts/stream
// @Summary Stream receipt changes
// @Description Server-sent events; a "receipts" event carries a fresh listing after every change
// @Tags receipts
// @Produce text/event-stream
// @Param sort query string false "uploaded_at, name, size, amount or status"
// @Param order query string false "asc or desc"
// @Success 200 {object} ReceiptList
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /v1/receipts/stream [get]
func (h *ReceiptHandler) Stream(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sort := domain.ParseReceiptSort(c.Query("sort"), c.Query("order"))

	// Subscribe before the first read so no change between the two is lost.
	changes, cancel := h.receiptService.Subscribe(userID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("state", view.Loading())
	c.Writer.Flush()

	send := func() bool {
		list, err := h.snapshot(c, userID, sort)
		if err != nil {
			h.logger.Warn("receipt stream snapshot failed", zap.String("user_id", userID), zap.Error(err))
			_, _, msg := MapDomainError(err)
			c.SSEvent("error", APIError{Code: "SNAPSHOT_FAILED", Message: msg})
			c.Writer.Flush()
			return c.Request.Context().Err() == nil
		}
		c.SSEvent("receipts", list)
		c.Writer.Flush()
		return true
	}

	if !send() {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-changes:
			if !send() {
				return
			}
		case <-ticker.C:
			c.SSEvent("ping", h.now().UTC().Format(time.RFC3339))
			c.Writer.Flush()
		}
	}
}

// Export handles GET /api/v1/receipts/export
// @Summary Export receipts
// @Description Download the caller's receipts as CSV or XLSX
// @Tags receipts
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /v1/receipts/export [get]
func (h *ReceiptHandler) Export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	format := domain.ExportFormat(c.DefaultQuery("format", string(domain.ExportCSV)))

	var buf bytes.Buffer
	exporter, err := h.receiptService.Export(c.Request.Context(), userID, format, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("receipts", exporter, h.now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

// GetByID handles GET /api/v1/receipts/:id
// @Summary Get a receipt
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Success 200 {object} Response{data=domain.Receipt}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 403 {object} ErrorResponseBody "Not the owner"
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Security BearerAuth
// @Router /v1/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, receipt)
}

// UpdateStatus handles PATCH /api/v1/receipts/:id/status
// @Summary Mark a receipt as failed
// @Description Only pending -> error is allowed
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} Response{data=domain.Receipt}
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 409 {object} ErrorResponseBody "Transition not allowed"
// @Security BearerAuth
// @Router /v1/receipts/{id}/status [patch]
func (h *ReceiptHandler) UpdateStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	receipt, err := h.receiptService.UpdateStatus(c.Request.Context(), userID, id, domain.ReceiptStatus(req.Status))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, receipt)
}

// Delete handles DELETE /api/v1/receipts/:id
// @Summary Delete a receipt
// @Description Deletes the stored PDF, then the record
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 403 {object} ErrorResponseBody "Not the owner"
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Security BearerAuth
// @Router /v1/receipts/{id} [delete]
func (h *ReceiptHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.receiptService.Delete(c.Request.Context(), userID, id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "receipt deleted"})
}

// DownloadURL handles GET /api/v1/files/:id/download-url
// @Summary Get a presigned download URL
// @Tags files
// @Produce json
// @Param id path string true "File ID (UUID)"
// @Success 200 {object} Response{data=DownloadURLResponse}
// @Failure 404 {object} ErrorResponseBody "File not found"
// @Security BearerAuth
// @Router /v1/files/{id}/download-url [get]
func (h *ReceiptHandler) DownloadURL(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	url, err := h.receiptService.GetDownloadURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, DownloadURLResponse{URL: url})
}

func (h *ReceiptHandler) snapshot(c *gin.Context, userID string, sort domain.ReceiptSort) (*ReceiptList, error) {
	receipts, err := h.receiptService.List(c.Request.Context(), userID, sort)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []domain.Receipt{}
	}
	return &ReceiptList{Receipts: receipts, View: view.Build(receipts, nil)}, nil
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid ID")
		return uuid.Nil, false
	}
	return id, true
}
