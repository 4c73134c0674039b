package uploadclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/domain"
	"receiptly/internal/uploadclient"
)

func pdfFile(name, body string) uploadclient.File {
	return uploadclient.File{
		Name:        name,
		ContentType: domain.ContentTypePDF,
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_UploadFile(t *testing.T) {
	receiptID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/receipts/upload", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "invoice.pdf", hdr.Filename)
		assert.Equal(t, domain.ContentTypePDF, hdr.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4", string(body))

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"success": true, "receiptId": receiptID, "downloadUrl": "https://dl"},
		})
	}))
	defer srv.Close()

	c := uploadclient.New(srv.URL, "tok", nil)
	res, err := c.UploadFile(context.Background(), pdfFile("invoice.pdf", "%PDF-1.4"))

	require.NoError(t, err)
	assert.Equal(t, receiptID, res.ReceiptID)
	assert.Equal(t, "https://dl", res.DownloadURL)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]interface{}{
			"success": false,
			"error":   map[string]string{"code": "FILE_TOO_LARGE", "message": "file exceeds maximum allowed size"},
		})
	}))
	defer srv.Close()

	c := uploadclient.New(srv.URL, "tok", nil)
	_, err := c.UploadFile(context.Background(), pdfFile("big.pdf", "x"))

	var apiErr *uploadclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.Status)
	assert.Equal(t, "FILE_TOO_LARGE", apiErr.Code)
	assert.Contains(t, err.Error(), "file exceeds maximum allowed size")
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/receipts", r.URL.Path)
		assert.Equal(t, "amount", r.URL.Query().Get("sort"))
		assert.Equal(t, "asc", r.URL.Query().Get("order"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"receipts": []map[string]interface{}{{"id": uuid.New(), "fileName": "a.pdf", "status": "processed"}},
			},
		})
	}))
	defer srv.Close()

	c := uploadclient.New(srv.URL, "tok", nil)
	receipts, err := c.List(context.Background(), domain.ReceiptSort{Field: domain.SortByAmount})

	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "a.pdf", receipts[0].FileName)
	assert.Equal(t, domain.ReceiptStatusProcessed, receipts[0].Status)
}

func TestClient_DeleteAndDownloadURL(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/receipts/"+id.String():
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]string{"message": "receipt deleted"}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/files/"+id.String()+"/download-url":
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]string{"url": "https://signed"}})
		default:
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": map[string]string{"code": "NOT_FOUND", "message": "resource not found"}})
		}
	}))
	defer srv.Close()

	c := uploadclient.New(srv.URL, "tok", nil)
	require.NoError(t, c.Delete(context.Background(), id))

	u, err := c.DownloadURL(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://signed", u)

	_, err = c.Get(context.Background(), id)
	var apiErr *uploadclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_Export(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "xlsx", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("PK"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := uploadclient.New(srv.URL, "tok", nil)
	require.NoError(t, c.Export(context.Background(), domain.ExportXLSX, &buf))
	assert.Equal(t, "PK", buf.String())
}
