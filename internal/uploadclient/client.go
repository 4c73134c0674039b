package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/google/uuid"

	"receiptly/internal/domain"
)

const defaultTimeout = 60 * time.Second

// APIError is a non-2xx response from the receipts API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("receipts api: status %d", e.Status)
	}
	return fmt.Sprintf("receipts api: %s (%s)", e.Message, e.Code)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the receipts API on behalf of one signed-in user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Client. A nil httpClient gets a client with a 60s timeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, token: token, httpClient: httpClient}
}

// Token returns the identity token requests are sent with.
func (c *Client) Token() string { return c.token }

// UploadFile sends one PDF through the server-side upload action.
func (c *Client) UploadFile(ctx context.Context, f File) (*domain.UploadResult, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.contentType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/receipts/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Success     bool      `json:"success"`
		ReceiptID   uuid.UUID `json:"receiptId"`
		DownloadURL string    `json:"downloadUrl"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &domain.UploadResult{ReceiptID: out.ReceiptID, DownloadURL: out.DownloadURL}, nil
}

// List returns the caller's receipts in the requested order.
func (c *Client) List(ctx context.Context, sort domain.ReceiptSort) ([]domain.Receipt, error) {
	order := "asc"
	if sort.Desc {
		order = "desc"
	}
	q := url.Values{"sort": {string(sort.Field)}, "order": {order}}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/receipts?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Receipts []domain.Receipt `json:"receipts"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Receipts, nil
}

// Get returns one receipt.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/receipts/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	var out domain.Receipt
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a receipt and its stored PDF.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/v1/receipts/"+id.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// DownloadURL returns a presigned URL for a stored file.
func (c *Client) DownloadURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/files/"+fileID.String()+"/download-url", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Export streams the receipts export in the given format to w.
func (c *Client) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/receipts/export?format="+url.QueryEscape(string(format)), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("receipts api request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading export: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("receipts api request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
