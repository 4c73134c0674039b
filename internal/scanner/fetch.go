package scanner

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxDocumentBytes caps how much of a document is downloaded for inline submission.
const MaxDocumentBytes = 32 << 20

// FetchDocument downloads a document for providers that need inline bytes
// rather than a URL reference.
func FetchDocument(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("creating document request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching document: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading document: %w", err)
	}
	if len(data) > MaxDocumentBytes {
		return nil, "", fmt.Errorf("document exceeds %d bytes", MaxDocumentBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
