package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/config"
	"receiptly/internal/port"
	"receiptly/internal/scanner"
	"receiptly/internal/scanner/claude"
)

func newTestScanner(serverURL string) *claude.Scanner {
	cfg := &config.ScannerProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-3-5-sonnet-20240620",
		MaxTokens:    3094,
		TimeoutSecs:  30,
	}
	return claude.NewScannerWithEndpoint(cfg, serverURL)
}

func TestClaudeScanner_Scan_URLDocument(t *testing.T) {
	receipt := `{"merchant":{"name":"Acme Co","address":"1 Main St","contact":"+1555"},"items":[{"name":"Widget","quantity":2,"unit_price":10,"total_price":20}],"totals":{"total":20,"currency":"USD"}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-3-5-sonnet-20240620", reqBody["model"])
		assert.Equal(t, float64(3094), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 2)

		doc := content[0].(map[string]interface{})
		assert.Equal(t, "document", doc["type"])
		source := doc["source"].(map[string]interface{})
		assert.Equal(t, "url", source["type"])
		assert.Equal(t, "https://files.example.com/invoice.pdf", source["url"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": "```json\n" + receipt + "\n```"}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	result, err := newTestScanner(server.URL).Scan(context.Background(), port.ScanInput{
		URL:         "https://files.example.com/invoice.pdf",
		ContentType: "application/pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-20240620", result.ModelUsed)
	assert.Equal(t, scanner.ReceiptPrompt, result.PromptUsed)

	var parsed scanner.ReceiptJSON
	require.NoError(t, json.Unmarshal(result.Data, &parsed))
	assert.Equal(t, "Acme Co", parsed.Merchant.Name)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "Widget", parsed.Items[0].Name)
	assert.Equal(t, float64(20), parsed.Items[0].TotalPrice)
}

func TestClaudeScanner_Scan_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newTestScanner(server.URL).Scan(context.Background(), port.ScanInput{URL: "https://x/y.pdf"})

	var rlErr *scanner.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, float64(15), rlErr.RetryAfter.Seconds())
}

func TestClaudeScanner_Scan_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": `{"merchant":`}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	_, err := newTestScanner(server.URL).Scan(context.Background(), port.ScanInput{URL: "https://x/y.pdf"})

	assert.ErrorContains(t, err, "output truncated")
}

func TestClaudeScanner_Scan_RequiresURL(t *testing.T) {
	_, err := newTestScanner("http://unused").Scan(context.Background(), port.ScanInput{})

	assert.Error(t, err)
}

func TestFactory_RequiresAPIKey(t *testing.T) {
	_, err := claude.Factory(context.Background(), &config.ScannerProviderConfig{Provider: "claude"})

	assert.ErrorContains(t, err, "api key")
}
