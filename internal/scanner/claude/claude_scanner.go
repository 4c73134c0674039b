package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"receiptly/internal/config"
	"receiptly/internal/port"
	"receiptly/internal/scanner"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Scanner implements port.DocumentScanner using the Anthropic Messages API.
// The document is referenced by URL, so Anthropic fetches it directly.
type Scanner struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewScanner creates a Claude-based receipt scanner from a provider config.
func NewScanner(cfg *config.ScannerProviderConfig) *Scanner {
	return newScanner(cfg, apiURL)
}

// NewScannerWithEndpoint creates a scanner pointing at a custom API endpoint (for testing).
func NewScannerWithEndpoint(cfg *config.ScannerProviderConfig, endpoint string) *Scanner {
	return newScanner(cfg, endpoint)
}

// Factory adapts NewScanner to scanner.ProviderFactory.
func Factory(_ context.Context, cfg *config.ScannerProviderConfig) (port.DocumentScanner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude scanner: api key is required")
	}
	return NewScanner(cfg), nil
}

func newScanner(cfg *config.ScannerProviderConfig, endpoint string) *Scanner {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 3094
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Scanner{
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: timeout},
	}
}

func (s *Scanner) Scan(ctx context.Context, input port.ScanInput) (*port.ScanOutput, error) {
	if input.URL == "" {
		return nil, fmt.Errorf("claude scanner: document url is required")
	}

	reqBody := map[string]interface{}{
		"model":      s.model,
		"max_tokens": s.maxTokens,
		"system":     scanner.ScanningSystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "document",
						"source": map[string]interface{}{
							"type": "url",
							"url":  input.URL,
						},
					},
					{
						"type": "text",
						"text": scanner.ReceiptPrompt,
					},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, scanner.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := scanner.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, scanner.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, s.model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.ScanOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("empty response from API")
	}

	data, err := scanner.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	return &port.ScanOutput{
		Data:       data,
		ModelUsed:  model,
		PromptUsed: scanner.ReceiptPrompt,
	}, nil
}
