package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"receiptly/internal/config"
	"receiptly/internal/domain"
	"receiptly/internal/port"
	"receiptly/internal/scanner"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Scanner implements port.DocumentScanner using the OpenAI Chat Completions API.
// The PDF is downloaded first and sent inline as file data.
type Scanner struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewScanner creates an OpenAI-based receipt scanner from a provider config.
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
		return nil, fmt.Errorf("openai scanner: api key is required")
	}
	return NewScanner(cfg), nil
}

func newScanner(cfg *config.ScannerProviderConfig, endpoint string) *Scanner {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o-mini"
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
	doc, _, err := scanner.FetchDocument(ctx, s.client, input.URL)
	if err != nil {
		return nil, err
	}

	filename := "receipt.pdf"
	if u, err := url.Parse(input.URL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			filename = base
		}
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", domain.ContentTypePDF, base64.StdEncoding.EncodeToString(doc))

	reqBody := map[string]interface{}{
		"model":                 s.model,
		"max_completion_tokens": s.maxTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": scanner.ScanningSystemPrompt,
			},
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "file",
						"file": map[string]interface{}{
							"filename":  filename,
							"file_data": dataURI,
						},
					},
					{
						"type": "text",
						"text": scanner.ReceiptPrompt,
					},
				},
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, scanner.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := scanner.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, scanner.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, s.model)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.ScanOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	data, err := scanner.ExtractJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &port.ScanOutput{
		Data:       data,
		ModelUsed:  model,
		PromptUsed: scanner.ReceiptPrompt,
	}, nil
}
