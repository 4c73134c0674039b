package vertex

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"receiptly/internal/config"
	"receiptly/internal/domain"
	"receiptly/internal/port"
	"receiptly/internal/scanner"
)

// Scanner implements port.DocumentScanner using Gemini on Vertex AI.
// gs:// URLs are passed by reference; other URLs are downloaded and sent inline.
type Scanner struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	modelName  string
	httpClient *http.Client
}

// Factory adapts NewScanner to scanner.ProviderFactory.
func Factory(ctx context.Context, cfg *config.ScannerProviderConfig) (port.DocumentScanner, error) {
	return NewScanner(ctx, cfg)
}

// NewScanner creates a Vertex Gemini receipt scanner.
func NewScanner(ctx context.Context, cfg *config.ScannerProviderConfig) (*Scanner, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("vertex scanner: project id and region are required")
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	modelName := cfg.DefaultModel
	if modelName == "" {
		modelName = "gemini-1.5-pro"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 3094
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(scanner.ScanningSystemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
		MaxOutputTokens:  genai.Ptr(int32(maxTokens)),
	}

	return &Scanner{
		client:     client,
		model:      model,
		modelName:  modelName,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Close releases the underlying Vertex client.
func (s *Scanner) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Scanner) Scan(ctx context.Context, input port.ScanInput) (*port.ScanOutput, error) {
	docPart, err := s.documentPart(ctx, input.URL)
	if err != nil {
		return nil, err
	}

	resp, err := s.model.GenerateContent(ctx, docPart, genai.Text(scanner.ReceiptPrompt))
	if err != nil {
		return nil, classify(err)
	}

	data, err := responseJSON(resp)
	if err != nil {
		return nil, err
	}

	return &port.ScanOutput{
		Data:       data,
		ModelUsed:  s.modelName,
		PromptUsed: scanner.ReceiptPrompt,
	}, nil
}

// classify maps quota exhaustion to a RateLimitError so the fallback chain
// cools this provider down.
func classify(err error) error {
	if status.Code(err) == codes.ResourceExhausted {
		return scanner.NewRateLimitError("vertex", err, 0)
	}
	return fmt.Errorf("vertex generate content: %w", err)
}

func responseJSON(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		return nil, fmt.Errorf("output truncated (finish_reason: max_tokens): response exceeded output token limit")
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return scanner.ExtractJSON(sb.String())
}

func (s *Scanner) documentPart(ctx context.Context, url string) (genai.Part, error) {
	if strings.HasPrefix(url, "gs://") {
		return genai.FileData{MIMEType: domain.ContentTypePDF, FileURI: url}, nil
	}
	doc, _, err := scanner.FetchDocument(ctx, s.httpClient, url)
	if err != nil {
		return nil, err
	}
	return genai.Blob{MIMEType: domain.ContentTypePDF, Data: doc}, nil
}
