package scanner_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"receiptly/internal/port"
	"receiptly/internal/scanner"
	"receiptly/mocks"
)

var scanInput = port.ScanInput{URL: "https://files.example.com/r/invoice.pdf", ContentType: "application/pdf"}

func scanOutput(model string) *port.ScanOutput {
	return &port.ScanOutput{
		Data:       json.RawMessage(`{"merchant":{"name":"Acme Co"}}`),
		ModelUsed:  model,
		PromptUsed: "test prompt",
	}
}

func TestFallbackScanner_FirstSucceeds(t *testing.T) {
	s1 := new(mocks.MockDocumentScanner)
	s2 := new(mocks.MockDocumentScanner)
	s1.On("Scan", mock.Anything, scanInput).Return(scanOutput("claude"), nil)

	fs := scanner.NewFallbackScanner([]port.DocumentScanner{s1, s2}, []string{"claude", "openai"}, nil)

	result, err := fs.Scan(context.Background(), scanInput)

	require.NoError(t, err)
	assert.Equal(t, "claude", result.ModelUsed)
	s2.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}

func TestFallbackScanner_FirstFails_SecondSucceeds(t *testing.T) {
	s1 := new(mocks.MockDocumentScanner)
	s2 := new(mocks.MockDocumentScanner)
	s1.On("Scan", mock.Anything, scanInput).Return(nil, errors.New("generic error"))
	s2.On("Scan", mock.Anything, scanInput).Return(scanOutput("openai"), nil)

	fs := scanner.NewFallbackScanner([]port.DocumentScanner{s1, s2}, []string{"claude", "openai"}, nil)

	result, err := fs.Scan(context.Background(), scanInput)

	require.NoError(t, err)
	assert.Equal(t, "openai", result.ModelUsed)
}

func TestFallbackScanner_RateLimitedProviderIsSkippedNextTime(t *testing.T) {
	s1 := new(mocks.MockDocumentScanner)
	s2 := new(mocks.MockDocumentScanner)
	s1.On("Scan", mock.Anything, scanInput).Return(nil, scanner.NewRateLimitError("claude", errors.New("429"), 60)).Once()
	s2.On("Scan", mock.Anything, scanInput).Return(scanOutput("vertex"), nil).Twice()

	fs := scanner.NewFallbackScanner([]port.DocumentScanner{s1, s2}, []string{"claude", "vertex"}, nil)

	_, err := fs.Scan(context.Background(), scanInput)
	require.NoError(t, err)
	_, err = fs.Scan(context.Background(), scanInput)
	require.NoError(t, err)

	s1.AssertNumberOfCalls(t, "Scan", 1)
	s2.AssertNumberOfCalls(t, "Scan", 2)
}

func TestFallbackScanner_AllRateLimited(t *testing.T) {
	s1 := new(mocks.MockDocumentScanner)
	s2 := new(mocks.MockDocumentScanner)
	s1.On("Scan", mock.Anything, scanInput).Return(nil, scanner.NewRateLimitError("claude", errors.New("429"), 60))
	s2.On("Scan", mock.Anything, scanInput).Return(nil, scanner.NewRateLimitError("openai", errors.New("429"), 30))

	fs := scanner.NewFallbackScanner([]port.DocumentScanner{s1, s2}, []string{"claude", "openai"}, nil)

	result, err := fs.Scan(context.Background(), scanInput)

	assert.Nil(t, result)
	var rlErr *scanner.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackScanner_AllFail_NonRateLimit(t *testing.T) {
	s1 := new(mocks.MockDocumentScanner)
	s2 := new(mocks.MockDocumentScanner)
	s1.On("Scan", mock.Anything, scanInput).Return(nil, scanner.NewRateLimitError("claude", errors.New("429"), 60))
	s2.On("Scan", mock.Anything, scanInput).Return(nil, errors.New("bad gateway"))

	fs := scanner.NewFallbackScanner([]port.DocumentScanner{s1, s2}, []string{"claude", "openai"}, nil)

	_, err := fs.Scan(context.Background(), scanInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all scanners failed")
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestFallbackScanner_StopsWhenRunDeadlinePasses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s1 := new(mocks.MockDocumentScanner)
	s2 := new(mocks.MockDocumentScanner)
	s1.On("Scan", mock.Anything, scanInput).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	fs := scanner.NewFallbackScanner([]port.DocumentScanner{s1, s2}, []string{"claude", "openai"}, nil)

	_, err := fs.Scan(ctx, scanInput)

	assert.ErrorIs(t, err, context.Canceled)
	s2.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}
