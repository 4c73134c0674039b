package scanner_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/config"
	"receiptly/internal/port"
	"receiptly/internal/scanner"
)

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, scanner.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, scanner.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, scanner.ParseRetryAfterHeader("soon"))

	future := time.Now().Add(2 * time.Minute).UTC().Format(http.TimeFormat)
	secs := scanner.ParseRetryAfterHeader(future)
	assert.InDelta(t, 120, secs, 5)
}

func TestNewRateLimitError_DefaultsRetryAfter(t *testing.T) {
	err := scanner.NewRateLimitError("claude", assert.AnError, 0)

	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "claude rate limited")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "plain object",
			in:   `{"merchant":{"name":"Acme Co"}}`,
			want: `{"merchant":{"name":"Acme Co"}}`,
		},
		{
			name: "code fence",
			in:   "```json\n{\n  \"merchant\": {\"name\": \"Acme Co\"}\n}\n```",
			want: `{"merchant":{"name":"Acme Co"}}`,
		},
		{
			name: "surrounding prose",
			in:   "Here is the receipt:\n{\"totals\":{\"total\":22}}\nDone.",
			want: `{"totals":{"total":22}}`,
		},
		{name: "no object", in: "sorry, I cannot read this", wantErr: true},
		{name: "wrong shape", in: `{"items":"none"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanner.ExtractJSON(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

type stubScanner struct{ name string }

func (s stubScanner) Scan(context.Context, port.ScanInput) (*port.ScanOutput, error) {
	return &port.ScanOutput{ModelUsed: s.name}, nil
}

func TestNewChain(t *testing.T) {
	scanner.RegisterProvider("stub-a", func(_ context.Context, cfg *config.ScannerProviderConfig) (port.DocumentScanner, error) {
		return stubScanner{name: "a"}, nil
	})
	scanner.RegisterProvider("stub-b", func(_ context.Context, cfg *config.ScannerProviderConfig) (port.DocumentScanner, error) {
		return stubScanner{name: "b"}, nil
	})

	t.Run("single provider is returned unwrapped", func(t *testing.T) {
		s, err := scanner.NewChain(context.Background(), []config.ScannerProviderConfig{{Provider: "stub-a"}}, nil)
		require.NoError(t, err)
		assert.IsType(t, stubScanner{}, s)
	})

	t.Run("several providers are wrapped in a fallback", func(t *testing.T) {
		s, err := scanner.NewChain(context.Background(), []config.ScannerProviderConfig{
			{Provider: "stub-a"}, {Provider: "stub-b"},
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &scanner.FallbackScanner{}, s)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := scanner.NewChain(context.Background(), []config.ScannerProviderConfig{{Provider: "nope"}}, nil)
		assert.ErrorContains(t, err, "unknown scanner provider")
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := scanner.NewChain(context.Background(), nil, nil)
		assert.Error(t, err)
	})
}
