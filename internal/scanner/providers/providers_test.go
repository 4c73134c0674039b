package providers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/config"
	"receiptly/internal/scanner"
	"receiptly/internal/scanner/providers"
)

func TestRegister_ChainRejectsMissingCredentials(t *testing.T) {
	providers.Register()

	tests := []struct {
		name string
		cfg  config.ScannerProviderConfig
		want string
	}{
		{"claude without key", config.ScannerProviderConfig{Provider: "claude"}, "api key is required"},
		{"openai without key", config.ScannerProviderConfig{Provider: "openai"}, "api key is required"},
		{"vertex without project", config.ScannerProviderConfig{Provider: "vertex", Region: "us-central1"}, "project id and region are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanner.NewChain(context.Background(), []config.ScannerProviderConfig{tt.cfg}, nil)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRegister_ChainWithKeys(t *testing.T) {
	providers.Register()

	s, err := scanner.NewChain(context.Background(), []config.ScannerProviderConfig{
		{Provider: "claude", APIKey: "sk-ant"},
		{Provider: "openai", APIKey: "sk-oai"},
	}, nil)

	require.NoError(t, err)
	assert.IsType(t, &scanner.FallbackScanner{}, s)
	assert.NoError(t, scanner.Close(s))
}
