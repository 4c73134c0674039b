package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/config"
)

func TestNew_UnknownProvider(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Provider: "azure"}}

	store, err := New(context.Background(), cfg)

	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "azure")
}

func TestNew_S3WithStaticCredentials(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Provider: "s3"},
		S3: config.S3Config{
			Region:    "us-east-1",
			Endpoint:  "http://localhost:9000",
			AccessKey: "minio",
			SecretKey: "minio123",
		},
	}

	store, err := New(context.Background(), cfg)

	require.NoError(t, err)
	assert.NotNil(t, store)
}
