package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/config"
	"receiptly/internal/port"
)

var receiptRef = port.ObjectRef{Bucket: "receipts", Key: "users/u1/receipts/abc/march invoice.pdf"}

func newTestClient(t *testing.T) *s3Client {
	t.Helper()
	store, err := NewS3Client(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	return store.(*s3Client)
}

func TestPresignGet_InlineUnderFileName(t *testing.T) {
	c := newTestClient(t)

	raw, err := c.PresignGet(context.Background(), receiptRef, 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/receipts/users/u1/receipts/abc/march invoice.pdf", u.Path)

	q := u.Query()
	assert.Equal(t, "900", q.Get("X-Amz-Expires"))
	assert.Equal(t, `inline; filename="march invoice.pdf"`, q.Get("response-content-disposition"))
}

func TestPresignPut_Signed(t *testing.T) {
	c := newTestClient(t)

	raw, err := c.PresignPut(context.Background(), receiptRef, "application/pdf", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestIsMissing(t *testing.T) {
	assert.True(t, isMissing(fmt.Errorf("head: %w", &types.NotFound{})))
	assert.True(t, isMissing(&types.NoSuchKey{}))
	assert.False(t, isMissing(errors.New("access denied")))
}
