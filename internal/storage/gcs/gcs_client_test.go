package gcs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"receiptly/internal/port"
)

func TestNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", fmt.Errorf("attrs: %w", storage.ErrObjectNotExist), true},
		{"api 404", &googleapi.Error{Code: http.StatusNotFound}, true},
		{"api 403", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notFound(tt.err))
		})
	}
}

func TestDisposition(t *testing.T) {
	ref := port.ObjectRef{Bucket: "b", Key: "users/u/receipts/id/receipt.pdf"}
	assert.Equal(t, "inline; filename=receipt.pdf", disposition(ref))
}

func TestInfo(t *testing.T) {
	got := info(&storage.ObjectAttrs{Size: 2048, ContentType: "application/pdf", Etag: "abc"})
	assert.Equal(t, &port.ObjectInfo{Size: 2048, ContentType: "application/pdf", ETag: "abc"}, got)
	assert.Equal(t, &port.ObjectInfo{}, info(nil))
}
