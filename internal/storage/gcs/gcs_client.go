package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"receiptly/internal/config"
	"receiptly/internal/domain"
	"receiptly/internal/port"
)

type gcsClient struct {
	client *storage.Client
}

// NewGCSClient returns a receipt blob store on Google Cloud Storage.
// Signed URLs need a service account; the credentials file provides one outside GCP.
func NewGCSClient(ctx context.Context, cfg *config.GCSConfig) (port.ObjectStorage, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}
	return &gcsClient{client: client}, nil
}

func (c *gcsClient) object(ref port.ObjectRef) *storage.ObjectHandle {
	return c.client.Bucket(ref.Bucket).Object(ref.Key)
}

func (c *gcsClient) Put(ctx context.Context, obj port.PutObject) (*port.ObjectInfo, error) {
	w := c.object(obj.Ref).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.ContentDisposition = disposition(obj.Ref)

	if _, err := io.Copy(w, obj.Body); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("gcs put %s: %w", obj.Ref.Key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs put %s finalize: %w", obj.Ref.Key, err)
	}
	return info(w.Attrs()), nil
}

func (c *gcsClient) Stat(ctx context.Context, ref port.ObjectRef) (*port.ObjectInfo, error) {
	attrs, err := c.object(ref).Attrs(ctx)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("gcs attrs %s: %w", ref.Key, err)
	}
	return info(attrs), nil
}

func (c *gcsClient) Remove(ctx context.Context, ref port.ObjectRef) error {
	if err := c.object(ref).Delete(ctx); err != nil && !notFound(err) {
		return fmt.Errorf("gcs delete %s: %w", ref.Key, err)
	}
	return nil
}

func (c *gcsClient) PresignGet(_ context.Context, ref port.ObjectRef, ttl time.Duration) (string, error) {
	signed, err := c.client.Bucket(ref.Bucket).SignedURL(ref.Key, &storage.SignedURLOptions{
		Scheme:          storage.SigningSchemeV4,
		Method:          http.MethodGet,
		Expires:         time.Now().Add(ttl),
		QueryParameters: url.Values{"response-content-disposition": {disposition(ref)}},
	})
	if err != nil {
		return "", fmt.Errorf("gcs sign get %s: %w", ref.Key, err)
	}
	return signed, nil
}

func (c *gcsClient) PresignPut(_ context.Context, ref port.ObjectRef, contentType string, ttl time.Duration) (string, error) {
	signed, err := c.client.Bucket(ref.Bucket).SignedURL(ref.Key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("gcs sign put %s: %w", ref.Key, err)
	}
	return signed, nil
}

func info(attrs *storage.ObjectAttrs) *port.ObjectInfo {
	if attrs == nil {
		return &port.ObjectInfo{}
	}
	return &port.ObjectInfo{Size: attrs.Size, ContentType: attrs.ContentType, ETag: attrs.Etag}
}

func disposition(ref port.ObjectRef) string {
	return mime.FormatMediaType("inline", map[string]string{"filename": ref.DownloadName()})
}

func notFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
