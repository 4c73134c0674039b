package port

import (
	"context"
	"io"
	"path"
	"time"
)

// ObjectRef locates a receipt PDF in the blob store.
type ObjectRef struct {
	Bucket string
	Key    string
}

// DownloadName is the file name offered to browsers fetching the object.
func (r ObjectRef) DownloadName() string {
	return path.Base(r.Key)
}

// PutObject is a PDF body being written to the blob store.
type PutObject struct {
	Ref         ObjectRef
	Body        io.Reader
	ContentType string
	Size        int64
}

// ObjectInfo describes a stored object. Stat reports domain.ErrNotFound when
// the key has never been written.
type ObjectInfo struct {
	Size        int64
	ContentType string
	ETag        string
}

// ObjectStorage is the blob side of the document store. Presigned GETs serve
// the PDF inline under its download name; presigned PUTs pin the content type.
type ObjectStorage interface {
	Put(ctx context.Context, obj PutObject) (*ObjectInfo, error)
	Stat(ctx context.Context, ref ObjectRef) (*ObjectInfo, error)
	Remove(ctx context.Context, ref ObjectRef) error
	PresignGet(ctx context.Context, ref ObjectRef, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, ref ObjectRef, contentType string, ttl time.Duration) (string, error)
}
