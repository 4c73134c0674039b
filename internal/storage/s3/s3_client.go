package s3

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"receiptly/internal/config"
	"receiptly/internal/domain"
	"receiptly/internal/port"
)

type s3Client struct {
	api       *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
}

// NewS3Client returns a receipt blob store on S3 or an S3-compatible endpoint.
func NewS3Client(ctx context.Context, cfg *config.S3Config) (port.ObjectStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint == "" {
			return
		}
		// MinIO needs path-style addressing.
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &s3Client{
		api:       api,
		presigner: s3.NewPresignClient(api),
		uploader:  manager.NewUploader(api),
	}, nil
}

func (c *s3Client) Put(ctx context.Context, obj port.PutObject) (*port.ObjectInfo, error) {
	in := &s3.PutObjectInput{
		Bucket:             aws.String(obj.Ref.Bucket),
		Key:                aws.String(obj.Ref.Key),
		Body:               obj.Body,
		ContentType:        aws.String(obj.ContentType),
		ContentDisposition: aws.String(inline(obj.Ref)),
	}
	if obj.Size > 0 {
		in.ContentLength = aws.Int64(obj.Size)
	}

	res, err := c.uploader.Upload(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("s3 put %s: %w", obj.Ref.Key, err)
	}
	return &port.ObjectInfo{
		Size:        obj.Size,
		ContentType: obj.ContentType,
		ETag:        aws.ToString(res.ETag),
	}, nil
}

func (c *s3Client) Stat(ctx context.Context, ref port.ObjectRef) (*port.ObjectInfo, error) {
	head, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("s3 head %s: %w", ref.Key, err)
	}
	return &port.ObjectInfo{
		Size:        aws.ToInt64(head.ContentLength),
		ContentType: aws.ToString(head.ContentType),
		ETag:        aws.ToString(head.ETag),
	}, nil
}

// Remove is idempotent; S3 does not report deletes of absent keys.
func (c *s3Client) Remove(ctx context.Context, ref port.ObjectRef) error {
	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	}); err != nil {
		return fmt.Errorf("s3 delete %s: %w", ref.Key, err)
	}
	return nil
}

func (c *s3Client) PresignGet(ctx context.Context, ref port.ObjectRef, ttl time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(ref.Bucket),
		Key:                        aws.String(ref.Key),
		ResponseContentDisposition: aws.String(inline(ref)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign get %s: %w", ref.Key, err)
	}
	return req.URL, nil
}

func (c *s3Client) PresignPut(ctx context.Context, ref port.ObjectRef, contentType string, ttl time.Duration) (string, error) {
	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ref.Bucket),
		Key:         aws.String(ref.Key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign put %s: %w", ref.Key, err)
	}
	return req.URL, nil
}

func inline(ref port.ObjectRef) string {
	return mime.FormatMediaType("inline", map[string]string{"filename": ref.DownloadName()})
}

func isMissing(err error) bool {
	var notFound *types.NotFound
	var noKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noKey)
}
