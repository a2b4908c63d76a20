package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Demo bucket used when no attachment-store credentials are configured.
// Mirrors the hosted sandbox the frontend is wired against.
const (
	demoRegion    = "ap-southeast-1"
	demoBucket    = "abis-demo-attachments"
	demoAccessKey = "AKIAABISDEMO00000000"
	demoSecretKey = "abisdemo/notasecret/notasecret/0000000"
)

// UploadResult is what callers keep after handing a binary to the store:
// a stable public URL plus the remote identifier needed to manage it later.
type UploadResult struct {
	URL string
	Key string
}

// Client is the attachment store. Uploaded binaries are addressed by a
// generated key under a caller-chosen folder; the original bytes are not
// retained anywhere else.
type Client interface {
	Upload(ctx context.Context, folder, originalName, contentType string, body io.Reader) (*UploadResult, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type s3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	region   string
}

// NewClient builds an S3-backed attachment store. Unset options fall back to
// the demo bucket so local development works without any AWS setup.
func NewClient(ctx context.Context, opts Options) (Client, error) {
	if opts.Region == "" {
		opts.Region = demoRegion
	}
	if opts.Bucket == "" {
		opts.Bucket = demoBucket
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		opts.AccessKey = demoAccessKey
		opts.SecretKey = demoSecretKey
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &s3Client{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		region:   opts.Region,
	}, nil
}

func (c *s3Client) Upload(ctx context.Context, folder, originalName, contentType string, body io.Reader) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	out, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", originalName, err)
	}

	location := out.Location
	if location == "" {
		location = c.objectURL(key)
	}
	return &UploadResult{URL: location, Key: key}, nil
}

func (c *s3Client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (c *s3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (c *s3Client) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

// IsStoreURL reports whether a stored reference points at the attachment
// store rather than a locally served path.
func IsStoreURL(raw string) bool {
	return strings.Contains(raw, ".amazonaws.com/")
}

// AsAttachmentURL appends a download hint so browsers save the object instead
// of rendering it inline. Non-store URLs are returned unchanged.
func AsAttachmentURL(raw, filename string) string {
	if !IsStoreURL(raw) {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	disposition := "attachment"
	if filename != "" {
		disposition = fmt.Sprintf("attachment; filename=%q", filename)
	}
	q.Set("response-content-disposition", disposition)
	u.RawQuery = q.Encode()
	return u.String()
}
