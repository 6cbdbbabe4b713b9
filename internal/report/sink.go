package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FileSink writes the rendered document to a local file, creating parent
// directories as needed
type FileSink struct {
	Path     string
	Renderer Renderer
}

func (s *FileSink) Write(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Path == "" {
		return "", ErrEmptyOutput
	}
	renderer := s.Renderer
	if renderer == nil {
		renderer = RendererFor(s.Path)
	}
	data, err := renderer.Render(doc)
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", s.Path, err)
	}
	return s.Path, nil
}

// S3Config addresses an S3-compatible object store
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ObjectStoreSink uploads the rendered document to an S3-compatible bucket
type ObjectStoreSink struct {
	client   *minio.Client
	bucket   string
	region   string
	key      string
	renderer Renderer
	initOnce sync.Once
	initErr  error
}

// NewObjectStoreSink creates a sink writing to key in cfg.Bucket
func NewObjectStoreSink(cfg S3Config, key string, renderer Renderer) (*ObjectStoreSink, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return nil, fmt.Errorf("s3 object key is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	if renderer == nil {
		renderer = RendererFor(key)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &ObjectStoreSink{
		client:   client,
		bucket:   bucket,
		region:   region,
		key:      key,
		renderer: renderer,
	}, nil
}

// Location returns the s3:// URL the sink writes to
func (s *ObjectStoreSink) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *ObjectStoreSink) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *ObjectStoreSink) Write(ctx context.Context, doc Document) (string, error) {
	data, err := s.renderer.Render(doc)
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: s.renderer.ContentType(),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", s.Location(), err)
	}
	return s.Location(), nil
}
