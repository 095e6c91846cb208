// Package storage archives delivered passages and audio in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"telegram-vocab-reader/internal/config"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/infra/metrics"
)

var _ adapter.ArtifactStore = (*MinioStore)(nil)

type MinioStore struct {
	client *minio.Client
	bucket string
	host   string
}

// NewMinioStore connects and creates the bucket when it is missing.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, host: fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)}, nil
}

// Put uploads data under key and returns the object URL.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"uploaded-at": time.Now().UTC().Format(time.RFC3339)},
	})
	if err != nil {
		metrics.IncArchiveUpload("error")
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	metrics.IncArchiveUpload("ok")
	return s.objectURL(key), nil
}

func (s *MinioStore) objectURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s/%s/%s", s.host, s.bucket, strings.Join(parts, "/"))
}

// ArtifactKey lays objects out as <chat>/<yyyy-mm-dd>/<generation>/<file>.
func ArtifactKey(chatID int64, generationID string, at time.Time, file string) string {
	return path.Join(fmt.Sprint(chatID), at.UTC().Format("2006-01-02"), generationID, file)
}

// NoopStore drops artifacts; used when archiving is not configured.
type NoopStore struct{}

func (NoopStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", nil
}
