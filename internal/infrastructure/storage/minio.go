package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"idservices-admin/internal/config"
)

// MinIOStorage keeps export files in a MinIO bucket.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage connects and makes sure the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		// exports are private, links are presigned
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Upload stores data under key and returns the object's plain URL.
// key: statistics/isbn-registry/2024/monthly-2024-01-01-2024-01-31_<id>.xlsx
func (s *MinIOStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType:        contentType,
			ContentDisposition: "attachment",
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}

	return s.client.EndpointURL().JoinPath(s.bucket, key).String(), nil
}

// PresignedURL returns a time-limited download link for key.
func (s *MinIOStorage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return u.String(), nil
}

// Download reads a whole object.
func (s *MinIOStorage) Download(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// DeleteOlderThan removes objects under prefix last modified before cutoff.
func (s *MinIOStorage) DeleteOlderThan(ctx context.Context, prefix string, cutoff time.Time) (int, error) {
	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	removed := 0
	for object := range objectsCh {
		if object.Err != nil {
			return removed, fmt.Errorf("error listing objects: %w", object.Err)
		}
		if !object.LastModified.Before(cutoff) {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("failed to delete object %s: %w", object.Key, err)
		}
		removed++
	}
	return removed, nil
}

// HealthCheck verifies the bucket is reachable.
func (s *MinIOStorage) HealthCheck(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("minio health check failed: %w", err)
	}
	return nil
}
