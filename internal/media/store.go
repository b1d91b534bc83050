// Package media stores uploaded images (card covers, board backgrounds) in
// S3-compatible object storage.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"taskboard/api/internal/util"
)

// Store wraps a minio client and a single bucket.
type Store struct {
	client *minio.Client
	bucket string
	public string
}

// NewStore connects to the object store and ensures the bucket exists.
func NewStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return &Store{
		client: client,
		bucket: bucket,
		public: fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket),
	}, nil
}

// Upload stores the content under a generated object name and returns the
// public URL to put in a card's cover or a board's background field.
func (s *Store) Upload(ctx context.Context, r io.Reader, size int64, contentType, filename string) (string, error) {
	object := util.NewID("med")
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		object += ext
	}

	_, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", object, err)
	}

	return s.public + "/" + object, nil
}

// Delete removes an object by the URL Upload returned. Unknown URLs are a
// no-op so callers can pass whatever is in the cover/background field.
func (s *Store) Delete(ctx context.Context, url string) error {
	prefix := s.public + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	object := strings.TrimPrefix(url, prefix)
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", object, err)
	}
	return nil
}
