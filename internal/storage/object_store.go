package storage

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// ObjectStore is the thin capability surface the coordinator needs from the
// object store. No business logic lives behind it.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error)
}

// MinioStore implements ObjectStore over two MinIO clients: the internal one
// for server-side writes and deletes, the public one for presigned URLs that
// must resolve outside the deployment. Credentials never leave the clients.
type MinioStore struct {
	internal *minio.Client
	public   *minio.Client
	bucket   string
}

// NewMinioStore creates a MinioStore over the given clients and bucket.
func NewMinioStore(internal, public *minio.Client, bucket string) *MinioStore {
	return &MinioStore{
		internal: internal,
		public:   public,
		bucket:   bucket,
	}
}

// Put stores an object under key.
func (s *MinioStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if key == "" {
		return errors.New("object key must not be empty")
	}
	_, err := s.internal.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Remove deletes the object under key.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	return s.internal.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// PresignedGet returns a time-limited URL granting read access to the object
// under key without exposing storage credentials.
func (s *MinioStore) PresignedGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error) {
	if key == "" {
		return nil, errors.New("object key must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("presign ttl must be greater than 0")
	}
	return s.public.PresignedGetObject(ctx, s.bucket, key, ttl, nil)
}
