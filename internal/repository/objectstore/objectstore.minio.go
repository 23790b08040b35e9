// FilePath: internal/repository/objectstore/objectstore.minio.go
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/config"
	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
)

// minioAPI is the subset of the minio client used by the store,
// extracted so tests can substitute a mock.
type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader *bytes.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

type minioClient struct {
	client *minio.Client
}

func (c *minioClient) PutObject(ctx context.Context, bucket, object string, reader *bytes.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return c.client.PutObject(ctx, bucket, object, reader, size, opts)
}

func (c *minioClient) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return c.client.StatObject(ctx, bucket, object, opts)
}

func (c *minioClient) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	return c.client.RemoveObject(ctx, bucket, object, opts)
}

func (c *minioClient) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return c.client.ListObjects(ctx, bucket, opts)
}

func (c *minioClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return c.client.BucketExists(ctx, bucket)
}

func (c *minioClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return c.client.MakeBucket(ctx, bucket, opts)
}

// MinioStore implements repository.ObjectStore against an
// S3-compatible backend holding the two image buckets.
type MinioStore struct {
	api           minioAPI
	publicBaseURL string
	buckets       []string
}

// NewMinioStore creates a new object store client.
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	nuts.L.Infof("[ObjectStore] Connected to %s", cfg.Endpoint)
	return &MinioStore{
		api:           &minioClient{client: client},
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		buckets:       []string{cfg.CapturesBucket, cfg.LabeledBucket},
	}, nil
}

// NewMinioStoreWithAPI wires a custom API implementation; used by tests.
func NewMinioStoreWithAPI(api minioAPI, publicBaseURL string, buckets ...string) *MinioStore {
	return &MinioStore{
		api:           api,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		buckets:       buckets,
	}
}

// Put stores data under path. An existing object at the same path is
// rejected; capture filenames embed an epoch-millisecond timestamp, so
// a collision means a duplicate upload.
func (s *MinioStore) Put(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if _, err := s.api.StatObject(ctx, bucket, path, minio.StatObjectOptions{}); err == nil {
		return errors.NewStorageError(fmt.Sprintf("object already exists: %s/%s", bucket, path), nil)
	}

	_, err := s.api.PutObject(ctx, bucket, path, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.NewStorageError("failed to store object", err)
	}

	nuts.L.Infof("[ObjectStore] Stored %s/%s (%d bytes)", bucket, path, len(data))
	return nil
}

// PublicURL resolves the externally reachable URL of a stored object.
func (s *MinioStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, bucket, path)
}

func (s *MinioStore) Remove(ctx context.Context, bucket, path string) error {
	if err := s.api.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return errors.NewStorageError("failed to remove object", err)
	}
	return nil
}

func (s *MinioStore) ListByPrefix(ctx context.Context, bucket, prefix string) ([]string, error) {
	var paths []string

	objectCh := s.api.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, errors.NewStorageError("failed to list objects", object.Err)
		}
		paths = append(paths, object.Key)
	}
	return paths, nil
}

// EnsureBuckets creates the image buckets if they do not exist yet.
func (s *MinioStore) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range s.buckets {
		exists, err := s.api.BucketExists(ctx, bucket)
		if err != nil {
			return errors.NewStorageError("failed to check bucket", err)
		}
		if exists {
			continue
		}
		if err := s.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.NewStorageError("failed to create bucket", err)
		}
		nuts.L.Infof("[ObjectStore] Created bucket %s", bucket)
	}
	return nil
}
