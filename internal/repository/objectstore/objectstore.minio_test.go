package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinio struct {
	mu      sync.Mutex
	objects map[string][]byte
	buckets map[string]bool
	putErr  error
}

func newFakeMinio(buckets ...string) *fakeMinio {
	f := &fakeMinio{
		objects: map[string][]byte{},
		buckets: map[string]bool{},
	}
	for _, b := range buckets {
		f.buckets[b] = true
	}
	return f
}

func (f *fakeMinio) key(bucket, object string) string { return bucket + "/" + object }

func (f *fakeMinio) PutObject(ctx context.Context, bucket, object string, reader *bytes.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data := make([]byte, size)
	if _, err := reader.Read(data); err != nil && size > 0 {
		return minio.UploadInfo{}, err
	}
	f.objects[f.key(bucket, object)] = data
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func (f *fakeMinio) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[f.key(bucket, object)]; ok {
		return minio.ObjectInfo{Key: object}, nil
	}
	return minio.ObjectInfo{}, fmt.Errorf("object not found")
}

func (f *fakeMinio) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, f.key(bucket, object))
	return nil
}

func (f *fakeMinio) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		f.mu.Lock()
		defer f.mu.Unlock()
		for key := range f.objects {
			if strings.HasPrefix(key, bucket+"/"+opts.Prefix) {
				ch <- minio.ObjectInfo{Key: strings.TrimPrefix(key, bucket+"/")}
			}
		}
	}()
	return ch
}

func (f *fakeMinio) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[bucket], nil
}

func (f *fakeMinio) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket] = true
	return nil
}

func TestPut_StoresObject(t *testing.T) {
	api := newFakeMinio("captured-images")
	store := NewMinioStoreWithAPI(api, "https://storage.test", "captured-images")

	err := store.Put(context.Background(), "captured-images", "u1/1-detection.jpg", []byte("jpeg"), "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), api.objects["captured-images/u1/1-detection.jpg"])
}

func TestPut_RejectsExistingObject(t *testing.T) {
	api := newFakeMinio("captured-images")
	store := NewMinioStoreWithAPI(api, "https://storage.test", "captured-images")

	require.NoError(t, store.Put(context.Background(), "captured-images", "u1/1-detection.jpg", []byte("jpeg"), "image/jpeg"))
	err := store.Put(context.Background(), "captured-images", "u1/1-detection.jpg", []byte("other"), "image/jpeg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	// The original object is untouched.
	assert.Equal(t, []byte("jpeg"), api.objects["captured-images/u1/1-detection.jpg"])
}

func TestPublicURL(t *testing.T) {
	store := NewMinioStoreWithAPI(newFakeMinio(), "https://storage.test/", "captured-images")

	url := store.PublicURL("captured-images", "u1/1-detection.jpg")

	assert.Equal(t, "https://storage.test/captured-images/u1/1-detection.jpg", url)
}

func TestListByPrefix(t *testing.T) {
	api := newFakeMinio("captured-images")
	store := NewMinioStoreWithAPI(api, "https://storage.test", "captured-images")

	require.NoError(t, store.Put(context.Background(), "captured-images", "u1/1-detection.jpg", []byte("a"), "image/jpeg"))
	require.NoError(t, store.Put(context.Background(), "captured-images", "u1/2-detection.jpg", []byte("b"), "image/jpeg"))
	require.NoError(t, store.Put(context.Background(), "captured-images", "u2/3-detection.jpg", []byte("c"), "image/jpeg"))

	paths, err := store.ListByPrefix(context.Background(), "captured-images", "u1/")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1/1-detection.jpg", "u1/2-detection.jpg"}, paths)
}

func TestRemove(t *testing.T) {
	api := newFakeMinio("captured-images")
	store := NewMinioStoreWithAPI(api, "https://storage.test", "captured-images")

	require.NoError(t, store.Put(context.Background(), "captured-images", "u1/1-detection.jpg", []byte("a"), "image/jpeg"))
	require.NoError(t, store.Remove(context.Background(), "captured-images", "u1/1-detection.jpg"))

	assert.Empty(t, api.objects)
}

func TestEnsureBuckets_CreatesMissing(t *testing.T) {
	api := newFakeMinio("captured-images")
	store := NewMinioStoreWithAPI(api, "https://storage.test", "captured-images", "labeled-images")

	require.NoError(t, store.EnsureBuckets(context.Background()))

	assert.True(t, api.buckets["captured-images"])
	assert.True(t, api.buckets["labeled-images"])
}
