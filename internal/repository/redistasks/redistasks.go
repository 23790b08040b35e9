// FilePath: internal/repository/redistasks/redistasks.go
package redistasks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldwatch/fieldwatch-hub/internal/config"
	"github.com/fieldwatch/fieldwatch-hub/internal/repository"
)

const keyPrefix = "fieldwatch:task:"

// Registry mirrors issued task ids into Redis with a TTL so that
// submit-results can warn about unknown or expired task ids. It is not
// a claim store: entries expire, multiple entries may point at the same
// capture, and registry outages are tolerated by callers.
type Registry struct {
	client *redis.Client
}

func New(cfg config.RedisConfig) *Registry {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Registry{client: client}
}

func NewWithClient(client *redis.Client) *Registry {
	return &Registry{client: client}
}

func (r *Registry) Register(ctx context.Context, taskID, capturedImageID string, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+taskID, capturedImageID, ttl).Err()
}

func (r *Registry) Lookup(ctx context.Context, taskID string) (string, error) {
	val, err := r.client.Get(ctx, keyPrefix+taskID).Result()
	if err == redis.Nil {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *Registry) Close() error {
	return r.client.Close()
}
