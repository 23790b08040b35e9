// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fieldwatch/fieldwatch-hub/internal/database"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidTransition indicates a disallowed status change
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CapturedImageRepository defines the interface for capture rows
type CapturedImageRepository interface {
	database.Repository
	Create(ctx context.Context, capture *models.CapturedImage) error
	Get(ctx context.Context, id string) (*models.CapturedImage, error)
	// GetOldestPending returns the single oldest pending capture or
	// ErrNotFound. The row is not claimed or locked; repeated calls
	// return the same row until its status changes.
	GetOldestPending(ctx context.Context) (*models.CapturedImage, error)
	// UpdateStatus applies a guarded transition. Disallowed
	// transitions (per models.CaptureStatus.CanTransitionTo) leave the
	// row untouched and return ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, status models.CaptureStatus) error
	// MarkFailed moves the row to failed and records the reason under
	// metadata.error.
	MarkFailed(ctx context.Context, id string, reason string) error
	ListByUser(ctx context.Context, userID string, status models.CaptureStatus, offset, limit int) ([]*models.CapturedImage, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// LabeledImageRepository defines the interface for classification rows
type LabeledImageRepository interface {
	database.Repository
	Create(ctx context.Context, label *models.LabeledImage) error
	Get(ctx context.Context, id string) (*models.LabeledImage, error)
	GetByCapturedImage(ctx context.Context, capturedImageID string) (*models.LabeledImage, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.LabeledImage, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// UserSettingsRepository defines the interface for per-account
// integration credentials. At most one row exists per user.
type UserSettingsRepository interface {
	database.Repository
	Upsert(ctx context.Context, settings *models.UserSettings) error
	GetByUser(ctx context.Context, userID string) (*models.UserSettings, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// ObjectStore defines the interface for the image buckets.
type ObjectStore interface {
	// Put stores data under path in bucket without overwriting; an
	// existing object at the same path is an error.
	Put(ctx context.Context, bucket, path string, data []byte, contentType string) error
	// PublicURL resolves the externally reachable URL of an object.
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket, path string) error
	ListByPrefix(ctx context.Context, bucket, prefix string) ([]string, error)
	EnsureBuckets(ctx context.Context) error
}

// TaskRegistry records ephemeral task identities handed to polling
// workers. It is best-effort observability, not a claim mechanism:
// registry failures never affect the poll/submit flow.
type TaskRegistry interface {
	Register(ctx context.Context, taskID, capturedImageID string, ttl time.Duration) error
	Lookup(ctx context.Context, taskID string) (string, error)
}
