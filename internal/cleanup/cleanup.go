package cleanup

import (
	"context"
	"fmt"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/repository"
)

// CleanupService coordinates deletion of everything a user owns:
// stored objects in both buckets, labeled rows, capture rows, and the
// settings row. Deletion order follows the foreign keys.
type CleanupService struct {
	captures repository.CapturedImageRepository
	labels   repository.LabeledImageRepository
	settings repository.UserSettingsRepository
	store    repository.ObjectStore
	buckets  []string
	events   *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	captures repository.CapturedImageRepository,
	labels repository.LabeledImageRepository,
	settings repository.UserSettingsRepository,
	store repository.ObjectStore,
	buckets ...string,
) *CleanupService {
	return &CleanupService{
		captures: captures,
		labels:   labels,
		settings: settings,
		store:    store,
		buckets:  buckets,
		events:   nuts.NewEventEmitter(),
	}
}

// PurgeUser deletes a user's data. Object removals run first; a
// failing removal aborts the purge so the database rows keep pointing
// at still-existing objects.
func (s *CleanupService) PurgeUser(ctx context.Context, userID string) error {
	prefix := userID + "/"

	for _, bucket := range s.buckets {
		paths, err := s.store.ListByPrefix(ctx, bucket, prefix)
		if err != nil {
			return fmt.Errorf("failed to list objects in %s: %w", bucket, err)
		}
		for _, path := range paths {
			if err := s.store.Remove(ctx, bucket, path); err != nil {
				return fmt.Errorf("failed to remove %s/%s: %w", bucket, path, err)
			}
		}
		if len(paths) > 0 {
			s.events.Emit("objects.deleted", fmt.Sprintf("%s:%d", bucket, len(paths)))
		}
	}

	// Labeled rows reference captures, so they go first.
	labelCount, err := s.labels.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete labeled images: %w", err)
	}
	s.events.Emit("labels.deleted", userID)

	captureCount, err := s.captures.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete captured images: %w", err)
	}
	s.events.Emit("captures.deleted", userID)

	if err := s.settings.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user settings: %w", err)
	}
	s.events.Emit("settings.deleted", userID)

	nuts.L.Infof("[Cleanup] Purged user %s: %d captures, %d labels", userID, captureCount, labelCount)
	s.events.Emit("user.purged", userID)
	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "cleanup_handler", func(id string) {
		handler(id)
	})
}
