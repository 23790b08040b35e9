package hubservice

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/fieldwatch/fieldwatch-hub/internal/cleanup"
	"github.com/fieldwatch/fieldwatch-hub/internal/config"
	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/integrations"
	"github.com/fieldwatch/fieldwatch-hub/internal/repository"
)

// Clients bundles the outbound relay clients.
type Clients struct {
	ThingSpeak integrations.ThingSpeakClient
	SMS        integrations.SMSDispatcher
	Webhook    integrations.WebhookNotifier
	Model      integrations.ModelClient
}

// Options carries service-wide settings that are not dependencies.
type Options struct {
	CapturesBucket string
	LabeledBucket  string
	TaskTTL        time.Duration
	// WorkerRelay holds the server-held integration credentials used
	// by the polling-worker endpoints. The intake and result endpoints
	// take credentials per request instead.
	WorkerRelay config.IntegrationsConfig
}

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Captures repository.CapturedImageRepository
	Labels   repository.LabeledImageRepository
	Settings repository.UserSettingsRepository
	Store    repository.ObjectStore
	Tasks    repository.TaskRegistry
	Clients  Clients
	Cleanup  *cleanup.CleanupService

	opts Options
}

// New creates a new HubService instance
func New(
	captures repository.CapturedImageRepository,
	labels repository.LabeledImageRepository,
	settings repository.UserSettingsRepository,
	store repository.ObjectStore,
	tasks repository.TaskRegistry,
	clients Clients,
	opts Options,
) *HubService {
	svc := &HubService{
		Captures: captures,
		Labels:   labels,
		Settings: settings,
		Store:    store,
		Tasks:    tasks,
		Clients:  clients,
		opts:     opts,
	}
	svc.Cleanup = cleanup.New(captures, labels, settings, store,
		opts.CapturesBucket, opts.LabeledBucket)
	return svc
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Captures == nil {
		return ErrMissingDependency("captures")
	}
	if s.Labels == nil {
		return ErrMissingDependency("labels")
	}
	if s.Settings == nil {
		return ErrMissingDependency("settings")
	}
	if s.Store == nil {
		return ErrMissingDependency("store")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}

// decodeImagePayload decodes a base64 image, tolerating the data-URI
// prefix browsers produce (data:image/jpeg;base64,...).
func decodeImagePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ";base64,"); i >= 0 {
			payload = payload[i+len(";base64,"):]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
}

// animalSlug normalizes a detected class for use in an object path.
func animalSlug(animal string) string {
	slug := strings.ToLower(strings.TrimSpace(animal))
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
