package hubservice

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fieldwatch/fieldwatch-hub/internal/database"
	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/integrations"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
	"github.com/fieldwatch/fieldwatch-hub/internal/repository"
)

// In-memory fakes for the repository and relay interfaces. They mirror
// the semantics of the real implementations closely enough for the
// service tests: guarded status transitions, non-overwriting storage,
// and value-or-error relay outcomes.

type memCaptures struct {
	mu         sync.Mutex
	rows       map[string]*models.CapturedImage
	failCreate error
}

func newMemCaptures() *memCaptures {
	return &memCaptures{rows: map[string]*models.CapturedImage{}}
}

func (m *memCaptures) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (m *memCaptures) Create(ctx context.Context, capture *models.CapturedImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	cp := *capture
	m.rows[capture.ID] = &cp
	return nil
}

func (m *memCaptures) Get(ctx context.Context, id string) (*models.CapturedImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, errors.NewNotFoundError("captured image not found", nil)
	}
	cp := *row
	return &cp, nil
}

func (m *memCaptures) GetOldestPending(ctx context.Context) (*models.CapturedImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*models.CapturedImage
	for _, row := range m.rows {
		if row.Status == models.StatusPending {
			pending = append(pending, row)
		}
	}
	if len(pending) == 0 {
		return nil, errors.NewNotFoundError("no pending captures", nil)
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].UploadedAt.Equal(pending[j].UploadedAt) {
			return pending[i].UploadedAt.Before(pending[j].UploadedAt)
		}
		return pending[i].ID < pending[j].ID
	})
	cp := *pending[0]
	return &cp, nil
}

func (m *memCaptures) UpdateStatus(ctx context.Context, id string, status models.CaptureStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return errors.NewNotFoundError("captured image not found", nil)
	}
	if !row.Status.CanTransitionTo(status) {
		return errors.NewDatabaseError("capture status transition not allowed", repository.ErrInvalidTransition)
	}
	row.Status = status
	return nil
}

func (m *memCaptures) MarkFailed(ctx context.Context, id string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return errors.NewNotFoundError("captured image not found", nil)
	}
	if row.Status.IsTerminal() {
		return errors.NewDatabaseError("capture already in a terminal state", repository.ErrInvalidTransition)
	}
	row.Status = models.StatusFailed
	if row.Metadata == nil {
		row.Metadata = models.JSONMap{}
	}
	row.Metadata["error"] = reason
	return nil
}

func (m *memCaptures) ListByUser(ctx context.Context, userID string, status models.CaptureStatus, offset, limit int) ([]*models.CapturedImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CapturedImage
	for _, row := range m.rows {
		if row.UserID != userID {
			continue
		}
		if status != "" && row.Status != status {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCaptures) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

type memLabels struct {
	mu         sync.Mutex
	rows       map[string]*models.LabeledImage
	failCreate error
}

func newMemLabels() *memLabels {
	return &memLabels{rows: map[string]*models.LabeledImage{}}
}

func (m *memLabels) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (m *memLabels) Create(ctx context.Context, label *models.LabeledImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	cp := *label
	m.rows[label.ID] = &cp
	return nil
}

func (m *memLabels) Get(ctx context.Context, id string) (*models.LabeledImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, errors.NewNotFoundError("labeled image not found", nil)
	}
	cp := *row
	return &cp, nil
}

func (m *memLabels) GetByCapturedImage(ctx context.Context, capturedImageID string) (*models.LabeledImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.CapturedImageID == capturedImageID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, errors.NewNotFoundError("labeled image not found", nil)
}

func (m *memLabels) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.LabeledImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LabeledImage
	for _, row := range m.rows {
		if row.UserID == userID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memLabels) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

type memSettings struct {
	mu   sync.Mutex
	rows map[string]*models.UserSettings
}

func newMemSettings() *memSettings {
	return &memSettings{rows: map[string]*models.UserSettings{}}
}

func (m *memSettings) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (m *memSettings) Upsert(ctx context.Context, settings *models.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *settings
	m.rows[settings.UserID] = &cp
	return nil
}

func (m *memSettings) GetByUser(ctx context.Context, userID string) (*models.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	if !ok {
		return nil, errors.NewNotFoundError("user settings not found", nil)
	}
	cp := *row
	return &cp, nil
}

func (m *memSettings) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID)
	return nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) key(bucket, path string) string {
	return bucket + "/" + path
}

func (m *memStore) Put(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	key := m.key(bucket, path)
	if _, exists := m.objects[key]; exists {
		return errors.NewStorageError(fmt.Sprintf("object already exists: %s", key), nil)
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("https://storage.test/%s/%s", bucket, path)
}

func (m *memStore) Remove(ctx context.Context, bucket, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, m.key(bucket, path))
	return nil
}

func (m *memStore) ListByPrefix(ctx context.Context, bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	for key := range m.objects {
		if strings.HasPrefix(key, bucket+"/"+prefix) {
			paths = append(paths, strings.TrimPrefix(key, bucket+"/"))
		}
	}
	return paths, nil
}

func (m *memStore) EnsureBuckets(ctx context.Context) error {
	return nil
}

// paths returns the stored object keys in bucket.
func (m *memStore) paths(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for key := range m.objects {
		if strings.HasPrefix(key, bucket+"/") {
			out = append(out, strings.TrimPrefix(key, bucket+"/"))
		}
	}
	return out
}

type memRegistry struct {
	mu      sync.Mutex
	entries map[string]string
	failReg error
}

func newMemRegistry() *memRegistry {
	return &memRegistry{entries: map[string]string{}}
}

func (m *memRegistry) Register(ctx context.Context, taskID, capturedImageID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReg != nil {
		return m.failReg
	}
	m.entries[taskID] = capturedImageID
	return nil
}

func (m *memRegistry) Lookup(ctx context.Context, taskID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.entries[taskID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return id, nil
}

type fakeThingSpeak struct {
	mu      sync.Mutex
	err     error
	pushed  []string
	animals []string
}

func (f *fakeThingSpeak) PushCapture(ctx context.Context, creds integrations.ThingSpeakCredentials, imageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.pushed = append(f.pushed, imageURL)
	return "https://thingspeak.com/channels/" + creds.ChannelID, nil
}

func (f *fakeThingSpeak) PushResult(ctx context.Context, creds integrations.ThingSpeakCredentials, imageURL, animal string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.pushed = append(f.pushed, imageURL)
	f.animals = append(f.animals, animal)
	return "https://thingspeak.com/channels/" + creds.ChannelID, nil
}

type fakeSMS struct {
	mu   sync.Mutex
	err  error
	sent []integrations.SMSRequest
}

func (f *fakeSMS) Send(ctx context.Context, req integrations.SMSRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

type webhookCall struct {
	url     string
	payload integrations.WebhookPayload
}

type fakeWebhook struct {
	mu    sync.Mutex
	err   error
	calls []webhookCall
}

func (f *fakeWebhook) Notify(ctx context.Context, url string, payload integrations.WebhookPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, webhookCall{url: url, payload: payload})
	return nil
}

type fakeModel struct {
	prediction *integrations.Prediction
	err        error
}

func (f *fakeModel) Predict(ctx context.Context, filename, mimeType string, image []byte) (*integrations.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prediction, nil
}

// fixtures bundles the fakes behind a HubService under test.
type fixtures struct {
	captures   *memCaptures
	labels     *memLabels
	settings   *memSettings
	store      *memStore
	registry   *memRegistry
	thingSpeak *fakeThingSpeak
	sms        *fakeSMS
	webhook    *fakeWebhook
	model      *fakeModel
}

func newTestService() (*HubService, *fixtures) {
	f := &fixtures{
		captures:   newMemCaptures(),
		labels:     newMemLabels(),
		settings:   newMemSettings(),
		store:      newMemStore(),
		registry:   newMemRegistry(),
		thingSpeak: &fakeThingSpeak{},
		sms:        &fakeSMS{},
		webhook:    &fakeWebhook{},
		model:      &fakeModel{prediction: &integrations.Prediction{Label: "Elephant", Confidence: 0.87}},
	}

	svc := New(f.captures, f.labels, f.settings, f.store, f.registry, Clients{
		ThingSpeak: f.thingSpeak,
		SMS:        f.sms,
		Webhook:    f.webhook,
		Model:      f.model,
	}, Options{
		CapturesBucket: "captured-images",
		LabeledBucket:  "labeled-images",
		TaskTTL:        time.Minute,
	})
	return svc, f
}
