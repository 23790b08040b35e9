// FilePath: pkg/hubclient/hubclient.go
// Package hubclient is a Go client for the FieldWatch hub API. It
// covers both capture flows: the server-relay path (upload, then poll
// the label gallery until the classification lands) and the direct
// path (relay an image through /predict and save the detection).
package hubclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultPollAttempts = 10
)

// Client talks to one hub instance.
type Client struct {
	http         *resty.Client
	pollInterval time.Duration
	pollAttempts int
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithPolling overrides the label polling cadence.
func WithPolling(interval time.Duration, attempts int) Option {
	return func(c *Client) {
		c.pollInterval = interval
		c.pollAttempts = attempts
	}
}

// WithUser sets the identity header echoed back by the settings
// endpoint to decide whether secret fields are returned unmasked.
func WithUser(userID string) Option {
	return func(c *Client) { c.http.SetHeader("X-FieldWatch-User", userID) }
}

// New creates a client for the hub at baseURL (without the /api/v1
// prefix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL + "/api/v1").
			SetTimeout(defaultTimeout).
			SetHeader("User-Agent", "fieldwatch-hubclient"),
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the hub's error body.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"error"`
}

// Error is a non-2xx hub response.
type Error struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("hub returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("hub returned %d", e.StatusCode)
}

func asError(resp *resty.Response) error {
	var body apiError
	_ = json.Unmarshal(resp.Body(), &body)
	return &Error{
		StatusCode: resp.StatusCode(),
		Type:       body.Type,
		Message:    body.Message,
	}
}

// CaptureUpload is one raw capture to hand to the hub.
type CaptureUpload struct {
	Image               []byte
	UserID              string
	Metadata            map[string]any
	ThingSpeakAPIKey    string
	ThingSpeakChannelID string
	ColabWebhookURL     string
}

// CaptureReceipt is the hub's answer to an upload.
type CaptureReceipt struct {
	Success         bool    `json:"success"`
	CapturedImageID string  `json:"capturedImageId"`
	ImageURL        string  `json:"imageUrl"`
	ThingSpeakURL   *string `json:"thingspeakUrl"`
}

// UploadCapture sends one image through the intake endpoint.
func (c *Client) UploadCapture(ctx context.Context, upload CaptureUpload) (*CaptureReceipt, error) {
	body := map[string]any{
		"image":  base64.StdEncoding.EncodeToString(upload.Image),
		"userId": upload.UserID,
	}
	if upload.Metadata != nil {
		body["metadata"] = upload.Metadata
	}
	if upload.ThingSpeakAPIKey != "" {
		body["thingspeakApiKey"] = upload.ThingSpeakAPIKey
	}
	if upload.ThingSpeakChannelID != "" {
		body["thingspeakChannelId"] = upload.ThingSpeakChannelID
	}
	if upload.ColabWebhookURL != "" {
		body["colabWebhookUrl"] = upload.ColabWebhookURL
	}

	var receipt CaptureReceipt
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&receipt).
		Post("/captures")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, asError(resp)
	}
	return &receipt, nil
}

// Capture is one gallery row.
type Capture struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	ImageURL      string         `json:"image_url"`
	ThingSpeakURL *string        `json:"thingspeak_url"`
	UploadedAt    time.Time      `json:"uploaded_at"`
	Status        string         `json:"status"`
	Metadata      map[string]any `json:"metadata"`
}

// Label is one classification result row.
type Label struct {
	ID              string    `json:"id"`
	CapturedImageID string    `json:"captured_image_id"`
	UserID          string    `json:"user_id"`
	LabeledImageURL string    `json:"labeled_image_url"`
	AnimalDetected  string    `json:"animal_detected"`
	ConfidenceScore *float64  `json:"confidence_score"`
	ProcessedAt     time.Time `json:"processed_at"`
	SMSSent         bool      `json:"sms_sent"`
}

// ListCaptures fetches a page of a user's captures.
func (c *Client) ListCaptures(ctx context.Context, userID, status string, offset, limit int) ([]Capture, error) {
	var captures []Capture
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", userID).
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&captures)
	if status != "" {
		req.SetQueryParam("status", status)
	}
	resp, err := req.Get("/captures")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, asError(resp)
	}
	return captures, nil
}

// ListLabels fetches a page of a user's labeled images.
func (c *Client) ListLabels(ctx context.Context, userID string, offset, limit int) ([]Label, error) {
	var labels []Label
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", userID).
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&labels).
		Get("/labels")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, asError(resp)
	}
	return labels, nil
}

// ErrNoLabel is returned by WaitForLabel when the polling budget is
// exhausted before a classification appears.
var ErrNoLabel = fmt.Errorf("no label appeared within the polling budget")

// WaitForLabel polls the label gallery until a classification for the
// given capture appears, the polling budget runs out (ErrNoLabel), or
// ctx is done. The first attempt happens immediately.
func (c *Client) WaitForLabel(ctx context.Context, userID, capturedImageID string) (*Label, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}

		labels, err := c.ListLabels(ctx, userID, 0, 50)
		if err != nil {
			return nil, err
		}
		for i := range labels {
			if labels[i].CapturedImageID == capturedImageID {
				return &labels[i], nil
			}
		}
	}
	return nil, ErrNoLabel
}

// Prediction is the direct-classification answer.
type Prediction struct {
	Status     string  `json:"status"`
	Animal     string  `json:"animal"`
	Confidence float64 `json:"confidence"`
}

// Predict relays an image through the hub to the external model and
// returns its prediction. The hub stores the detection in the
// background.
func (c *Client) Predict(ctx context.Context, userID, filename, mimeType string, image []byte) (*Prediction, error) {
	var prediction Prediction
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartFields(&resty.MultipartField{
			Param:       "image",
			FileName:    filename,
			ContentType: mimeType,
			Reader:      bytes.NewReader(image),
		}).
		SetMultipartFormData(map[string]string{"user_id": userID}).
		SetResult(&prediction).
		Post("/predict")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, asError(resp)
	}
	return &prediction, nil
}

// DetectionReceipt is the hub's answer to a saved detection.
type DetectionReceipt struct {
	Success         bool   `json:"success"`
	LabeledImageID  string `json:"labeledImageId"`
	LabeledImageURL string `json:"labeledImageUrl"`
}

// SaveDetection stores a detection classified on the caller's side.
func (c *Client) SaveDetection(ctx context.Context, userID, animal string, confidence *float64, image []byte) (*DetectionReceipt, error) {
	body := map[string]any{
		"userId":         userID,
		"image":          base64.StdEncoding.EncodeToString(image),
		"animalDetected": animal,
	}
	if confidence != nil {
		body["confidenceScore"] = *confidence
	}

	var receipt DetectionReceipt
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&receipt).
		Post("/save-detection")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, asError(resp)
	}
	return &receipt, nil
}

// Settings is a user's integration settings row as returned by the
// hub. Secret fields come back blank unless the client identifies as
// the owner (WithUser).
type Settings struct {
	UserID              string `json:"user_id"`
	ThingSpeakAPIKey    string `json:"thingspeak_api_key"`
	ThingSpeakChannelID string `json:"thingspeak_channel_id"`
	ColabWebhookURL     string `json:"colab_webhook_url"`
	SMSAPIKey           string `json:"sms_api_key"`
	SMSPhone            string `json:"sms_phone"`
	SMSService          string `json:"sms_service"`
	TwilioAccountSID    string `json:"twilio_account_sid"`
	TwilioPhone         string `json:"twilio_phone"`
}

// GetSettings reads a user's settings row.
func (c *Client) GetSettings(ctx context.Context, userID string) (*Settings, error) {
	var settings Settings
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", userID).
		SetResult(&settings).
		Get("/settings")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, asError(resp)
	}
	return &settings, nil
}

// PutSettings creates or replaces a user's settings row.
func (c *Client) PutSettings(ctx context.Context, settings Settings) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(settings).
		Put("/settings")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return asError(resp)
	}
	return nil
}

// Health checks hub liveness.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return asError(resp)
	}
	return nil
}
