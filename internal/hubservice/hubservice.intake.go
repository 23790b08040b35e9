// FilePath: internal/hubservice/hubservice.intake.go
package hubservice

import (
	"context"
	"fmt"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/integrations"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// ProcessCapture handles one intake request: store the raw image,
// create the pending capture row, and fire the optional relays. The
// ThingSpeak relay and the webhook are best-effort; only storage and
// database failures fail the request.
func (s *HubService) ProcessCapture(ctx context.Context, req *models.IntakeRequest) (*models.IntakeResponse, error) {
	if req.Image == "" || req.UserID == "" {
		return nil, errors.NewValidationError("Missing required fields: image and userId", nil)
	}

	raw, err := decodeImagePayload(req.Image)
	if err != nil {
		return nil, errors.NewValidationError("image is not valid base64", err)
	}

	now := time.Now().UTC()
	path := fmt.Sprintf("%s/%d-detection.jpg", req.UserID, now.UnixMilli())

	if err := s.Store.Put(ctx, s.opts.CapturesBucket, path, raw, "image/jpeg"); err != nil {
		return nil, err
	}
	imageURL := s.Store.PublicURL(s.opts.CapturesBucket, path)

	var thingSpeakURL *string
	creds := integrations.ThingSpeakCredentials{
		APIKey:    req.ThingSpeakAPIKey,
		ChannelID: req.ThingSpeakChannelID,
	}
	if creds.Configured() {
		channelURL, pushErr := s.Clients.ThingSpeak.PushCapture(ctx, creds, imageURL)
		if pushErr != nil {
			nuts.L.Warnf("[Intake] ThingSpeak relay failed for user %s: %v", req.UserID, pushErr)
		} else {
			thingSpeakURL = &channelURL
		}
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = models.JSONMap{}
	}

	capture := &models.CapturedImage{
		ID:                 nuts.NID("cap", 12),
		UserID:             req.UserID,
		ImageURL:           imageURL,
		ThingSpeakURL:      thingSpeakURL,
		DetectionTimestamp: now,
		UploadedAt:         now,
		Status:             models.StatusPending,
		Metadata:           metadata,
	}

	if err := s.Captures.Create(ctx, capture); err != nil {
		// The stored object is left behind: partial side effects are
		// not rolled back.
		return nil, err
	}

	if req.ColabWebhookURL != "" {
		payload := integrations.WebhookPayload{
			ImageURL:        imageURL,
			CapturedImageID: capture.ID,
			UserID:          req.UserID,
		}
		if notifyErr := s.Clients.Webhook.Notify(ctx, req.ColabWebhookURL, payload); notifyErr != nil {
			// The capture stays pending for the polling path to pick up.
			nuts.L.Warnf("[Intake] Webhook dispatch failed for capture %s: %v", capture.ID, notifyErr)
		} else if stErr := s.Captures.UpdateStatus(ctx, capture.ID, models.StatusProcessing); stErr != nil {
			nuts.L.Warnf("[Intake] Failed to mark capture %s as processing: %v", capture.ID, stErr)
		}
	}

	nuts.L.Infof("[Intake] Stored capture %s for user %s", capture.ID, req.UserID)
	return &models.IntakeResponse{
		Success:         true,
		CapturedImageID: capture.ID,
		ImageURL:        imageURL,
		ThingSpeakURL:   thingSpeakURL,
	}, nil
}

// ListCaptures returns a page of a user's captures for the gallery view.
func (s *HubService) ListCaptures(ctx context.Context, filters models.CaptureFilters) ([]*models.CapturedImage, error) {
	if filters.UserID == "" {
		return nil, errors.NewValidationError("Missing required field: user_id", nil)
	}
	offset, limit := normalizePagination(filters.Offset, filters.Limit)
	return s.Captures.ListByUser(ctx, filters.UserID, models.CaptureStatus(filters.Status), offset, limit)
}

// ListLabels returns a page of a user's labeled images.
func (s *HubService) ListLabels(ctx context.Context, filters models.CaptureFilters) ([]*models.LabeledImage, error) {
	if filters.UserID == "" {
		return nil, errors.NewValidationError("Missing required field: user_id", nil)
	}
	offset, limit := normalizePagination(filters.Offset, filters.Limit)
	return s.Labels.ListByUser(ctx, filters.UserID, offset, limit)
}

func normalizePagination(offset, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
