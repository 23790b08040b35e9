// FilePath: internal/hubservice/hubservice.predict.go
package hubservice

import (
	"context"
	"fmt"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// Classify relays an uploaded image to the external model endpoint and
// answers immediately; the labeled image and its rows are stored by a
// background goroutine so the caller is not held up by storage. This
// is the direct dashboard path that bypasses the intake/result flow.
func (s *HubService) Classify(ctx context.Context, userID, filename, mimeType string, image []byte) (*models.PredictResponse, error) {
	if len(image) == 0 {
		return nil, errors.NewValidationError("No image uploaded", nil)
	}

	prediction, err := s.Clients.Model.Predict(ctx, filename, mimeType, image)
	if err != nil {
		return nil, err
	}

	// Model confidence is 0..1 on the wire; rows store 0..100.
	confidence := prediction.Confidence * 100

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, storeErr := s.storeDetection(bgCtx, userID, prediction.Label, &confidence, image, "direct-predict"); storeErr != nil {
			nuts.L.Errorf("[Predict] Background storage failed for user %s: %v", userID, storeErr)
		}
	}()

	return &models.PredictResponse{
		Status:     "success",
		Animal:     prediction.Label,
		Confidence: confidence,
	}, nil
}

// SaveDetection stores a detection the dashboard classified directly,
// without a prior capture row.
func (s *HubService) SaveDetection(ctx context.Context, req *models.SaveDetectionRequest) (*models.ResultResponse, error) {
	if req.UserID == "" || req.Image == "" || req.AnimalDetected == "" {
		return nil, errors.NewValidationError(
			"Missing required fields: userId, image and animalDetected", nil)
	}
	if req.ConfidenceScore != nil && (*req.ConfidenceScore < 0 || *req.ConfidenceScore > 100) {
		return nil, errors.NewValidationError("confidenceScore must be between 0 and 100", nil)
	}

	raw, err := decodeImagePayload(req.Image)
	if err != nil {
		return nil, errors.NewValidationError("image is not valid base64", err)
	}

	label, err := s.storeDetection(ctx, req.UserID, req.AnimalDetected, req.ConfidenceScore, raw, "save-detection")
	if err != nil {
		return nil, err
	}

	return &models.ResultResponse{
		Success:         true,
		LabeledImageID:  label.ID,
		LabeledImageURL: label.LabeledImageURL,
		SMSSent:         false,
	}, nil
}

// storeDetection persists a directly classified image: the labeled
// object, a synthetic completed capture row (so every labeled row
// references a capture), and the labeled row itself.
func (s *HubService) storeDetection(ctx context.Context, userID, animal string, confidence *float64, image []byte, source string) (*models.LabeledImage, error) {
	now := time.Now().UTC()
	path := fmt.Sprintf("%s/%d-labeled-%s.jpg", userID, now.UnixMilli(), animalSlug(animal))

	if err := s.Store.Put(ctx, s.opts.LabeledBucket, path, image, "image/jpeg"); err != nil {
		return nil, err
	}
	labeledURL := s.Store.PublicURL(s.opts.LabeledBucket, path)

	capture := &models.CapturedImage{
		ID:                 nuts.NID("cap", 12),
		UserID:             userID,
		ImageURL:           labeledURL,
		DetectionTimestamp: now,
		UploadedAt:         now,
		Status:             models.StatusPending,
		Metadata:           models.JSONMap{"source": source},
	}
	if err := s.Captures.Create(ctx, capture); err != nil {
		return nil, err
	}

	label := &models.LabeledImage{
		ID:              nuts.NID("lbl", 12),
		CapturedImageID: capture.ID,
		UserID:          userID,
		LabeledImageURL: labeledURL,
		AnimalDetected:  animal,
		ConfidenceScore: confidence,
		ProcessedAt:     now,
	}
	if err := s.Labels.Create(ctx, label); err != nil {
		return nil, err
	}

	if err := s.Captures.UpdateStatus(ctx, capture.ID, models.StatusCompleted); err != nil {
		nuts.L.Warnf("[Predict] Failed to complete synthetic capture %s: %v", capture.ID, err)
	}

	nuts.L.Infof("[Predict] Stored detection %s (%s) for user %s", label.ID, animal, userID)
	return label, nil
}
