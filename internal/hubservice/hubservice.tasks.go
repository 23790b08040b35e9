// FilePath: internal/hubservice/hubservice.tasks.go
package hubservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// NextPendingTask synthesizes a task from the single oldest pending
// capture. The poll has no side effect on the row: there is no claim
// step, so two workers polling before a submit receive the same
// underlying capture (under fresh task ids). A nil task means nothing
// is pending.
func (s *HubService) NextPendingTask(ctx context.Context) (*models.Task, error) {
	capture, err := s.Captures.GetOldestPending(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	task := &models.Task{
		ID:              uuid.NewString(),
		CapturedImageID: capture.ID,
		UserID:          capture.UserID,
		ImageURL:        capture.ImageURL,
	}

	// Mirror the issued id into the registry so submit-results can
	// warn about stale ids. Registry failures are tolerated.
	if s.Tasks != nil {
		if regErr := s.Tasks.Register(ctx, task.ID, capture.ID, s.opts.TaskTTL); regErr != nil {
			nuts.L.Warnf("[Tasks] Failed to register task %s: %v", task.ID, regErr)
		}
	}

	return task, nil
}

// CompleteTask records the outcome a polling worker reports. A
// successful classification runs the same storage+insert path as the
// result endpoint, with the server-held relay credentials. A failure
// moves the capture to failed and stores the error text in its
// metadata.
func (s *HubService) CompleteTask(ctx context.Context, req *models.SubmitResultsRequest) (*models.SubmitResultsResponse, error) {
	if req.CapturedImageID == "" || req.UserID == "" {
		return nil, errors.NewValidationError(
			"Missing required fields: captured_image_id and user_id", nil)
	}

	if s.Tasks != nil && req.TaskID != "" {
		mapped, lookupErr := s.Tasks.Lookup(ctx, req.TaskID)
		switch {
		case lookupErr != nil:
			nuts.L.Warnf("[Tasks] Unknown or expired task id %s", req.TaskID)
		case mapped != req.CapturedImageID:
			nuts.L.Warnf("[Tasks] Task %s was issued for capture %s, worker reported %s",
				req.TaskID, mapped, req.CapturedImageID)
		}
	}

	if !req.Success {
		reason := req.Error
		if reason == "" {
			reason = "classification failed"
		}
		if err := s.Captures.MarkFailed(ctx, req.CapturedImageID, reason); err != nil {
			return nil, err
		}
		nuts.L.Infof("[Tasks] Capture %s marked as failed: %s", req.CapturedImageID, reason)
		return &models.SubmitResultsResponse{
			Success: true,
			Message: "capture marked as failed",
		}, nil
	}

	if req.AnimalDetected == "" || req.LabeledImageBase64 == "" {
		return nil, errors.NewValidationError(
			"Missing required fields: animal_detected and labeled_image_base64", nil)
	}

	relay := s.opts.WorkerRelay
	result, err := s.SubmitClassification(ctx, &models.ResultRequest{
		CapturedImageID:     req.CapturedImageID,
		UserID:              req.UserID,
		LabeledImage:        req.LabeledImageBase64,
		AnimalDetected:      req.AnimalDetected,
		ConfidenceScore:     req.ConfidenceScore,
		ColabNotebookID:     req.ColabNotebookID,
		ThingSpeakAPIKey:    relay.ThingSpeakAPIKey,
		ThingSpeakChannelID: relay.ThingSpeakChannelID,
		SMSAPIKey:           relay.SMSAPIKey,
		SMSPhone:            relay.SMSPhone,
		SMSService:          relay.SMSService,
		TwilioAccountSID:    relay.TwilioAccountSID,
		TwilioPhone:         relay.TwilioPhone,
	})
	if err != nil {
		return nil, err
	}

	return &models.SubmitResultsResponse{
		Success: true,
		Message: fmt.Sprintf("result recorded as %s", result.LabeledImageID),
	}, nil
}
