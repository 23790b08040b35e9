// FilePath: internal/hubservice/hubservice.result.go
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

// SubmitClassification records one classification result: store the
// labeled image, fire the optional ThingSpeak and SMS relays, insert
// the labeled row, and complete the originating capture. Relay
// failures degrade to null/false response fields; the SMS error is
// surfaced in the response but never fails the request.
func (s *HubService) SubmitClassification(ctx context.Context, req *models.ResultRequest) (*models.ResultResponse, error) {
	if req.CapturedImageID == "" || req.UserID == "" || req.LabeledImage == "" || req.AnimalDetected == "" {
		return nil, errors.NewValidationError(
			"Missing required fields: capturedImageId, userId, labeledImage and animalDetected", nil)
	}
	if req.ConfidenceScore != nil && (*req.ConfidenceScore < 0 || *req.ConfidenceScore > 100) {
		return nil, errors.NewValidationError("confidenceScore must be between 0 and 100", nil)
	}

	raw, err := decodeImagePayload(req.LabeledImage)
	if err != nil {
		return nil, errors.NewValidationError("labeledImage is not valid base64", err)
	}

	now := time.Now().UTC()
	path := fmt.Sprintf("%s/%d-labeled-%s.jpg", req.UserID, now.UnixMilli(), animalSlug(req.AnimalDetected))

	if err := s.Store.Put(ctx, s.opts.LabeledBucket, path, raw, "image/jpeg"); err != nil {
		return nil, err
	}
	labeledURL := s.Store.PublicURL(s.opts.LabeledBucket, path)

	var thingSpeakURL *string
	creds := integrations.ThingSpeakCredentials{
		APIKey:    req.ThingSpeakAPIKey,
		ChannelID: req.ThingSpeakChannelID,
	}
	if creds.Configured() {
		channelURL, pushErr := s.Clients.ThingSpeak.PushResult(ctx, creds, labeledURL, req.AnimalDetected)
		if pushErr != nil {
			nuts.L.Warnf("[Result] ThingSpeak relay failed for capture %s: %v", req.CapturedImageID, pushErr)
		} else {
			thingSpeakURL = &channelURL
		}
	}

	smsSent := false
	var smsError *string
	var smsSentAt *time.Time
	smsReq := integrations.SMSRequest{
		Service:          req.SMSService,
		APIKey:           req.SMSAPIKey,
		Phone:            req.SMSPhone,
		TwilioAccountSID: req.TwilioAccountSID,
		TwilioPhone:      req.TwilioPhone,
		Message:          integrations.ComposeAlert(req.AnimalDetected, req.ConfidenceScore),
	}
	if smsReq.ShouldDispatch() {
		if dispatchErr := s.Clients.SMS.Send(ctx, smsReq); dispatchErr != nil {
			msg := dispatchErr.Error()
			smsError = &msg
			nuts.L.Warnf("[Result] SMS dispatch failed for capture %s: %v", req.CapturedImageID, dispatchErr)
		} else {
			smsSent = true
			sentAt := time.Now().UTC()
			smsSentAt = &sentAt
		}
	}

	label := &models.LabeledImage{
		ID:              nuts.NID("lbl", 12),
		CapturedImageID: req.CapturedImageID,
		UserID:          req.UserID,
		LabeledImageURL: labeledURL,
		AnimalDetected:  req.AnimalDetected,
		ConfidenceScore: req.ConfidenceScore,
		ProcessedAt:     now,
		ThingSpeakURL:   thingSpeakURL,
		SMSSent:         smsSent,
		SMSSentAt:       smsSentAt,
	}
	if req.ColabNotebookID != "" {
		label.ColabNotebookID = &req.ColabNotebookID
	}

	if err := s.Labels.Create(ctx, label); err != nil {
		return nil, err
	}

	if stErr := s.Captures.UpdateStatus(ctx, req.CapturedImageID, models.StatusCompleted); stErr != nil {
		// The labeled row exists; partial side effects are not rolled
		// back.
		nuts.L.Warnf("[Result] Failed to complete capture %s: %v", req.CapturedImageID, stErr)
	}

	nuts.L.Infof("[Result] Recorded %s (%s) for capture %s", label.ID, req.AnimalDetected, req.CapturedImageID)
	return &models.ResultResponse{
		Success:         true,
		LabeledImageID:  label.ID,
		LabeledImageURL: labeledURL,
		ThingSpeakURL:   thingSpeakURL,
		SMSSent:         smsSent,
		SMSError:        smsError,
	}, nil
}
