package hubservice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// seedPendingCapture inserts a pending capture row directly.
func seedPendingCapture(t *testing.T, f *fixtures, userID string) *models.CapturedImage {
	t.Helper()
	now := time.Now().UTC()
	capture := &models.CapturedImage{
		ID:                 nuts.NID("cap", 12),
		UserID:             userID,
		ImageURL:           "https://storage.test/captured-images/" + userID + "/1-detection.jpg",
		DetectionTimestamp: now,
		UploadedAt:         now,
		Status:             models.StatusPending,
		Metadata:           models.JSONMap{},
	}
	require.NoError(t, f.captures.Create(context.Background(), capture))
	return capture
}

func TestSubmitClassification_MissingFields(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SubmitClassification(context.Background(), &models.ResultRequest{
		CapturedImageID: "cap_1",
		UserID:          "u1",
	})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t,
		"Missing required fields: capturedImageId, userId, labeledImage and animalDetected",
		errors.AsAPIError(err).Message)
}

func TestSubmitClassification_ConfidenceOutOfRange(t *testing.T) {
	svc, _ := newTestService()

	for _, bad := range []float64{-0.1, 100.5} {
		confidence := bad
		_, err := svc.SubmitClassification(context.Background(), &models.ResultRequest{
			CapturedImageID: "cap_1",
			UserID:          "u1",
			LabeledImage:    testImageB64,
			AnimalDetected:  "Elephant",
			ConfidenceScore: &confidence,
		})
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}
}

func TestSubmitClassification_Success(t *testing.T) {
	svc, f := newTestService()
	capture := seedPendingCapture(t, f, "u1")
	confidence := 91.5

	resp, err := svc.SubmitClassification(context.Background(), &models.ResultRequest{
		CapturedImageID: capture.ID,
		UserID:          "u1",
		LabeledImage:    testImageB64,
		AnimalDetected:  "Wild Boar",
		ConfidenceScore: &confidence,
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.LabeledImageID)
	assert.False(t, resp.SMSSent)
	assert.Nil(t, resp.SMSError)
	assert.Nil(t, resp.ThingSpeakURL)

	// The labeled object carries the slugged animal name.
	paths := f.store.paths("labeled-images")
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(paths[0], "u1/"))
	assert.True(t, strings.HasSuffix(paths[0], "-labeled-wild-boar.jpg"))

	label, err := f.labels.Get(context.Background(), resp.LabeledImageID)
	require.NoError(t, err)
	assert.Equal(t, capture.ID, label.CapturedImageID)
	assert.Equal(t, "Wild Boar", label.AnimalDetected)
	require.NotNil(t, label.ConfidenceScore)
	assert.InDelta(t, 91.5, *label.ConfidenceScore, 0.0001)
	assert.False(t, label.SMSSent)
	assert.Nil(t, label.SMSSentAt)

	row, err := f.captures.Get(context.Background(), capture.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, row.Status)
}

func TestSubmitClassification_SMSDispatched(t *testing.T) {
	svc, f := newTestService()
	capture := seedPendingCapture(t, f, "u1")
	confidence := 88.0

	resp, err := svc.SubmitClassification(context.Background(), &models.ResultRequest{
		CapturedImageID:  capture.ID,
		UserID:           "u1",
		LabeledImage:     testImageB64,
		AnimalDetected:   "Elephant",
		ConfidenceScore:  &confidence,
		SMSAPIKey:        "authtoken",
		SMSPhone:         "+491701234567",
		SMSService:       "twilio",
		TwilioAccountSID: "AC123",
		TwilioPhone:      "+15005550006",
	})

	require.NoError(t, err)
	assert.True(t, resp.SMSSent)
	assert.Nil(t, resp.SMSError)

	require.Len(t, f.sms.sent, 1)
	sent := f.sms.sent[0]
	assert.Equal(t, "twilio", sent.Service)
	assert.Equal(t, "Alert! A Elephant has entered your field. Detection confidence: 88.0%", sent.Message)

	label, err := f.labels.Get(context.Background(), resp.LabeledImageID)
	require.NoError(t, err)
	assert.True(t, label.SMSSent)
	assert.NotNil(t, label.SMSSentAt)
}

func TestSubmitClassification_SMSFailureDegrades(t *testing.T) {
	svc, f := newTestService()
	capture := seedPendingCapture(t, f, "u1")
	f.sms.err = errors.NewUpstreamError("twilio dispatch returned 401", nil)

	resp, err := svc.SubmitClassification(context.Background(), &models.ResultRequest{
		CapturedImageID:  capture.ID,
		UserID:           "u1",
		LabeledImage:     testImageB64,
		AnimalDetected:   "Elephant",
		SMSAPIKey:        "bad",
		SMSPhone:         "+491701234567",
		SMSService:       "twilio",
		TwilioAccountSID: "AC123",
		TwilioPhone:      "+15005550006",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.SMSSent)
	require.NotNil(t, resp.SMSError)
	assert.Contains(t, *resp.SMSError, "twilio dispatch returned 401")
}

func TestSubmitClassification_SMSSkippedWithoutCredentials(t *testing.T) {
	svc, f := newTestService()
	capture := seedPendingCapture(t, f, "u1")

	// A phone number alone is not enough to dispatch.
	resp, err := svc.SubmitClassification(context.Background(), &models.ResultRequest{
		CapturedImageID: capture.ID,
		UserID:          "u1",
		LabeledImage:    testImageB64,
		AnimalDetected:  "Elephant",
		SMSPhone:        "+491701234567",
		SMSService:      "twilio",
	})

	require.NoError(t, err)
	assert.False(t, resp.SMSSent)
	assert.Nil(t, resp.SMSError)
	assert.Empty(t, f.sms.sent)
}

func TestSubmitClassification_ThingSpeakRelay(t *testing.T) {
	svc, f := newTestService()
	capture := seedPendingCapture(t, f, "u1")

	resp, err := svc.SubmitClassification(context.Background(), &models.ResultRequest{
		CapturedImageID:     capture.ID,
		UserID:              "u1",
		LabeledImage:        testImageB64,
		AnimalDetected:      "Nilgai",
		ThingSpeakAPIKey:    "tskey",
		ThingSpeakChannelID: "1234",
	})

	require.NoError(t, err)
	require.NotNil(t, resp.ThingSpeakURL)
	assert.Equal(t, "https://thingspeak.com/channels/1234", *resp.ThingSpeakURL)
	require.Len(t, f.thingSpeak.animals, 1)
	assert.Equal(t, "Nilgai", f.thingSpeak.animals[0])
}

func TestSubmitClassification_CompletesEvenWhenCaptureUnknown(t *testing.T) {
	svc, _ := newTestService()

	// The capture row is missing; the status update is a warning, not a
	// failure, so the labeled row is still recorded.
	resp, err := svc.SubmitClassification(context.Background(), &models.ResultRequest{
		CapturedImageID: "cap_gone",
		UserID:          "u1",
		LabeledImage:    testImageB64,
		AnimalDetected:  "Elephant",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
}
