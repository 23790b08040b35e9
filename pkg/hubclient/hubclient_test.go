package hubclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCapture(t *testing.T) {
	image := []byte("jpeg-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/captures", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), body["image"])
		assert.Equal(t, "u1", body["userId"])
		assert.Equal(t, "tskey", body["thingspeakApiKey"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"capturedImageId": "cap_abc",
			"imageUrl":        "https://storage.test/captured-images/u1/1-detection.jpg",
			"thingspeakUrl":   nil,
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	receipt, err := client.UploadCapture(context.Background(), CaptureUpload{
		Image:               image,
		UserID:              "u1",
		ThingSpeakAPIKey:    "tskey",
		ThingSpeakChannelID: "1234",
	})

	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Equal(t, "cap_abc", receipt.CapturedImageID)
	assert.Nil(t, receipt.ThingSpeakURL)
}

func TestUploadCapture_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"type":  "validation",
			"error": "Missing required fields: image and userId",
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.UploadCapture(context.Background(), CaptureUpload{UserID: "u1"})

	require.Error(t, err)
	var hubErr *Error
	require.ErrorAs(t, err, &hubErr)
	assert.Equal(t, http.StatusBadRequest, hubErr.StatusCode)
	assert.Equal(t, "validation", hubErr.Type)
	assert.Equal(t, "Missing required fields: image and userId", hubErr.Message)
}

func TestWaitForLabel_AppearsOnLaterPoll(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/labels", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))

		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&polls, 1) < 3 {
			json.NewEncoder(w).Encode([]Label{})
			return
		}
		json.NewEncoder(w).Encode([]Label{{
			ID:              "lbl_1",
			CapturedImageID: "cap_abc",
			UserID:          "u1",
			AnimalDetected:  "Elephant",
		}})
	}))
	defer srv.Close()

	client := New(srv.URL, WithPolling(5*time.Millisecond, 10))
	label, err := client.WaitForLabel(context.Background(), "u1", "cap_abc")

	require.NoError(t, err)
	assert.Equal(t, "lbl_1", label.ID)
	assert.Equal(t, "Elephant", label.AnimalDetected)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))
}

func TestWaitForLabel_BudgetExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Label{})
	}))
	defer srv.Close()

	client := New(srv.URL, WithPolling(time.Millisecond, 3))
	_, err := client.WaitForLabel(context.Background(), "u1", "cap_abc")

	require.ErrorIs(t, err, ErrNoLabel)
}

func TestWaitForLabel_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Label{})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(srv.URL, WithPolling(time.Hour, 10))
	_, err := client.WaitForLabel(ctx, "u1", "cap_abc")

	require.ErrorIs(t, err, context.Canceled)
}

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/predict", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "u1", r.FormValue("user_id"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "field.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Prediction{Status: "success", Animal: "Elephant", Confidence: 87})
	}))
	defer srv.Close()

	client := New(srv.URL)
	prediction, err := client.Predict(context.Background(), "u1", "field.jpg", "image/jpeg", []byte("jpeg-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "success", prediction.Status)
	assert.Equal(t, "Elephant", prediction.Animal)
	assert.InDelta(t, 87.0, prediction.Confidence, 0.0001)
}

func TestGetSettings_SendsIdentityHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/settings", r.URL.Path)
		assert.Equal(t, "u1", r.Header.Get("X-FieldWatch-User"))
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Settings{UserID: "u1", SMSService: "twilio"})
	}))
	defer srv.Close()

	client := New(srv.URL, WithUser("u1"))
	settings, err := client.GetSettings(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "twilio", settings.SMSService)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).Health(context.Background()))
}
