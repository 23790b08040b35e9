// FilePath: api/resources/api.resource.predict.go
package resources

import (
	"encoding/json"
	"io"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// maxPredictUpload caps the multipart image size for the relay path.
const maxPredictUpload = 10 * 1024 * 1024

// PredictHandlers encapsulates the direct classification handlers
type PredictHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Classify an image directly
// @Description Relay an uploaded image to the external model and answer with its prediction; storage happens in the background
// @Tags predict
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image to classify"
// @Param user_id formData string false "User ID"
// @Success 200 {object} models.PredictResponse
// @Failure 400 {object} errors.APIError
// @Router /predict [post]
func (h *PredictHandlers) Predict(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	if err := r.ParseMultipartForm(maxPredictUpload); err != nil {
		respondWithError(w, errors.NewValidationError("invalid multipart upload", err).WithRequestID(requestID))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, errors.NewValidationError("No image uploaded", err).WithRequestID(requestID))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to read upload", err).WithRequestID(requestID))
		return
	}

	userID := r.FormValue("user_id")
	mimeType := header.Header.Get("Content-Type")

	resp, err := h.hubservice.Classify(r.Context(), userID, header.Filename, mimeType, image)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// @Summary Save a direct detection
// @Description Store a detection the dashboard classified without going through the intake flow
// @Tags predict
// @Accept json
// @Produce json
// @Param detection body models.SaveDetectionRequest true "Detection"
// @Success 200 {object} models.ResultResponse
// @Failure 400 {object} errors.APIError
// @Router /save-detection [post]
func (h *PredictHandlers) SaveDetection(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req models.SaveDetectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	resp, err := h.hubservice.SaveDetection(r.Context(), &req)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
