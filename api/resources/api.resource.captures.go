// FilePath: api/resources/api.resource.captures.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// CaptureHandlers encapsulates the intake and gallery handlers
type CaptureHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Ingest a captured image
// @Description Accept a base64-encoded motion capture, store it and create a pending record
// @Tags captures
// @Accept json
// @Produce json
// @Param capture body models.IntakeRequest true "Capture payload"
// @Success 200 {object} models.IntakeResponse
// @Failure 400 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /captures [post]
func (h *CaptureHandlers) IngestCapture(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req models.IntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	resp, err := h.hubservice.ProcessCapture(r.Context(), &req)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// @Summary List captured images
// @Description Paginated gallery of a user's captures
// @Tags captures
// @Produce json
// @Param user_id query string true "User ID"
// @Param status query string false "Status filter"
// @Success 200 {array} models.CapturedImage
// @Router /captures [get]
func (h *CaptureHandlers) ListCaptures(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.CaptureFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	captures, err := h.hubservice.ListCaptures(r.Context(), filters)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, captures)
}

// @Summary List labeled images
// @Description Paginated gallery of a user's classification results
// @Tags captures
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {array} models.LabeledImage
// @Router /labels [get]
func (h *CaptureHandlers) ListLabels(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.CaptureFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	labels, err := h.hubservice.ListLabels(r.Context(), filters)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, labels)
}
