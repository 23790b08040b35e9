// FilePath: api/resources/api.resource.results.go
package resources

import (
	"encoding/json"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// ResultHandlers encapsulates the result-submission handler
type ResultHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Submit a classification result
// @Description Store a labeled image, record the detection and complete the originating capture
// @Tags results
// @Accept json
// @Produce json
// @Param result body models.ResultRequest true "Classification result"
// @Success 200 {object} models.ResultResponse
// @Failure 400 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /results [post]
func (h *ResultHandlers) SubmitResult(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req models.ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	resp, err := h.hubservice.SubmitClassification(r.Context(), &req)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
