// FilePath: api/resources/api.resource.tasks.go
package resources

import (
	"encoding/json"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// TaskHandlers encapsulates the polling-worker protocol handlers
type TaskHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Fetch the next pending task
// @Description Hand the oldest pending capture to a polling worker under a fresh task id; null when nothing is pending
// @Tags tasks
// @Produce json
// @Success 200 {object} models.PendingTaskResponse
// @Router /pending-tasks [get]
// @Security ColabSecret
func (h *TaskHandlers) PendingTasks(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	task, err := h.hubservice.NextPendingTask(r.Context())
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, models.PendingTaskResponse{Task: task})
}

// @Summary Submit a worker result
// @Description Record a polling worker's classification or failure for a capture
// @Tags tasks
// @Accept json
// @Produce json
// @Param result body models.SubmitResultsRequest true "Worker result"
// @Success 200 {object} models.SubmitResultsResponse
// @Failure 400 {object} errors.APIError
// @Router /submit-results [post]
// @Security ColabSecret
func (h *TaskHandlers) SubmitResults(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req models.SubmitResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	resp, err := h.hubservice.CompleteTask(r.Context(), &req)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
