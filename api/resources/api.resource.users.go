// FilePath: api/resources/api.resource.users.go
package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
)

// UserHandlers encapsulates account-level handlers
type UserHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Purge a user's data
// @Description Delete all stored objects and rows owned by a user
// @Tags users
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 500 {object} errors.APIError
// @Router /users/{id}/data [delete]
// @Security ColabSecret
func (h *UserHandlers) PurgeUserData(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)
	userID := vars["id"]

	if err := h.hubservice.Cleanup.PurgeUser(r.Context(), userID); err != nil {
		respondWithError(w, errors.NewInternalError("failed to purge user data", err).WithRequestID(requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
