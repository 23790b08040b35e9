// FilePath: api/resources/api.resource.settings.go
package resources

import (
	"encoding/json"
	"net/http"
	"strings"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// SettingsHandlers encapsulates the user-settings handlers
type SettingsHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Get user settings
// @Description Read the single settings row of a user; secret fields are masked unless the caller is the owner
// @Tags settings
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} models.UserSettings
// @Failure 404 {object} errors.APIError
// @Router /settings [get]
func (h *SettingsHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondWithError(w, errors.NewValidationError("Missing required field: user_id", nil).WithRequestID(requestID))
		return
	}

	settings, err := h.hubservice.GetSettings(r.Context(), userID, callerRoles(r, userID))
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

// @Summary Upsert user settings
// @Description Create or replace the single settings row of a user
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body models.UserSettings true "Settings"
// @Success 200 {object} models.UserSettings
// @Failure 400 {object} errors.APIError
// @Router /settings [put]
func (h *SettingsHandlers) UpsertSettings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var settings models.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.UpsertSettings(r.Context(), &settings); err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

// callerRoles derives the field-filtering roles for a settings read.
// Row ownership is enforced by the database's row-level security, not
// here; the X-FieldWatch-User header only decides whether secret
// fields are echoed back to the requester.
func callerRoles(r *http.Request, userID string) []string {
	caller := strings.TrimSpace(r.Header.Get("X-FieldWatch-User"))
	if caller != "" && caller == userID {
		return []string{"owner"}
	}
	return []string{"guest"}
}
