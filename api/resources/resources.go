// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Captures *CaptureHandlers
	Results  *ResultHandlers
	Tasks    *TaskHandlers
	Settings *SettingsHandlers
	Predict  *PredictHandlers
	Users    *UserHandlers
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService) *Resources {
	return &Resources{
		Captures: &CaptureHandlers{hubservice: svc},
		Results:  &ResultHandlers{hubservice: svc},
		Tasks:    &TaskHandlers{hubservice: svc},
		Settings: &SettingsHandlers{hubservice: svc},
		Predict:  &PredictHandlers{hubservice: svc},
		Users:    &UserHandlers{hubservice: svc},
	}
}

// HealthCheck reports liveness.
func (r *Resources) HealthCheck(w http.ResponseWriter, req *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
