package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/fieldwatch/fieldwatch-hub/api/middleware"
	"github.com/fieldwatch/fieldwatch-hub/api/resources"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.WorkerAuthMiddleware
	resources *resources.Resources
	cors      func(http.Handler) http.Handler
}

func NewRouter(svc *hubservice.HubService, workerSecret string) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewWorkerAuthMiddleware(workerSecret),
		resources: resources.NewResources(svc),
		// The cameras and the dashboard call from arbitrary origins.
		cors: handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", middleware.SecretHeader, "X-FieldWatch-User"}),
		),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	api.HandleFunc("/captures", r.resources.Captures.IngestCapture).Methods(http.MethodPost)
	api.HandleFunc("/captures", r.resources.Captures.ListCaptures).Methods(http.MethodGet)
	api.HandleFunc("/labels", r.resources.Captures.ListLabels).Methods(http.MethodGet)
	api.HandleFunc("/results", r.resources.Results.SubmitResult).Methods(http.MethodPost)

	api.HandleFunc("/settings", r.resources.Settings.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", r.resources.Settings.UpsertSettings).Methods(http.MethodPut)

	api.HandleFunc("/predict", r.resources.Predict.Predict).Methods(http.MethodPost)
	api.HandleFunc("/save-detection", r.resources.Predict.SaveDetection).Methods(http.MethodPost)

	// Worker routes, gated by the shared secret (fails open when no
	// secret is configured)
	worker := api.PathPrefix("").Subrouter()
	worker.Use(r.auth.Authenticate)
	worker.HandleFunc("/pending-tasks", r.resources.Tasks.PendingTasks).Methods(http.MethodGet)
	worker.HandleFunc("/submit-results", r.resources.Tasks.SubmitResults).Methods(http.MethodPost)
	worker.HandleFunc("/users/{id}/data", r.resources.Users.PurgeUserData).Methods(http.MethodDelete)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.cors(r.router).ServeHTTP(w, req)
}
