// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/api"
	"github.com/fieldwatch/fieldwatch-hub/internal/config"
	"github.com/fieldwatch/fieldwatch-hub/internal/database"
	"github.com/fieldwatch/fieldwatch-hub/internal/hubservice"
	"github.com/fieldwatch/fieldwatch-hub/internal/integrations"
	"github.com/fieldwatch/fieldwatch-hub/internal/monitoring"
	"github.com/fieldwatch/fieldwatch-hub/internal/repository/objectstore"
	"github.com/fieldwatch/fieldwatch-hub/internal/repository/postgres"
	"github.com/fieldwatch/fieldwatch-hub/internal/repository/redistasks"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config: cfg,
		srv:    srv,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Initialize services
	s.hubservice = initializeHubService(s.config)
	s.monitoring = monitoring.NewService(monitoring.Config{
		PrometheusEndpoint: s.config.Monitoring.PrometheusEndpoint,
		LokiEndpoint:       s.config.Monitoring.LokiEndpoint,
	})

	// Set up cleanup event handlers
	s.setupCleanupHandlers()

	// Mount the API router
	s.srv.Handler = api.NewRouter(s.hubservice, s.config.Worker.SharedSecret)

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) setupCleanupHandlers() {
	s.hubservice.Cleanup.OnCleanup("user.purged", func(id string) {
		nuts.L.Infof("[Cleanup] User %s and all associated data deleted", id)
		s.monitoring.RecordEvent("user_purge", map[string]string{
			"user_id": id,
		})
	})

	s.hubservice.Cleanup.OnCleanup("objects.deleted", func(id string) {
		s.monitoring.RecordEvent("object_deletion", map[string]string{
			"bucket_count": id,
		})
	})
}

// initializeHubService creates and configures the hub service
func initializeHubService(cfg *config.Config) *hubservice.HubService {
	appDB := initAppDB(cfg.Database.Postgres)

	// Initialize repositories
	captures := postgres.NewCapturedImageRepository(appDB)
	labels := postgres.NewLabeledImageRepository(appDB)
	settings := postgres.NewUserSettingsRepository(appDB)

	store, err := objectstore.NewMinioStore(cfg.Storage)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize object store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBuckets(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to prepare buckets: %v", err)
	}

	tasks := redistasks.New(cfg.Redis)

	clients := hubservice.Clients{
		ThingSpeak: integrations.NewThingSpeakClient(cfg.Integrations.ThingSpeakBaseURL, cfg.Integrations.HTTPTimeout),
		SMS:        integrations.NewSMSDispatcher(cfg.Integrations.HTTPTimeout),
		Webhook:    integrations.NewWebhookNotifier(cfg.Integrations.HTTPTimeout),
		Model:      integrations.NewModelClient(cfg.Model.PredictURL, cfg.Model.Timeout),
	}

	// Create and return hub service
	return hubservice.New(captures, labels, settings, store, tasks, clients, hubservice.Options{
		CapturesBucket: cfg.Storage.CapturesBucket,
		LabeledBucket:  cfg.Storage.LabeledBucket,
		TaskTTL:        cfg.Worker.TaskTTL,
		WorkerRelay:    cfg.Integrations,
	})
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to Postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping database: %v", err)
	}

	if err := database.Migrate(wrappedDB); err != nil {
		nuts.L.Fatalf("[Server] Failed to apply migrations: %v", err)
	}

	return wrappedDB
}
