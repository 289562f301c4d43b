package rest

import (
	"encoding/json"
	"net/http"

	"forever-us/application/ports"
	"forever-us/application/services"
	"forever-us/infrastructure/config"
	"forever-us/interfaces/http/rest/handlers"
	"forever-us/interfaces/http/rest/middleware"
	"forever-us/pkg/errors"
	"forever-us/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// StoreBreaker exposes the circuit breaker in front of the durable store
type StoreBreaker interface {
	State() gobreaker.State
}

// Router creates and configures the HTTP router
type Router struct {
	cfg          *config.Config
	store        *services.AppStateStore
	breaker      StoreBreaker
	settings     *config.RuntimeSettings
	codec        ports.ImageCodec
	metrics      *observability.Collector
	logger       *zap.Logger
	errorHandler *errors.ErrorHandler
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	store *services.AppStateStore,
	breaker StoreBreaker,
	settings *config.RuntimeSettings,
	codec ports.ImageCodec,
	metrics *observability.Collector,
	logger *zap.Logger,
	errorHandler *errors.ErrorHandler,
) *Router {
	return &Router{
		cfg:          cfg,
		store:        store,
		breaker:      breaker,
		settings:     settings,
		codec:        codec,
		metrics:      metrics,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.EditMode)

		documentHandler := handlers.NewDocumentHandler(rt.store, rt.errorHandler, rt.logger)
		r.Get("/document", documentHandler.GetDocument)
		r.Put("/document", documentHandler.ReplaceDocument)
		r.Get("/days", documentHandler.GetDays)
		r.Delete("/notice", documentHandler.DismissNotice)

		r.Route("/memories", func(r chi.Router) {
			memoryHandler := handlers.NewMemoryHandler(rt.store, rt.settings, rt.errorHandler, rt.logger)
			r.Get("/", memoryHandler.ListMemories)
			r.Post("/", memoryHandler.CreateMemory)
			r.Delete("/{memoryID}", memoryHandler.DeleteMemory)
		})

		snapshotHandler := handlers.NewSnapshotHandler(rt.store, rt.errorHandler, rt.logger)
		r.Get("/export", snapshotHandler.Export)
		r.Post("/import", snapshotHandler.Import)

		imageHandler := handlers.NewImageHandler(rt.codec, rt.settings, rt.metrics, rt.errorHandler, rt.logger)
		r.Post("/images", imageHandler.Upload)

		r.Get("/music", handlers.ListMusic)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

type readiness struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
}

// readinessCheck reports ready once the document has been loaded and the
// store breaker is not open. A corrupt or unreachable record alone still
// counts as ready because the default is served.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	body := readiness{Status: "ready"}
	status := http.StatusOK

	if rt.breaker != nil {
		state := rt.breaker.State()
		body.Storage = state.String()
		if state == gobreaker.StateOpen {
			rt.logger.Warn("Readiness check failed: store breaker is open")
			body.Status = "not_ready"
			status = http.StatusServiceUnavailable
		}
	}
	if status == http.StatusOK {
		if _, err := rt.store.Load(req.Context()); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			body.Status = "not_ready"
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
