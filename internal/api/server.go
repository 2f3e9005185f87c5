package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/casestore"
	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/metrics"
	"github.com/rif-protocol-server/internal/middleware"
	"github.com/rif-protocol-server/internal/service"
)

const version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	router        *gin.Engine
	server        *http.Server
	logger        *logrus.Logger

	evaluator *service.EvaluationService
	validator domain.SnapshotValidator
	store     casestore.Store
	checks    map[string]HealthCheck

	now func() time.Time
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Option configures the server
type Option func(*Server)

// WithStore sets the case store. Without one the /cases routes answer 503.
func WithStore(store casestore.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithHealthCheck adds a named dependency check to /health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, opts ...Option) (*Server, error) {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		configManager: configManager,
		router:        gin.New(),
		logger:        logrus.New(),
		checks:        make(map[string]HealthCheck),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(server)
	}

	server.evaluator = service.NewEvaluationService(server.logger)
	server.validator = service.NewSnapshotValidator()

	server.router.Use(gin.Recovery())
	server.router.Use(middleware.CorrelationID())
	server.router.Use(middleware.SecurityHeaders())
	server.router.Use(middleware.AuditLogger(server.logger))
	server.router.Use(middleware.RequestMetrics())

	if cfg.RateLimit.Enabled {
		limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		server.router.Use(limiter.Middleware())
	}

	server.setupRoutes()

	return server, nil
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSEnabled {
			err = s.server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.WithFields(logrus.Fields{
		"addr": addr,
		"tls":  cfg.TLSEnabled,
	}).Info("HTTP server listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/evaluations", s.handleEvaluate)
		v1.POST("/evaluations/batch", s.handleEvaluateBatch)

		v1.POST("/cases", s.handleCreateCase)
		v1.GET("/cases", s.handleListCases)
		v1.GET("/cases/:id", s.handleGetCase)
		v1.GET("/cases/:id/export", s.handleExportCase)
		v1.GET("/cases/:id/report", s.handleCaseReport)
		v1.DELETE("/cases/:id", s.handleDeleteCase)

		v1.GET("/archive", s.handleExportArchive)
		v1.POST("/archive", s.handleImportArchive)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":    "healthy",
		"timestamp": s.now().UTC(),
		"version":   version,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]HealthCheck, len(s.checks)+1)
	for name, check := range s.checks {
		checks[name] = check
	}
	if s.store != nil {
		checks["store"] = func(ctx context.Context) error {
			_, err := s.store.Count(ctx)
			return err
		}
	}

	for name, check := range checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body[name] = err.Error()
			continue
		}
		body[name] = "ok"
	}

	c.JSON(status, body)
}
