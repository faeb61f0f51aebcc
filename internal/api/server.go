package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avollmer/sentra/internal/auth"
	"github.com/avollmer/sentra/internal/device"
	"github.com/avollmer/sentra/internal/infrastructure/config"
	"github.com/avollmer/sentra/internal/infrastructure/logging"
	"github.com/avollmer/sentra/internal/sensor"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.API
	TokenTTL  time.Duration
	Logger    *logging.Logger
	Auth      *auth.Service
	Guard     *auth.Guard
	Devices   device.Repository
	Readings  sensor.Repository
	Recorder  *sensor.Recorder
	Generator *sensor.Generator
	Version   string
}

// Server is the HTTP API server for Sentra.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg       config.API
	tokenTTL  time.Duration
	logger    *logging.Logger
	auth      *auth.Service
	guard     *auth.Guard
	devices   device.Repository
	readings  sensor.Repository
	recorder  *sensor.Recorder
	generator *sensor.Generator
	version   string
	server    *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil || deps.Guard == nil {
		return nil, fmt.Errorf("auth service and guard are required")
	}
	if deps.Devices == nil || deps.Readings == nil || deps.Recorder == nil {
		return nil, fmt.Errorf("device and reading stores are required")
	}

	generator := deps.Generator
	if generator == nil {
		generator = sensor.NewGenerator(0)
	}

	return &Server{
		cfg:       deps.Config,
		tokenTTL:  deps.TokenTTL,
		logger:    deps.Logger.With("component", "api"),
		auth:      deps.Auth,
		guard:     deps.Guard,
		devices:   deps.Devices,
		readings:  deps.Readings,
		recorder:  deps.Recorder,
		generator: generator,
		version:   deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to ten seconds
// for in-flight requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
