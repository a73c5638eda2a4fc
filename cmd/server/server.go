package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/infrastructure"
	"github.com/Bluenz7/pdfredactor/internal/routes"
	"github.com/Bluenz7/pdfredactor/internal/server"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	infra *infrastructure.Infrastructure
	http  server.System
}

// NewServer creates and initializes the service with all subsystems.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return newServer(cfg, infra), nil
}

func newServer(cfg *config.Config, infra *infrastructure.Infrastructure) *Server {
	return &Server{
		infra: infra,
		http:  server.New(&cfg.Server, buildHandler(cfg, infra), infra.Logger),
	}
}

// buildHandler registers every route and wraps the mux in the middleware stack.
func buildHandler(cfg *config.Config, infra *infrastructure.Infrastructure) http.Handler {
	routeSys := routes.New(infra.Logger)
	registerRoutes(routeSys, cfg, infra)

	middlewareSys := buildMiddleware(cfg, infra)
	return middlewareSys.Apply(routeSys.Build())
}

// Start begins all subsystems and returns once the listener is bound.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown stops all subsystems within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
