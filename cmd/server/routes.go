package main

import (
	"net/http"

	"github.com/Bluenz7/pdfredactor/internal/api"
	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/infrastructure"
	"github.com/Bluenz7/pdfredactor/internal/lifecycle"
	"github.com/Bluenz7/pdfredactor/pkg/routes"
)

// registerRoutes configures all HTTP routes for the service.
func registerRoutes(r routes.System, cfg *config.Config, infra *infrastructure.Infrastructure) {
	api.Register(r, cfg, infra)

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Summary: "Health check endpoint",
		Handler: handleHealthCheck,
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Summary: "Readiness check endpoint",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			handleReadinessCheck(w, infra.Lifecycle)
		},
	})
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadinessCheck(w http.ResponseWriter, ready lifecycle.ReadinessChecker) {
	if !ready.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
