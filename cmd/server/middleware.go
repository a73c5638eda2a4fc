package main

import (
	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/infrastructure"
	"github.com/Bluenz7/pdfredactor/pkg/middleware"
)

// buildMiddleware creates the middleware stack: slash trimming, access
// logging, CORS and the request body limit, outermost first.
func buildMiddleware(cfg *config.Config, infra *infrastructure.Infrastructure) middleware.System {
	middlewareSys := middleware.New()
	middlewareSys.Use(middleware.TrimSlash())
	middlewareSys.Use(middleware.Logger(infra.Logger))
	middlewareSys.Use(middleware.CORS(&cfg.CORS))
	middlewareSys.Use(middleware.MaxBytes(cfg.Server.MaxUploadSizeBytes()))
	return middlewareSys
}
