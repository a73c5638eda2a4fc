// Package api exposes the document engine over HTTP.
package api

import (
	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/infrastructure"
	"github.com/Bluenz7/pdfredactor/pkg/routes"
)

// Register mounts the document routes under the configured base path.
func Register(sys routes.System, cfg *config.Config, infra *infrastructure.Infrastructure) *Handler {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)
	handler := NewHandler(runtime, domain)

	group := handler.Routes()
	group.Prefix = cfg.Server.BasePath + group.Prefix
	sys.RegisterGroup(group)

	return handler
}
