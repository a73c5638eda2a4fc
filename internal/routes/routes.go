// Package routes builds the service multiplexer from registered route groups.
package routes

import (
	"log/slog"
	"net/http"

	pkgroutes "github.com/Bluenz7/pdfredactor/pkg/routes"
)

type routes struct {
	routes []pkgroutes.Route
	groups []pkgroutes.Group
	logger *slog.Logger
}

// New creates a route system.
func New(logger *slog.Logger) pkgroutes.System {
	return &routes{
		logger: logger.With("system", "routes"),
		groups: []pkgroutes.Group{},
		routes: []pkgroutes.Route{},
	}
}

func (r *routes) Groups() []pkgroutes.Group {
	return r.groups
}

func (r *routes) Routes() []pkgroutes.Route {
	return r.routes
}

// RegisterRoute adds a top-level route.
func (r *routes) RegisterRoute(route pkgroutes.Route) {
	r.routes = append(r.routes, route)
}

// RegisterGroup adds a route group.
func (r *routes) RegisterGroup(group pkgroutes.Group) {
	r.groups = append(r.groups, group)
}

// Build mounts every registered route on a new ServeMux.
func (r *routes) Build() http.Handler {
	mux := http.NewServeMux()

	for _, route := range r.routes {
		r.handle(mux, route.Pattern, route)
	}

	for _, group := range r.groups {
		group.Walk(func(pattern string, route pkgroutes.Route) {
			r.handle(mux, pattern, route)
		})
	}

	return mux
}

func (r *routes) handle(mux *http.ServeMux, pattern string, route pkgroutes.Route) {
	mux.HandleFunc(route.Method+" "+pattern, route.Handler)
	r.logger.Debug("route registered", "method", route.Method, "pattern", pattern)
}
