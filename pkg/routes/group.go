// Package routes describes HTTP routes and the system that mounts them.
package routes

import "net/http"

// Group is a set of routes sharing a URL prefix. Children inherit the
// accumulated prefix.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
}

// Route is a single method and pattern bound to a handler. Pattern uses
// net/http ServeMux wildcards such as {id}.
type Route struct {
	Method  string
	Pattern string
	Summary string
	Handler http.HandlerFunc
}

// Walk calls fn for every route in g and its children with the full pattern.
func (g Group) Walk(fn func(pattern string, r Route)) {
	g.walk("", fn)
}

func (g Group) walk(parent string, fn func(string, Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(prefix+r.Pattern, r)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}
