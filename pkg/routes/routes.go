// Package routes declares HTTP routes as data so each domain handler can
// publish its endpoints and the API module can register them in one place.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Patterns lists the fully-qualified mux patterns of g, children included.
func (g Group) Patterns() []string {
	var out []string
	walk("", g, func(pattern string, _ http.HandlerFunc) {
		out = append(out, pattern)
	})
	return out
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", group, mux.HandleFunc)
	}
}

func walk(parent string, group Group, fn func(string, http.HandlerFunc)) {
	prefix := parent + group.Prefix
	for _, route := range group.Routes {
		fn(route.Method+" "+prefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		walk(prefix, child, fn)
	}
}
