package httpx

import "strings"

// Route represents a single HTTP route definition.
type Route struct {
	Method     string
	Path       string
	Handler    HandlerFunc
	Middleware []MiddlewareFunc
}

// Routes returns a registrar that adds every well-formed route to the
// server. Routes missing a method, path or handler are skipped.
func Routes(routes ...Route) RouteRegistrar {
	copied := append([]Route(nil), routes...)
	return func(e *Echo) {
		if e == nil || e.Echo == nil {
			return
		}
		for _, r := range copied {
			if r.Handler == nil || r.Path == "" || r.Method == "" {
				continue
			}
			e.Add(strings.ToUpper(r.Method), r.Path, r.Handler, r.Middleware...)
		}
	}
}
