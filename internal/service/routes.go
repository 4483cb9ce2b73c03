package service

import "net/http"

// RouteDescriptor describes one form submit endpoint for the surrounding
// router integration. The auth core only produces descriptors and the
// POST-vs-all-methods decision; registration mechanics live in internal/http.
type RouteDescriptor struct {
	Name    string
	Pattern string
	Method  string
}

// IsPost reports whether the descriptor is restricted to POST submissions.
func (r RouteDescriptor) IsPost() bool {
	return r.Method == http.MethodPost
}

// DefaultSignInRoute returns the default POST /signin descriptor.
func DefaultSignInRoute() RouteDescriptor {
	return RouteDescriptor{Name: "auth_signin", Pattern: "/signin", Method: http.MethodPost}
}

// DefaultSignOutRoute returns the default POST /signout descriptor.
func DefaultSignOutRoute() RouteDescriptor {
	return RouteDescriptor{Name: "auth_signout", Pattern: "/signout", Method: http.MethodPost}
}
