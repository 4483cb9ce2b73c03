package httpx

import (
	"context"
	"net/http"

	"github.com/signonhq/signon/internal/service"
)

type ctxKey int

const authServiceKey ctxKey = iota

// withAuthService stores the request-scoped auth service in the context.
func withAuthService(ctx context.Context, svc *service.AuthService) context.Context {
	return context.WithValue(ctx, authServiceKey, svc)
}

// AuthFromRequest returns the request-scoped auth service, or nil when the
// session middleware did not run.
func AuthFromRequest(r *http.Request) *service.AuthService {
	svc, _ := r.Context().Value(authServiceKey).(*service.AuthService)
	return svc
}
