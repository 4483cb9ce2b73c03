package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/signonhq/signon/internal/observability/statsd"
	"github.com/signonhq/signon/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Factory      AuthServiceFactory
	Options      service.Options
	CookieDomain string
	Logger       *slog.Logger
	Metrics      *statsd.Client
}

// NewRouter builds the HTTP handler: session middleware around the sign-in
// and sign-out submit routes plus a small authenticated introspection
// endpoint.
//
// The default routes are registered POST-only. When a configured route's
// method differs from POST the AnyMethodRoutes decision registers both auth
// routes for every method instead.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{CookieDomain: services.CookieDomain, Logger: logger, Metrics: services.Metrics}
	registerAuthRoute(mux, services.Options, services.Options.SignInRoute, authHandlers.SignIn)
	registerAuthRoute(mux, services.Options, services.Options.SignOutRoute, authHandlers.SignOut)

	mux.Handle("GET /whoami", RequireAuth(http.HandlerFunc(whoamiHandler)))
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	session := Session(SessionConfig{
		Factory:      services.Factory,
		CookieDomain: services.CookieDomain,
		CookieTTL:    services.Options.ExpirationIdentity,
	})

	var handler http.Handler = mux
	handler = session(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerAuthRoute(mux *http.ServeMux, opts service.Options, route service.RouteDescriptor, fn http.HandlerFunc) {
	if opts.AnyMethodRoutes {
		mux.HandleFunc(route.Pattern, fn)
		return
	}
	mux.HandleFunc(http.MethodPost+" "+route.Pattern, fn)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// whoamiHandler returns the signed-in user's display data.
func whoamiHandler(w http.ResponseWriter, r *http.Request) {
	svc := AuthFromRequest(r)
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	user, err := svc.GetUser(r.Context())
	if err != nil || user == nil {
		http.Error(w, svc.Options().Translate("Internal Server Error"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user_name": user.UserName,
		"full_name": user.FullName,
		"admin":     user.Admin,
		"roles":     user.Roles.Names(),
	})
}
