package httpx

// Package httpx wires the auth core into net/http: session cookie handling,
// a request-scoped auth service, and the sign-in/sign-out submit endpoints.

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/signonhq/signon/internal/service"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "signon_session"

// AuthServiceFactory builds a fresh per-request AuthService bound to a
// session id. One request gets exactly one instance; a shared instance
// across concurrent requests would corrupt the memoization.
type AuthServiceFactory func(sessionID string) *service.AuthService

// SessionConfig groups parameters for the Session middleware.
type SessionConfig struct {
	Factory      AuthServiceFactory
	CookieDomain string
	// CookieTTL bounds the session cookie lifetime; usually the identity
	// expiration window.
	CookieTTL time.Duration
}

// Session ensures every request carries a session id cookie and a
// request-scoped auth service in its context.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionIDFromRequest(r)
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, sessionCookie(r, cfg, sessionID, cfg.CookieTTL))
			}
			svc := cfg.Factory(sessionID)
			next.ServeHTTP(w, r.WithContext(withAuthService(r.Context(), svc)))
		})
	}
}

func sessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	if _, parseErr := uuid.Parse(c.Value); parseErr != nil {
		return ""
	}
	return c.Value
}

func sessionCookie(r *http.Request, cfg SessionConfig, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svc := AuthFromRequest(r)
		if svc == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ok, err := svc.IsAuthenticated(r.Context())
		if err != nil {
			http.Error(w, svc.Options().Translate("Internal Server Error"), http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, svc.Options().Translate("Unauthorized"), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects requests whose user lacks all of the given
// permissions. Administrators always pass.
func RequirePermission(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			svc := AuthFromRequest(r)
			if svc == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			user, err := svc.GetUser(r.Context())
			if err != nil {
				http.Error(w, svc.Options().Translate("Internal Server Error"), http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, svc.Options().Translate("Unauthorized"), http.StatusUnauthorized)
				return
			}
			if !user.IsAllowed(names...) {
				http.Error(w, svc.Options().Translate("Forbidden"), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
