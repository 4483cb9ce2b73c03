package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/signonhq/signon/internal/observability/statsd"
)

// AuthHandlers provides the sign-in and sign-out form submit endpoints. The
// handlers call into the request-scoped auth service placed in the context
// by the Session middleware and hand control back with a redirect.
type AuthHandlers struct {
	CookieDomain string
	Logger       *slog.Logger
	// Metrics is optional; a nil client drops all emissions.
	Metrics *statsd.Client
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// SignIn handles the sign-in form submission.
// POST /signin with fields user_name and password.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	svc := AuthFromRequest(r)
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, svc.Options().Translate("Bad Request"), http.StatusBadRequest)
		return
	}

	// FormValue also covers query parameters, which carry the fields when
	// the route is registered for any method.
	userName := strings.TrimSpace(r.FormValue("user_name"))
	pass := r.FormValue("password")

	start := time.Now()
	user, err := svc.VerifyCredentials(r.Context(), userName, pass)
	if err != nil {
		// Infra failure; never leak details to the requester.
		h.logger().Error("sign-in failed",
			slog.String("user_name", userName),
			slog.Any("error", err))
		h.Metrics.Count("auth.signin.error", 1, nil)
		h.Metrics.Timing("auth.signin.duration", time.Since(start), map[string]string{"outcome": "error"})
		http.Error(w, svc.Options().Translate("Internal Server Error"), http.StatusInternalServerError)
		return
	}
	if user == nil {
		// Wrong credentials; the delay already ran inside the service.
		h.Metrics.Count("auth.signin.failure", 1, nil)
		h.Metrics.Timing("auth.signin.duration", time.Since(start), map[string]string{"outcome": "failure"})
		redirect(w, r, svc.Options().SignErrorURL)
		return
	}

	h.logger().Info("signed in", slog.String("user_name", user.UserName))
	h.Metrics.Count("auth.signin.success", 1, nil)
	h.Metrics.Timing("auth.signin.duration", time.Since(start), map[string]string{"outcome": "success"})
	redirect(w, r, svc.Options().SignedInURL)
}

// SignOut handles the sign-out form submission.
// POST /signout; a non-empty destroy field forgets the remembered username
// too and drops the session cookie.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	svc := AuthFromRequest(r)
	if svc == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, svc.Options().Translate("Bad Request"), http.StatusBadRequest)
		return
	}

	destroy := r.PostFormValue("destroy") != ""
	if err := svc.Logout(r.Context(), destroy); err != nil {
		h.logger().Error("sign-out failed", slog.Any("error", err))
		redirect(w, r, svc.Options().SignErrorURL)
		return
	}
	h.Metrics.Count("auth.signout", 1, map[string]string{"destroy": strconv.FormatBool(destroy)})

	if destroy {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    "",
			Path:     "/",
			Domain:   h.CookieDomain,
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	redirect(w, r, svc.Options().SignedOutURL)
}

// redirect sends the browser to the configured URL, defaulting to the page
// the form was submitted from when no URL is configured.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if target == "" {
		target = refererPath(r)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// refererPath returns the referring URL reduced to a safe local target.
func refererPath(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
