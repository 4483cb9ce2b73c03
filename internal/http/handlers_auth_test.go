package httpx

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/signonhq/signon/internal/domain/auth"
	mocks "github.com/signonhq/signon/internal/mocks/auth"
	"github.com/signonhq/signon/internal/observability/statsd"
	"github.com/signonhq/signon/internal/service"
)

type routerFixture struct {
	identities     *mocks.MemoryIdentityStore
	authorizations *mocks.MemoryAuthorizationStore
	sleeper        *mocks.RecordingSleeper
	options        service.Options
	handler        http.Handler
}

func newRouterFixture(t *testing.T, opts service.Options, users ...*domainauth.Identity) *routerFixture {
	t.Helper()

	clock := mocks.NewManualClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	f := &routerFixture{
		identities:     mocks.NewMemoryIdentityStore(clock),
		authorizations: mocks.NewMemoryAuthorizationStore(clock),
		sleeper:        &mocks.RecordingSleeper{},
		options:        opts,
	}
	state := service.NewSessionState(service.SessionStateOptions{
		Users:          mocks.NewCountingUserStore(users...),
		Identities:     f.identities,
		Authorizations: f.authorizations,
		Verifier:       mocks.PlainVerifier{},
		Clock:          clock,
	})
	f.handler = NewRouter(RouterServices{
		Options: opts,
		Factory: func(sessionID string) *service.AuthService {
			return service.NewAuthService(service.AuthServiceOptions{
				State:     state,
				SessionID: sessionID,
				Options:   f.options,
				Sleeper:   f.sleeper,
			})
		},
	})
	return f
}

func testUser() *domainauth.Identity {
	return &domainauth.Identity{Active: true, UserName: "alice", FullName: "Alice Andrews", PasswordHash: "secret"}
}

func signInForm(userName, pass string) *strings.Reader {
	form := url.Values{}
	form.Set("user_name", userName)
	form.Set("password", pass)
	return strings.NewReader(form.Encode())
}

func postForm(handler http.Handler, path string, body *strings.Reader, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSignIn_Success(t *testing.T) {
	opts := service.DefaultOptions()
	opts.SignedInURL = "/dashboard"
	f := newRouterFixture(t, opts, testUser())

	sessionID := uuid.NewString()
	rec := postForm(f.handler, "/signin", signInForm("alice", "secret"), sessionID)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	authRec, ok := f.authorizations.Current(sessionID)
	require.True(t, ok)
	assert.True(t, authRec.Authorized)
	assert.Empty(t, f.sleeper.Slept)
}

func TestSignIn_WrongCredentials(t *testing.T) {
	opts := service.DefaultOptions()
	opts.SignErrorURL = "/error"
	f := newRouterFixture(t, opts, testUser())

	rec := postForm(f.handler, "/signin", signInForm("alice", "wrong"), uuid.NewString())

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/error", rec.Header().Get("Location"))
	assert.Len(t, f.sleeper.Slept, 1)
}

func TestSignIn_RedirectDefaultsToReferer(t *testing.T) {
	f := newRouterFixture(t, service.DefaultOptions(), testUser())

	req := httptest.NewRequest(http.MethodPost, "/signin", signInForm("alice", "secret"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.test/account?tab=profile")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: uuid.NewString()})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "/account?tab=profile", rec.Header().Get("Location"))
}

func TestSignIn_MintsSessionCookie(t *testing.T) {
	f := newRouterFixture(t, service.DefaultOptions(), testUser())

	rec := postForm(f.handler, "/signin", signInForm("alice", "secret"), "")

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			sessionCookie = c
			break
		}
	}
	require.NotNil(t, sessionCookie)
	_, err := uuid.Parse(sessionCookie.Value)
	require.NoError(t, err)
	assert.True(t, sessionCookie.HttpOnly)
}

func TestSignIn_MethodRestrictedToPost(t *testing.T) {
	f := newRouterFixture(t, service.DefaultOptions(), testUser())

	req := httptest.NewRequest(http.MethodGet, "/signin", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSignIn_AnyMethodRoutes(t *testing.T) {
	opts := service.DefaultOptions()
	opts.SetSignInRoute(service.RouteDescriptor{Name: "auth_signin", Pattern: "/signin", Method: http.MethodGet})
	f := newRouterFixture(t, opts, testUser())

	req := httptest.NewRequest(http.MethodGet, "/signin?user_name=alice&password=wrong", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	// The route now answers any method; wrong credentials redirect as usual.
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestSignOut_KeepsRememberedUser(t *testing.T) {
	opts := service.DefaultOptions()
	opts.SignedOutURL = "/bye"
	f := newRouterFixture(t, opts, testUser())

	sessionID := uuid.NewString()
	postForm(f.handler, "/signin", signInForm("alice", "secret"), sessionID)

	rec := postForm(f.handler, "/signout", strings.NewReader(""), sessionID)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/bye", rec.Header().Get("Location"))

	authRec, ok := f.authorizations.Current(sessionID)
	require.True(t, ok)
	assert.False(t, authRec.Authorized)
	assert.True(t, f.identities.Has(sessionID), "username stays remembered")
}

func TestSignOut_DestroyClearsEverything(t *testing.T) {
	f := newRouterFixture(t, service.DefaultOptions(), testUser())

	sessionID := uuid.NewString()
	postForm(f.handler, "/signin", signInForm("alice", "secret"), sessionID)

	form := url.Values{}
	form.Set("destroy", "1")
	rec := postForm(f.handler, "/signout", strings.NewReader(form.Encode()), sessionID)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.False(t, f.identities.Has(sessionID))
	assert.False(t, f.authorizations.Has(sessionID))

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie dropped on destroy")
}

func TestSignIn_EmitsMetrics(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })

	readDatagram := func() string {
		buf := make([]byte, 1024)
		require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, readErr := pc.ReadFrom(buf)
		require.NoError(t, readErr)
		return string(buf[:n])
	}

	metrics, err := statsd.NewClient(statsd.Config{Address: pc.LocalAddr().String(), Prefix: "signon"})
	require.NoError(t, err)
	t.Cleanup(func() { metrics.Close() })

	clock := mocks.NewManualClock(time.Now())
	state := service.NewSessionState(service.SessionStateOptions{
		Users:          mocks.NewCountingUserStore(testUser()),
		Identities:     mocks.NewMemoryIdentityStore(clock),
		Authorizations: mocks.NewMemoryAuthorizationStore(clock),
		Verifier:       mocks.PlainVerifier{},
		Clock:          clock,
	})
	opts := service.DefaultOptions()
	handler := NewRouter(RouterServices{
		Options: opts,
		Metrics: metrics,
		Factory: func(sessionID string) *service.AuthService {
			return service.NewAuthService(service.AuthServiceOptions{
				State:     state,
				SessionID: sessionID,
				Options:   opts,
				Sleeper:   &mocks.RecordingSleeper{},
			})
		},
	})

	postForm(handler, "/signin", signInForm("alice", "secret"), uuid.NewString())
	assert.Equal(t, "signon.auth.signin.success:1|c", readDatagram())
	timing := readDatagram()
	assert.True(t, strings.HasPrefix(timing, "signon.auth.signin.duration:"), timing)
	assert.True(t, strings.HasSuffix(timing, "|ms|#outcome:success"), timing)

	postForm(handler, "/signin", signInForm("alice", "wrong"), uuid.NewString())
	assert.Equal(t, "signon.auth.signin.failure:1|c", readDatagram())
	timing = readDatagram()
	assert.True(t, strings.HasSuffix(timing, "|ms|#outcome:failure"), timing)
}

func TestWhoami_RequiresAuth(t *testing.T) {
	f := newRouterFixture(t, service.DefaultOptions(), testUser())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWhoami_AfterSignIn(t *testing.T) {
	f := newRouterFixture(t, service.DefaultOptions(), testUser())

	sessionID := uuid.NewString()
	postForm(f.handler, "/signin", signInForm("alice", "secret"), sessionID)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_name":"alice"`)
	assert.Contains(t, rec.Body.String(), `"full_name":"Alice Andrews"`)
}

func TestWhoami_TranslatedUnauthorized(t *testing.T) {
	opts := service.DefaultOptions()
	require.NoError(t, opts.ApplyConfiguration(map[string]any{
		"translator": func(msg string) string { return "[de] " + msg },
	}, true))
	f := newRouterFixture(t, opts, testUser())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "[de] Unauthorized", strings.TrimSpace(rec.Body.String()))
}

func TestRequirePermission(t *testing.T) {
	clock := mocks.NewManualClock(time.Now())
	editor := testUser()
	editor.Permissions.ReplaceNames([]string{"report.view"})

	state := service.NewSessionState(service.SessionStateOptions{
		Users:          mocks.NewCountingUserStore(editor),
		Identities:     mocks.NewMemoryIdentityStore(clock),
		Authorizations: mocks.NewMemoryAuthorizationStore(clock),
		Verifier:       mocks.PlainVerifier{},
		Clock:          clock,
	})

	sessionID := uuid.NewString()
	_, err := state.Login(context.Background(), sessionID, "alice", "secret")
	require.NoError(t, err)

	newSvc := func() *service.AuthService {
		return service.NewAuthService(service.AuthServiceOptions{
			State:     state,
			SessionID: sessionID,
			Options:   service.DefaultOptions(),
		})
	}

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	allowed := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req = req.WithContext(withAuthService(req.Context(), newSvc()))
	RequirePermission("report.view")(okHandler).ServeHTTP(allowed, req)
	assert.Equal(t, http.StatusOK, allowed.Code)

	denied := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/billing", nil)
	req = req.WithContext(withAuthService(req.Context(), newSvc()))
	RequirePermission("billing.edit")(okHandler).ServeHTTP(denied, req)
	assert.Equal(t, http.StatusForbidden, denied.Code)
}
