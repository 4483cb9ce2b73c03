package service

import (
	"context"

	domainauth "github.com/signonhq/signon/internal/domain/auth"
	"github.com/signonhq/signon/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	State     *SessionState
	SessionID string
	Options   Options
	Sleeper   ports.Sleeper
}

// AuthService is the per-request authentication facade. One instance serves
// exactly one request: the resolved user is memoized so repeated GetUser
// calls never re-trigger the user store. Never share an instance across
// concurrent requests.
type AuthService struct {
	state     *SessionState
	sessionID string
	opts      Options
	sleeper   ports.Sleeper

	user     *domainauth.Identity
	resolved bool
}

// NewAuthService constructs an AuthService for one request's session.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Sleeper == nil {
		opts.Sleeper = ports.SystemSleeper{}
	}
	return &AuthService{
		state:     opts.State,
		sessionID: opts.SessionID,
		opts:      opts.Options,
		sleeper:   opts.Sleeper,
	}
}

// Options returns the configuration this service was built with.
func (a *AuthService) Options() Options { return a.opts }

// SessionID returns the session this service is bound to.
func (a *AuthService) SessionID() string { return a.sessionID }

// GetUser resolves the current user from the session records. The first call
// resolves and memoizes (a nil result included); later calls are O(1) and
// side-effect free.
func (a *AuthService) GetUser(ctx context.Context) (*domainauth.Identity, error) {
	if a.resolved {
		return a.user, nil
	}
	user, err := a.state.Resolve(ctx, a.sessionID)
	if err != nil {
		return nil, err
	}
	a.user = user
	a.resolved = true
	return user, nil
}

// IsAuthenticated reports whether the session resolves to a user.
func (a *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	user, err := a.GetUser(ctx)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// SetUser overrides the memoized user directly, bypassing a second session
// round-trip. Used after a successful login to make the user visible to the
// rest of the current request. The password hash is cleared on a non-nil
// user.
func (a *AuthService) SetUser(user *domainauth.Identity) {
	if user != nil {
		user.ClearPasswordHash()
	}
	a.user = user
	a.resolved = true
}

// VerifyCredentials runs the login flow. Wrong credentials block the calling
// goroutine for the configured invalid-credentials timeout before returning
// (nil, nil); this is a deliberate enumeration mitigation, incurred in full
// on every failed attempt. Infra failures return an error without delay.
func (a *AuthService) VerifyCredentials(ctx context.Context, userName, plainPassword string) (*domainauth.Identity, error) {
	user, err := a.state.Login(ctx, a.sessionID, userName, plainPassword)
	if err != nil {
		return nil, err
	}
	if user == nil {
		a.sleeper.Sleep(a.opts.InvalidCredentialsTimeout)
		return nil, nil
	}
	a.SetUser(user)
	return user, nil
}

// Logout signs the session out; with destroyIdentity the remembered username
// is forgotten too. The memoized user is reset either way.
func (a *AuthService) Logout(ctx context.Context, destroyIdentity bool) error {
	if err := a.state.Logout(ctx, a.sessionID, destroyIdentity); err != nil {
		return err
	}
	a.user = nil
	a.resolved = true
	return nil
}
