package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/signonhq/signon/internal/domain/auth"
	"github.com/signonhq/signon/internal/ports"
)

// SessionStateOptions groups dependencies for SessionState.
type SessionStateOptions struct {
	Users          ports.UserStore
	Identities     ports.IdentityRecordStore
	Authorizations ports.AuthorizationRecordStore
	Verifier       ports.PasswordVerifier
	Clock          ports.Clock

	IdentityTTL      time.Duration
	AuthorizationTTL time.Duration
}

// SessionState is the two-record authentication state machine. A browser
// session is one of three conceptual states derived from the records:
//
//   - anonymous: no identity record, or no usable authorization record
//   - remembered: identity record present, authorization false or expired
//   - authorized: identity record present and authorization true, unexpired
//
// The states are never stored explicitly; Resolve derives them on read.
type SessionState struct {
	users          ports.UserStore
	identities     ports.IdentityRecordStore
	authorizations ports.AuthorizationRecordStore
	verifier       ports.PasswordVerifier
	clock          ports.Clock

	identityTTL      time.Duration
	authorizationTTL time.Duration
}

// NewSessionState constructs a SessionState, filling in default TTLs and
// system clock where unset.
func NewSessionState(opts SessionStateOptions) *SessionState {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.IdentityTTL <= 0 {
		opts.IdentityTTL = DefaultExpirationIdentity
	}
	if opts.AuthorizationTTL <= 0 {
		opts.AuthorizationTTL = DefaultExpirationAuthorization
	}
	return &SessionState{
		users:            opts.Users,
		identities:       opts.Identities,
		authorizations:   opts.Authorizations,
		verifier:         opts.Verifier,
		clock:            opts.Clock,
		identityTTL:      opts.IdentityTTL,
		authorizationTTL: opts.AuthorizationTTL,
	}
}

// Resolve derives the current user from the two session records. It returns
// (nil, nil) for anonymous and remembered sessions; the user lookup only
// happens for an authorized session. Store failures propagate as errors.
func (s *SessionState) Resolve(ctx context.Context, sessionID string) (*domainauth.Identity, error) {
	idRec, err := s.identities.Get(ctx, sessionID)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read identity record: %w", err)
	}

	authRec, err := s.authorizations.Get(ctx, sessionID)
	if errors.Is(err, ports.ErrRecordNotFound) {
		// Remembered but not authorized.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read authorization record: %w", err)
	}
	now := s.clock.Now()
	if !authRec.Authorized || authRec.Expired(now) || idRec.Expired(now) {
		return nil, nil
	}

	user, err := s.users.FindByUserName(ctx, idRec.UserName)
	if errors.Is(err, ports.ErrUserNotFound) {
		// The remembered user vanished from the store since last login.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", idRec.UserName, err)
	}

	user.ClearPasswordHash()
	return user, nil
}

// Login verifies the submitted credentials and, on success, stamps fresh
// identity and authorization records for the session. Bad credentials are
// not an error: the result is (nil, nil) and the caller imposes the
// invalid-credentials delay. Store and hash failures propagate as errors.
func (s *SessionState) Login(ctx context.Context, sessionID, userName, plainPassword string) (*domainauth.Identity, error) {
	user, err := s.users.FindByUserName(ctx, userName)
	if errors.Is(err, ports.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", userName, err)
	}
	if !user.Active {
		return nil, nil
	}

	ok, err := s.verifier.Verify(plainPassword, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password for %q: %w", userName, err)
	}
	if !ok {
		return nil, nil
	}

	now := s.clock.Now()
	err = s.identities.Save(ctx, domainauth.IdentityRecord{
		SessionID: sessionID,
		UserName:  user.UserName,
		ExpiresAt: now.Add(s.identityTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("save identity record: %w", err)
	}
	err = s.authorizations.Save(ctx, domainauth.AuthorizationRecord{
		SessionID:  sessionID,
		Authorized: true,
		ExpiresAt:  now.Add(s.authorizationTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("save authorization record: %w", err)
	}

	user.ClearPasswordHash()
	return user, nil
}

// Logout flips the authorization record to unauthorized, keeping the
// remembered username for future sign-ins. With destroyIdentity both records
// are removed and the session is fully forgotten.
func (s *SessionState) Logout(ctx context.Context, sessionID string, destroyIdentity bool) error {
	if destroyIdentity {
		if err := s.authorizations.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("delete authorization record: %w", err)
		}
		if err := s.identities.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("delete identity record: %w", err)
		}
		return nil
	}

	err := s.authorizations.Save(ctx, domainauth.AuthorizationRecord{
		SessionID:  sessionID,
		Authorized: false,
		ExpiresAt:  s.clock.Now().Add(s.authorizationTTL),
	})
	if err != nil {
		return fmt.Errorf("save authorization record: %w", err)
	}
	return nil
}
