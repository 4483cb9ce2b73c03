package ports

// Package ports defines interfaces (hexagonal ports) for auth-related
// behavior. Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/signonhq/signon/internal/domain/auth"
)

var (
	// ErrUserNotFound is the expected miss from a user store lookup. It is
	// not an infrastructure failure; callers translate it into a normal
	// failed-authentication result.
	ErrUserNotFound = errors.New("user not found")

	// ErrRecordNotFound is returned by record stores when a session record
	// is absent or already expired.
	ErrRecordNotFound = errors.New("session record not found")

	// ErrNotImplemented is returned by base store stubs that require an
	// application-specific implementation to be wired in.
	ErrNotImplemented = errors.New("not implemented: application must wire a concrete store")
)

// UserStore loads identities by username. Implementations must return
// ErrUserNotFound for an unknown or inactive user; any other error is
// treated as a fatal infrastructure failure.
type UserStore interface {
	FindByUserName(ctx context.Context, userName string) (*domainauth.Identity, error)
}

// RoleStore loads role entities by name.
type RoleStore interface {
	FindByName(ctx context.Context, name string) (*domainauth.Role, error)
}

// IdentityRecordStore persists the long-lived "remembered username" session
// records, keyed by session id.
type IdentityRecordStore interface {
	Get(ctx context.Context, sessionID string) (domainauth.IdentityRecord, error)
	Save(ctx context.Context, rec domainauth.IdentityRecord) error
	Delete(ctx context.Context, sessionID string) error
}

// AuthorizationRecordStore persists the short-lived "currently authorized"
// session records, keyed by session id.
type AuthorizationRecordStore interface {
	Get(ctx context.Context, sessionID string) (domainauth.AuthorizationRecord, error)
	Save(ctx context.Context, rec domainauth.AuthorizationRecord) error
	Delete(ctx context.Context, sessionID string) error
}

// PasswordVerifier compares a submitted plaintext password against a stored
// hash. A mismatch is (false, nil); an error means the hash itself is
// unusable.
type PasswordVerifier interface {
	Verify(plain, hash string) (bool, error)
}

// Clock supplies the current time so expiry logic is testable.
type Clock interface {
	Now() time.Time
}

// Sleeper blocks the calling goroutine, used for the invalid-credentials
// delay. The delay always runs to completion; there is no cancellation.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// SystemSleeper is the production Sleeper.
type SystemSleeper struct{}

func (SystemSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// UnimplementedUserStore fails loudly until the application wires a real
// store. Intentional application-wiring enforcement, not a fallback.
type UnimplementedUserStore struct{}

func (UnimplementedUserStore) FindByUserName(context.Context, string) (*domainauth.Identity, error) {
	return nil, ErrNotImplemented
}

// UnimplementedRoleStore fails loudly until the application wires a real store.
type UnimplementedRoleStore struct{}

func (UnimplementedRoleStore) FindByName(context.Context, string) (*domainauth.Role, error) {
	return nil, ErrNotImplemented
}

var (
	_ UserStore = UnimplementedUserStore{}
	_ RoleStore = UnimplementedRoleStore{}
	_ Clock     = SystemClock{}
	_ Sleeper   = SystemSleeper{}
)
