package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/signonhq/signon/internal/domain/auth"
	"github.com/signonhq/signon/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.UserStore                = (*CountingUserStore)(nil)
	_ ports.IdentityRecordStore      = (*MemoryIdentityStore)(nil)
	_ ports.AuthorizationRecordStore = (*MemoryAuthorizationStore)(nil)
	_ ports.PasswordVerifier         = (*PlainVerifier)(nil)
	_ ports.Clock                    = (*ManualClock)(nil)
	_ ports.Sleeper                  = (*RecordingSleeper)(nil)
)

// ManualClock is a settable clock for deterministic expiry tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at the given instant.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// RecordingSleeper records requested delays instead of blocking.
type RecordingSleeper struct {
	Slept []time.Duration
}

func (s *RecordingSleeper) Sleep(d time.Duration) {
	s.Slept = append(s.Slept, d)
}

// CountingUserStore serves identities from a map and counts lookups, so
// tests can assert memoization. A non-nil Err is returned from every lookup
// to simulate an unavailable store.
type CountingUserStore struct {
	Users map[string]*domainauth.Identity
	Err   error
	Calls int
}

// NewCountingUserStore creates a store with the given identities keyed by
// username.
func NewCountingUserStore(users ...*domainauth.Identity) *CountingUserStore {
	m := make(map[string]*domainauth.Identity, len(users))
	for _, u := range users {
		m[u.UserName] = u
	}
	return &CountingUserStore{Users: m}
}

func (s *CountingUserStore) FindByUserName(_ context.Context, userName string) (*domainauth.Identity, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.Users[userName]
	if !ok {
		return nil, ports.ErrUserNotFound
	}
	// Copy so callers clearing the password hash don't mutate the fixture.
	clone := *user
	return &clone, nil
}

// MemoryIdentityStore is an in-memory identity record store honoring
// record expiry through an injectable clock.
type MemoryIdentityStore struct {
	Clock   ports.Clock
	mu      sync.Mutex
	records map[string]domainauth.IdentityRecord
}

// NewMemoryIdentityStore creates an empty store using the given clock
// (system clock when nil).
func NewMemoryIdentityStore(clock ports.Clock) *MemoryIdentityStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &MemoryIdentityStore{Clock: clock, records: map[string]domainauth.IdentityRecord{}}
}

func (s *MemoryIdentityStore) Get(_ context.Context, sessionID string) (domainauth.IdentityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[sessionID]
	if !ok || rec.Expired(s.Clock.Now()) {
		return domainauth.IdentityRecord{}, ports.ErrRecordNotFound
	}
	return rec, nil
}

func (s *MemoryIdentityStore) Save(_ context.Context, rec domainauth.IdentityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SessionID] = rec
	return nil
}

func (s *MemoryIdentityStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

// Has reports whether a record is stored, ignoring expiry. Test inspection
// helper.
func (s *MemoryIdentityStore) Has(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[sessionID]
	return ok
}

// MemoryAuthorizationStore is an in-memory authorization record store
// honoring record expiry through an injectable clock.
type MemoryAuthorizationStore struct {
	Clock   ports.Clock
	mu      sync.Mutex
	records map[string]domainauth.AuthorizationRecord
}

// NewMemoryAuthorizationStore creates an empty store using the given clock
// (system clock when nil).
func NewMemoryAuthorizationStore(clock ports.Clock) *MemoryAuthorizationStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &MemoryAuthorizationStore{Clock: clock, records: map[string]domainauth.AuthorizationRecord{}}
}

func (s *MemoryAuthorizationStore) Get(_ context.Context, sessionID string) (domainauth.AuthorizationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[sessionID]
	if !ok || rec.Expired(s.Clock.Now()) {
		return domainauth.AuthorizationRecord{}, ports.ErrRecordNotFound
	}
	return rec, nil
}

func (s *MemoryAuthorizationStore) Save(_ context.Context, rec domainauth.AuthorizationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SessionID] = rec
	return nil
}

func (s *MemoryAuthorizationStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

// Has reports whether a record is stored, ignoring expiry.
func (s *MemoryAuthorizationStore) Has(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[sessionID]
	return ok
}

// Current returns the stored record regardless of expiry, for assertions on
// the authorized flag after logout.
func (s *MemoryAuthorizationStore) Current(sessionID string) (domainauth.AuthorizationRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[sessionID]
	return rec, ok
}

// PlainVerifier treats the stored hash as the plaintext itself. It keeps
// unit tests free of bcrypt cost while exercising the verification path.
type PlainVerifier struct{}

func (PlainVerifier) Verify(plain, hash string) (bool, error) {
	return plain == hash && hash != "", nil
}
