package redis

// Package redis provides Redis-backed session record stores. The two record
// kinds live in independent key namespaces with independent TTLs, which is
// what gives the identity/authorization split its two-tier expiration.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/signonhq/signon/internal/domain/auth"
	"github.com/signonhq/signon/internal/ports"
)

// Default key prefixes for the two record namespaces.
const (
	DefaultIdentityPrefix      = "auth:identity:"
	DefaultAuthorizationPrefix = "auth:authz:"
)

// IdentityStore persists identity records ("remembered username") in Redis.
type IdentityStore struct {
	client redis.UniversalClient
	prefix string
	clock  ports.Clock
}

// NewIdentityStore creates an identity record store with the default prefix.
func NewIdentityStore(client redis.UniversalClient) *IdentityStore {
	return &IdentityStore{client: client, prefix: DefaultIdentityPrefix, clock: ports.SystemClock{}}
}

// NewIdentityStoreWithPrefix creates an identity record store with a custom
// key prefix.
func NewIdentityStoreWithPrefix(client redis.UniversalClient, prefix string) *IdentityStore {
	return &IdentityStore{client: client, prefix: prefix, clock: ports.SystemClock{}}
}

func (s *IdentityStore) Save(ctx context.Context, rec domainauth.IdentityRecord) error {
	data, ttl, err := marshalRecord(s.clock, rec.SessionID, rec.ExpiresAt, rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+rec.SessionID, data, ttl).Err()
}

func (s *IdentityStore) Get(ctx context.Context, sessionID string) (domainauth.IdentityRecord, error) {
	var rec domainauth.IdentityRecord
	if err := getRecord(ctx, s.client, s.prefix, sessionID, &rec); err != nil {
		return domainauth.IdentityRecord{}, err
	}
	// Redis TTL should have removed it already, but be defensive.
	if rec.Expired(s.clock.Now()) {
		if err := s.Delete(ctx, sessionID); err != nil {
			return domainauth.IdentityRecord{}, fmt.Errorf("cleanup expired identity record: %w", err)
		}
		return domainauth.IdentityRecord{}, ports.ErrRecordNotFound
	}
	return rec, nil
}

func (s *IdentityStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}

// AuthorizationStore persists authorization records ("currently authorized")
// in Redis.
type AuthorizationStore struct {
	client redis.UniversalClient
	prefix string
	clock  ports.Clock
}

// NewAuthorizationStore creates an authorization record store with the
// default prefix.
func NewAuthorizationStore(client redis.UniversalClient) *AuthorizationStore {
	return &AuthorizationStore{client: client, prefix: DefaultAuthorizationPrefix, clock: ports.SystemClock{}}
}

// NewAuthorizationStoreWithPrefix creates an authorization record store with
// a custom key prefix.
func NewAuthorizationStoreWithPrefix(client redis.UniversalClient, prefix string) *AuthorizationStore {
	return &AuthorizationStore{client: client, prefix: prefix, clock: ports.SystemClock{}}
}

func (s *AuthorizationStore) Save(ctx context.Context, rec domainauth.AuthorizationRecord) error {
	data, ttl, err := marshalRecord(s.clock, rec.SessionID, rec.ExpiresAt, rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+rec.SessionID, data, ttl).Err()
}

func (s *AuthorizationStore) Get(ctx context.Context, sessionID string) (domainauth.AuthorizationRecord, error) {
	var rec domainauth.AuthorizationRecord
	if err := getRecord(ctx, s.client, s.prefix, sessionID, &rec); err != nil {
		return domainauth.AuthorizationRecord{}, err
	}
	if rec.Expired(s.clock.Now()) {
		if err := s.Delete(ctx, sessionID); err != nil {
			return domainauth.AuthorizationRecord{}, fmt.Errorf("cleanup expired authorization record: %w", err)
		}
		return domainauth.AuthorizationRecord{}, ports.ErrRecordNotFound
	}
	return rec, nil
}

func (s *AuthorizationStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}

// marshalRecord validates the key and expiry and returns the JSON payload
// with its TTL.
func marshalRecord(clock ports.Clock, sessionID string, expiresAt time.Time, rec any) ([]byte, time.Duration, error) {
	if sessionID == "" {
		return nil, 0, errors.New("session id cannot be empty")
	}
	ttl := expiresAt.Sub(clock.Now())
	if ttl <= 0 {
		return nil, 0, errors.New("record is already expired")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal session record: %w", err)
	}
	return data, ttl, nil
}

func getRecord(ctx context.Context, client redis.UniversalClient, prefix, sessionID string, out any) error {
	if sessionID == "" {
		return ports.ErrRecordNotFound
	}
	data, err := client.Get(ctx, prefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.ErrRecordNotFound
		}
		return fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("unmarshal session record: %w", err)
	}
	return nil
}

var (
	_ ports.IdentityRecordStore      = (*IdentityStore)(nil)
	_ ports.AuthorizationRecordStore = (*AuthorizationStore)(nil)
)
