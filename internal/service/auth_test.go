package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocks "github.com/signonhq/signon/internal/mocks/auth"
)

func newAuthService(f *stateFixture, sessionID string) (*AuthService, *mocks.RecordingSleeper) {
	sleeper := &mocks.RecordingSleeper{}
	svc := NewAuthService(AuthServiceOptions{
		State:     f.state,
		SessionID: sessionID,
		Options:   DefaultOptions(),
		Sleeper:   sleeper,
	})
	return svc, sleeper
}

func TestAuthService_GetUser_Memoized(t *testing.T) {
	f := newStateFixture(alice())
	ctx := context.Background()

	_, err := f.state.Login(ctx, "sess-1", "alice", "secret")
	require.NoError(t, err)
	f.users.Calls = 0

	svc, _ := newAuthService(f, "sess-1")

	user, err := svc.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)

	again, err := svc.GetUser(ctx)
	require.NoError(t, err)
	assert.Same(t, user, again)
	assert.Equal(t, 1, f.users.Calls, "second call must not re-trigger the lookup")
}

func TestAuthService_GetUser_MemoizesNil(t *testing.T) {
	f := newStateFixture(alice())
	ctx := context.Background()

	svc, _ := newAuthService(f, "sess-unknown")

	user, err := svc.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	// A record appearing after the first resolve stays invisible for the
	// rest of the request.
	_, err = f.state.Login(ctx, "sess-unknown", "alice", "secret")
	require.NoError(t, err)

	user, err = svc.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthService_IsAuthenticated(t *testing.T) {
	f := newStateFixture(alice())
	ctx := context.Background()

	svc, _ := newAuthService(f, "sess-1")
	ok, err := svc.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	svc.SetUser(alice())
	ok, err = svc.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthService_SetUser_ClearsPasswordHash(t *testing.T) {
	f := newStateFixture()
	svc, _ := newAuthService(f, "sess-1")

	user := alice()
	svc.SetUser(user)
	assert.Empty(t, user.PasswordHash)

	got, err := svc.GetUser(context.Background())
	require.NoError(t, err)
	assert.Same(t, user, got)
	assert.Zero(t, f.users.Calls)
}

func TestAuthService_VerifyCredentials_Success(t *testing.T) {
	f := newStateFixture(alice())
	ctx := context.Background()

	svc, sleeper := newAuthService(f, "sess-1")

	user, err := svc.VerifyCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, sleeper.Slept)

	// The login is visible to the rest of the request without a second
	// session round-trip.
	f.users.Calls = 0
	got, err := svc.GetUser(ctx)
	require.NoError(t, err)
	assert.Same(t, user, got)
	assert.Zero(t, f.users.Calls)
}

func TestAuthService_VerifyCredentials_FailureDelays(t *testing.T) {
	f := newStateFixture(alice())
	svc, sleeper := newAuthService(f, "sess-1")

	user, err := svc.VerifyCredentials(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.Nil(t, user)
	require.Len(t, sleeper.Slept, 1)
	assert.Equal(t, DefaultInvalidCredentialsTimeout, sleeper.Slept[0])

	// Every failed attempt incurs the full delay independently.
	_, err = svc.VerifyCredentials(context.Background(), "mallory", "secret")
	require.NoError(t, err)
	assert.Len(t, sleeper.Slept, 2)
}

func TestAuthService_VerifyCredentials_InfraErrorNoDelay(t *testing.T) {
	f := newStateFixture(alice())
	f.users.Err = errors.New("storage offline")
	svc, sleeper := newAuthService(f, "sess-1")

	_, err := svc.VerifyCredentials(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.Empty(t, sleeper.Slept)
}

func TestAuthService_VerifyCredentials_RealDelayBlocks(t *testing.T) {
	f := newStateFixture(alice())
	opts := DefaultOptions()
	opts.InvalidCredentialsTimeout = 30 * time.Millisecond
	svc := NewAuthService(AuthServiceOptions{
		State:     f.state,
		SessionID: "sess-1",
		Options:   opts,
	})

	start := time.Now()
	user, err := svc.VerifyCredentials(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestAuthService_Logout_ResetsMemoizedUser(t *testing.T) {
	f := newStateFixture(alice())
	ctx := context.Background()

	svc, _ := newAuthService(f, "sess-1")
	user, err := svc.VerifyCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)

	require.NoError(t, svc.Logout(ctx, false))

	got, err := svc.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 30*24*time.Hour, opts.ExpirationIdentity)
	assert.Equal(t, 10*time.Minute, opts.ExpirationAuthorization)
	assert.Equal(t, 3*time.Second, opts.InvalidCredentialsTimeout)
	assert.Equal(t, "/signin", opts.SignInRoute.Pattern)
	assert.Equal(t, "/signout", opts.SignOutRoute.Pattern)
	assert.False(t, opts.AnyMethodRoutes)
}
