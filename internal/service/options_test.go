package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_ApplyConfiguration(t *testing.T) {
	opts := DefaultOptions()

	err := opts.ApplyConfiguration(map[string]any{
		"expirationIdentity":        7 * 24 * time.Hour,
		"expirationAuthorization":   300, // plain int means seconds
		"invalidCredentialsTimeout": "5s",
		"signedInUrl":               "/dashboard",
		"signErrorUrl":              nil,
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, opts.ExpirationIdentity)
	assert.Equal(t, 5*time.Minute, opts.ExpirationAuthorization)
	assert.Equal(t, 5*time.Second, opts.InvalidCredentialsTimeout)
	assert.Equal(t, "/dashboard", opts.SignedInURL)
	assert.Empty(t, opts.SignErrorURL)
}

func TestOptions_ApplyConfiguration_UnknownKey(t *testing.T) {
	opts := DefaultOptions()

	err := opts.ApplyConfiguration(map[string]any{"noSuchOption": 1}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigKey)

	// Lenient mode ignores the key.
	err = opts.ApplyConfiguration(map[string]any{"noSuchOption": 1}, false)
	assert.NoError(t, err)
}

func TestOptions_ApplyConfiguration_BadValueType(t *testing.T) {
	opts := DefaultOptions()

	err := opts.ApplyConfiguration(map[string]any{"signedInUrl": 42}, false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownConfigKey)
}

func TestOptions_Translate(t *testing.T) {
	opts := DefaultOptions()

	// No translator configured: messages pass through unchanged.
	assert.Equal(t, "Unauthorized", opts.Translate("Unauthorized"))

	err := opts.ApplyConfiguration(map[string]any{
		"translator": func(msg string) string {
			if msg == "Unauthorized" {
				return "Nicht autorisiert"
			}
			return msg
		},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, "Nicht autorisiert", opts.Translate("Unauthorized"))
	assert.Equal(t, "Forbidden", opts.Translate("Forbidden"))
}

func TestOptions_RouteMethodEscalation(t *testing.T) {
	opts := DefaultOptions()
	require.False(t, opts.AnyMethodRoutes, "both defaults are POST-only")

	opts.SetSignInRoute(RouteDescriptor{Name: "auth_signin", Pattern: "/login", Method: http.MethodPost})
	assert.False(t, opts.AnyMethodRoutes, "custom POST route keeps POST-only registration")

	opts.SetSignOutRoute(RouteDescriptor{Name: "auth_signout", Pattern: "/logout", Method: http.MethodGet})
	assert.True(t, opts.AnyMethodRoutes, "non-POST route escalates to all-methods registration")
}

func TestOptions_RouteEscalationViaConfiguration(t *testing.T) {
	opts := DefaultOptions()

	err := opts.ApplyConfiguration(map[string]any{
		"signInRoute": RouteDescriptor{Name: "auth_signin", Pattern: "/login"},
	}, true)
	require.NoError(t, err)

	// A descriptor without an explicit method is not POST-only.
	assert.True(t, opts.AnyMethodRoutes)
}
