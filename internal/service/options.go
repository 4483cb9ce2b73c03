package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownConfigKey is returned by ApplyConfiguration in strict mode for a
// configuration key with no matching setter.
var ErrUnknownConfigKey = errors.New("unknown configuration key")

// Default expiration windows and delay, matching the classic two-tier
// remember-me split: identity lives 30 days, authorization 10 minutes.
const (
	DefaultExpirationIdentity        = 30 * 24 * time.Hour
	DefaultExpirationAuthorization   = 10 * time.Minute
	DefaultInvalidCredentialsTimeout = 3 * time.Second
)

// Options carries the auth module configuration. URLs left empty default to
// the current request URL at the HTTP layer.
type Options struct {
	ExpirationIdentity        time.Duration
	ExpirationAuthorization   time.Duration
	InvalidCredentialsTimeout time.Duration

	SignedInURL  string
	SignedOutURL string
	SignErrorURL string

	SignInRoute  RouteDescriptor
	SignOutRoute RouteDescriptor

	// AnyMethodRoutes is true when a configured route's method differs from
	// POST: the router integration must then register the auth routes for
	// every HTTP method instead of POST only.
	AnyMethodRoutes bool

	// Translator localizes form labels and error messages. Nil means no
	// translation.
	Translator func(string) string
}

// DefaultOptions returns the module defaults: POST-only /signin and
// /signout routes, 30 day identity window, 10 minute authorization window,
// 3 second invalid-credentials delay.
func DefaultOptions() Options {
	return Options{
		ExpirationIdentity:        DefaultExpirationIdentity,
		ExpirationAuthorization:   DefaultExpirationAuthorization,
		InvalidCredentialsTimeout: DefaultInvalidCredentialsTimeout,
		SignInRoute:               DefaultSignInRoute(),
		SignOutRoute:              DefaultSignOutRoute(),
	}
}

// Translate localizes a user-visible message through the configured
// Translator, returning the message unchanged when none is set.
func (o Options) Translate(msg string) string {
	if o.Translator == nil {
		return msg
	}
	return o.Translator(msg)
}

// SetSignInRoute replaces the sign-in route descriptor and escalates
// AnyMethodRoutes when the method is not POST.
func (o *Options) SetSignInRoute(r RouteDescriptor) {
	o.SignInRoute = r
	if !r.IsPost() {
		o.AnyMethodRoutes = true
	}
}

// SetSignOutRoute replaces the sign-out route descriptor and escalates
// AnyMethodRoutes when the method is not POST.
func (o *Options) SetSignOutRoute(r RouteDescriptor) {
	o.SignOutRoute = r
	if !r.IsPost() {
		o.AnyMethodRoutes = true
	}
}

// ApplyConfiguration applies a batch of named option values, dispatching
// each key to its setter. In strict mode an unknown key returns
// ErrUnknownConfigKey; otherwise unknown keys are ignored.
func (o *Options) ApplyConfiguration(values map[string]any, strict bool) error {
	for key, value := range values {
		if err := o.applyOne(key, value); err != nil {
			if errors.Is(err, ErrUnknownConfigKey) && !strict {
				continue
			}
			return err
		}
	}
	return nil
}

func (o *Options) applyOne(key string, value any) error {
	switch key {
	case "expirationIdentity":
		d, err := asDuration(key, value)
		if err != nil {
			return err
		}
		o.ExpirationIdentity = d
	case "expirationAuthorization":
		d, err := asDuration(key, value)
		if err != nil {
			return err
		}
		o.ExpirationAuthorization = d
	case "invalidCredentialsTimeout":
		d, err := asDuration(key, value)
		if err != nil {
			return err
		}
		o.InvalidCredentialsTimeout = d
	case "signedInUrl":
		s, err := asString(key, value)
		if err != nil {
			return err
		}
		o.SignedInURL = s
	case "signedOutUrl":
		s, err := asString(key, value)
		if err != nil {
			return err
		}
		o.SignedOutURL = s
	case "signErrorUrl":
		s, err := asString(key, value)
		if err != nil {
			return err
		}
		o.SignErrorURL = s
	case "signInRoute":
		r, err := asRoute(key, value)
		if err != nil {
			return err
		}
		o.SetSignInRoute(r)
	case "signOutRoute":
		r, err := asRoute(key, value)
		if err != nil {
			return err
		}
		o.SetSignOutRoute(r)
	case "translator":
		fn, ok := value.(func(string) string)
		if !ok && value != nil {
			return fmt.Errorf("configuration key %q: expected func(string) string, got %T", key, value)
		}
		o.Translator = fn
	default:
		return fmt.Errorf("%w: %q", ErrUnknownConfigKey, key)
	}
	return nil
}

func asDuration(key string, value any) (time.Duration, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case int:
		// Plain integers are seconds.
		return time.Duration(v) * time.Second, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("configuration key %q: %w", key, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("configuration key %q: expected duration, got %T", key, value)
	}
}

func asString(key string, value any) (string, error) {
	if value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("configuration key %q: expected string, got %T", key, value)
	}
	return s, nil
}

func asRoute(key string, value any) (RouteDescriptor, error) {
	r, ok := value.(RouteDescriptor)
	if !ok {
		return RouteDescriptor{}, fmt.Errorf("configuration key %q: expected RouteDescriptor, got %T", key, value)
	}
	return r, nil
}
