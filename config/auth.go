package config

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// UserSource selects where user accounts are loaded from.
type UserSource string

const (
	// UserSourceDatabase reads users from the configured PostgreSQL table.
	UserSourceDatabase UserSource = "database"
	// UserSourceStatic reads users from the AUTH_STATIC_USERS list
	// (for development and small deployments).
	UserSourceStatic UserSource = "static"
)

// UnmarshalText implements encoding.TextUnmarshaler for UserSource.
func (s *UserSource) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "database", "static":
		*s = UserSource(v)
		return nil
	default:
		return fmt.Errorf("invalid UserSource: %q (valid options: database, static)", v)
	}
}

// StaticUser is one parsed entry of the AUTH_STATIC_USERS list.
type StaticUser struct {
	UserName     string
	PasswordHash string
	FullName     string
	Admin        bool
	Roles        []string
	Permissions  []string
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Source determines which user store backs credential checks.
	Source UserSource `env:"AUTH_USER_SOURCE" envDefault:"database"`

	// ExpirationIdentity is how long a session remembers its username.
	ExpirationIdentity time.Duration `env:"AUTH_EXPIRATION_IDENTITY" envDefault:"720h"`

	// ExpirationAuthorization is how long a session stays fully signed in
	// without activity.
	ExpirationAuthorization time.Duration `env:"AUTH_EXPIRATION_AUTHORIZATION" envDefault:"10m"`

	// InvalidCredentialsTimeout is the delay imposed on every failed
	// sign-in attempt.
	InvalidCredentialsTimeout time.Duration `env:"AUTH_INVALID_CREDENTIALS_TIMEOUT" envDefault:"3s"`

	// Sign-in and sign-out submit routes. A method other than POST makes
	// the router accept the auth routes for any method.
	SignInPath    string `env:"AUTH_SIGNIN_PATH"    envDefault:"/signin"`
	SignInMethod  string `env:"AUTH_SIGNIN_METHOD"  envDefault:"POST"`
	SignOutPath   string `env:"AUTH_SIGNOUT_PATH"   envDefault:"/signout"`
	SignOutMethod string `env:"AUTH_SIGNOUT_METHOD" envDefault:"POST"`

	// Post-submit redirect targets. Empty means "back to the referring
	// page".
	SignedInURL  string `env:"AUTH_SIGNED_IN_URL"  envDefault:""`
	SignedOutURL string `env:"AUTH_SIGNED_OUT_URL" envDefault:""`
	SignErrorURL string `env:"AUTH_SIGN_ERROR_URL" envDefault:""`

	// StaticUsers holds credential entries when Source=static. Entry
	// format, colon separated:
	//
	//	userName:bcryptHash:fullName[:admin[:role,role[:perm,perm]]]
	//
	// Entries are separated by semicolons.
	StaticUsers []string `env:"AUTH_STATIC_USERS" envSeparator:";"`

	// User table layout overrides when Source=database.
	UserTable          string `env:"AUTH_USER_TABLE"            envDefault:"users"`
	UserIDColumn       string `env:"AUTH_USER_ID_COLUMN"        envDefault:"id"`
	UserActiveColumn   string `env:"AUTH_USER_ACTIVE_COLUMN"    envDefault:"active"`
	UserNameColumn     string `env:"AUTH_USER_NAME_COLUMN"      envDefault:"user_name"`
	PasswordHashColumn string `env:"AUTH_PASSWORD_HASH_COLUMN"  envDefault:"password_hash"`
	FullNameColumn     string `env:"AUTH_FULL_NAME_COLUMN"      envDefault:"full_name"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.ExpirationIdentity <= 0 {
		a.ExpirationIdentity = 720 * time.Hour
	}
	if a.ExpirationAuthorization <= 0 {
		a.ExpirationAuthorization = 10 * time.Minute
	}
	if a.InvalidCredentialsTimeout < 0 {
		a.InvalidCredentialsTimeout = 3 * time.Second
	}
	a.SignInMethod = normalizeMethod(a.SignInMethod)
	a.SignOutMethod = normalizeMethod(a.SignOutMethod)
}

func normalizeMethod(m string) string {
	m = strings.ToUpper(strings.TrimSpace(m))
	if m == "" {
		return http.MethodPost
	}
	return m
}

// ParseStaticUsers parses the StaticUsers entries. Bcrypt hashes never
// contain a colon, so colon-splitting the entry is safe.
func (a *AuthConfig) ParseStaticUsers() ([]StaticUser, error) {
	users := make([]StaticUser, 0, len(a.StaticUsers))
	for i, entry := range a.StaticUsers {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 6 {
			return nil, fmt.Errorf("static user entry %d: expected 2-6 colon-separated fields, got %d", i, len(parts))
		}
		u := StaticUser{
			UserName:     strings.TrimSpace(parts[0]),
			PasswordHash: parts[1],
		}
		if u.UserName == "" {
			return nil, fmt.Errorf("static user entry %d: empty user name", i)
		}
		if len(parts) > 2 {
			u.FullName = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 && parts[3] != "" {
			admin, err := strconv.ParseBool(parts[3])
			if err != nil {
				return nil, fmt.Errorf("static user entry %d: admin flag: %w", i, err)
			}
			u.Admin = admin
		}
		if len(parts) > 4 {
			u.Roles = splitList(parts[4])
		}
		if len(parts) > 5 {
			u.Permissions = splitList(parts[5])
		}
		users = append(users, u)
	}
	return users, nil
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
