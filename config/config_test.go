package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Source != UserSourceDatabase {
		t.Errorf("default user source = %q, want database", cfg.Auth.Source)
	}
	if cfg.Auth.ExpirationIdentity != 720*time.Hour {
		t.Errorf("default identity expiration = %v, want 720h", cfg.Auth.ExpirationIdentity)
	}
	if cfg.Auth.ExpirationAuthorization != 10*time.Minute {
		t.Errorf("default authorization expiration = %v, want 10m", cfg.Auth.ExpirationAuthorization)
	}
	if cfg.Auth.InvalidCredentialsTimeout != 3*time.Second {
		t.Errorf("default invalid credentials timeout = %v, want 3s", cfg.Auth.InvalidCredentialsTimeout)
	}
	if cfg.Auth.SignInPath != "/signin" || cfg.Auth.SignInMethod != "POST" {
		t.Errorf("default sign-in route = %s %s, want POST /signin", cfg.Auth.SignInMethod, cfg.Auth.SignInPath)
	}
	if cfg.Auth.SignOutPath != "/signout" || cfg.Auth.SignOutMethod != "POST" {
		t.Errorf("default sign-out route = %s %s, want POST /signout", cfg.Auth.SignOutMethod, cfg.Auth.SignOutPath)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("default HTTP addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5432 {
		t.Errorf("default postgres = %s:%d, want localhost:5432", cfg.Postgres.Host, cfg.Postgres.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("default redis addr = %q, want localhost:6379", cfg.Redis.Addr)
	}
}

func TestAppConfigFromEnv(t *testing.T) {
	t.Setenv("AUTH_USER_SOURCE", "static")
	t.Setenv("AUTH_EXPIRATION_AUTHORIZATION", "30m")
	t.Setenv("AUTH_SIGNIN_METHOD", "get")
	t.Setenv("AUTH_USER_TABLE", "accounts")
	t.Setenv("DB_NAME", "signon_test")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Source != UserSourceStatic {
		t.Errorf("user source = %q, want static", cfg.Auth.Source)
	}
	if cfg.Auth.ExpirationAuthorization != 30*time.Minute {
		t.Errorf("authorization expiration = %v, want 30m", cfg.Auth.ExpirationAuthorization)
	}
	if cfg.Auth.SignInMethod != "GET" {
		t.Errorf("sign-in method = %q, want GET after sanitize", cfg.Auth.SignInMethod)
	}
	if cfg.Auth.UserTable != "accounts" {
		t.Errorf("user table = %q, want accounts", cfg.Auth.UserTable)
	}
	if cfg.Postgres.Name != "signon_test" {
		t.Errorf("postgres name = %q, want signon_test", cfg.Postgres.Name)
	}
}

func TestUserSourceUnmarshalInvalid(t *testing.T) {
	t.Setenv("AUTH_USER_SOURCE", "ldap")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatal("expected error for invalid user source")
	}
}

func TestAuthConfigSanitize(t *testing.T) {
	a := AuthConfig{
		ExpirationIdentity:        -time.Hour,
		ExpirationAuthorization:   0,
		InvalidCredentialsTimeout: -1,
		SignInMethod:              " post ",
		SignOutMethod:             "",
	}
	a.Sanitize()

	if a.ExpirationIdentity != 720*time.Hour {
		t.Errorf("identity expiration = %v, want 720h", a.ExpirationIdentity)
	}
	if a.ExpirationAuthorization != 10*time.Minute {
		t.Errorf("authorization expiration = %v, want 10m", a.ExpirationAuthorization)
	}
	if a.InvalidCredentialsTimeout != 3*time.Second {
		t.Errorf("invalid credentials timeout = %v, want 3s", a.InvalidCredentialsTimeout)
	}
	if a.SignInMethod != "POST" || a.SignOutMethod != "POST" {
		t.Errorf("methods = %q/%q, want POST/POST", a.SignInMethod, a.SignOutMethod)
	}
}

func TestParseStaticUsers(t *testing.T) {
	tests := []struct {
		name        string
		input       []string
		expected    []StaticUser
		expectError bool
	}{
		{
			name:  "minimal entry",
			input: []string{"alice:$2a$10$hash"},
			expected: []StaticUser{
				{UserName: "alice", PasswordHash: "$2a$10$hash"},
			},
		},
		{
			name:  "full entry",
			input: []string{"bob:$2a$10$hash:Bob Brown:true:editor,viewer:report.view,report.edit"},
			expected: []StaticUser{
				{
					UserName:     "bob",
					PasswordHash: "$2a$10$hash",
					FullName:     "Bob Brown",
					Admin:        true,
					Roles:        []string{"editor", "viewer"},
					Permissions:  []string{"report.view", "report.edit"},
				},
			},
		},
		{
			name:  "blank entries skipped",
			input: []string{"", "  ", "carol:$2a$10$hash:Carol"},
			expected: []StaticUser{
				{UserName: "carol", PasswordHash: "$2a$10$hash", FullName: "Carol"},
			},
		},
		{
			name:        "missing password hash",
			input:       []string{"dave"},
			expectError: true,
		},
		{
			name:        "empty user name",
			input:       []string{":$2a$10$hash"},
			expectError: true,
		},
		{
			name:        "bad admin flag",
			input:       []string{"erin:$2a$10$hash:Erin:maybe"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AuthConfig{StaticUsers: tt.input}
			users, err := a.ParseStaticUsers()
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStaticUsers: %v", err)
			}
			if !reflect.DeepEqual(users, tt.expected) {
				t.Errorf("ParseStaticUsers = %+v, want %+v", users, tt.expected)
			}
		})
	}
}
