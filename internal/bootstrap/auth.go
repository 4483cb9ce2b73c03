package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/signonhq/signon/config"
	redisadapter "github.com/signonhq/signon/internal/adapters/redis"
	"github.com/signonhq/signon/internal/adapters/staticusers"
	"github.com/signonhq/signon/internal/data"
	httpx "github.com/signonhq/signon/internal/http"
	"github.com/signonhq/signon/internal/password"
	"github.com/signonhq/signon/internal/ports"
	"github.com/signonhq/signon/internal/service"
)

// AuthConfig contains configuration for the auth stack.
type AuthConfig struct {
	Auth        config.AuthConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthStack bundles the built auth components for the HTTP layer.
type AuthStack struct {
	State   *service.SessionState
	Options service.Options
	Factory httpx.AuthServiceFactory
}

// BuildAuthStack wires the user store, the Redis record stores, and the
// session state machine into a per-request auth service factory.
func BuildAuthStack(cfg AuthConfig) (*AuthStack, error) {
	users, err := buildUserStore(cfg)
	if err != nil {
		return nil, err
	}

	state := service.NewSessionState(service.SessionStateOptions{
		Users:            users,
		Identities:       redisadapter.NewIdentityStore(cfg.RedisClient),
		Authorizations:   redisadapter.NewAuthorizationStore(cfg.RedisClient),
		Verifier:         password.BcryptVerifier{},
		IdentityTTL:      cfg.Auth.ExpirationIdentity,
		AuthorizationTTL: cfg.Auth.ExpirationAuthorization,
	})

	opts := service.DefaultOptions()
	opts.ExpirationIdentity = cfg.Auth.ExpirationIdentity
	opts.ExpirationAuthorization = cfg.Auth.ExpirationAuthorization
	opts.InvalidCredentialsTimeout = cfg.Auth.InvalidCredentialsTimeout
	opts.SignedInURL = cfg.Auth.SignedInURL
	opts.SignedOutURL = cfg.Auth.SignedOutURL
	opts.SignErrorURL = cfg.Auth.SignErrorURL
	opts.SetSignInRoute(service.RouteDescriptor{
		Name:    "auth_signin",
		Pattern: cfg.Auth.SignInPath,
		Method:  cfg.Auth.SignInMethod,
	})
	opts.SetSignOutRoute(service.RouteDescriptor{
		Name:    "auth_signout",
		Pattern: cfg.Auth.SignOutPath,
		Method:  cfg.Auth.SignOutMethod,
	})

	if opts.AnyMethodRoutes && cfg.Logger != nil {
		cfg.Logger.Warn("auth routes configured with a non-POST method; registering for any method",
			"signin_method", cfg.Auth.SignInMethod,
			"signout_method", cfg.Auth.SignOutMethod,
		)
	}
	if cfg.Auth.SignInMethod == http.MethodGet && cfg.Logger != nil {
		cfg.Logger.Warn("GET sign-in passes credentials in the query string; avoid outside development")
	}

	stack := &AuthStack{State: state, Options: opts}
	stack.Factory = func(sessionID string) *service.AuthService {
		return service.NewAuthService(service.AuthServiceOptions{
			State:     state,
			SessionID: sessionID,
			Options:   opts,
		})
	}
	return stack, nil
}

func buildUserStore(cfg AuthConfig) (ports.UserStore, error) {
	switch cfg.Auth.Source {
	case config.UserSourceStatic:
		parsed, err := cfg.Auth.ParseStaticUsers()
		if err != nil {
			return nil, fmt.Errorf("parse static users: %w", err)
		}
		if len(parsed) == 0 {
			return nil, fmt.Errorf("user source %q requires AUTH_STATIC_USERS entries", cfg.Auth.Source)
		}
		creds := make([]staticusers.Credential, 0, len(parsed))
		for _, u := range parsed {
			creds = append(creds, staticusers.Credential{
				UserName:     u.UserName,
				FullName:     u.FullName,
				PasswordHash: u.PasswordHash,
				Admin:        u.Admin,
				Roles:        u.Roles,
				Permissions:  u.Permissions,
			})
		}
		if cfg.Logger != nil {
			cfg.Logger.Info("using static user store", "users", len(creds))
		}
		return staticusers.New(creds), nil

	case config.UserSourceDatabase:
		if cfg.DB == nil {
			return nil, fmt.Errorf("user source %q requires a database connection", cfg.Auth.Source)
		}
		return data.NewUserRepoWithStructure(cfg.DB, data.TableStructure{
			Table: cfg.Auth.UserTable,
			Columns: data.UserColumns{
				ID:           cfg.Auth.UserIDColumn,
				Active:       cfg.Auth.UserActiveColumn,
				UserName:     cfg.Auth.UserNameColumn,
				PasswordHash: cfg.Auth.PasswordHashColumn,
				FullName:     cfg.Auth.FullNameColumn,
			},
		}), nil

	default:
		return nil, fmt.Errorf("unknown user source: %q", cfg.Auth.Source)
	}
}
