package staticusers

// Package staticusers provides a user store backed by a fixed credentials
// list from configuration. Intended for small deployments and development;
// production systems use the database store in internal/data.

import (
	"context"

	domainauth "github.com/signonhq/signon/internal/domain/auth"
	"github.com/signonhq/signon/internal/ports"
)

// Credential is one configured user entry.
type Credential struct {
	UserName     string
	FullName     string
	PasswordHash string
	Admin        bool
	Roles        []string
	Permissions  []string
}

// Store looks identities up in a configured credentials list. The sequence
// index of an entry becomes the identity id.
type Store struct {
	creds []Credential
}

// New creates a static user store from the given credentials.
func New(creds []Credential) *Store {
	return &Store{creds: creds}
}

func (s *Store) FindByUserName(_ context.Context, userName string) (*domainauth.Identity, error) {
	for i, cred := range s.creds {
		if cred.UserName != userName {
			continue
		}
		id := int64(i)
		user := &domainauth.Identity{
			ID:           &id,
			Active:       true,
			UserName:     cred.UserName,
			FullName:     cred.FullName,
			PasswordHash: cred.PasswordHash,
			Admin:        cred.Admin,
		}
		user.Roles.ReplaceNames(cred.Roles)
		user.Permissions.ReplaceNames(cred.Permissions)
		return user, nil
	}
	return nil, ports.ErrUserNotFound
}

var _ ports.UserStore = (*Store)(nil)
