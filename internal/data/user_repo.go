package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/signonhq/signon/internal/data/pgxutil"
	domainauth "github.com/signonhq/signon/internal/domain/auth"
	"github.com/signonhq/signon/internal/ports"
)

// UserColumns maps identity fields to database column names.
type UserColumns struct {
	ID           string
	Active       string
	UserName     string
	PasswordHash string
	FullName     string
}

// TableStructure describes where and how users are stored. Table and column
// names are configurable so the repo can sit on top of an existing schema.
type TableStructure struct {
	Table   string
	Columns UserColumns
}

// DefaultTableStructure returns the conventional users table layout.
func DefaultTableStructure() TableStructure {
	return TableStructure{
		Table: "users",
		Columns: UserColumns{
			ID:           "id",
			Active:       "active",
			UserName:     "user_name",
			PasswordHash: "password_hash",
			FullName:     "full_name",
		},
	}
}

func (t TableStructure) validate() error {
	names := []string{
		t.Table,
		t.Columns.ID, t.Columns.Active, t.Columns.UserName,
		t.Columns.PasswordHash, t.Columns.FullName,
	}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return ErrInvalidTableStructure
		}
	}
	return nil
}

// UserRepo loads identities from a PostgreSQL users table.
type UserRepo struct {
	DB        *sql.DB
	Structure TableStructure
}

// NewUserRepo creates a user repository with the default table structure.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, Structure: DefaultTableStructure()}
}

// NewUserRepoWithStructure creates a user repository over a custom table
// layout.
func NewUserRepoWithStructure(db *sql.DB, structure TableStructure) *UserRepo {
	return &UserRepo{DB: db, Structure: structure}
}

type userRow struct {
	ID           int64  `db:"id"`
	Active       bool   `db:"active"`
	UserName     string `db:"user_name"`
	PasswordHash string `db:"password_hash"`
	FullName     string `db:"full_name"`
}

// FindByUserName loads an active identity by username. Inactive and unknown
// users both yield ports.ErrUserNotFound; inactive identities must not
// authenticate.
func (r *UserRepo) FindByUserName(ctx context.Context, userName string) (*domainauth.Identity, error) {
	if strings.TrimSpace(userName) == "" {
		return nil, ErrEmptyUserName
	}
	if err := r.Structure.validate(); err != nil {
		return nil, err
	}

	cols := r.Structure.Columns
	// Identifiers come from configuration, not request input; quoting keeps
	// unusual schema names working.
	query := fmt.Sprintf(`
		SELECT
			u.%s AS id,
			u.%s AS active,
			u.%s AS user_name,
			u.%s AS password_hash,
			u.%s AS full_name
		FROM %s u
		WHERE u.%s = $1 AND u.%s = TRUE`,
		quoteIdent(cols.ID),
		quoteIdent(cols.Active),
		quoteIdent(cols.UserName),
		quoteIdent(cols.PasswordHash),
		quoteIdent(cols.FullName),
		quoteIdent(r.Structure.Table),
		quoteIdent(cols.UserName),
		quoteIdent(cols.Active),
	)

	var row userRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, userName)
		if err != nil {
			return err
		}
		defer rows.Close()

		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by user_name: %w", err)
	}

	id := row.ID
	return &domainauth.Identity{
		ID:           &id,
		Active:       row.Active,
		UserName:     row.UserName,
		FullName:     row.FullName,
		PasswordHash: row.PasswordHash,
	}, nil
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

var _ ports.UserStore = (*UserRepo)(nil)
