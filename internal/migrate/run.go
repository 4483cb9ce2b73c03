// Package migrate applies the embedded schema migrations for the signon
// database. Applied versions are tracked in a schema_migrations table so
// repeated runs only pick up new files.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// Run brings the schema up to date, applying pending migrations in filename
// order. Each file runs in its own transaction; re-running is a no-op for
// versions already recorded.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	pending, err := listMigrations()
	if err != nil {
		return err
	}

	logger := slog.Default().With("component", "migrate")
	for _, m := range pending {
		if err := apply(ctx, db, logger, m); err != nil {
			return err
		}
	}
	return nil
}

// migration is one embedded SQL file; version is the filename without its
// extension and orders application.
type migration struct {
	version string
	file    string
}

func listMigrations() ([]migration, error) {
	entries, err := schemaFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	var out []migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		out = append(out, migration{
			version: strings.TrimSuffix(name, ".sql"),
			file:    name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func alreadyApplied(ctx context.Context, db *sql.DB, m migration) (bool, error) {
	var applied bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
		m.version).Scan(&applied)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", m.file, err)
	}
	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, logger *slog.Logger, m migration) error {
	applied, err := alreadyApplied(ctx, db, m)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	stmt, err := schemaFS.ReadFile("migrations/" + m.file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", m.file, err)
	}

	logger.InfoContext(ctx, "applying schema migration", "version", m.version)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "migration rollback failed",
				"version", m.version, "error", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, string(stmt)); err != nil {
		return fmt.Errorf("exec migration %s: %w", m.file, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
		return fmt.Errorf("record migration %s: %w", m.file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.file, err)
	}
	return nil
}
