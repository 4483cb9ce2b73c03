package main

import (
	"context"
	"flag"
	"time"

	"github.com/signonhq/signon/internal/bootstrap"
	"github.com/signonhq/signon/internal/migrate"
)

const defaultMigrationTimeout = 5 * time.Minute

func runMigrate(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	timeout := fs.Duration("timeout", defaultMigrationTimeout, "overall migration timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig:    ctx.Config.Postgres,
		RedisConfig: ctx.Config.Redis,
		Logger:      ctx.Logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			ctx.Logger.Error("close database failed", "error", cerr)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx.Ctx, *timeout)
	defer cancel()

	if err := migrate.Run(runCtx, db); err != nil {
		return err
	}
	ctx.Logger.Info("migrations applied")
	return nil
}
