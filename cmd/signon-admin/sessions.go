package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/redis/go-redis/v9"

	redisadapter "github.com/signonhq/signon/internal/adapters/redis"
	"github.com/signonhq/signon/internal/bootstrap"
	domainauth "github.com/signonhq/signon/internal/domain/auth"
)

const scanBatchSize = 1000

func runListSessions(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	session := fs.String("session", "", "list only this session id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := connectRedis(ctx)
	if err != nil {
		return err
	}
	defer closeRedis(ctx, client)

	identities, err := collectRecords(ctx.Ctx, client, redisadapter.DefaultIdentityPrefix, *session)
	if err != nil {
		return err
	}
	authorizations, err := collectRecords(ctx.Ctx, client, redisadapter.DefaultAuthorizationPrefix, *session)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err = fmt.Fprintln(tw, "SESSION\tUSER\tAUTHORIZED\tIDENTITY EXPIRES\tAUTHORIZATION EXPIRES"); err != nil {
		return err
	}
	for sessionID, idRaw := range identities {
		var idRec domainauth.IdentityRecord
		if err = json.Unmarshal([]byte(idRaw), &idRec); err != nil {
			return fmt.Errorf("decode identity record %q: %w", sessionID, err)
		}
		authorized := "-"
		authExpires := "-"
		if authRaw, ok := authorizations[sessionID]; ok {
			var authRec domainauth.AuthorizationRecord
			if err = json.Unmarshal([]byte(authRaw), &authRec); err != nil {
				return fmt.Errorf("decode authorization record %q: %w", sessionID, err)
			}
			authorized = fmt.Sprintf("%t", authRec.Authorized)
			authExpires = authRec.ExpiresAt.Format("2006-01-02 15:04:05")
		}
		if _, err = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			sessionID, idRec.UserName, authorized,
			idRec.ExpiresAt.Format("2006-01-02 15:04:05"), authExpires); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runClearSessions(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("clear-sessions", flag.ContinueOnError)
	session := fs.String("session", "", "clear only this session id")
	all := fs.Bool("all", false, "clear every session record")
	dryRun := fs.Bool("dry-run", false, "report what would be deleted without deleting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *session == "" && !*all {
		return errors.New("pass -session <id> or -all")
	}

	client, err := connectRedis(ctx)
	if err != nil {
		return err
	}
	defer closeRedis(ctx, client)

	var deleted int64
	for _, prefix := range []string{redisadapter.DefaultIdentityPrefix, redisadapter.DefaultAuthorizationPrefix} {
		pattern := prefix + "*"
		if *session != "" {
			pattern = prefix + *session
		}
		n, delErr := deleteMatchingKeys(ctx.Ctx, client, pattern, *dryRun)
		if delErr != nil {
			return delErr
		}
		deleted += n
	}

	ctx.Logger.Info("sessions cleared", "keys", deleted, "dry_run", *dryRun)
	return nil
}

func collectRecords(ctx context.Context, client redis.UniversalClient, prefix, session string) (map[string]string, error) {
	pattern := prefix + "*"
	if session != "" {
		pattern = prefix + session
	}

	out := map[string]string{}
	iter := client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// Expired between scan and get.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %q: %w", key, err)
		}
		out[strings.TrimPrefix(key, prefix)] = raw
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %q: %w", pattern, err)
	}
	return out, nil
}

func deleteMatchingKeys(ctx context.Context, client redis.UniversalClient, pattern string, dryRun bool) (int64, error) {
	var deleted int64
	iter := client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		if dryRun {
			deleted++
			continue
		}
		n, err := client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, fmt.Errorf("delete %q: %w", iter.Val(), err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan %q: %w", pattern, err)
	}
	return deleted, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps the stores client-agnostic.
func connectRedis(ctx *commandContext) (redis.UniversalClient, error) {
	return bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		DBConfig:    ctx.Config.Postgres,
		RedisConfig: ctx.Config.Redis,
		Logger:      ctx.Logger,
	})
}

func closeRedis(ctx *commandContext, client redis.UniversalClient) {
	if err := client.Close(); err != nil {
		ctx.Logger.Error("close redis failed", "error", err)
	}
}
