package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Plugin lists are cached in Redis under katalogus:<org>:*. Clearing them
// forces the next scheduling cycle to fetch fresh plugin state.
func pluginCachePattern(opts pluginCacheClearOptions) string {
	if opts.All {
		return "katalogus:*"
	}
	return fmt.Sprintf("katalogus:%s:*", opts.OrgID)
}

func runClearPluginCache(cmdCtx *commandContext, args []string) error {
	opts, err := parsePluginCacheClearFlags(args)
	if err != nil {
		return err
	}
	if confirmErr := confirmAction(pluginCacheConfirmOptions{opts}, "clear plugin caches"); confirmErr != nil {
		return confirmErr
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	_, redisClient, err := connectInfraWithOptions(&connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cmdCtx.Config,
		WantRedis: true,
	})
	if err != nil {
		return err
	}
	if redisClient == nil {
		if writeErr := writeln(os.Stderr, "Redis client is not available"); writeErr != nil {
			return fmt.Errorf("print redis availability: %w", writeErr)
		}
		return nil
	}
	defer func() {
		if closeErr := closeInfra(nil, redisClient); closeErr != nil {
			cmdCtx.Logger.Warn("close infra failed", "error", closeErr)
		}
	}()

	deleted, err := purgePluginCache(&purgePluginCacheRequest{
		Ctx:     ctx,
		Client:  redisClient,
		Logger:  cmdCtx.Logger,
		Options: opts,
	})
	if err != nil {
		return err
	}

	if deleted == 0 {
		if writeErr := writeln(os.Stdout, "No plugin cache keys found in Redis"); writeErr != nil {
			return fmt.Errorf("print plugin cache summary: %w", writeErr)
		}
		return nil
	}

	verb := "Deleted"
	if opts.DryRun {
		verb = "Dry-run: would delete"
	}
	if writeErr := writef(os.Stdout, "%s %d plugin cache keys\n", verb, deleted); writeErr != nil {
		return fmt.Errorf("print plugin cache summary: %w", writeErr)
	}
	return nil
}

type purgePluginCacheRequest struct {
	Ctx     context.Context
	Client  redis.UniversalClient
	Logger  *slog.Logger
	Options pluginCacheClearOptions
}

func purgePluginCache(req *purgePluginCacheRequest) (int, error) {
	pattern := pluginCachePattern(req.Options)
	req.Logger.Info("scanning redis", "pattern", pattern, "dry_run", req.Options.DryRun)

	iter := req.Client.Scan(req.Ctx, 0, pattern, 1000).Iterator()
	keys := make([]string, 0)
	for iter.Next(req.Ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan redis: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if req.Options.DryRun {
		return len(keys), nil
	}

	for start := 0; start < len(keys); start += 100 {
		end := min(start+100, len(keys))
		if err := req.Client.Del(req.Ctx, keys[start:end]...).Err(); err != nil {
			return 0, fmt.Errorf("delete redis keys: %w", err)
		}
	}
	req.Logger.Info("redis keys deleted", "count", len(keys))

	return len(keys), nil
}
