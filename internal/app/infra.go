package app

import (
	"context"
	"errors"
	"os"

	"github.com/fluxynet/blog/internal/config"
	"github.com/fluxynet/blog/internal/db"
	"github.com/fluxynet/blog/internal/logger"
	"github.com/fluxynet/blog/internal/redis"
	"github.com/fluxynet/blog/internal/telemetry"
)

type Infra struct {
	DB        *db.DB
	Redis     *redis.Client
	telemetry telemetry.Shutdown
}

// setupInfra connects to Redis always and to Postgres only when withDB is
// set; the auth service has no database.
func setupInfra(ctx context.Context, cfg config.Config, withDB bool) (*Infra, error) {
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry, os.Stdout)
	if err != nil {
		return nil, err
	}

	infra := &Infra{telemetry: shutdown}

	infra.Redis, err = redis.New(ctx, cfg.Auth.RedisURL, redis.PoolOptions{
		Size:    cfg.Auth.Pool.Size,
		MinIdle: cfg.Auth.Pool.MinIdle,
		Timeout: cfg.Auth.Pool.Timeout,
	})
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}

	logger.Info("redis ready", map[string]any{"pool_size": cfg.Auth.Pool.Size})

	if !withDB {
		return infra, nil
	}

	infra.DB, err = db.Open(ctx, cfg.DSN)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}

	if err := db.Migrate(ctx, infra.DB.DB); err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}

	logger.Info("database ready", nil)

	return infra, nil
}

func (i *Infra) Close(ctx context.Context) error {
	var errs []error
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.telemetry != nil {
		errs = append(errs, i.telemetry(ctx))
	}
	return errors.Join(errs...)
}
