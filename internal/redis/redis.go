package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Client struct {
	*goredis.Client
}

// PoolOptions bounds the client's connection pool. Callers wait up to
// Timeout for a free connection before the command fails.
type PoolOptions struct {
	Size    int
	MinIdle int
	Timeout time.Duration
}

// New dials the server at rawURL (redis://[user:pass@]host:port/db) and
// checks it answers PING.
func New(ctx context.Context, rawURL string, pool PoolOptions) (*Client, error) {

	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	if pool.Size > 0 {
		opts.PoolSize = pool.Size
	}
	if pool.MinIdle > 0 {
		opts.MinIdleConns = pool.MinIdle
	}
	if pool.Timeout > 0 {
		opts.PoolTimeout = pool.Timeout
	}

	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	return &Client{Client: client}, nil

}
