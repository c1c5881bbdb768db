// Package kv constructs the shared Redis client the store runs on.
package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satchelhq/satchel/errors"
)

// Options selects the Redis instance to connect to.
type Options struct {
	Addr     string
	Password string
	DB       int
}

const pingTimeout = 5 * time.Second

// Open constructs a Redis client and verifies connectivity with a ping.
// The returned client is a process-wide resource: construct it once,
// pass it by reference into every consumer, close it on shutdown. It is
// safe for concurrent use. If logger is provided, connection events are
// logged; otherwise Open operates silently.
func Open(opts Options, logger *zap.SugaredLogger) (*redis.Client, error) {
	if logger != nil {
		logger.Debugw("Connecting to redis", "addr", opts.Addr, "db", opts.DB)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "failed to ping redis at %s", opts.Addr)
	}

	if logger != nil {
		logger.Infow("Connected to redis", "addr", opts.Addr, "db", opts.DB)
	}
	return client, nil
}
