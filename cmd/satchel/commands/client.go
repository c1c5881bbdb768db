// Package commands implements the satchel CLI command tree.
package commands

import (
	"github.com/redis/go-redis/v9"

	"github.com/satchelhq/satchel/config"
	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/kv"
	"github.com/satchelhq/satchel/logger"
	"github.com/satchelhq/satchel/store"
)

// openStore connects to the configured Redis instance and wraps it in a
// Store. The caller owns the returned client and must Close it.
func openStore() (*store.Store, *redis.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}

	client, err := kv.Open(kv.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger.Logger)
	if err != nil {
		return nil, nil, err
	}

	return store.New(client, logger.Logger), client, nil
}
