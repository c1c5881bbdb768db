// Package store persists bags, recipes, tiddlers, and users on a plain
// Redis key space. Redis offers only atomic single-key primitives, so
// the structured behavior here comes from a fixed key grammar plus a
// handful of cross-key protocols: monotonic id allocation, name-to-id
// indexing, append-only revision chains, a policy codec, and a
// cascading delete for bags.
//
// No operation spans multiple keys atomically. Concurrent puts of the
// same previously-unseen name can both allocate an id, with the last
// forward-pointer write winning and the losing id leaked; structural
// deletes racing concurrent puts must be serialized by the caller.
package store

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the entity facade over one shared Redis client. The client
// is constructed once per process (see the kv package) and the Store is
// safe for concurrent use by multiple goroutines.
type Store struct {
	rdb redis.UniversalClient
	c   codec
	log *zap.SugaredLogger
}

// New returns a Store backed by the given client. If log is nil the
// store operates silently.
func New(rdb redis.UniversalClient, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{rdb: rdb, c: codec{rdb: rdb}, log: log}
}
