package store

import (
	"context"

	"github.com/satchelhq/satchel/errors"
)

// nextID allocates the next id in the given counter namespace. Redis
// INCR is atomic, so ids are unique and monotonically increasing across
// concurrent callers. Ids are never reused; gaps are acceptable.
func (s *Store) nextID(ctx context.Context, namespace string) (int64, error) {
	id, err := s.rdb.Incr(ctx, counterKey(namespace)).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to allocate %s id", namespace)
	}
	return id, nil
}
