package store

import (
	"context"
	"strconv"

	"github.com/satchelhq/satchel/errors"
)

// entityKind describes how one entity type hangs in the key space: its
// counter namespace, its forward name→id pointer, its global membership
// set, and the sentinel returned when a name fails to resolve.
type entityKind struct {
	namespace string
	idKey     func(name string) string
	members   string
	sentinel  error
}

var (
	bagKind = entityKind{
		namespace: nsBag,
		idKey:     bagIDKey,
		members:   keyBags,
		sentinel:  errors.ErrNoBag,
	}
	recipeKind = entityKind{
		namespace: nsRecipe,
		idKey:     recipeIDKey,
		members:   keyRecipes,
		sentinel:  errors.ErrNoRecipe,
	}
	userKind = entityKind{
		namespace: nsUser,
		idKey:     userIDKey,
		members:   keyUsers,
		sentinel:  errors.ErrNoUser,
	}
)

// resolve looks up the forward name→id pointer for an entity, returning
// the kind's sentinel when the name is unknown.
func (s *Store) resolve(ctx context.Context, kind entityKind, name string) (int64, error) {
	val, ok, err := s.c.text(ctx, kind.idKey(name))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Wrapf(kind.sentinel, "unable to get id for %s", name)
	}
	return parseID(kind.idKey(name), val)
}

// resolveOrCreate returns the id for name, allocating one on first
// sight: the forward pointer is written and the id is registered in the
// kind's membership set. Two concurrent callers racing on a new name can
// both allocate; the last pointer write wins and the other id leaks,
// which the design accepts.
func (s *Store) resolveOrCreate(ctx context.Context, kind entityKind, name string) (int64, error) {
	val, ok, err := s.c.text(ctx, kind.idKey(name))
	if err != nil {
		return 0, err
	}
	if ok {
		return parseID(kind.idKey(name), val)
	}

	id, err := s.nextID(ctx, kind.namespace)
	if err != nil {
		return 0, err
	}
	if err := s.rdb.Set(ctx, kind.idKey(name), id, 0).Err(); err != nil {
		return 0, errors.Wrapf(err, "failed to write id pointer for %s", name)
	}
	if err := s.rdb.SAdd(ctx, kind.members, id).Err(); err != nil {
		return 0, errors.Wrapf(err, "failed to register %s in %s", name, kind.members)
	}
	return id, nil
}

// memberIDs snapshots a membership set as ids. Order is not guaranteed.
func (s *Store) memberIDs(ctx context.Context, key string) ([]int64, error) {
	members, err := s.c.textMembers(ctx, key)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := parseID(key, m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(key, val string) (int64, error) {
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "non-numeric id at %s", key)
	}
	return id, nil
}
