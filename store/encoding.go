package store

import (
	"context"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"github.com/satchelhq/satchel/errors"
)

// codec is the single decode boundary between the raw bytes Redis hands
// back and the text values the rest of the store works with. Every read
// goes through one of its accessors: the text accessors validate UTF-8,
// the bytes accessor passes raw payloads through untouched. Only a
// binary tiddler's text attribute ever takes the bytes path.
type codec struct {
	rdb redis.UniversalClient
}

// text reads a scalar key as text. The second return is false when the
// key does not exist.
func (c codec) text(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to get %s", key)
	}
	if !utf8.ValidString(val) {
		return "", false, errors.Newf("value at %s is not valid UTF-8", key)
	}
	return val, true, nil
}

// bytes reads a scalar key as a raw payload, bypassing text decoding.
func (c codec) bytes(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to get %s", key)
	}
	return val, true, nil
}

// textMembers reads a set key as text members. A missing key yields an
// empty slice.
func (c codec) textMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read set %s", key)
	}
	for _, m := range members {
		if !utf8.ValidString(m) {
			return nil, errors.Newf("member of %s is not valid UTF-8", key)
		}
	}
	return members, nil
}

// textList reads a list key in storage order. A missing key yields an
// empty slice.
func (c codec) textList(ctx context.Context, key string) ([]string, error) {
	elems, err := c.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read list %s", key)
	}
	for _, e := range elems {
		if !utf8.ValidString(e) {
			return nil, errors.Newf("element of %s is not valid UTF-8", key)
		}
	}
	return elems, nil
}

// textMap reads a hash key as a text mapping. A missing key yields an
// empty map.
func (c codec) textMap(ctx context.Context, key string) (map[string]string, error) {
	m, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read hash %s", key)
	}
	for k, v := range m {
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			return nil, errors.Newf("entry of %s is not valid UTF-8", key)
		}
	}
	return m, nil
}

// listIndex reads one element of a list key by position. Negative
// positions count from the end. The second return is false when the key
// or position does not exist.
func (c codec) listIndex(ctx context.Context, key string, pos int64) (string, bool, error) {
	val, err := c.rdb.LIndex(ctx, key, pos).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to index list %s", key)
	}
	return val, true, nil
}
