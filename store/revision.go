package store

import (
	"context"
	"strings"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

// revisionAttrs are the scalar/collection attributes written for every
// revision and purged on tiddler delete.
var revisionAttrs = []string{"text", "tags", "modified", "modifier", "fields", "type", "tid"}

// appendRevision writes an immutable snapshot of the tiddler as a new
// revision and appends its id to the tiddler's ordered revision list.
// Fields carrying the reserved prefix are dropped from the snapshot.
func (s *Store) appendRevision(ctx context.Context, t *model.Tiddler, tid int64) (int64, error) {
	rvid, err := s.nextID(ctx, nsRevision)
	if err != nil {
		return 0, err
	}

	scalars := map[string]string{
		"text":     t.Text,
		"modifier": t.Modifier,
		"modified": t.Modified,
		"type":     t.Type,
	}
	for attr, val := range scalars {
		if err := s.rdb.Set(ctx, revisionAttr(rvid, attr), val, 0).Err(); err != nil {
			return 0, errors.Wrapf(err, "failed to write revision %d %s", rvid, attr)
		}
	}
	if err := s.rdb.Set(ctx, revisionAttr(rvid, "tid"), tid, 0).Err(); err != nil {
		return 0, errors.Wrapf(err, "failed to write revision %d back-reference", rvid)
	}

	for _, tag := range t.Tags {
		if err := s.rdb.SAdd(ctx, revisionAttr(rvid, "tags"), tag).Err(); err != nil {
			return 0, errors.Wrapf(err, "failed to write revision %d tags", rvid)
		}
	}

	fields := map[string]string{}
	for k, v := range t.Fields {
		if strings.HasPrefix(k, model.ReservedFieldPrefix) {
			continue
		}
		fields[k] = v
	}
	if len(fields) > 0 {
		if err := s.rdb.HSet(ctx, revisionAttr(rvid, "fields"), fields).Err(); err != nil {
			return 0, errors.Wrapf(err, "failed to write revision %d fields", rvid)
		}
	}

	if err := s.rdb.RPush(ctx, tiddlerAttr(tid, "revisions"), rvid).Err(); err != nil {
		return 0, errors.Wrapf(err, "failed to append revision %d to tiddler %d", rvid, tid)
	}
	return rvid, nil
}

// currentRevision resolves the revision a read should reflect: the
// explicit id when given, otherwise the newest entry of the revision
// list. A resolved revision with no modifier recorded is treated as a
// missing row.
func (s *Store) currentRevision(ctx context.Context, tid int64, explicit int64) (int64, error) {
	rvid := explicit
	if rvid == 0 {
		val, ok, err := s.c.listIndex(ctx, tiddlerAttr(tid, "revisions"), -1)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, errors.Wrapf(errors.ErrNoTiddler, "tiddler %d has no revisions", tid)
		}
		rvid, err = parseID(tiddlerAttr(tid, "revisions"), val)
		if err != nil {
			return 0, err
		}
	}

	exists, err := s.rdb.Exists(ctx, revisionAttr(rvid, "modifier")).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to check revision %d", rvid)
	}
	if exists == 0 {
		return 0, errors.Wrapf(errors.ErrNoTiddler, "revision %d has no modifier", rvid)
	}
	return rvid, nil
}

// originRevision returns the first revision of a tiddler, from which
// creator and created-time are derived for the tiddler's lifetime.
func (s *Store) originRevision(ctx context.Context, tid int64) (int64, error) {
	val, ok, err := s.c.listIndex(ctx, tiddlerAttr(tid, "revisions"), 0)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Wrapf(errors.ErrNoTiddler, "tiddler %d has no revisions", tid)
	}
	return parseID(tiddlerAttr(tid, "revisions"), val)
}

// revisionIDs returns a tiddler's revision ids in storage order, oldest
// first.
func (s *Store) revisionIDs(ctx context.Context, tid int64) ([]int64, error) {
	elems, err := s.c.textList(ctx, tiddlerAttr(tid, "revisions"))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(elems))
	for _, e := range elems {
		id, err := parseID(tiddlerAttr(tid, "revisions"), e)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
