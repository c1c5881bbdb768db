package store

import (
	"context"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

// GetTiddler loads the newest revision of the tiddler at (bag, title).
func (s *Store) GetTiddler(ctx context.Context, bag, title string) (*model.Tiddler, error) {
	return s.getTiddler(ctx, bag, title, 0)
}

// GetTiddlerRevision loads a specific revision of the tiddler at
// (bag, title).
func (s *Store) GetTiddlerRevision(ctx context.Context, bag, title string, revision int64) (*model.Tiddler, error) {
	return s.getTiddler(ctx, bag, title, revision)
}

func (s *Store) getTiddler(ctx context.Context, bag, title string, revision int64) (*model.Tiddler, error) {
	tid, err := s.resolveTiddler(ctx, bag, title)
	if err != nil {
		return nil, err
	}

	rvid, err := s.currentRevision(ctx, tid, revision)
	if err != nil {
		return nil, err
	}
	origin, err := s.originRevision(ctx, tid)
	if err != nil {
		return nil, err
	}

	t := model.NewTiddler(title, bag)
	t.Revision = rvid

	t.Creator, _, err = s.c.text(ctx, revisionAttr(origin, "modifier"))
	if err != nil {
		return nil, err
	}
	t.Created, _, err = s.c.text(ctx, revisionAttr(origin, "modified"))
	if err != nil {
		return nil, err
	}

	t.Modifier, _, err = s.c.text(ctx, revisionAttr(rvid, "modifier"))
	if err != nil {
		return nil, err
	}
	t.Modified, _, err = s.c.text(ctx, revisionAttr(rvid, "modified"))
	if err != nil {
		return nil, err
	}
	t.Type, _, err = s.c.text(ctx, revisionAttr(rvid, "type"))
	if err != nil {
		return nil, err
	}
	t.Tags, err = s.c.textMembers(ctx, revisionAttr(rvid, "tags"))
	if err != nil {
		return nil, err
	}
	t.Fields, err = s.c.textMap(ctx, revisionAttr(rvid, "fields"))
	if err != nil {
		return nil, err
	}

	// Binary payloads bypass text decoding; everything else above is
	// always text.
	if t.IsBinary() {
		raw, _, err := s.c.bytes(ctx, revisionAttr(rvid, "text"))
		if err != nil {
			return nil, err
		}
		t.Text = string(raw)
	} else {
		t.Text, _, err = s.c.text(ctx, revisionAttr(rvid, "text"))
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// PutTiddler appends a new revision of the tiddler. The owning bag must
// exist. A previously-unseen (bag, title) pair gets a tiddler id with
// its title and bag attributes written once.
func (s *Store) PutTiddler(ctx context.Context, t *model.Tiddler) error {
	bid, err := s.resolve(ctx, bagKind, t.Bag)
	if err != nil {
		return err
	}

	idKey := tiddlerIDKey(t.Bag, t.Title)
	var tid int64
	val, ok, err := s.c.text(ctx, idKey)
	if err != nil {
		return err
	}
	if ok {
		tid, err = parseID(idKey, val)
		if err != nil {
			return err
		}
	} else {
		tid, err = s.nextID(ctx, nsTiddler)
		if err != nil {
			return err
		}
		if err := s.rdb.Set(ctx, idKey, tid, 0).Err(); err != nil {
			return errors.Wrapf(err, "failed to write tiddler pointer for %s:%s", t.Bag, t.Title)
		}
		if err := s.rdb.Set(ctx, tiddlerAttr(tid, "title"), t.Title, 0).Err(); err != nil {
			return errors.Wrapf(err, "failed to write tiddler %d title", tid)
		}
		if err := s.rdb.Set(ctx, tiddlerAttr(tid, "bid"), bid, 0).Err(); err != nil {
			return errors.Wrapf(err, "failed to write tiddler %d bag reference", tid)
		}
	}

	rvid, err := s.appendRevision(ctx, t, tid)
	if err != nil {
		return err
	}
	if err := s.rdb.SAdd(ctx, bagAttr(bid, "tiddlers"), tid).Err(); err != nil {
		return errors.Wrapf(err, "failed to register tiddler %d in bag %s", tid, t.Bag)
	}

	s.log.Debugw("put tiddler", "bag", t.Bag, "title", t.Title, "tid", tid, "rvid", rvid)
	return nil
}

// DeleteTiddler purges a tiddler: every revision's attribute keys, the
// tiddler's own attribute keys, the forward pointer, and its entry in
// the bag's tiddler set. Deletion is irreversible; a later put starts a
// fresh history.
func (s *Store) DeleteTiddler(ctx context.Context, bag, title string) error {
	bid, err := s.resolve(ctx, bagKind, bag)
	if err != nil {
		return err
	}
	tid, err := s.resolveTiddler(ctx, bag, title)
	if err != nil {
		return err
	}

	rvids, err := s.revisionIDs(ctx, tid)
	if err != nil {
		return err
	}
	var keys []string
	for _, rvid := range rvids {
		for _, attr := range revisionAttrs {
			keys = append(keys, revisionAttr(rvid, attr))
		}
	}
	for _, attr := range []string{"title", "bid", "revisions"} {
		keys = append(keys, tiddlerAttr(tid, attr))
	}
	keys = append(keys, tiddlerIDKey(bag, title))

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "failed to purge tiddler %s:%s", bag, title)
	}
	if err := s.rdb.SRem(ctx, bagAttr(bid, "tiddlers"), tid).Err(); err != nil {
		return errors.Wrapf(err, "failed to deregister tiddler %s:%s", bag, title)
	}

	s.log.Debugw("deleted tiddler", "bag", bag, "title", title, "tid", tid, "revisions", len(rvids))
	return nil
}

// ListTiddlerRevisions returns the revision ids of the tiddler at
// (bag, title), newest first.
func (s *Store) ListTiddlerRevisions(ctx context.Context, bag, title string) ([]int64, error) {
	tid, err := s.resolveTiddler(ctx, bag, title)
	if err != nil {
		return nil, err
	}
	ids, err := s.revisionIDs(ctx, tid)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids, nil
}

// resolveTiddler looks up the compound (bag, title) forward pointer.
func (s *Store) resolveTiddler(ctx context.Context, bag, title string) (int64, error) {
	key := tiddlerIDKey(bag, title)
	val, ok, err := s.c.text(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Wrapf(errors.ErrNoTiddler, "unable to load %s:%s", bag, title)
	}
	return parseID(key, val)
}
