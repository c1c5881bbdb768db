package store

import (
	"context"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

// GetBag loads a bag by name, including its decoded policy.
func (s *Store) GetBag(ctx context.Context, name string) (*model.Bag, error) {
	bid, err := s.resolve(ctx, bagKind, name)
	if err != nil {
		return nil, err
	}

	bag := model.NewBag(name)
	desc, _, err := s.c.text(ctx, bagAttr(bid, "desc"))
	if err != nil {
		return nil, err
	}
	bag.Desc = desc

	bag.Policy, err = s.getPolicy(ctx, bagAttr(bid, "policy"))
	if err != nil {
		return nil, err
	}
	return bag, nil
}

// PutBag writes a bag, allocating an id the first time the name is
// seen. The bag's policy replaces the stored one wholesale.
func (s *Store) PutBag(ctx context.Context, bag *model.Bag) error {
	bid, err := s.resolveOrCreate(ctx, bagKind, bag.Name)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, bagAttr(bid, "name"), bag.Name, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write bag %s name", bag.Name)
	}
	if err := s.rdb.Set(ctx, bagAttr(bid, "desc"), bag.Desc, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write bag %s desc", bag.Name)
	}

	pid, err := s.policyID(ctx, bagAttr(bid, "policy"))
	if err != nil {
		return err
	}
	pid, err = s.putPolicy(ctx, bag.Policy, pid)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, bagAttr(bid, "policy"), pid, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write bag %s policy pointer", bag.Name)
	}

	s.log.Debugw("put bag", "bag", bag.Name, "bid", bid)
	return nil
}

// DeleteBag removes a bag and everything it owns: each tiddler with all
// its revisions, the bag's attribute keys, its policy, its forward
// pointer, and its membership entry. The steps are ordered so a retry
// after partial failure converges; already-deleted sub-keys are no-ops.
func (s *Store) DeleteBag(ctx context.Context, name string) error {
	bid, err := s.resolve(ctx, bagKind, name)
	if err != nil {
		return err
	}

	tids, err := s.memberIDs(ctx, bagAttr(bid, "tiddlers"))
	if err != nil {
		return err
	}
	for _, tid := range tids {
		title, ok, err := s.c.text(ctx, tiddlerAttr(tid, "title"))
		if err != nil {
			return err
		}
		if !ok {
			// dangling membership entry from an earlier partial delete
			continue
		}
		if err := s.DeleteTiddler(ctx, name, title); err != nil && !errors.IsNoTiddler(err) {
			return err
		}
	}

	if err := s.deletePolicy(ctx, bagAttr(bid, "policy")); err != nil {
		return err
	}

	keys := []string{
		bagAttr(bid, "name"),
		bagAttr(bid, "desc"),
		bagAttr(bid, "policy"),
		bagAttr(bid, "tiddlers"),
		bagIDKey(name),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "failed to purge bag %s", name)
	}
	if err := s.rdb.SRem(ctx, keyBags, bid).Err(); err != nil {
		return errors.Wrapf(err, "failed to deregister bag %s", name)
	}

	s.log.Debugw("deleted bag", "bag", name, "bid", bid, "tiddlers", len(tids))
	return nil
}

// ListBags snapshots the live bags. Only Name is populated; order is
// not guaranteed.
func (s *Store) ListBags(ctx context.Context) ([]*model.Bag, error) {
	bids, err := s.memberIDs(ctx, keyBags)
	if err != nil {
		return nil, err
	}
	bags := make([]*model.Bag, 0, len(bids))
	for _, bid := range bids {
		name, ok, err := s.c.text(ctx, bagAttr(bid, "name"))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		bags = append(bags, model.NewBag(name))
	}
	return bags, nil
}

// ListBagTiddlers snapshots the tiddlers owned by a bag. Only Title and
// Bag are populated; order is not guaranteed.
func (s *Store) ListBagTiddlers(ctx context.Context, bag string) ([]*model.Tiddler, error) {
	bid, err := s.resolve(ctx, bagKind, bag)
	if err != nil {
		return nil, err
	}
	tids, err := s.memberIDs(ctx, bagAttr(bid, "tiddlers"))
	if err != nil {
		return nil, err
	}
	tiddlers := make([]*model.Tiddler, 0, len(tids))
	for _, tid := range tids {
		title, ok, err := s.c.text(ctx, tiddlerAttr(tid, "title"))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		tiddlers = append(tiddlers, model.NewTiddler(title, bag))
	}
	return tiddlers, nil
}

// policyID reads the policy id scalar at refKey, returning zero when no
// policy has been stored yet.
func (s *Store) policyID(ctx context.Context, refKey string) (int64, error) {
	val, ok, err := s.c.text(ctx, refKey)
	if err != nil || !ok {
		return 0, err
	}
	return parseID(refKey, val)
}
