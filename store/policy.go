package store

import (
	"context"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

// putPolicy persists a policy under pid, allocating a fresh id when pid
// is zero. Each principal set is replaced wholesale: the stored set is
// cleared and the policy's current members written. The owner scalar is
// always written, with the empty string standing in for "no owner".
func (s *Store) putPolicy(ctx context.Context, policy model.Policy, pid int64) (int64, error) {
	if pid == 0 {
		var err error
		pid, err = s.nextID(ctx, nsPolicy)
		if err != nil {
			return 0, err
		}
	}

	for _, constraint := range model.PolicyConstraints {
		key := policyAttr(pid, constraint.Name)
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			return 0, errors.Wrapf(err, "failed to clear policy set %s", key)
		}
		members := constraint.Get(&policy)
		if len(members) == 0 {
			continue
		}
		args := make([]interface{}, len(members))
		for i, m := range members {
			args[i] = m
		}
		if err := s.rdb.SAdd(ctx, key, args...).Err(); err != nil {
			return 0, errors.Wrapf(err, "failed to write policy set %s", key)
		}
	}

	if err := s.rdb.Set(ctx, policyAttr(pid, "owner"), policy.Owner, 0).Err(); err != nil {
		return 0, errors.Wrapf(err, "failed to write policy owner for pid %d", pid)
	}
	return pid, nil
}

// getPolicy decodes the policy referenced by the scalar at refKey. If no
// policy id is stored there, an open policy with no owner is returned.
func (s *Store) getPolicy(ctx context.Context, refKey string) (model.Policy, error) {
	var policy model.Policy

	val, ok, err := s.c.text(ctx, refKey)
	if err != nil || !ok {
		return policy, err
	}
	pid, err := parseID(refKey, val)
	if err != nil {
		return policy, err
	}

	for _, constraint := range model.PolicyConstraints {
		members, err := s.c.textMembers(ctx, policyAttr(pid, constraint.Name))
		if err != nil {
			return policy, err
		}
		if len(members) > 0 {
			constraint.Set(&policy, members)
		}
	}

	owner, _, err := s.c.text(ctx, policyAttr(pid, "owner"))
	if err != nil {
		return policy, err
	}
	policy.Owner = owner
	return policy, nil
}

// deletePolicy purges the five constraint sets and the owner scalar of
// the policy referenced at refKey. Missing keys are no-ops, so a retried
// delete converges.
func (s *Store) deletePolicy(ctx context.Context, refKey string) error {
	val, ok, err := s.c.text(ctx, refKey)
	if err != nil || !ok {
		return err
	}
	pid, err := parseID(refKey, val)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(model.PolicyConstraints)+1)
	for _, constraint := range model.PolicyConstraints {
		keys = append(keys, policyAttr(pid, constraint.Name))
	}
	keys = append(keys, policyAttr(pid, "owner"))
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "failed to purge policy %d", pid)
	}
	return nil
}
