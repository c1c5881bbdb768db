package store

import (
	"context"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

// GetUser loads a user by usersign.
func (s *Store) GetUser(ctx context.Context, name string) (*model.User, error) {
	uid, err := s.resolve(ctx, userKind, name)
	if err != nil {
		return nil, err
	}

	user := model.NewUser(name)
	user.PasswordHash, _, err = s.c.text(ctx, userAttr(uid, "pass"))
	if err != nil {
		return nil, err
	}
	user.Note, _, err = s.c.text(ctx, userAttr(uid, "note"))
	if err != nil {
		return nil, err
	}
	user.Roles, err = s.c.textMembers(ctx, userAttr(uid, "roles"))
	if err != nil {
		return nil, err
	}
	return user, nil
}

// PutUser writes a user. The stored roles set is replaced wholesale.
func (s *Store) PutUser(ctx context.Context, user *model.User) error {
	uid, err := s.resolveOrCreate(ctx, userKind, user.Name)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, userAttr(uid, "name"), user.Name, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write user %s name", user.Name)
	}
	if err := s.rdb.Set(ctx, userAttr(uid, "pass"), user.PasswordHash, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write user %s credential", user.Name)
	}
	if err := s.rdb.Set(ctx, userAttr(uid, "note"), user.Note, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write user %s note", user.Name)
	}

	rolesKey := userAttr(uid, "roles")
	if err := s.rdb.Del(ctx, rolesKey).Err(); err != nil {
		return errors.Wrapf(err, "failed to clear user %s roles", user.Name)
	}
	for _, role := range user.Roles {
		if err := s.rdb.SAdd(ctx, rolesKey, role).Err(); err != nil {
			return errors.Wrapf(err, "failed to write user %s roles", user.Name)
		}
	}

	s.log.Debugw("put user", "user", user.Name, "uid", uid)
	return nil
}

// DeleteUser purges a user's attribute keys, forward pointer, and
// membership entry.
func (s *Store) DeleteUser(ctx context.Context, name string) error {
	uid, err := s.resolve(ctx, userKind, name)
	if err != nil {
		return err
	}

	keys := []string{
		userAttr(uid, "name"),
		userAttr(uid, "pass"),
		userAttr(uid, "note"),
		userAttr(uid, "roles"),
		userIDKey(name),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "failed to purge user %s", name)
	}
	if err := s.rdb.SRem(ctx, keyUsers, uid).Err(); err != nil {
		return errors.Wrapf(err, "failed to deregister user %s", name)
	}
	return nil
}

// ListUsers snapshots the live users. Only Name is populated; order is
// not guaranteed.
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	uids, err := s.memberIDs(ctx, keyUsers)
	if err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(uids))
	for _, uid := range uids {
		name, ok, err := s.c.text(ctx, userAttr(uid, "name"))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		users = append(users, model.NewUser(name))
	}
	return users, nil
}
