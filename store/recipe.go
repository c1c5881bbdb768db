package store

import (
	"context"
	"strings"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

// recipeItemSep joins a (bag, filter) pair into one stored list element.
// Decoding splits on the first occurrence, so bag names must not contain
// it while filter expressions may.
const recipeItemSep = "?"

// GetRecipe loads a recipe by name, including its ordered (bag, filter)
// pairs and decoded policy.
func (s *Store) GetRecipe(ctx context.Context, name string) (*model.Recipe, error) {
	rid, err := s.resolve(ctx, recipeKind, name)
	if err != nil {
		return nil, err
	}

	recipe := model.NewRecipe(name)
	desc, _, err := s.c.text(ctx, recipeAttr(rid, "desc"))
	if err != nil {
		return nil, err
	}
	recipe.Desc = desc

	elems, err := s.c.textList(ctx, recipeAttr(rid, "rlist"))
	if err != nil {
		return nil, err
	}
	for _, elem := range elems {
		bag, filter, found := strings.Cut(elem, recipeItemSep)
		if !found {
			return nil, errors.Wrapf(errors.ErrMalformedRecipe,
				"recipe %s element %q has no delimiter", name, elem)
		}
		recipe.Items = append(recipe.Items, model.RecipeItem{Bag: bag, Filter: filter})
	}

	recipe.Policy, err = s.getPolicy(ctx, recipeAttr(rid, "policy"))
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// PutRecipe writes a recipe. The stored pair list is replaced wholesale
// so a re-put does not accumulate duplicates, and insertion order is
// preserved exactly.
func (s *Store) PutRecipe(ctx context.Context, recipe *model.Recipe) error {
	rid, err := s.resolveOrCreate(ctx, recipeKind, recipe.Name)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, recipeAttr(rid, "name"), recipe.Name, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write recipe %s name", recipe.Name)
	}
	if err := s.rdb.Set(ctx, recipeAttr(rid, "desc"), recipe.Desc, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write recipe %s desc", recipe.Name)
	}

	listKey := recipeAttr(rid, "rlist")
	if err := s.rdb.Del(ctx, listKey).Err(); err != nil {
		return errors.Wrapf(err, "failed to clear recipe %s list", recipe.Name)
	}
	for _, item := range recipe.Items {
		elem := item.Bag + recipeItemSep + item.Filter
		if err := s.rdb.RPush(ctx, listKey, elem).Err(); err != nil {
			return errors.Wrapf(err, "failed to append to recipe %s list", recipe.Name)
		}
	}

	pid, err := s.policyID(ctx, recipeAttr(rid, "policy"))
	if err != nil {
		return err
	}
	pid, err = s.putPolicy(ctx, recipe.Policy, pid)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, recipeAttr(rid, "policy"), pid, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to write recipe %s policy pointer", recipe.Name)
	}

	s.log.Debugw("put recipe", "recipe", recipe.Name, "rid", rid, "items", len(recipe.Items))
	return nil
}

// DeleteRecipe removes a recipe: its attribute keys, its policy, its
// forward pointer, and its membership entry. Recipes do not cascade.
func (s *Store) DeleteRecipe(ctx context.Context, name string) error {
	rid, err := s.resolve(ctx, recipeKind, name)
	if err != nil {
		return err
	}

	if err := s.deletePolicy(ctx, recipeAttr(rid, "policy")); err != nil {
		return err
	}

	keys := []string{
		recipeAttr(rid, "name"),
		recipeAttr(rid, "desc"),
		recipeAttr(rid, "policy"),
		recipeAttr(rid, "rlist"),
		recipeIDKey(name),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "failed to purge recipe %s", name)
	}
	if err := s.rdb.SRem(ctx, keyRecipes, rid).Err(); err != nil {
		return errors.Wrapf(err, "failed to deregister recipe %s", name)
	}
	return nil
}

// ListRecipes snapshots the live recipes. Only Name is populated; order
// is not guaranteed.
func (s *Store) ListRecipes(ctx context.Context) ([]*model.Recipe, error) {
	rids, err := s.memberIDs(ctx, keyRecipes)
	if err != nil {
		return nil, err
	}
	recipes := make([]*model.Recipe, 0, len(rids))
	for _, rid := range rids {
		name, ok, err := s.c.text(ctx, recipeAttr(rid, "name"))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		recipes = append(recipes, model.NewRecipe(name))
	}
	return recipes, nil
}
