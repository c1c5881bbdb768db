package store

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

func newTestStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, zaptest.NewLogger(t).Sugar()), client
}

func TestBagRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	bag := model.NewBag("testone")
	bag.Desc = "testone"
	bag.Policy.Accept = []string{"cdent"}
	require.NoError(t, s.PutBag(ctx, bag))

	got, err := s.GetBag(ctx, "testone")
	require.NoError(t, err)
	assert.Equal(t, "testone", got.Name)
	assert.Equal(t, "testone", got.Desc)
	assert.Equal(t, []string{"cdent"}, got.Policy.Accept)
	assert.Empty(t, got.Policy.Owner)
}

func TestBagPolicyReplacedWholesale(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	bag := model.NewBag("poly")
	bag.Policy.Read = []string{"alice", "bob"}
	bag.Policy.Owner = "alice"
	require.NoError(t, s.PutBag(ctx, bag))

	// re-put with a smaller set: stored principals are replaced, not merged
	bag.Policy.Read = []string{"bob"}
	bag.Policy.Owner = ""
	require.NoError(t, s.PutBag(ctx, bag))

	got, err := s.GetBag(ctx, "poly")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, got.Policy.Read)
	assert.Empty(t, got.Policy.Owner)

	// the policy id is shared by reference and reused across puts
	pid, err := client.Get(ctx, "bid:"+client.Get(ctx, "bag:poly:bid").Val()+":policy").Result()
	require.NoError(t, err)
	assert.Equal(t, "1", pid)
}

func TestTiddlerRoundTripAndHistory(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("testone")))

	tiddler := model.NewTiddler("monkey", "testone")
	tiddler.Text = "cow"
	tiddler.Tags = []string{"tagone", "tagtwo", "tagthree"}
	tiddler.Fields["field key one"] = "fieldvalueone"
	tiddler.Fields["field key two"] = "fieldvaluetwo"
	tiddler.Modifier = "cdent"
	tiddler.Modified = "20080202111111"
	require.NoError(t, s.PutTiddler(ctx, tiddler))

	got, err := s.GetTiddler(ctx, "testone", "monkey")
	require.NoError(t, err)
	assert.Equal(t, "cow", got.Text)
	assert.ElementsMatch(t, tiddler.Tags, got.Tags)
	assert.Equal(t, "fieldvaluetwo", got.Fields["field key two"])
	assert.Equal(t, "cdent", got.Modifier)
	assert.Equal(t, "20080202111111", got.Modified)
	assert.Equal(t, "cdent", got.Creator)
	assert.Equal(t, "20080202111111", got.Created)

	tiddler.Text = "pig"
	require.NoError(t, s.PutTiddler(ctx, tiddler))

	revisions, err := s.ListTiddlerRevisions(ctx, "testone", "monkey")
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Greater(t, revisions[0], revisions[1], "newest revision comes first")

	got, err = s.GetTiddler(ctx, "testone", "monkey")
	require.NoError(t, err)
	assert.Equal(t, "pig", got.Text)
	assert.Equal(t, "cdent", got.Creator, "creation metadata is fixed by the first revision")

	require.NoError(t, s.DeleteTiddler(ctx, "testone", "monkey"))
	_, err = s.GetTiddler(ctx, "testone", "monkey")
	assert.True(t, errors.IsNoTiddler(err))

	// a put after delete starts a fresh history
	require.NoError(t, s.PutTiddler(ctx, tiddler))
	revisions, err = s.ListTiddlerRevisions(ctx, "testone", "monkey")
	require.NoError(t, err)
	assert.Len(t, revisions, 1)
}

func TestExplicitRevisionGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("hist")))

	tiddler := model.NewTiddler("doc", "hist")
	tiddler.Modifier = "cdent"
	tiddler.Text = "first"
	require.NoError(t, s.PutTiddler(ctx, tiddler))
	tiddler.Text = "second"
	require.NoError(t, s.PutTiddler(ctx, tiddler))

	revisions, err := s.ListTiddlerRevisions(ctx, "hist", "doc")
	require.NoError(t, err)
	require.Len(t, revisions, 2)

	oldest := revisions[len(revisions)-1]
	got, err := s.GetTiddlerRevision(ctx, "hist", "doc", oldest)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)
	assert.Equal(t, oldest, got.Revision)
}

func TestCascadingBagDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("doomed")))
	titles := []string{"alpha", "beta", "gamma"}
	for _, title := range titles {
		td := model.NewTiddler(title, "doomed")
		td.Text = title + " text"
		td.Modifier = "cdent"
		require.NoError(t, s.PutTiddler(ctx, td))
	}

	require.NoError(t, s.DeleteBag(ctx, "doomed"))

	_, err := s.GetBag(ctx, "doomed")
	assert.True(t, errors.IsNoBag(err))
	for _, title := range titles {
		_, err := s.GetTiddler(ctx, "doomed", title)
		assert.True(t, errors.IsNoTiddler(err), "tiddler %s should be gone", title)
	}

	bags, err := s.ListBags(ctx)
	require.NoError(t, err)
	assert.Empty(t, bags)
}

func TestCascadingDeletePurgesKeys(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	bag := model.NewBag("clean")
	bag.Policy.Read = []string{"cdent"}
	bag.Policy.Owner = "cdent"
	require.NoError(t, s.PutBag(ctx, bag))

	td := model.NewTiddler("note", "clean")
	td.Modifier = "cdent"
	td.Tags = []string{"a"}
	td.Fields = map[string]string{"k": "v"}
	require.NoError(t, s.PutTiddler(ctx, td))

	require.NoError(t, s.DeleteBag(ctx, "clean"))

	// only the id counters survive
	keys, err := client.Keys(ctx, "*").Result()
	require.NoError(t, err)
	for _, key := range keys {
		assert.Contains(t, key, "ids:next", "leftover key %s", key)
	}
}

func TestListBagTiddlers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("testtwo")))

	for _, title := range []string{"alpha", "beta"} {
		td := model.NewTiddler(title, "testtwo")
		td.Text = title + " cow"
		td.Modifier = "cdent"
		require.NoError(t, s.PutTiddler(ctx, td))
	}

	tiddlers, err := s.ListBagTiddlers(ctx, "testtwo")
	require.NoError(t, err)
	require.Len(t, tiddlers, 2)

	var titles []string
	for _, td := range tiddlers {
		assert.Equal(t, "testtwo", td.Bag)
		titles = append(titles, td.Title)
	}
	sort.Strings(titles)
	assert.Equal(t, []string{"alpha", "beta"}, titles)

	_, err = s.ListBagTiddlers(ctx, "nosuchbag")
	assert.True(t, errors.IsNoBag(err))
}

func TestListBags(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("one")))
	require.NoError(t, s.PutBag(ctx, model.NewBag("two")))
	require.NoError(t, s.PutBag(ctx, model.NewBag("two")), "re-put must not duplicate")

	bags, err := s.ListBags(ctx)
	require.NoError(t, err)
	var names []string
	for _, bag := range bags {
		names = append(names, bag.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"one", "two"}, names)
}

func TestUsers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	userc := model.NewUser("cdent")
	require.NoError(t, userc.SetPassword("foobar"))
	userc.AddRole("ADMIN")
	userc.Note = "A simple programmer of matter"
	require.NoError(t, s.PutUser(ctx, userc))

	userf := model.NewUser("FND")
	require.NoError(t, userf.SetPassword("I<3whitespace"))
	require.NoError(t, s.PutUser(ctx, userf))

	got, err := s.GetUser(ctx, "cdent")
	require.NoError(t, err)
	assert.Equal(t, "cdent", got.Name)
	assert.True(t, got.CheckPassword("foobar"))
	assert.Equal(t, []string{"ADMIN"}, got.Roles)
	assert.Equal(t, userc.Note, got.Note)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, s.DeleteUser(ctx, "FND"))

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = s.GetUser(ctx, "FND")
	assert.True(t, errors.IsNoUser(err))
}

func TestUserRolesReplacedOnPut(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	user := model.NewUser("cdent")
	user.Roles = []string{"ADMIN", "EDITOR"}
	require.NoError(t, s.PutUser(ctx, user))

	user.Roles = []string{"EDITOR"}
	require.NoError(t, s.PutUser(ctx, user))

	got, err := s.GetUser(ctx, "cdent")
	require.NoError(t, err)
	assert.Equal(t, []string{"EDITOR"}, got.Roles)
}

func TestRecipes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	recipe := model.NewRecipe("cow")
	recipe.Desc = "a meaty melange"
	recipe.Policy.Accept = []string{"cdent"}
	recipe.SetItems([]model.RecipeItem{
		{Bag: "alpha", Filter: "select=tag:systemConfig"},
		{Bag: "beta", Filter: ""},
	})
	require.NoError(t, s.PutRecipe(ctx, recipe))

	recipes, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	got, err := s.GetRecipe(ctx, recipes[0].Name)
	require.NoError(t, err)
	assert.Equal(t, "cow", got.Name)
	assert.Equal(t, "a meaty melange", got.Desc)
	assert.Equal(t, []string{"cdent"}, got.Policy.Accept)
	require.Len(t, got.Items, 2)
	assert.Equal(t, model.RecipeItem{Bag: "alpha", Filter: "select=tag:systemConfig"}, got.Items[0])
	assert.Equal(t, model.RecipeItem{Bag: "beta", Filter: ""}, got.Items[1])

	require.NoError(t, s.DeleteRecipe(ctx, "cow"))
	recipes, err = s.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestRecipeRePutReplacesItems(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	recipe := model.NewRecipe("r")
	recipe.SetItems([]model.RecipeItem{{Bag: "a", Filter: "x"}, {Bag: "b", Filter: ""}})
	require.NoError(t, s.PutRecipe(ctx, recipe))

	recipe.SetItems([]model.RecipeItem{{Bag: "c", Filter: ""}})
	require.NoError(t, s.PutRecipe(ctx, recipe))

	got, err := s.GetRecipe(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, []model.RecipeItem{{Bag: "c", Filter: ""}}, got.Items)
}

func TestMalformedRecipeElement(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	recipe := model.NewRecipe("broken")
	recipe.SetItems([]model.RecipeItem{{Bag: "a", Filter: "f"}})
	require.NoError(t, s.PutRecipe(ctx, recipe))

	rid := client.Get(ctx, "recipe:broken:rid").Val()
	require.NoError(t, client.RPush(ctx, "rid:"+rid+":rlist", "no-delimiter-here").Err())

	_, err := s.GetRecipe(ctx, "broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedRecipe))
}

func TestRepeatedDeleteYieldsSameKind(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("gone")))
	require.NoError(t, s.DeleteBag(ctx, "gone"))

	assert.True(t, errors.IsNoBag(s.DeleteBag(ctx, "gone")))
	assert.True(t, errors.IsNoBag(s.DeleteBag(ctx, "never-existed")))
	assert.True(t, errors.IsNoRecipe(s.DeleteRecipe(ctx, "never-existed")))
	assert.True(t, errors.IsNoUser(s.DeleteUser(ctx, "never-existed")))
}

func TestPutTiddlerRequiresBag(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	td := model.NewTiddler("orphan", "nosuchbag")
	td.Modifier = "cdent"
	err := s.PutTiddler(ctx, td)
	assert.True(t, errors.IsNoBag(err))

	err = s.DeleteTiddler(ctx, "nosuchbag", "orphan")
	assert.True(t, errors.IsNoBag(err))
}

func TestMissingModifierTreatedAsMissingRow(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("b")))
	td := model.NewTiddler("t", "b")
	td.Modifier = "cdent"
	require.NoError(t, s.PutTiddler(ctx, td))

	got, err := s.GetTiddler(ctx, "b", "t")
	require.NoError(t, err)
	require.NoError(t, client.Del(ctx, revisionAttr(got.Revision, "modifier")).Err())

	_, err = s.GetTiddler(ctx, "b", "t")
	assert.True(t, errors.IsNoTiddler(err))
}

func TestBinaryTiddlerBypassesDecode(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("images")))

	payload := "\x89PNG\r\n\x1a\n\xff\xfe\x00binary"
	td := model.NewTiddler("logo", "images")
	td.Type = "image/png"
	td.Text = payload
	td.Modifier = "cdent"
	require.NoError(t, s.PutTiddler(ctx, td))

	got, err := s.GetTiddler(ctx, "images", "logo")
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.Type)
	assert.True(t, got.IsBinary())
	assert.Equal(t, payload, got.Text, "raw bytes preserved")
}

func TestTextTiddlerRejectsInvalidUTF8(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("texts")))

	td := model.NewTiddler("bad", "texts")
	td.Text = "\xff\xfe not utf-8"
	td.Modifier = "cdent"
	require.NoError(t, s.PutTiddler(ctx, td))

	_, err := s.GetTiddler(ctx, "texts", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UTF-8")
}

func TestReservedFieldsNotPersisted(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBag(ctx, model.NewBag("b")))

	td := model.NewTiddler("t", "b")
	td.Modifier = "cdent"
	td.Fields["server.host"] = "example.org"
	td.Fields["color"] = "red"
	require.NoError(t, s.PutTiddler(ctx, td))

	got, err := s.GetTiddler(ctx, "b", "t")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"color": "red"}, got.Fields)
}

func TestMultiByteNamesRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// percent-decoded form of aaa%25%E3%81%86%E3%81%8F%E3%81%99
	name := "aaa%うくす"

	bag := model.NewBag(name)
	bag.Desc = name
	bag.Policy.Accept = []string{"cdent"}
	require.NoError(t, s.PutBag(ctx, bag))

	gotBag, err := s.GetBag(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, name, gotBag.Name)
	assert.Equal(t, name, gotBag.Desc)
	assert.Equal(t, []string{"cdent"}, gotBag.Policy.Accept)

	td := model.NewTiddler(name, name)
	td.Text = name
	td.Tags = []string{name}
	td.Fields["field key "+name] = name
	td.Modifier = name
	td.Modified = "20080202111111"
	require.NoError(t, s.PutTiddler(ctx, td))

	gotTd, err := s.GetTiddler(ctx, name, name)
	require.NoError(t, err)
	assert.Equal(t, name, gotTd.Text)
	assert.Equal(t, []string{name}, gotTd.Tags)
	assert.Equal(t, name, gotTd.Fields["field key "+name])
	assert.Equal(t, name, gotTd.Modifier)

	user := model.NewUser(name)
	require.NoError(t, user.SetPassword(name))
	require.NoError(t, s.PutUser(ctx, user))

	gotUser, err := s.GetUser(ctx, name)
	require.NoError(t, err)
	assert.True(t, gotUser.CheckPassword(name))
}

func TestKeyGrammar(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	bag := model.NewBag("grammar")
	bag.Desc = "d"
	bag.Policy.Read = []string{"cdent"}
	bag.Policy.Owner = "cdent"
	require.NoError(t, s.PutBag(ctx, bag))

	td := model.NewTiddler("title", "grammar")
	td.Modifier = "cdent"
	td.Tags = []string{"x"}
	td.Fields = map[string]string{"k": "v"}
	require.NoError(t, s.PutTiddler(ctx, td))

	for _, key := range []string{
		"ids:nextBagID",
		"ids:nextTiddlerID",
		"ids:nextRevisionID",
		"ids:nextPolicyID",
		"bag:grammar:bid",
		"tiddler:grammar:title:tid",
		"bags",
		"bid:1:name",
		"bid:1:desc",
		"bid:1:policy",
		"bid:1:tiddlers",
		"tid:1:title",
		"tid:1:bid",
		"tid:1:revisions",
		"rvid:1:text",
		"rvid:1:modifier",
		"rvid:1:modified",
		"rvid:1:type",
		"rvid:1:tags",
		"rvid:1:fields",
		"rvid:1:tid",
		"pid:1:read",
		"pid:1:owner",
	} {
		n, err := client.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, "expected key %s", key)
	}
}

func TestIDsAreMonotonic(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := s.nextID(ctx, nsBag)
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}
