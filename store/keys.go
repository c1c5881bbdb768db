package store

import "strconv"

// The persisted key grammar. It must be reproduced exactly to
// interoperate with data written by earlier deployments:
//
//	ids:next<Entity>ID                          atomic id counters
//	bag:<name>:bid                              forward name→id pointers
//	recipe:<name>:rid
//	user:<name>:uid
//	tiddler:<bag>:<title>:tid
//	bid:<id>:<attr>                             per-id attributes
//	rid:<id>:<attr>
//	uid:<id>:<attr>
//	tid:<id>:<attr>
//	rvid:<id>:<attr>
//	bags / recipes / users                      global membership sets
//	bid:<id>:tiddlers                           bag's tiddler set
//	tid:<id>:revisions                          ordered revision-id list
//	pid:<id>:<manage|accept|create|read|write>  policy principal sets
//	pid:<id>:owner                              policy owner scalar

// Global membership sets.
const (
	keyBags    = "bags"
	keyRecipes = "recipes"
	keyUsers   = "users"
)

// Counter namespaces, one per entity type.
const (
	nsRecipe   = "Recipe"
	nsBag      = "Bag"
	nsUser     = "User"
	nsTiddler  = "Tiddler"
	nsRevision = "Revision"
	nsPolicy   = "Policy"
)

func counterKey(namespace string) string {
	return "ids:next" + namespace + "ID"
}

func bagIDKey(name string) string {
	return "bag:" + name + ":bid"
}

func recipeIDKey(name string) string {
	return "recipe:" + name + ":rid"
}

func userIDKey(name string) string {
	return "user:" + name + ":uid"
}

func tiddlerIDKey(bag, title string) string {
	return "tiddler:" + bag + ":" + title + ":tid"
}

func attrKey(idField string, id int64, attr string) string {
	return idField + ":" + strconv.FormatInt(id, 10) + ":" + attr
}

func bagAttr(id int64, attr string) string      { return attrKey("bid", id, attr) }
func recipeAttr(id int64, attr string) string   { return attrKey("rid", id, attr) }
func userAttr(id int64, attr string) string     { return attrKey("uid", id, attr) }
func tiddlerAttr(id int64, attr string) string  { return attrKey("tid", id, attr) }
func revisionAttr(id int64, attr string) string { return attrKey("rvid", id, attr) }
func policyAttr(id int64, attr string) string   { return attrKey("pid", id, attr) }
