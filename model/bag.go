// Package model defines the entities persisted by the satchel store:
// bags, recipes, tiddlers, users, and the access policies attached to
// bags and recipes.
package model

// Bag is a named container of tiddlers with its own access policy.
type Bag struct {
	Name   string
	Desc   string
	Policy Policy
}

// NewBag returns a bag with the given name and an open policy.
func NewBag(name string) *Bag {
	return &Bag{Name: name}
}
