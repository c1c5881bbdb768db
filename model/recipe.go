package model

// RecipeItem is one (bag, filter) pair in a recipe. The filter
// expression is opaque to the store; it is interpreted by whatever
// expands the recipe into tiddlers.
type RecipeItem struct {
	Bag    string
	Filter string
}

// Recipe is a named, ordered composition of (bag, filter) pairs with a
// description and an access policy. Item order is significant and is
// preserved exactly by the store.
type Recipe struct {
	Name   string
	Desc   string
	Policy Policy
	Items  []RecipeItem
}

// NewRecipe returns a recipe with the given name and no items.
func NewRecipe(name string) *Recipe {
	return &Recipe{Name: name}
}

// SetItems replaces the recipe's (bag, filter) pairs.
func (r *Recipe) SetItems(items []RecipeItem) {
	r.Items = items
}
