// Package costing scales recipes and values ingredient stock. Every function
// is pure: callers pass snapshots in and persist what comes back.
package costing

import (
	"sort"

	"bakehouse/internal/models"
)

// Catalog indexes ingredients by ID
type Catalog map[uint]models.Ingredient

// NewCatalog builds a Catalog from a list of ingredients
func NewCatalog(ingredients []models.Ingredient) Catalog {
	c := make(Catalog, len(ingredients))
	for _, ing := range ingredients {
		c[ing.ID] = ing
	}
	return c
}

// Clone returns a copy that can be mutated without touching c
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for id, ing := range c {
		out[id] = ing
	}
	return out
}

// IDs returns the ingredient IDs in ascending order
func (c Catalog) IDs() []uint {
	ids := make([]uint, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RecipeBook indexes recipes by ID
type RecipeBook map[uint]models.Recipe

// NewRecipeBook builds a RecipeBook from a list of recipes
func NewRecipeBook(recipes []models.Recipe) RecipeBook {
	b := make(RecipeBook, len(recipes))
	for _, r := range recipes {
		b[r.ID] = r
	}
	return b
}

// Lookup finds a recipe by optional reference
func (b RecipeBook) Lookup(id *uint) (models.Recipe, bool) {
	if id == nil {
		return models.Recipe{}, false
	}
	r, ok := b[*id]
	return r, ok
}
