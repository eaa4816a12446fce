// Package corpus holds the raw, versioned game-data records the recipe
// pipeline ingests: items, crafting recipes, and the food and block flags.
package corpus

// RawItem is an item record as it appears in the corpus.
type RawItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	StackSize   int    `json:"stackSize,omitempty"`
}

// RawResult is the output of a recipe.
type RawResult struct {
	ID    int `json:"id"`
	Count int `json:"count,omitempty"`
}

// RawRecipe is a crafting recipe as it appears in the corpus.
// Shaped recipes carry InShape (rows of item ids, nil for an empty cell);
// shapeless recipes carry Ingredients. A record with neither is of unknown
// type.
type RawRecipe struct {
	InShape       [][]*int   `json:"inShape,omitempty"`
	Ingredients   []int      `json:"ingredients,omitempty"`
	Result        *RawResult `json:"result,omitempty"`
	RequiresTable *bool      `json:"requiresTable,omitempty"`
}

// Kind classifies a raw recipe.
type Kind string

const (
	KindShaped    Kind = "shaped"
	KindShapeless Kind = "shapeless"
	KindUnknown   Kind = "unknown"
)

// Kind reports whether the recipe is shaped, shapeless, or unknown.
// A shape takes precedence over an ingredient list.
func (r RawRecipe) Kind() Kind {
	switch {
	case r.InShape != nil:
		return KindShaped
	case r.Ingredients != nil:
		return KindShapeless
	default:
		return KindUnknown
	}
}

// Corpus is one version of the game data.
type Corpus struct {
	Version string

	// Items keyed by item id.
	Items map[int]RawItem

	// Recipes keyed by result item id; one item may have several recipes.
	Recipes map[int][]RawRecipe

	// Foods and Blocks flag item ids that are edible or placeable.
	Foods  map[int]bool
	Blocks map[int]bool
}

// New returns an empty corpus for version.
func New(version string) *Corpus {
	return &Corpus{
		Version: version,
		Items:   make(map[int]RawItem),
		Recipes: make(map[int][]RawRecipe),
		Foods:   make(map[int]bool),
		Blocks:  make(map[int]bool),
	}
}

// IsFood reports whether the corpus flags id as food.
func (c *Corpus) IsFood(id int) bool {
	return c.Foods[id]
}

// IsBlock reports whether the corpus flags id as a placeable block.
func (c *Corpus) IsBlock(id int) bool {
	return c.Blocks[id]
}

// RecipeCount returns the total number of raw recipe records.
func (c *Corpus) RecipeCount() int {
	n := 0
	for _, list := range c.Recipes {
		n += len(list)
	}
	return n
}

// Int returns a pointer to v. Handy for building InShape rows.
func Int(v int) *int {
	return &v
}
