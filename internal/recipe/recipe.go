// Package recipe normalizes a raw game-data corpus into display-ready
// items and crafting recipes, and serves category, search, and lookup
// queries over them.
package recipe

// Category groups items for browsing.
type Category string

const (
	CategoryTools          Category = "tools"
	CategoryWeapons        Category = "weapons"
	CategoryArmor          Category = "armor"
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryRedstone       Category = "redstone"
	CategoryDecoration     Category = "decoration"
	CategoryBuilding       Category = "building"
	CategoryMiscellaneous  Category = "miscellaneous"
)

// AllCategories is the fixed display order of categories.
var AllCategories = []Category{
	CategoryTools,
	CategoryWeapons,
	CategoryArmor,
	CategoryFood,
	CategoryTransportation,
	CategoryRedstone,
	CategoryDecoration,
	CategoryBuilding,
	CategoryMiscellaneous,
}

// ValidCategory reports whether c is one of AllCategories.
func ValidCategory(c Category) bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Type is the crafting layout of a recipe.
type Type string

const (
	TypeShaped    Type = "shaped"
	TypeShapeless Type = "shapeless"
)

// Item is a normalized corpus item.
type Item struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	StackSize   int      `json:"stack_size"`
	Category    Category `json:"category"`
	TextureKey  string   `json:"texture_key"`
}

// Ingredient is an item placed in one cell of a crafting grid.
type Ingredient struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	TextureKey  string `json:"texture_key"`
}

// Material is one distinct ingredient of a recipe with its total count.
type Material struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Count       int    `json:"count"`
	TextureKey  string `json:"texture_key"`
}

// GridSize is the width and height of the crafting grid.
const GridSize = 3

// Grid is a 3x3 crafting grid indexed [row][col]. Empty cells are nil.
type Grid [GridSize][GridSize]*Ingredient

// Filled returns the number of non-empty cells.
func (g *Grid) Filled() int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if cell != nil {
				n++
			}
		}
	}
	return n
}

// Recipe is a normalized crafting recipe.
//
// For shaped recipes Pattern mirrors the corpus layout. For shapeless
// recipes it is a row-major packing of the ingredients for display only.
type Recipe struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	ResultID      int        `json:"result_id"`
	ResultCount   int        `json:"result_count"`
	Type          Type       `json:"type"`
	CraftingTable bool       `json:"crafting_table"`
	Pattern       Grid       `json:"pattern"`
	Materials     []Material `json:"materials"`
	Description   string     `json:"description"`
	TextureKey    string     `json:"texture_key"`
}

// CategoryCount is the number of recipes in a category.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}
