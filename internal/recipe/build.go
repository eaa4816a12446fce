package recipe

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/texture"
)

const defaultStackSize = 64

// index is the immutable query state built from one corpus.
type index struct {
	version    string
	items      map[int]Item
	itemList   []Item
	recipes    []Recipe
	byID       map[string]int
	categories map[Category][]Recipe
}

func emptyIndex(version string) *index {
	return &index{
		version:    version,
		items:      map[int]Item{},
		itemList:   []Item{},
		recipes:    []Recipe{},
		byID:       map[string]int{},
		categories: map[Category][]Recipe{},
	}
}

// build normalizes c into a query index.
func build(c *corpus.Corpus, logger logrus.FieldLogger) *index {
	idx := emptyIndex(c.Version)

	for _, id := range corpus.SortedItemIDs(c) {
		item := newItem(c.Items[id], c)
		idx.items[id] = item
		idx.itemList = append(idx.itemList, item)
	}

	b := builder{items: idx.items, logger: logger}
	for _, resultID := range corpus.SortedResultIDs(c) {
		result, ok := idx.items[resultID]
		if !ok {
			logger.WithField("result_id", resultID).Debug("skipping recipes for unknown result item")
			continue
		}
		for _, raw := range c.Recipes[resultID] {
			r, ok := b.recipe(result, raw, len(idx.recipes))
			if !ok {
				logger.WithField("result", result.Name).Debug("dropping recipe of unknown type")
				continue
			}
			idx.recipes = append(idx.recipes, r)
		}
	}

	sortByName(idx.recipes)

	for i, r := range idx.recipes {
		idx.byID[r.ID] = i
	}
	for _, r := range idx.recipes {
		cat := CategoryMiscellaneous
		if item, ok := idx.items[r.ResultID]; ok && item.Category != "" {
			cat = item.Category
		}
		idx.categories[cat] = append(idx.categories[cat], r)
	}

	return idx
}

func newItem(raw corpus.RawItem, c *corpus.Corpus) Item {
	item := Item{
		ID:          raw.ID,
		Name:        raw.Name,
		DisplayName: raw.DisplayName,
		StackSize:   raw.StackSize,
		Category:    Classify(raw, c),
		TextureKey:  texture.Key(raw.Name),
	}
	if item.DisplayName == "" {
		item.DisplayName = item.Name
	}
	if item.StackSize == 0 {
		item.StackSize = defaultStackSize
	}
	return item
}

// sortByName orders recipes by display name using English collation.
// Recipes with equal names keep their build order.
func sortByName(recipes []Recipe) {
	col := collate.New(language.English)
	sort.SliceStable(recipes, func(i, j int) bool {
		return col.CompareString(recipes[i].Name, recipes[j].Name) < 0
	})
}

type builder struct {
	items  map[int]Item
	logger logrus.FieldLogger
}

// recipe normalizes one raw recipe. seq is the number of recipes built so
// far and makes the id unique. ok is false for recipes of unknown type.
func (b builder) recipe(result Item, raw corpus.RawRecipe, seq int) (Recipe, bool) {
	r := Recipe{
		ID:            fmt.Sprintf("%s_%d", texture.Normalize(result.Name), seq),
		Name:          result.DisplayName,
		ResultID:      result.ID,
		ResultCount:   1,
		CraftingTable: raw.RequiresTable == nil || *raw.RequiresTable,
		Description:   Describe(result),
		TextureKey:    result.TextureKey,
	}
	if raw.Result != nil && raw.Result.Count > 0 {
		r.ResultCount = raw.Result.Count
	}

	switch raw.Kind() {
	case corpus.KindShaped:
		r.Type = TypeShaped
		r.Pattern, r.Materials = b.shaped(r.ID, raw.InShape)
	case corpus.KindShapeless:
		r.Type = TypeShapeless
		r.Pattern, r.Materials = b.shapeless(r.ID, raw.Ingredients)
	default:
		return Recipe{}, false
	}
	return r, true
}

// shaped copies the raw layout into the grid and counts every filled cell.
// Cells beyond the 3x3 grid are dropped from the grid with a warning, like
// shapeless overflow; the materials list keeps the full counts.
func (b builder) shaped(recipeID string, shape [][]*int) (Grid, []Material) {
	var grid Grid
	materials := []Material{}
	pos := map[int]int{}
	overflow := 0

	for row, cells := range shape {
		for col, cell := range cells {
			if cell == nil {
				continue
			}
			item, ok := b.items[*cell]
			if !ok {
				continue
			}
			if row < GridSize && col < GridSize {
				grid[row][col] = ingredient(item)
			} else {
				overflow++
			}
			if i, seen := pos[item.ID]; seen {
				materials[i].Count++
				continue
			}
			pos[item.ID] = len(materials)
			materials = append(materials, material(item, 1))
		}
	}
	if overflow > 0 {
		b.logger.WithFields(logrus.Fields{
			"recipe":  recipeID,
			"dropped": overflow,
		}).Warn("shaped recipe is larger than 3x3")
	}

	return grid, materials
}

// shapeless tallies ingredients in first-appearance order, then packs them
// row-major into the grid. Placements past the ninth cell are dropped with a
// warning; the materials list keeps the full counts.
func (b builder) shapeless(recipeID string, ids []int) (Grid, []Material) {
	var grid Grid
	materials := []Material{}
	pos := map[int]int{}

	for _, id := range ids {
		item, ok := b.items[id]
		if !ok {
			continue
		}
		if i, seen := pos[id]; seen {
			materials[i].Count++
			continue
		}
		pos[id] = len(materials)
		materials = append(materials, material(item, 1))
	}

	placed, overflow := 0, 0
	for _, id := range ids {
		item, ok := b.items[id]
		if !ok {
			continue
		}
		if placed >= GridSize*GridSize {
			overflow++
			continue
		}
		grid[placed/GridSize][placed%GridSize] = ingredient(item)
		placed++
	}
	if overflow > 0 {
		b.logger.WithFields(logrus.Fields{
			"recipe":  recipeID,
			"dropped": overflow,
		}).Warn("shapeless recipe has more than 9 ingredients")
	}

	return grid, materials
}

func ingredient(item Item) *Ingredient {
	return &Ingredient{
		ID:          item.ID,
		Name:        item.Name,
		DisplayName: item.DisplayName,
		TextureKey:  item.TextureKey,
	}
}

func material(item Item, count int) Material {
	return Material{
		ID:          item.ID,
		Name:        item.Name,
		DisplayName: item.DisplayName,
		Count:       count,
		TextureKey:  item.TextureKey,
	}
}
