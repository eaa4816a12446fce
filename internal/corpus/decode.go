package corpus

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// namedRecord is the subset of a block or food record the corpus needs.
type namedRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Decode builds a Corpus from minecraft-data style files: items and recipes
// are required, foods and blocks may be nil.
//
// Foods are matched by item id. Blocks are numbered separately from items,
// so an item is flagged as a block when a block of the same name exists.
func Decode(version string, items, recipes, foods, blocks []byte) (*Corpus, error) {
	c := New(version)

	var itemList []RawItem
	if err := json.Unmarshal(items, &itemList); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	for _, it := range itemList {
		c.Items[it.ID] = it
	}

	var recipeMap map[string][]RawRecipe
	if err := json.Unmarshal(recipes, &recipeMap); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}
	for key, list := range recipeMap {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode recipes: result key %q is not an item id", key)
		}
		c.Recipes[id] = list
	}

	if len(foods) > 0 {
		var foodList []namedRecord
		if err := json.Unmarshal(foods, &foodList); err != nil {
			return nil, fmt.Errorf("decode foods: %w", err)
		}
		for _, f := range foodList {
			c.Foods[f.ID] = true
		}
	}

	if len(blocks) > 0 {
		var blockList []namedRecord
		if err := json.Unmarshal(blocks, &blockList); err != nil {
			return nil, fmt.Errorf("decode blocks: %w", err)
		}
		byName := make(map[string]int, len(c.Items))
		for id, it := range c.Items {
			byName[it.Name] = id
		}
		for _, b := range blockList {
			if id, ok := byName[b.Name]; ok {
				c.Blocks[id] = true
			}
		}
	}

	return c, nil
}

// Document is the single-file serialization of a corpus used for export and
// re-import. Unlike the minecraft-data layout, food and block flags are
// stored as item ids.
type Document struct {
	Version string                 `json:"version"`
	Items   []RawItem              `json:"items"`
	Recipes map[string][]RawRecipe `json:"recipes"`
	Foods   []int                  `json:"foods,omitempty"`
	Blocks  []int                  `json:"blocks,omitempty"`
}

// ToDocument converts c to its export form with deterministic ordering.
func (c *Corpus) ToDocument() *Document {
	doc := &Document{
		Version: c.Version,
		Items:   make([]RawItem, 0, len(c.Items)),
		Recipes: make(map[string][]RawRecipe, len(c.Recipes)),
		Foods:   sortedIDs(c.Foods),
		Blocks:  sortedIDs(c.Blocks),
	}
	for _, id := range SortedItemIDs(c) {
		doc.Items = append(doc.Items, c.Items[id])
	}
	for id, list := range c.Recipes {
		doc.Recipes[strconv.Itoa(id)] = list
	}
	return doc
}

// FromDocument converts an export document back to a Corpus.
func FromDocument(doc *Document) (*Corpus, error) {
	c := New(doc.Version)
	for _, it := range doc.Items {
		c.Items[it.ID] = it
	}
	for key, list := range doc.Recipes {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode document: result key %q is not an item id", key)
		}
		c.Recipes[id] = list
	}
	for _, id := range doc.Foods {
		c.Foods[id] = true
	}
	for _, id := range doc.Blocks {
		c.Blocks[id] = true
	}
	return c, nil
}

// SortedItemIDs returns the corpus item ids in ascending order.
func SortedItemIDs(c *Corpus) []int {
	ids := make([]int, 0, len(c.Items))
	for id := range c.Items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SortedResultIDs returns the result ids that have recipes, ascending.
func SortedResultIDs(c *Corpus) []int {
	ids := make([]int, 0, len(c.Recipes))
	for id := range c.Recipes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func sortedIDs(set map[int]bool) []int {
	if len(set) == 0 {
		return nil
	}
	ids := make([]int, 0, len(set))
	for id, ok := range set {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
