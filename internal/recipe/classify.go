package recipe

import (
	"strings"

	"github.com/hpungsan/stevept/internal/corpus"
)

// Rule assigns Category to items it matches.
type Rule struct {
	Category Category
	Match    func(name string, id int, c *corpus.Corpus) bool
}

// Rules is the ordered item classifier. The first matching rule wins, so
// an item matching both a redstone and a decoration substring is redstone.
var Rules = []Rule{
	{CategoryTools, nameContains("pickaxe", "axe", "shovel", "hoe", "shears", "fishing", "flint_and_steel")},
	{CategoryWeapons, nameContains("sword", "bow", "arrow", "trident")},
	{CategoryArmor, nameContains("helmet", "chestplate", "leggings", "boots", "shield")},
	{CategoryFood, either(
		func(_ string, id int, c *corpus.Corpus) bool { return c.IsFood(id) },
		nameContains("apple", "bread", "meat", "porkchop", "fish", "cake", "stew", "soup"),
	)},
	{CategoryTransportation, nameContains("boat", "minecart", "saddle", "elytra")},
	{CategoryRedstone, nameContains("redstone", "piston", "repeater", "comparator", "hopper", "observer", "dropper", "dispenser")},
	{CategoryDecoration, nameContains("door", "bed", "banner", "carpet", "sign", "painting", "flower", "pot")},
	{CategoryBuilding, func(_ string, id int, c *corpus.Corpus) bool { return c.IsBlock(id) }},
}

// Classify returns the category of a raw item.
func Classify(item corpus.RawItem, c *corpus.Corpus) Category {
	name := strings.ToLower(item.Name)
	for _, rule := range Rules {
		if rule.Match(name, item.ID, c) {
			return rule.Category
		}
	}
	return CategoryMiscellaneous
}

func nameContains(substrings ...string) func(string, int, *corpus.Corpus) bool {
	return func(name string, _ int, _ *corpus.Corpus) bool {
		for _, s := range substrings {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}
}

func either(fns ...func(string, int, *corpus.Corpus) bool) func(string, int, *corpus.Corpus) bool {
	return func(name string, id int, c *corpus.Corpus) bool {
		for _, fn := range fns {
			if fn(name, id, c) {
				return true
			}
		}
		return false
	}
}
