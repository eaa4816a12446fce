package recipe

import (
	"fmt"
	"strings"
)

type describer struct {
	match  func(name string) bool
	format func(material string) string
}

// describers produce the text for well-known items; the first match wins.
var describers = []describer{
	{
		match: func(n string) bool { return strings.Contains(n, "pickaxe") },
		format: func(m string) string {
			return fmt.Sprintf("A %s pickaxe is used for mining stone, ores, and mineral blocks. Higher tier materials mine faster and can mine rarer ores.", m)
		},
	},
	{
		match: func(n string) bool { return strings.Contains(n, "axe") },
		format: func(m string) string {
			return fmt.Sprintf("A %s axe is best for chopping wood, but can also serve as a weapon. Higher tier materials cut faster and deal more damage.", m)
		},
	},
	{
		match: func(n string) bool { return strings.Contains(n, "sword") },
		format: func(m string) string {
			return fmt.Sprintf("A %s sword is a melee weapon for combat. Higher tier materials deal more damage and have higher durability.", m)
		},
	},
	{
		match: func(n string) bool { return strings.Contains(n, "shovel") },
		format: func(m string) string {
			return fmt.Sprintf("A %s shovel is used for digging dirt, sand, gravel, and snow. Higher tier materials dig faster and have higher durability.", m)
		},
	},
	{
		match: func(n string) bool { return strings.Contains(n, "crafting_table") },
		format: func(string) string {
			return "The crafting table provides a 3x3 crafting grid, allowing crafting of more complex items than the 2x2 inventory grid."
		},
	},
	{
		match: func(n string) bool { return strings.Contains(n, "furnace") },
		format: func(string) string {
			return "A furnace is used to smelt ores, cook food, and process various materials using fuel such as coal or wood."
		},
	},
	{
		// chestplate is armor, not storage
		match: func(n string) bool { return strings.Contains(n, "chest") && !strings.Contains(n, "chestplate") },
		format: func(string) string {
			return "Chests are storage containers that can hold up to 27 stacks of items. They can be placed next to each other to create a double chest."
		},
	},
}

// Describe returns the description text for an item.
func Describe(item Item) string {
	name := strings.ToLower(item.Name)
	material, _, _ := strings.Cut(name, "_")
	for _, d := range describers {
		if d.match(name) {
			return d.format(material)
		}
	}
	return fmt.Sprintf("%s is a craftable item in Minecraft.", item.DisplayName)
}
