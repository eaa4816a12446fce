// Package texture maps item and block names to texture asset paths.
package texture

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize lowercases a name and replaces whitespace runs with underscores,
// so "Oak Planks" and "oak_planks" address the same texture.
func Normalize(name string) string {
	return whitespaceRegex.ReplaceAllString(strings.ToLower(name), "_")
}

// keyOverrides maps normalized names whose texture file differs from the
// corpus name. Legacy tool names use the old wood_/gold_ prefixes; several
// blocks are represented by one face.
var keyOverrides = map[string]string{
	"wooden_pickaxe": "wood_pickaxe",
	"wooden_axe":     "wood_axe",
	"wooden_sword":   "wood_sword",
	"wooden_shovel":  "wood_shovel",
	"wooden_hoe":     "wood_hoe",

	"golden_pickaxe": "gold_pickaxe",
	"golden_axe":     "gold_axe",
	"golden_sword":   "gold_sword",
	"golden_shovel":  "gold_shovel",
	"golden_hoe":     "gold_hoe",

	"redstone":          "redstone_dust",
	"crafting_table":    "crafting_table_top",
	"furnace":           "furnace_front",
	"chest":             "chest_front",
	"tnt":               "tnt_side",
	"piston":            "piston_top",
	"sticky_piston":     "sticky_piston_top",
	"observer":          "observer_front",
	"dispenser":         "dispenser_front",
	"dropper":           "dropper_front",
	"daylight_detector": "daylight_detector_top",
}

// blockLocated lists names whose texture lives in the block/ bucket.
// Everything else is looked up in item/ first.
var blockLocated = map[string]bool{
	"cobblestone":       true,
	"stone":             true,
	"oak_planks":        true,
	"spruce_planks":     true,
	"birch_planks":      true,
	"jungle_planks":     true,
	"acacia_planks":     true,
	"dark_oak_planks":   true,
	"crimson_planks":    true,
	"warped_planks":     true,
	"dirt":              true,
	"crafting_table":    true,
	"furnace":           true,
	"chest":             true,
	"bookshelf":         true,
	"tnt":               true,
	"redstone_lamp":     true,
	"piston":            true,
	"sticky_piston":     true,
	"observer":          true,
	"dispenser":         true,
	"dropper":           true,
	"daylight_detector": true,
	"hopper":            true,
	"rail":              true,
	"powered_rail":      true,
	"detector_rail":     true,
	"activator_rail":    true,
}

// Key returns the texture key for a name: the override if one exists,
// otherwise the normalized name.
func Key(name string) string {
	norm := Normalize(name)
	if key, ok := keyOverrides[norm]; ok {
		return key
	}
	return norm
}
