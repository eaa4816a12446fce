package chat

import (
	"fmt"
	"strings"

	"github.com/hpungsan/stevept/internal/recipe"
)

// Guide renders a markdown crafting guide for a recipe.
func Guide(r recipe.Recipe) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Crafting Guide: %s\n\n", r.Name)

	sb.WriteString("## Materials Needed\n\n")
	for _, m := range r.Materials {
		fmt.Fprintf(&sb, "- %d × %s\n", m.Count, m.DisplayName)
	}

	sb.WriteString("\n## Crafting Pattern\n\n")
	if r.Type == recipe.TypeShapeless {
		sb.WriteString("Shapeless: ingredients can go in any slot.\n\n")
	}
	sb.WriteString("```\n")
	for _, row := range r.Pattern {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = " "
			if cell != nil {
				cells[i] = cell.DisplayName
			}
		}
		fmt.Fprintf(&sb, "| %s |\n", strings.Join(cells, " | "))
	}
	sb.WriteString("```\n")

	fmt.Fprintf(&sb, "\n## Result: %d × %s\n", r.ResultCount, r.Name)
	if r.CraftingTable {
		sb.WriteString("\nRequires a crafting table.\n")
	}
	fmt.Fprintf(&sb, "\n%s\n", r.Description)

	return sb.String()
}

// Guide finds the best recipe for itemName and renders its guide. ok is
// false, with a short explanation as the text, when nothing matches.
func (b *Bot) Guide(itemName string) (string, bool) {
	found := b.recipes.Search(itemName)
	if len(found) == 0 {
		return fmt.Sprintf("I don't have crafting information for %s.", itemName), false
	}
	return Guide(Best(found, itemName)), true
}
