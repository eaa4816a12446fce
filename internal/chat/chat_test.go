package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/stats"
)

func newBot(t *testing.T) *Bot {
	t.Helper()
	svc := recipe.New(corpus.Embedded(), nil, nil)
	svc.Initialize(context.Background(), "1.19")
	require.NotEmpty(t, svc.All())
	return New(svc, stats.NewTable())
}

func TestRespond_Intents(t *testing.T) {
	bot := newBot(t)

	tests := []struct {
		message string
		intent  Intent
		text    string
	}{
		{"Hello there", IntentGreeting, GreetingText},
		{"hey!", IntentGreeting, GreetingText},
		{"can you help me", IntentHelp, HelpText},
		{"I want to craft", IntentRecipe, AskWhatText},
		{"show my progress", IntentStats, StatsGeneralText},
		{"what's the weather", IntentUnknown, UnknownText},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := bot.Respond(tt.message)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.text, got.Text)
		})
	}
}

func TestRespond_GreetingNeedsWholeWord(t *testing.T) {
	bot := newBot(t)

	got := bot.Respond("how do I craft this thing")
	assert.Equal(t, IntentRecipe, got.Intent)
}

func TestRespond_Recipe(t *testing.T) {
	bot := newBot(t)

	got := bot.Respond("How do I craft a wooden pickaxe?")

	assert.Equal(t, IntentRecipe, got.Intent)
	assert.Equal(t, "wooden pickaxe", got.Query)
	require.NotEmpty(t, got.Recipes)
	assert.True(t, strings.HasPrefix(got.Text, "To craft a Wooden Pickaxe, you need 3 Oak Planks, 2 Stick. A wooden pickaxe is used"), got.Text)
}

func TestRespond_RecipePrefersExactName(t *testing.T) {
	bot := newBot(t)

	got := bot.Respond("how to make a torch")

	require.Len(t, got.Recipes, 2)
	assert.True(t, strings.HasPrefix(got.Text, "To craft a Torch,"), got.Text)
}

func TestRespond_RecipeFallsBackToKeyword(t *testing.T) {
	bot := newBot(t)

	got := bot.Respond("what can I make with diamond")

	assert.Equal(t, "diamond", got.Query)
	assert.ElementsMatch(t, []string{"Diamond Pickaxe", "Diamond Sword"}, names(got.Recipes))
}

func TestRespond_RecipeNotFound(t *testing.T) {
	bot := newBot(t)

	got := bot.Respond("craft a beacon")

	assert.Equal(t, IntentRecipe, got.Intent)
	assert.Empty(t, got.Recipes)
	assert.Equal(t, `I don't have information on crafting "beacon" in my current database. Please try another item.`, got.Text)
}

func TestRespond_Stats(t *testing.T) {
	bot := newBot(t)

	blocks := bot.Respond("show my block stats")
	assert.Equal(t, "blocks", blocks.Stats)
	assert.True(t, strings.HasPrefix(blocks.Text, "Here are your block mining stats: Stone Mined: 247, Dirt Collected: 156"), blocks.Text)

	mining := bot.Respond("show me my mining stats")
	assert.Equal(t, "blocks", mining.Stats)

	mobs := bot.Respond("mob kill statistics")
	assert.Equal(t, "mobs", mobs.Stats)
	assert.Contains(t, mobs.Text, "Zombies Killed: 37")
}

func TestRecipeQueries(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"how do i craft a wooden pickaxe?", []string{"wooden pickaxe", "pickaxe"}},
		{"recipe for iron sword", []string{"for iron sword", "sword"}},
		{"make the furnace", []string{"furnace"}},
		{"i want to build with stone", []string{"with stone", "stone"}},
		{"craft", nil},
		{"crafting pickaxe", []string{"pickaxe"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RecipeQueries(tt.in))
		})
	}
}

func TestGuide(t *testing.T) {
	bot := newBot(t)

	guide, ok := bot.Guide("Wooden Pickaxe")
	require.True(t, ok)

	want := "# Crafting Guide: Wooden Pickaxe\n\n" +
		"## Materials Needed\n\n" +
		"- 3 × Oak Planks\n" +
		"- 2 × Stick\n\n" +
		"## Crafting Pattern\n\n" +
		"```\n" +
		"| Oak Planks | Oak Planks | Oak Planks |\n" +
		"|   | Stick |   |\n" +
		"|   | Stick |   |\n" +
		"```\n\n" +
		"## Result: 1 × Wooden Pickaxe\n\n" +
		"Requires a crafting table.\n\n"
	assert.True(t, strings.HasPrefix(guide, want), guide)
}

func TestGuide_Shapeless(t *testing.T) {
	bot := newBot(t)

	guide, ok := bot.Guide("book")
	require.True(t, ok)
	assert.Contains(t, guide, "# Crafting Guide: Book\n")
	assert.Contains(t, guide, "Shapeless: ingredients can go in any slot.")
	assert.Contains(t, guide, "| Paper | Paper | Paper |\n| Leather |   |   |\n")
}

func TestGuide_NotFound(t *testing.T) {
	bot := newBot(t)

	text, ok := bot.Guide("beacon")
	assert.False(t, ok)
	assert.Equal(t, "I don't have crafting information for beacon.", text)
}

func names(recipes []recipe.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}
