// Package chat answers overlay chat messages by keyword matching against
// the recipe pipeline and the player statistics.
package chat

import (
	"fmt"
	"strings"

	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/stats"
)

// Intent is what a message was recognized as.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentHelp     Intent = "help"
	IntentRecipe   Intent = "recipe"
	IntentStats    Intent = "stats"
	IntentUnknown  Intent = "unknown"
)

// Keyword groups. Matching is by substring except for greetings, which must
// be whole words so "this" does not read as "hi".
var (
	greetingWords = []string{"hello", "hi", "hey", "greetings"}
	recipeWords   = []string{"recipe", "craft", "make", "build", "how to make", "how to craft", "how to build"}
	statsWords    = []string{"stats", "statistics", "progress", "achievement"}
	helpWords     = []string{"help", "assist", "support", "guide"}
	blockWords    = []string{"block", "stone", "dirt", "wood", "cobblestone", "iron", "gold", "diamond"}
	toolWords     = []string{"tool", "pickaxe", "axe", "shovel", "hoe", "sword"}
)

var fillerWords = map[string]bool{"a": true, "an": true, "the": true, "some": true, "me": true}

// Fixed replies.
const (
	GreetingText     = "Hello! I'm ChatStevePT. How can I help with your Minecraft adventure today?"
	HelpText         = "I can help you with crafting recipes, track your stats, and answer questions about Minecraft. Try asking me 'How do I craft a wooden pickaxe?' or 'Show me my mining stats'."
	AskWhatText      = "What would you like to craft? Try asking me about specific items like 'How do I craft a wooden pickaxe?'"
	StatsGeneralText = "I can show you stats for blocks mined, mobs killed, and other activities. What specifically would you like to know about?"
	UnknownText      = "I'm not sure how to help with that yet. Try asking me about crafting recipes or your player stats!"
)

// Searcher finds recipes by free text.
type Searcher interface {
	Search(query string) []recipe.Recipe
}

// Response is the reply to one message.
type Response struct {
	Text    string          `json:"text"`
	Intent  Intent          `json:"intent"`
	Query   string          `json:"query,omitempty"`
	Recipes []recipe.Recipe `json:"recipes,omitempty"`
	Stats   string          `json:"stats,omitempty"`
}

// Bot answers messages. It keeps no conversation history.
type Bot struct {
	recipes Searcher
	stats   *stats.Table
}

// New creates a Bot.
func New(recipes Searcher, table *stats.Table) *Bot {
	return &Bot{recipes: recipes, stats: table}
}

// Respond answers message. Intents are checked in order: greeting, help,
// recipe, stats.
func (b *Bot) Respond(message string) Response {
	lower := strings.ToLower(strings.TrimSpace(message))

	switch {
	case containsWord(lower, greetingWords):
		return Response{Text: GreetingText, Intent: IntentGreeting}
	case containsAny(lower, helpWords):
		return Response{Text: HelpText, Intent: IntentHelp}
	case containsAny(lower, recipeWords):
		return b.recipeReply(lower)
	case containsAny(lower, statsWords):
		return b.statsReply(lower)
	default:
		return Response{Text: UnknownText, Intent: IntentUnknown}
	}
}

func (b *Bot) recipeReply(lower string) Response {
	candidates := RecipeQueries(lower)
	if len(candidates) == 0 {
		return Response{Text: AskWhatText, Intent: IntentRecipe}
	}

	for _, q := range candidates {
		found := b.recipes.Search(q)
		if len(found) == 0 {
			continue
		}
		best := Best(found, q)
		return Response{
			Text:    fmt.Sprintf("To craft a %s, you need %s. %s", best.Name, materialList(best), best.Description),
			Intent:  IntentRecipe,
			Query:   q,
			Recipes: found,
		}
	}

	q := candidates[0]
	return Response{
		Text:   fmt.Sprintf("I don't have information on crafting %q in my current database. Please try another item.", q),
		Intent: IntentRecipe,
		Query:  q,
	}
}

func (b *Bot) statsReply(lower string) Response {
	snap := b.stats.Get()
	switch {
	case strings.Contains(lower, "block") || strings.Contains(lower, "mine") || strings.Contains(lower, "mining"):
		return Response{
			Text:   "Here are your block mining stats: " + statList(snap.Blocks),
			Intent: IntentStats,
			Stats:  string(stats.Blocks),
		}
	case strings.Contains(lower, "mob") || strings.Contains(lower, "kill"):
		return Response{
			Text:   "Here are your mob kill stats: " + statList(snap.Mobs),
			Intent: IntentStats,
			Stats:  string(stats.Mobs),
		}
	default:
		return Response{Text: StatsGeneralText, Intent: IntentStats, Stats: "general"}
	}
}

// RecipeQueries extracts what a recipe question asks about, most specific
// first: the words after the recipe keyword, then a known tool keyword,
// else a known block keyword.
func RecipeQueries(lower string) []string {
	var out []string
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		for _, seen := range out {
			if seen == q {
				return
			}
		}
		out = append(out, q)
	}

	add(phraseAfterKeyword(lower))
	if kw := firstContained(lower, toolWords); kw != "" {
		add(kw)
	} else if kw := firstContained(lower, blockWords); kw != "" {
		add(kw)
	}
	return out
}

// phraseAfterKeyword returns the words following the first word that
// contains a recipe keyword, without leading filler words or trailing
// punctuation.
func phraseAfterKeyword(lower string) string {
	words := strings.Fields(lower)
	at := -1
	for i, w := range words {
		if containsAny(w, recipeWords) {
			at = i
			break
		}
	}
	if at < 0 || at == len(words)-1 {
		return ""
	}
	rest := words[at+1:]
	for len(rest) > 0 && fillerWords[rest[0]] {
		rest = rest[1:]
	}
	return strings.TrimRight(strings.Join(rest, " "), "?!.,")
}

// Best picks the recipe whose name equals query, else the first one.
func Best(recipes []recipe.Recipe, query string) recipe.Recipe {
	for _, r := range recipes {
		if strings.EqualFold(r.Name, query) {
			return r
		}
	}
	return recipes[0]
}

func materialList(r recipe.Recipe) string {
	parts := make([]string, 0, len(r.Materials))
	for _, m := range r.Materials {
		parts = append(parts, fmt.Sprintf("%d %s", m.Count, m.DisplayName))
	}
	return strings.Join(parts, ", ")
}

func statList(list []stats.Stat) string {
	parts := make([]string, 0, len(list))
	for _, s := range list {
		parts = append(parts, fmt.Sprintf("%s: %d", s.Name, s.Value))
	}
	return strings.Join(parts, ", ")
}

func containsAny(s string, words []string) bool {
	return firstContained(s, words) != ""
}

func firstContained(s string, words []string) string {
	for _, w := range words {
		if strings.Contains(s, w) {
			return w
		}
	}
	return ""
}

func containsWord(s string, words []string) bool {
	for _, f := range strings.FieldsFunc(s, notLetter) {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

func notLetter(r rune) bool {
	return (r < 'a' || r > 'z') && r != '\''
}
