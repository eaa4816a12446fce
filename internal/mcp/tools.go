package mcp

import "github.com/mark3labs/mcp-go/mcp"

var searchToolDef = mcp.NewTool("recipe_search",
	mcp.WithDescription("Search crafting recipes by name, category or description. Case-insensitive substring match; an empty query returns every recipe."),
	mcp.WithString("query", mcp.Description("Text to search for, e.g. \"pickaxe\" or \"food\"")),
)

var fetchToolDef = mcp.NewTool("recipe_fetch",
	mcp.WithDescription("Fetch one recipe by id (e.g. \"torch_5\"), optionally with a markdown crafting guide."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Recipe id")),
	mcp.WithBoolean("include_guide", mcp.Description("Also render a markdown crafting guide")),
)

var listToolDef = mcp.NewTool("recipe_list",
	mcp.WithDescription("List recipes sorted by name, optionally filtered to one category."),
	mcp.WithString("category", mcp.Description("One of tools, weapons, armor, food, transportation, redstone, decoration, building, miscellaneous")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Number of recipes to skip")),
)

var byMaterialToolDef = mcp.NewTool("recipe_by_material",
	mcp.WithDescription("List recipes that use a material, given as an item id or part of an item name."),
	mcp.WithString("material", mcp.Required(), mcp.Description("Item id (\"3\") or name fragment (\"plank\")")),
)

var categoriesToolDef = mcp.NewTool("recipe_categories",
	mcp.WithDescription("List recipe categories with the number of recipes in each."),
)

var itemToolDef = mcp.NewTool("item_fetch",
	mcp.WithDescription("Fetch an item by id or name, with its texture path."),
	mcp.WithString("item", mcp.Required(), mcp.Description("Item id or name")),
)

var askToolDef = mcp.NewTool("chat_ask",
	mcp.WithDescription("Ask the ChatStevePT assistant a question about crafting or player stats."),
	mcp.WithString("message", mcp.Required(), mcp.Description("The question")),
)

var statsToolDef = mcp.NewTool("stats_get",
	mcp.WithDescription("Get player statistics, either every category or one of blocks, mobs, items."),
	mcp.WithString("category", mcp.Description("blocks, mobs or items; empty for all")),
)

var corpusListToolDef = mcp.NewTool("corpus_list",
	mcp.WithDescription("List imported and embedded game-data versions."),
)

var corpusImportToolDef = mcp.NewTool("corpus_import",
	mcp.WithDescription("Import game data from a minecraft-data directory or a corpus document."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Directory under <home>/corpora or an allowed path, or a .json document in <home>/exports, <home>/corpora or an allowed path")),
	mcp.WithString("version", mcp.Description("Version tag (defaults to the document version or directory name)")),
	mcp.WithString("mode", mcp.Description("error (default) or replace")),
)

var corpusExportToolDef = mcp.NewTool("corpus_export",
	mcp.WithDescription("Export one game-data version as a single JSON document."),
	mcp.WithString("version", mcp.Required(), mcp.Description("Version tag")),
	mcp.WithString("path", mcp.Description("Output .json path (default: exports directory)")),
)

var corpusPurgeToolDef = mcp.NewTool("corpus_purge",
	mcp.WithDescription("Delete imported game data. Embedded versions are unaffected."),
	mcp.WithString("version", mcp.Description("Version tag; empty deletes every imported version")),
)
