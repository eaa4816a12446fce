package mcp

import (
	"database/sql"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/stevept/internal/config"
	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/stats"
)

// ServerName is reported to MCP clients.
const ServerName = "stevept"

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"recipe_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"recipe_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"recipe_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"recipe_by_material": {
		def:     byMaterialToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleByMaterial },
	},
	"recipe_categories": {
		def:     categoriesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategories },
	},
	"item_fetch": {
		def:     itemToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleItem },
	},
	"chat_ask": {
		def:     askToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAsk },
	},
	"stats_get": {
		def:     statsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"corpus_list": {
		def:     corpusListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCorpusList },
	},
	"corpus_import": {
		def:     corpusImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCorpusImport },
	},
	"corpus_export": {
		def:     corpusExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCorpusExport },
	},
	"corpus_purge": {
		def:     corpusPurgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCorpusPurge },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Deps are the services the tools are served from.
type Deps struct {
	DB      *sql.DB
	Config  *config.Config
	Recipes *recipe.Service
	Stats   *stats.Table
	Logger  logrus.FieldLogger
}

// NewServer creates an MCP server with the stevept tools registered.
// Tools listed in cfg.DisabledTools are left out; unknown names are logged.
func NewServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)

	disabled := make(map[string]bool)
	if deps.Config != nil {
		for _, name := range ValidateDisabledTools(deps.Config.DisabledTools) {
			h.logger.WithField("tool", name).Warn("unknown tool in disabled_tools")
		}
		for _, name := range deps.Config.DisabledTools {
			disabled[name] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves the tools over stdio until the client disconnects.
func Run(deps Deps, version string) error {
	return server.ServeStdio(NewServer(deps, version))
}
