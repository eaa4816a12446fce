package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/stevept/internal/chat"
	"github.com/hpungsan/stevept/internal/config"
	"github.com/hpungsan/stevept/internal/errors"
	"github.com/hpungsan/stevept/internal/ops"
	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/stats"
)

// Pagination limits for recipe_list.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	deps   Deps
	bot    *chat.Bot
	logger logrus.FieldLogger
}

// NewHandlers creates a new Handlers instance. A nil stats table or logger
// is replaced with a fresh one.
func NewHandlers(deps Deps) *Handlers {
	if deps.Stats == nil {
		deps.Stats = stats.NewTable()
	}
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handlers{
		deps:   deps,
		bot:    chat.New(deps.Recipes, deps.Stats),
		logger: logger,
	}
}

// Request types for each tool

// SearchRequest represents the arguments for recipe_search.
type SearchRequest struct {
	Query string `json:"query"`
}

// FetchRequest represents the arguments for recipe_fetch.
type FetchRequest struct {
	ID           string `json:"id"`
	IncludeGuide bool   `json:"include_guide,omitempty"`
}

// ListRequest represents the arguments for recipe_list.
type ListRequest struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// ByMaterialRequest represents the arguments for recipe_by_material.
type ByMaterialRequest struct {
	Material string `json:"material"`
}

// ItemRequest represents the arguments for item_fetch.
type ItemRequest struct {
	Item string `json:"item"`
}

// AskRequest represents the arguments for chat_ask.
type AskRequest struct {
	Message string `json:"message"`
}

// StatsRequest represents the arguments for stats_get.
type StatsRequest struct {
	Category string `json:"category,omitempty"`
}

// CorpusImportRequest represents the arguments for corpus_import.
type CorpusImportRequest struct {
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// CorpusExportRequest represents the arguments for corpus_export.
type CorpusExportRequest struct {
	Version string `json:"version"`
	Path    string `json:"path,omitempty"`
}

// CorpusPurgeRequest represents the arguments for corpus_purge.
type CorpusPurgeRequest struct {
	Version string `json:"version,omitempty"`
}

// Response types

// RecipesOutput is a list of recipes.
type RecipesOutput struct {
	Query   string          `json:"query,omitempty"`
	Count   int             `json:"count"`
	Recipes []recipe.Recipe `json:"recipes"`
}

// Pagination contains pagination metadata for recipe_list.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// ListOutput is one page of recipes.
type ListOutput struct {
	Recipes    []recipe.Recipe `json:"recipes"`
	Pagination Pagination      `json:"pagination"`
}

// FetchOutput is one recipe, with its guide when requested.
type FetchOutput struct {
	Recipe recipe.Recipe `json:"recipe"`
	Guide  string        `json:"guide,omitempty"`
}

// ItemOutput is one item and its texture path.
type ItemOutput struct {
	Item    recipe.Item `json:"item"`
	Texture string      `json:"texture"`
}

// Handler implementations

// HandleSearch handles the recipe_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[SearchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	found := h.deps.Recipes.Search(input.Query)
	return successResult(RecipesOutput{Query: input.Query, Count: len(found), Recipes: found})
}

// HandleFetch handles the recipe_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[FetchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	r, ok := h.deps.Recipes.ByID(input.ID)
	if !ok {
		return errorResult(errors.NewNotFound("recipe", input.ID)), nil
	}

	out := FetchOutput{Recipe: r}
	if input.IncludeGuide {
		out.Guide = chat.Guide(r)
	}
	return successResult(out)
}

// HandleList handles the recipe_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	limit, offset := input.Limit, input.Offset

	var all []recipe.Recipe
	if input.Category == "" {
		all = h.deps.Recipes.All()
	} else {
		all = h.deps.Recipes.ByCategory(recipe.Category(input.Category))
	}

	page := []recipe.Recipe{}
	if offset < len(all) {
		end := min(offset+limit, len(all))
		page = all[offset:end]
	}

	return successResult(ListOutput{
		Recipes: page,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(page) < len(all),
			Total:   len(all),
		},
	})
}

// HandleByMaterial handles the recipe_by_material tool call.
func (h *Handlers) HandleByMaterial(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[ByMaterialRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	found := h.deps.Recipes.ByMaterial(input.Material)
	return successResult(RecipesOutput{Query: input.Material, Count: len(found), Recipes: found})
}

// HandleCategories handles the recipe_categories tool call.
func (h *Handlers) HandleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{"categories": h.deps.Recipes.Categories()})
}

// HandleItem handles the item_fetch tool call.
func (h *Handlers) HandleItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[ItemRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	ref := input.Item

	item, ok := h.deps.Recipes.Item(ref)
	if !ok {
		return errorResult(errors.NewNotFound("item", ref)), nil
	}
	return successResult(ItemOutput{Item: item, Texture: h.deps.Recipes.ItemTexture(ref)})
}

// HandleAsk handles the chat_ask tool call.
func (h *Handlers) HandleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[AskRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(h.bot.Respond(input.Message))
}

// HandleStats handles the stats_get tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[StatsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Category == "" {
		return successResult(h.deps.Stats.Get())
	}

	c, err := stats.ParseCategory(input.Category)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	list, _ := h.deps.Stats.Category(c)
	return successResult(map[string]any{"category": c, "stats": list})
}

// HandleCorpusList handles the corpus_list tool call.
func (h *Handlers) HandleCorpusList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.List(ctx, h.deps.DB)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCorpusImport handles the corpus_import tool call.
func (h *Handlers) HandleCorpusImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[CorpusImportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Import(ctx, h.deps.DB, h.deps.Config, ops.ImportInput{
		Path:    input.Path,
		Version: input.Version,
		Mode:    ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	h.logger.WithFields(logrus.Fields{
		"version":   result.Version,
		"import_id": result.ImportID,
	}).Info("corpus imported")
	h.reloadIfServing(ctx, result.Version)
	return successResult(result)
}

// HandleCorpusExport handles the corpus_export tool call.
func (h *Handlers) HandleCorpusExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[CorpusExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.deps.DB, h.deps.Config, ops.ExportInput{
		Version: input.Version,
		Path:    input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCorpusPurge handles the corpus_purge tool call.
func (h *Handlers) HandleCorpusPurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := bind[CorpusPurgeRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Purge(ctx, h.deps.DB, ops.PurgeInput{Version: input.Version})
	if err != nil {
		return errorResult(err), nil
	}
	if result.Purged > 0 {
		h.reloadIfServing(ctx, input.Version)
	}
	return successResult(result)
}

// reloadIfServing rebuilds the recipe index when version is the one being
// served. An empty version matches whatever is served.
func (h *Handlers) reloadIfServing(ctx context.Context, version string) {
	if h.deps.Recipes == nil {
		return
	}
	serving := h.deps.Recipes.Version()
	if serving == "" || (version != "" && version != serving) {
		return
	}
	h.logger.WithField("version", serving).Info("reloading recipe index")
	h.deps.Recipes.Reload(ctx)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Details of INTERNAL errors are not exposed since they may carry file paths
// or SQL text.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.SteveError
	if stderrors.As(err, &sErr) {
		// Keep any wrapping context ahead of the structured message.
		message := sErr.Message
		if full := err.Error(); full != sErr.Error() {
			message = strings.TrimSuffix(full, sErr.Error()) + sErr.Message
		}
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": message,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
