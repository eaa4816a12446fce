package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/stevept/internal/config"
	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/db"
	"github.com/hpungsan/stevept/internal/errors"
	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/texture"
)

// testSetup builds handler dependencies over the embedded 1.19 corpus.
func testSetup(t *testing.T) (Deps, *test.Hook) {
	t.Helper()

	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	database, err := db.Init(home)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger, hook := test.NewNullLogger()
	svc := recipe.New(corpus.Embedded(), texture.NewResolver(recipe.DefaultTextureBase, nil), logger)
	svc.Initialize(context.Background(), "1.19")

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	return Deps{DB: database, Config: cfg, Recipes: svc, Logger: logger}, hook
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleSearch(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, err := h.HandleSearch(ctx, makeRequest(map[string]any{"query": "pickaxe"}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	assert.Equal(t, "pickaxe", out["query"])
	assert.EqualValues(t, 4, out["count"])

	result, err = h.HandleSearch(ctx, makeRequest(map[string]any{}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	assert.EqualValues(t, 39, out["count"], "empty query returns every recipe")

	result, err = h.HandleSearch(ctx, makeRequest(map[string]any{"query": 42}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleFetch(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		errorCode string
	}{
		{"existing recipe", map[string]any{"id": "torch_5"}, ""},
		{"with guide", map[string]any{"id": "torch_5", "include_guide": true}, ""},
		{"missing id", map[string]any{}, "INVALID_REQUEST"},
		{"unknown id", map[string]any{"id": "torch_99"}, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleFetch(ctx, makeRequest(tt.args))
			require.NoError(t, err)
			if tt.errorCode != "" {
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			r := out["recipe"].(map[string]any)
			assert.Equal(t, "torch_5", r["id"])
			if tt.args["include_guide"] == true {
				assert.Contains(t, out["guide"], "## Materials Needed")
			} else {
				assert.NotContains(t, out, "guide")
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, err := h.HandleList(ctx, makeRequest(map[string]any{"limit": 10, "offset": 35}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	assert.Len(t, out["recipes"], 4)
	page := out["pagination"].(map[string]any)
	assert.EqualValues(t, 39, page["total"])
	assert.Equal(t, false, page["has_more"])

	result, err = h.HandleList(ctx, makeRequest(map[string]any{"category": "tools", "limit": 500}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	assert.Len(t, out["recipes"], 7)
	assert.EqualValues(t, MaxListLimit, out["pagination"].(map[string]any)["limit"])

	result, err = h.HandleList(ctx, makeRequest(map[string]any{"limit": 2}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	recipes := out["recipes"].([]any)
	assert.Equal(t, "Arrow", recipes[0].(map[string]any)["name"])
	assert.Equal(t, true, out["pagination"].(map[string]any)["has_more"])

	result, err = h.HandleList(ctx, makeRequest(map[string]any{"category": "potions"}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	assert.Empty(t, out["recipes"])
	assert.NotNil(t, out["recipes"], "unknown category yields an empty list, not null")
}

func TestHandleByMaterial(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, err := h.HandleByMaterial(ctx, makeRequest(map[string]any{"material": "3"}))
	require.NoError(t, err)
	assert.EqualValues(t, 13, parseOutput(t, result)["count"])

	result, err = h.HandleByMaterial(ctx, makeRequest(map[string]any{"material": " "}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleCategories(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)

	result, err := h.HandleCategories(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	cats := parseOutput(t, result)["categories"].([]any)
	require.Len(t, cats, len(recipe.AllCategories))
	first := cats[0].(map[string]any)
	assert.Equal(t, "tools", first["category"])
	assert.EqualValues(t, 7, first["count"])
}

func TestHandleItem(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, err := h.HandleItem(ctx, makeRequest(map[string]any{"item": "Stick"}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	assert.Equal(t, "stick", out["item"].(map[string]any)["name"])
	assert.Equal(t, "/assets/textures/item/stick.png", out["texture"])

	result, err = h.HandleItem(ctx, makeRequest(map[string]any{"item": "unobtainium"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleAsk(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, err := h.HandleAsk(ctx, makeRequest(map[string]any{"message": "How do I craft a wooden pickaxe?"}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	assert.Equal(t, "recipe", out["intent"])
	assert.Contains(t, out["text"], "Wooden Pickaxe")

	result, err = h.HandleAsk(ctx, makeRequest(map[string]any{"message": ""}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleStats(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, err := h.HandleStats(ctx, makeRequest(nil))
	require.NoError(t, err)
	out := parseOutput(t, result)
	for _, key := range []string{"blocks", "mobs", "items"} {
		assert.Contains(t, out, key)
	}

	result, err = h.HandleStats(ctx, makeRequest(map[string]any{"category": "Mobs"}))
	require.NoError(t, err)
	out = parseOutput(t, result)
	assert.Equal(t, "mobs", out["category"])
	assert.NotEmpty(t, out["stats"])

	result, err = h.HandleStats(ctx, makeRequest(map[string]any{"category": "weather"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleCorpusTools(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()
	docPath := filepath.Join(t.TempDir(), "1.19.json")

	result, err := h.HandleCorpusExport(ctx, makeRequest(map[string]any{"version": "1.19", "path": docPath}))
	require.NoError(t, err)
	assert.EqualValues(t, 41, parseOutput(t, result)["recipes"])

	result, err = h.HandleCorpusImport(ctx, makeRequest(map[string]any{"path": docPath}))
	require.NoError(t, err)
	out := parseOutput(t, result)
	assert.Equal(t, "1.19", out["version"])
	assert.NotEmpty(t, out["import_id"])

	result, err = h.HandleCorpusImport(ctx, makeRequest(map[string]any{"path": docPath}))
	require.NoError(t, err)
	assertErrorCode(t, result, "VERSION_EXISTS")

	result, err = h.HandleCorpusImport(ctx, makeRequest(map[string]any{"path": docPath, "mode": "replace"}))
	require.NoError(t, err)
	assert.Equal(t, true, parseOutput(t, result)["replaced"])

	result, err = h.HandleCorpusList(ctx, makeRequest(nil))
	require.NoError(t, err)
	assert.Len(t, parseOutput(t, result)["imported"], 1)

	result, err = h.HandleCorpusPurge(ctx, makeRequest(map[string]any{"version": "1.19"}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, parseOutput(t, result)["purged"])

	result, err = h.HandleCorpusExport(ctx, makeRequest(map[string]any{"version": "0.1"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "CORPUS_NOT_FOUND")
}

func TestHandleCorpusTools_ReloadServedVersion(t *testing.T) {
	deps, _ := testSetup(t)
	deps.Recipes = recipe.New(corpus.Chain(db.Source(deps.DB), corpus.Embedded()), nil, deps.Logger)
	deps.Recipes.Initialize(context.Background(), "1.19")
	require.Len(t, deps.Recipes.All(), 39)
	h := NewHandlers(deps)
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "1.19")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.json"), []byte(`[{"id": 1, "name": "oak_planks"}, {"id": 2, "name": "stick"}]`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipes.json"), []byte(`{"2": [{"inShape": [[1], [1]], "result": {"id": 2, "count": 4}}]}`), 0600))

	result, err := h.HandleCorpusImport(ctx, makeRequest(map[string]any{"path": dir}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Len(t, deps.Recipes.All(), 1, "import of the served version reloads the index")

	result, err = h.HandleCorpusPurge(ctx, makeRequest(map[string]any{}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Len(t, deps.Recipes.All(), 39, "purge falls back to the embedded corpus")
}

func TestBindArguments(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, err := h.HandleList(ctx, makeRequest(map[string]any{"limit": "ten"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, err = h.HandleFetch(ctx, makeRequest(map[string]any{"id": "  torch_5 "}))
	require.NoError(t, err)
	assert.Equal(t, "torch_5", parseOutput(t, result)["recipe"].(map[string]any)["id"])

	result, err = h.HandleList(ctx, makeRequest(map[string]any{"category": " Tools ", "offset": -4}))
	require.NoError(t, err)
	pagination := parseOutput(t, result)["pagination"].(map[string]any)
	assert.EqualValues(t, 7, pagination["total"])
	assert.EqualValues(t, 0, pagination["offset"])
	assert.EqualValues(t, DefaultListLimit, pagination["limit"])

	invalid := []func() (*mcp.CallToolResult, error){
		func() (*mcp.CallToolResult, error) {
			return h.HandleCorpusImport(ctx, makeRequest(map[string]any{"path": " "}))
		},
		func() (*mcp.CallToolResult, error) {
			return h.HandleCorpusExport(ctx, makeRequest(nil))
		},
		func() (*mcp.CallToolResult, error) {
			return h.HandleByMaterial(ctx, makeRequest(map[string]any{"material": "\t"}))
		},
	}
	for _, call := range invalid {
		result, err := call()
		require.NoError(t, err)
		assertErrorCode(t, result, "INVALID_REQUEST")
	}
}

func TestServerRegistration(t *testing.T) {
	deps, _ := testSetup(t)

	tools := NewServer(deps, "test").ListTools()
	require.NotNil(t, tools)

	assert.Len(t, tools, len(AllToolNames()))
	for _, name := range AllToolNames() {
		assert.Contains(t, tools, name)
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	deps, hook := testSetup(t)
	deps.Config.DisabledTools = []string{"chat_ask", "corpus_purge", "corpus_purge", "weather_get"}

	tools := NewServer(deps, "test").ListTools()

	assert.Len(t, tools, len(AllToolNames())-2)
	assert.NotContains(t, tools, "chat_ask")
	assert.NotContains(t, tools, "corpus_purge")
	assert.Contains(t, tools, "recipe_search")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "weather_get", entry.Data["tool"])
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	deps, _ := testSetup(t)
	deps.Config.DisabledTools = AllToolNames()

	tools := NewServer(deps, "test").ListTools()
	assert.Empty(t, tools)
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"recipe_search", "stats_get"}, 0},
		{"one unknown", []string{"recipe_search", "recipe_delete"}, 1},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ValidateDisabledTools(tt.input), tt.wantLen)
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	assert.Len(t, names, 12)
	assert.Equal(t, "chat_ask", names[0], "names are sorted")
	assert.Empty(t, ValidateDisabledTools(names))
}

func TestErrorResult(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		code        errors.ErrorCode
		wantDetails bool
		wantMessage string
	}{
		{"internal hides details", errors.NewInternal(fmt.Errorf("open /tmp/secret.db: permission denied")), errors.ErrInternal, false, ""},
		{"not found has details", errors.NewNotFound("recipe", "x_1"), errors.ErrNotFound, true, "recipe not found: x_1"},
		{"wrapped keeps context", fmt.Errorf("import: %w", errors.NewVersionExists("1.19")), errors.ErrVersionExists, true, "import: "},
		{"plain error", fmt.Errorf("boom"), errors.ErrInternal, false, "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := errorResult(tt.err)
			require.True(t, r.IsError)

			var payload map[string]any
			require.NoError(t, json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload))
			errObj := payload["error"].(map[string]any)

			assert.Equal(t, string(tt.code), errObj["code"])
			_, hasDetails := errObj["details"]
			assert.Equal(t, tt.wantDetails, hasDetails)
			if tt.wantMessage != "" {
				assert.True(t, strings.HasPrefix(errObj["message"].(string), tt.wantMessage), "message = %v", errObj["message"])
			}
		})
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, result.IsError, "expected success, got error: %s", extractErrorMessage(result))
	var output map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output))
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	require.True(t, result.IsError, "expected error result, got success")

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(extractErrorMessage(result)), &payload))
	errorObj, ok := payload["error"].(map[string]any)
	require.True(t, ok, "no error object in payload")
	assert.Equal(t, expectedCode, errorObj["code"])
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
