package web

import (
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/stevept/internal/chat"
	"github.com/hpungsan/stevept/internal/errors"
	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/texture"
)

// Page size limits for the recipe list.
const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// Pagination contains pagination metadata for the recipe list.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	recipes  *recipe.Service
	bot      *chat.Bot
	renderer *Renderer
	logger   logrus.FieldLogger
}

// HandleList handles GET /recipes, optionally filtered by ?category=.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	limit := min(parseIntParam(r, "limit", DefaultPageSize), MaxPageSize)
	offset := parseIntParam(r, "offset", 0)

	var all []recipe.Recipe
	if category == "" {
		all = h.recipes.All()
	} else {
		all = h.recipes.ByCategory(recipe.Category(category))
	}

	page := []recipe.Recipe{}
	if offset < len(all) {
		page = all[offset:min(offset+limit, len(all))]
	}
	pagination := Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(page) < len(all),
		Total:   len(all),
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"recipes": page, "pagination": pagination})
		return
	}

	title := "Recipes"
	if category != "" {
		title = categoryTitle(recipe.Category(category)) + " Recipes"
	}
	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   title,
			Version: h.renderer.version,
			Nav:     "recipes",
		},
		Items:      h.rows(page),
		Categories: h.recipes.Categories(),
		Category:   category,
		Pagination: pagination,
	})
}

// HandleSearch handles GET /recipes/search?q=.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	data := SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    query,
		HasQuery: query != "",
	}
	if data.HasQuery {
		data.Items = h.rows(h.recipes.Search(query))
	}

	if wantsJSON(r) {
		found := []recipe.Recipe{}
		if data.HasQuery {
			found = h.recipes.Search(query)
		}
		renderJSON(w, http.StatusOK, map[string]any{"query": query, "recipes": found})
		return
	}

	// If htmx targets #results, render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "search", "search-results", data)
		return
	}
	h.renderer.renderPage(w, r, "search", data)
}

// HandleDetail handles GET /recipes/{id}: the crafting grid, materials and
// the rendered guide.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("recipe id is required"))
		return
	}

	rec, ok := h.recipes.ByID(id)
	if !ok {
		h.renderer.renderError(w, r, errors.NewNotFound("recipe", id))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, rec)
		return
	}

	textures := h.recipes.Textures()
	grid := make([][]GridCell, len(rec.Pattern))
	for i, row := range rec.Pattern {
		grid[i] = make([]GridCell, len(row))
		for j, cell := range row {
			if cell == nil {
				grid[i][j] = GridCell{Empty: true}
				continue
			}
			grid[i][j] = GridCell{Name: cell.DisplayName, Texture: textures.ItemPath(cell.Name)}
		}
	}
	materials := make([]MaterialRow, len(rec.Materials))
	for i, m := range rec.Materials {
		materials[i] = MaterialRow{Material: m, Texture: textures.ItemPath(m.Name)}
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   rec.Name,
			Version: h.renderer.version,
			Nav:     "recipes",
		},
		Recipe:    rec,
		Texture:   h.recipes.ItemTexture(strconv.Itoa(rec.ResultID)),
		Guide:     renderMarkdown(chat.Guide(rec)),
		Grid:      grid,
		Materials: materials,
	})
}

// HandleChat handles GET /chat?message=.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	message := strings.TrimSpace(r.URL.Query().Get("message"))

	data := ChatPageData{
		PageData: PageData{
			Title:   "Ask Steve",
			Version: h.renderer.version,
			Nav:     "chat",
		},
		Message: message,
	}

	if message != "" {
		resp := h.bot.Respond(message)
		if wantsJSON(r) {
			renderJSON(w, http.StatusOK, resp)
			return
		}
		data.HasReply = true
		data.Reply = renderMarkdown(resp.Text)
		data.Intent = string(resp.Intent)
		data.Items = h.rows(resp.Recipes)
	}

	if r.Header.Get("HX-Target") == "reply" {
		h.renderer.renderBlock(w, http.StatusOK, "chat", "chat-reply", data)
		return
	}
	h.renderer.renderPage(w, r, "chat", data)
}

// HandleTexture serves texture assets under the resolver's base path. A
// texture that does not exist is answered with the missing texture: the asset
// store's own missing_texture.png if it has one, else the built-in placeholder.
func (h *Handlers) HandleTexture(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean(r.PathValue("path"))
	if !fs.ValidPath(rel) || path.Ext(rel) != ".png" {
		http.NotFound(w, r)
		return
	}

	assets := h.recipes.Textures().Assets()
	if assets != nil {
		if isFile(assets, rel) {
			http.ServeFileFS(w, r, assets, rel)
			return
		}
		if isFile(assets, texture.MissingFile) {
			h.logger.WithField("texture", rel).Debug("texture missing; serving fallback")
			http.ServeFileFS(w, r, assets, texture.MissingFile)
			return
		}
	}

	h.logger.WithField("texture", rel).Debug("texture missing; serving placeholder")
	http.ServeFileFS(w, r, staticFS, placeholderTexture)
}

func isFile(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

// rows attaches texture paths and categories to recipes for display.
func (h *Handlers) rows(recipes []recipe.Recipe) []RecipeRow {
	rows := make([]RecipeRow, len(recipes))
	for i, rec := range recipes {
		ref := strconv.Itoa(rec.ResultID)
		row := RecipeRow{Recipe: rec, Texture: h.recipes.ItemTexture(ref)}
		if item, ok := h.recipes.Item(ref); ok {
			row.Category = item.Category
		}
		rows[i] = row
	}
	return rows
}

// Helpers

// wantsJSON reports whether the client asked for JSON instead of HTML.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// parseIntParam reads a non-negative integer query parameter, falling back
// to defaultVal when it is missing or invalid.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
