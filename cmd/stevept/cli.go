package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/stevept/internal/chat"
	"github.com/hpungsan/stevept/internal/errors"
	"github.com/hpungsan/stevept/internal/ops"
	"github.com/hpungsan/stevept/internal/overlay"
	"github.com/hpungsan/stevept/internal/overlay/headless"
	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/stats"
	"github.com/hpungsan/stevept/internal/web"
)

// OverlayLockFile keeps a second overlay from starting against the same home.
const OverlayLockFile = "overlay.lock"

// RecipesOutput is the result of commands returning a recipe list.
type RecipesOutput struct {
	Query   string          `json:"query,omitempty"`
	Count   int             `json:"count"`
	Recipes []recipe.Recipe `json:"recipes"`
}

// RecipeOutput is the result of recipes show.
type RecipeOutput struct {
	Recipe  recipe.Recipe `json:"recipe"`
	Texture string        `json:"texture"`
	Guide   string        `json:"guide,omitempty"`
}

// ItemOutput is the result of the item command.
type ItemOutput struct {
	Item    recipe.Item `json:"item"`
	Texture string      `json:"texture"`
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "stevept",
		Usage:   "Minecraft crafting recipes, player stats and the overlay assistant",
		Version: Version,
		Commands: []*cli.Command{
			recipesCmd(e),
			itemCmd(e),
			categoriesCmd(e),
			askCmd(e),
			guideCmd(e),
			statsCmd(e),
			corpusCmd(e),
			serveCmd(e),
			overlayCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// recipesCmd groups the recipe queries.
func recipesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "recipes",
		Usage: "Browse normalized crafting recipes",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recipes sorted by name, optionally in one category",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category (tools, weapons, armor, food, ...)"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 0, Usage: "Maximum recipes to return (0 = all)"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Recipes to skip"},
				},
				Action: func(c *cli.Context) error {
					var list []recipe.Recipe
					if category := strings.ToLower(strings.TrimSpace(c.String("category"))); category != "" {
						if !recipe.ValidCategory(recipe.Category(category)) {
							return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown category %q", category)))
						}
						list = e.recipes.ByCategory(recipe.Category(category))
					} else {
						list = e.recipes.All()
					}
					if c.Int("limit") < 0 || c.Int("offset") < 0 {
						return outputError(errors.NewInvalidRequest("limit and offset must be non-negative"))
					}
					return outputJSON(recipesOutput("", page(list, c.Int("offset"), c.Int("limit"))))
				},
			},
			{
				Name:      "search",
				Usage:     "Search recipes by name or material",
				ArgsUsage: "<query>",
				Action: func(c *cli.Context) error {
					query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
					if query == "" {
						return outputError(errors.NewInvalidRequest("query is required"))
					}
					return outputJSON(recipesOutput(query, e.recipes.Search(query)))
				},
			},
			{
				Name:      "show",
				Usage:     "Show one recipe by id",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "guide", Aliases: []string{"g"}, Usage: "Include the markdown crafting guide"},
				},
				Action: func(c *cli.Context) error {
					id := strings.TrimSpace(c.Args().First())
					if id == "" {
						return outputError(errors.NewInvalidRequest("recipe id is required"))
					}
					r, ok := e.recipes.ByID(id)
					if !ok {
						return outputError(errors.NewNotFound("recipe", id))
					}
					out := RecipeOutput{Recipe: r, Texture: e.recipes.ItemTexture(fmt.Sprint(r.ResultID))}
					if c.Bool("guide") {
						out.Guide = chat.Guide(r)
					}
					return outputJSON(out)
				},
			},
			{
				Name:      "material",
				Usage:     "List recipes that use a material (item id or name)",
				ArgsUsage: "<material>",
				Action: func(c *cli.Context) error {
					ref := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
					if ref == "" {
						return outputError(errors.NewInvalidRequest("material is required"))
					}
					return outputJSON(recipesOutput(ref, e.recipes.ByMaterial(ref)))
				},
			},
		},
	}
}

// itemCmd creates the item command.
func itemCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "item",
		Usage:     "Look up an item by id or name",
		ArgsUsage: "<item>",
		Action: func(c *cli.Context) error {
			ref := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if ref == "" {
				return outputError(errors.NewInvalidRequest("item is required"))
			}
			item, ok := e.recipes.Item(ref)
			if !ok {
				return outputError(errors.NewNotFound("item", ref))
			}
			return outputJSON(ItemOutput{Item: item, Texture: e.recipes.ItemTexture(ref)})
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "Show recipe counts per category",
		Action: func(c *cli.Context) error {
			return outputJSON(e.recipes.Categories())
		},
	}
}

// askCmd creates the ask command.
func askCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the assistant a question",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if message == "" {
				return outputError(errors.NewInvalidRequest("message is required"))
			}
			return outputJSON(chat.New(e.recipes, e.stats).Respond(message))
		},
	}
}

// guideCmd prints a markdown crafting guide as plain text.
func guideCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "guide",
		Usage:     "Print the crafting guide for an item",
		ArgsUsage: "<item>",
		Action: func(c *cli.Context) error {
			name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if name == "" {
				return outputError(errors.NewInvalidRequest("item is required"))
			}
			text, ok := chat.New(e.recipes, e.stats).Guide(name)
			if !ok {
				return outputError(errors.NewNotFound("recipe", name))
			}
			_, err := fmt.Fprint(os.Stdout, text)
			return err
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show player statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "blocks, mobs or items"},
		},
		Action: func(c *cli.Context) error {
			name := strings.ToLower(strings.TrimSpace(c.String("category")))
			if name == "" {
				return outputJSON(e.stats.Get())
			}
			category, err := stats.ParseCategory(name)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			list, _ := e.stats.Category(category)
			return outputJSON(map[string]any{"category": category, "stats": list})
		},
	}
}

// corpusCmd groups the imported-corpus management commands.
func corpusCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "corpus",
		Usage: "Manage imported game-data corpora",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import a corpus directory or exported document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Corpus directory (<home>/corpora/<version>) or .json document"},
					&cli.StringFlag{Name: "corpus", Aliases: []string{"c"}, Usage: "Version tag (default: directory name or document version)"},
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.Import(c.Context, e.db, e.cfg, ops.ImportInput{
						Path:    c.String("path"),
						Version: c.String("corpus"),
						Mode:    ops.ImportMode(c.String("mode")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(out)
				},
			},
			{
				Name:  "export",
				Usage: "Export a corpus version to a JSON document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "corpus", Aliases: []string{"c"}, Usage: "Version tag (default: configured corpus version)"},
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <home>/exports/<version>-<timestamp>.json)"},
				},
				Action: func(c *cli.Context) error {
					version := c.String("corpus")
					if version == "" {
						version = e.cfg.CorpusVersion
					}
					out, err := ops.Export(c.Context, e.db, e.cfg, ops.ExportInput{
						Version: version,
						Path:    c.String("path"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(out)
				},
			},
			{
				Name:  "list",
				Usage: "List imported and embedded corpus versions",
				Action: func(c *cli.Context) error {
					out, err := ops.List(c.Context, e.db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(out)
				},
			},
			{
				Name:  "purge",
				Usage: "Delete imported corpora (all of them unless --corpus is given)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "corpus", Aliases: []string{"c"}, Usage: "Only purge this version"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.Purge(c.Context, e.db, ops.PurgeInput{Version: c.String("corpus")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(out)
				},
			},
		},
	}
}

// serveCmd starts the recipe browser.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the recipe browser web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8420, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port <= 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port %d", port)))
			}
			srv := web.NewServer(web.Deps{
				Recipes: e.recipes,
				Stats:   e.stats,
				Logger:  e.logger,
			}, Version, c.String("bind"), port)
			return web.Run(srv, e.logger)
		},
	}
}

// overlayCmd runs the overlay window state machine against the headless
// backend, driven by line commands on stdin.
func overlayCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "overlay",
		Usage: "Run the overlay controller with a headless window (commands on stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "screen", Value: "1920x1080", Usage: "Primary display work area, WIDTHxHEIGHT"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := runOverlay(ctx, e, c.String("screen"), os.Stdin, os.Stdout); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// runOverlay holds the overlay lock for the lifetime of one controller.
func runOverlay(ctx context.Context, e *env, screen string, in io.Reader, out io.Writer) error {
	workArea, err := headless.ParseSize(screen)
	if err != nil {
		return errors.NewInvalidRequest(err.Error())
	}

	lock := flock.New(filepath.Join(e.baseDir, OverlayLockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.NewInternal(fmt.Errorf("acquire overlay lock: %w", err))
	}
	if !locked {
		return errors.NewInvalidRequest(fmt.Sprintf("another overlay is already running (lock: %s)", lock.Path()))
	}
	defer func() { _ = lock.Unlock() }()

	backend := headless.New(e.cfg.WindowWidth, e.cfg.WindowHeight, workArea, out, e.logger)
	ctrl := overlay.New(backend, backend, overlay.Options{
		Width:          e.cfg.WindowWidth,
		Height:         e.cfg.WindowHeight,
		Padding:        e.cfg.WindowPadding,
		AutoHideDelay:  time.Duration(e.cfg.AutoHideMS) * time.Millisecond,
		HotkeyToggle:   e.cfg.HotkeyToggle,
		HotkeyInteract: e.cfg.HotkeyInteract,
		Hotkeys:        backend,
		Tray:           backend,
		Logger:         e.logger,
	})
	if err := ctrl.Start(ctx); err != nil {
		return errors.NewInternal(err)
	}
	return backend.Run(ctx, ctrl, in)
}

// Helper functions

// recipesOutput wraps a recipe list with its count.
func recipesOutput(query string, list []recipe.Recipe) RecipesOutput {
	return RecipesOutput{Query: query, Count: len(list), Recipes: list}
}

// page returns list[offset:offset+limit]. A zero limit means no limit.
func page(list []recipe.Recipe, offset, limit int) []recipe.Recipe {
	if offset >= len(list) {
		return []recipe.Recipe{}
	}
	end := len(list)
	if limit > 0 {
		end = min(offset+limit, end)
	}
	return list[offset:end]
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var steveErr *errors.SteveError
	if stderrors.As(err, &steveErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", steveErr.Code, steveErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
