package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/stevept/internal/config"
	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/db"
	"github.com/hpungsan/stevept/internal/logging"
	"github.com/hpungsan/stevept/internal/mcp"
	"github.com/hpungsan/stevept/internal/recipe"
	"github.com/hpungsan/stevept/internal/stats"
	"github.com/hpungsan/stevept/internal/texture"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"recipes": true, "item": true, "categories": true,
	"ask": true, "guide": true, "stats": true,
	"corpus": true, "serve": true, "overlay": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _____ _____   _____ ___ _____
  / __|_   _| __\ \ / / __| _ \_   _|
  \__ \ | | | _| \ V /| _||  _/ | |
  |___/ |_| |___| \_/ |___|_|   |_|

  Crafting recipes and player stats, overlay style

  Usage: stevept <command> [options]
         stevept --help

  MCP server mode requires piped input.`)
}

// env is everything a command may need. Fields are nil for help and
// version output, which runs before any setup.
type env struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string
	logger  *logrus.Logger
	recipes *recipe.Service
	stats   *stats.Table
}

// newRecipes builds the recipe service over imported corpora with the
// embedded data as fallback, and initializes it with the configured version.
func newRecipes(ctx context.Context, database *sql.DB, cfg *config.Config, logger logrus.FieldLogger) *recipe.Service {
	textures := texture.NewResolver(cfg.TextureBasePath, nil)
	if cfg.TextureDir != "" {
		textures = texture.NewResolver(cfg.TextureBasePath, os.DirFS(cfg.TextureDir))
	}

	svc := recipe.New(corpus.Chain(db.Source(database), corpus.Embedded()), textures, logger)
	svc.Initialize(ctx, cfg.CorpusVersion)
	return svc
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// Optional .env next to the binary's working directory
	_ = godotenv.Load()

	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(&env{})
		if err := app.Run(os.Args); err != nil {
			fatalf("%v", err)
		}
		return
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fatalf("could not determine home directory: %v", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyEnv(cfg, os.Getenv)

	logger := logging.New(cfg.LogLevel, os.Stderr)

	database, err := db.Init(baseDir)
	if err != nil {
		fatalf("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	e := &env{
		db:      database,
		cfg:     cfg,
		baseDir: baseDir,
		logger:  logger,
		recipes: newRecipes(context.Background(), database, cfg, logger),
		stats:   stats.NewTable(),
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(e)
		if err := app.Run(os.Args); err != nil {
			database.Close()
			fatalf("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'stevept --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	// MCP server mode (default)
	deps := mcp.Deps{
		DB:      database,
		Config:  cfg,
		Recipes: e.recipes,
		Stats:   e.stats,
		Logger:  logger,
	}
	if err := mcp.Run(deps, Version); err != nil {
		database.Close()
		fatalf("%v", err)
	}
}
