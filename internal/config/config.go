package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvHome          = "STEVEPT_HOME"
	EnvCorpusVersion = "STEVEPT_CORPUS_VERSION"
	EnvLogLevel      = "STEVEPT_LOG_LEVEL"
	EnvTextureDir    = "STEVEPT_TEXTURE_DIR"
	EnvAutoHideMS    = "STEVEPT_AUTO_HIDE_MS"
)

// Config holds application configuration.
type Config struct {
	// CorpusVersion is the game-data version tag the recipe pipeline initializes with.
	CorpusVersion string `json:"corpus_version"`

	// LogLevel is a logrus level name ("debug", "info", "warn", ...).
	LogLevel string `json:"log_level"`

	// TextureDir is an optional directory of texture assets laid out as
	// item/<key>.png and block/<key>.png. When empty, texture paths are
	// computed without existence checks.
	TextureDir string `json:"texture_dir,omitempty"`

	// TextureBasePath is the URL prefix texture paths are built under.
	TextureBasePath string `json:"texture_base_path"`

	// Overlay window geometry. Padding is the gap kept between the window
	// and the bottom-right edge of the primary display's work area.
	WindowWidth   int `json:"window_width"`
	WindowHeight  int `json:"window_height"`
	WindowPadding int `json:"window_padding"`

	// AutoHideMS is the delay before the overlay hides itself after its first show.
	AutoHideMS int `json:"auto_hide_ms"`

	// Global hotkey accelerators.
	HotkeyToggle   string `json:"hotkey_toggle"`
	HotkeyInteract string `json:"hotkey_interact"`

	// AllowedPaths are extra corpus roots besides <home>/exports and
	// <home>/corpora. Documents sit directly in a root; data directories are
	// direct children of one.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths lifts the root restriction for import and export.
	// Symlinks are still refused.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CorpusVersion:   "1.19",
		LogLevel:        "info",
		TextureBasePath: "/assets/textures",
		WindowWidth:     400,
		WindowHeight:    600,
		WindowPadding:   20,
		AutoHideMS:      3000,
		HotkeyToggle:    "CommandOrControl+.",
		HotkeyInteract:  "CommandOrControl+Shift+.",
	}
}

// BaseDir returns the stevept home directory: $STEVEPT_HOME if set, else ~/.stevept.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvHome)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stevept"), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.stevept.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides config values from STEVEPT_* environment variables.
// getenv is injected so tests don't touch the process environment.
func ApplyEnv(cfg *Config, getenv func(string) string) *Config {
	overlay := &Config{
		CorpusVersion: strings.TrimSpace(getenv(EnvCorpusVersion)),
		LogLevel:      strings.TrimSpace(getenv(EnvLogLevel)),
		TextureDir:    strings.TrimSpace(getenv(EnvTextureDir)),
	}
	if ms, err := strconv.Atoi(strings.TrimSpace(getenv(EnvAutoHideMS))); err == nil && ms > 0 {
		overlay.AutoHideMS = ms
	}
	return Merge(cfg, overlay)
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.CorpusVersion = firstString(overlay.CorpusVersion, base.CorpusVersion)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)
	result.TextureDir = firstString(overlay.TextureDir, base.TextureDir)
	result.TextureBasePath = firstString(overlay.TextureBasePath, base.TextureBasePath)
	result.HotkeyToggle = firstString(overlay.HotkeyToggle, base.HotkeyToggle)
	result.HotkeyInteract = firstString(overlay.HotkeyInteract, base.HotkeyInteract)

	result.WindowWidth = firstInt(overlay.WindowWidth, base.WindowWidth)
	result.WindowHeight = firstInt(overlay.WindowHeight, base.WindowHeight)
	result.WindowPadding = firstInt(overlay.WindowPadding, base.WindowPadding)
	result.AutoHideMS = firstInt(overlay.AutoHideMS, base.AutoHideMS)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
