package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CorpusVersion != "1.19" {
		t.Fatalf("CorpusVersion = %q, want %q", cfg.CorpusVersion, "1.19")
	}
	if cfg.WindowPadding != 20 {
		t.Errorf("WindowPadding = %d, want 20", cfg.WindowPadding)
	}
	if cfg.AutoHideMS != 3000 {
		t.Errorf("AutoHideMS = %d, want 3000", cfg.AutoHideMS)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"corpus_version": "1.20", "window_width": 500}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CorpusVersion != "1.20" {
		t.Fatalf("CorpusVersion = %q, want %q", cfg.CorpusVersion, "1.20")
	}
	if cfg.WindowWidth != 500 {
		t.Errorf("WindowWidth = %d, want 500", cfg.WindowWidth)
	}
	// Untouched values keep their defaults
	if cfg.WindowHeight != 600 {
		t.Errorf("WindowHeight = %d, want 600", cfg.WindowHeight)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["chat_ask", " stats_get ", "chat_ask"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools = %v, want 2 deduplicated entries", cfg.DisabledTools)
	}
	if cfg.DisabledTools[1] != "stats_get" {
		t.Errorf("DisabledTools[1] = %q, want %q (trimmed)", cfg.DisabledTools[1], "stats_get")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCorpusVersion: "1.18",
		EnvLogLevel:      "debug",
		EnvAutoHideMS:    "1500",
	}
	getenv := func(k string) string { return env[k] }

	cfg := ApplyEnv(DefaultConfig(), getenv)

	if cfg.CorpusVersion != "1.18" {
		t.Errorf("CorpusVersion = %q, want %q", cfg.CorpusVersion, "1.18")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.AutoHideMS != 1500 {
		t.Errorf("AutoHideMS = %d, want 1500", cfg.AutoHideMS)
	}
	if cfg.TextureBasePath != "/assets/textures" {
		t.Errorf("TextureBasePath = %q, want default", cfg.TextureBasePath)
	}
}

func TestApplyEnv_IgnoresInvalidAutoHide(t *testing.T) {
	getenv := func(k string) string {
		if k == EnvAutoHideMS {
			return "soon"
		}
		return ""
	}

	cfg := ApplyEnv(DefaultConfig(), getenv)
	if cfg.AutoHideMS != 3000 {
		t.Errorf("AutoHideMS = %d, want default 3000", cfg.AutoHideMS)
	}
}

func TestMerge_BooleansAndArrays(t *testing.T) {
	base := &Config{AllowedPaths: []string{"/a", "/b"}, AllowUnsafePaths: true}
	overlay := &Config{AllowedPaths: []string{"/b", "/c"}}

	got := Merge(base, overlay)

	if !got.AllowUnsafePaths {
		t.Error("AllowUnsafePaths = false, want true (base true)")
	}
	want := []string{"/a", "/b", "/c"}
	if len(got.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", got.AllowedPaths, want)
	}
	for i := range want {
		if got.AllowedPaths[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, got.AllowedPaths[i], want[i])
		}
	}
}

func TestBaseDir_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	got, err := BaseDir()
	if err != nil {
		t.Fatalf("BaseDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("BaseDir() = %q, want %q", got, dir)
	}
}
