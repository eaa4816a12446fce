package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/stevept/internal/config"
	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/db"
	"github.com/hpungsan/stevept/internal/errors"
)

const (
	dirItems = `[
		{"id": 1, "name": "oak_planks", "displayName": "Oak Planks"},
		{"id": 2, "name": "stick", "displayName": "Stick"}
	]`
	dirRecipes = `{"2": [{"inShape": [[1], [1]], "result": {"id": 2, "count": 4}}]}`
	dirBlocks  = `[{"id": 13, "name": "oak_planks"}]`
)

// setup points the home directory at a temp dir and opens a fresh database.
func setup(t *testing.T) (*sql.DB, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	database, err := db.Init(home)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, home
}

// writeCorpusDir lays out a minecraft-data style directory named version
// under <home>/corpora.
func writeCorpusDir(t *testing.T, version string) string {
	t.Helper()
	root, err := DefaultCorporaDir()
	require.NoError(t, err)
	return writeCorpusDirIn(t, root, version)
}

func writeCorpusDirIn(t *testing.T, root, version string) string {
	t.Helper()
	dir := filepath.Join(root, version)
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, corpus.ItemsFile), []byte(dirItems), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, corpus.RecipesFile), []byte(dirRecipes), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, corpus.BlocksFile), []byte(dirBlocks), 0600))
	return dir
}

func TestImport_Dir(t *testing.T) {
	database, _ := setup(t)
	ctx := context.Background()
	dir := writeCorpusDir(t, "custom")

	out, err := Import(ctx, database, config.DefaultConfig(), ImportInput{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, "custom", out.Version)
	assert.Equal(t, 2, out.Items)
	assert.Equal(t, 1, out.Recipes)
	assert.False(t, out.Replaced)
	_, err = ulid.Parse(out.ImportID)
	assert.NoError(t, err, "import id should be a ULID")

	c, err := db.LoadCorpus(ctx, database, "custom")
	require.NoError(t, err)
	assert.True(t, c.IsBlock(1))

	info, err := db.GetVersion(ctx, database, "custom")
	require.NoError(t, err)
	assert.Equal(t, out.ImportID, info.ImportID)
	assert.True(t, filepath.IsAbs(info.Source))
}

func TestImport_VersionOverride(t *testing.T) {
	database, _ := setup(t)
	dir := writeCorpusDir(t, "custom")

	out, err := Import(context.Background(), database, config.DefaultConfig(), ImportInput{Path: dir, Version: "1.19"})
	require.NoError(t, err)
	assert.Equal(t, "1.19", out.Version)
}

func TestImport_Modes(t *testing.T) {
	database, _ := setup(t)
	ctx := context.Background()
	dir := writeCorpusDir(t, "custom")
	cfg := config.DefaultConfig()

	_, err := Import(ctx, database, cfg, ImportInput{Path: dir})
	require.NoError(t, err)

	_, err = Import(ctx, database, cfg, ImportInput{Path: dir})
	assert.True(t, errors.Is(err, errors.ErrVersionExists), "err = %v", err)

	out, err := Import(ctx, database, cfg, ImportInput{Path: dir, Mode: ImportModeReplace})
	require.NoError(t, err)
	assert.True(t, out.Replaced)

	versions, err := db.ListVersions(ctx, database)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestImport_Errors(t *testing.T) {
	database, _ := setup(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()

	_, err := Import(ctx, database, cfg, ImportInput{Path: "  "})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Import(ctx, database, cfg, ImportInput{Path: t.TempDir(), Mode: "rename"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	corpora, err := DefaultCorporaDir()
	require.NoError(t, err)

	_, err = Import(ctx, database, cfg, ImportInput{Path: filepath.Join(corpora, "nope")})
	assert.True(t, errors.Is(err, errors.ErrFileNotFound), "err = %v", err)

	_, err = Import(ctx, database, cfg, ImportInput{Path: filepath.Join(corpora, "nope.json")})
	assert.True(t, errors.Is(err, errors.ErrFileNotFound), "err = %v", err)

	// A directory without recipes.json
	empty := filepath.Join(corpora, "empty")
	require.NoError(t, os.MkdirAll(empty, 0700))
	_, err = Import(ctx, database, cfg, ImportInput{Path: empty})
	assert.True(t, errors.Is(err, errors.ErrFileNotFound), "err = %v", err)

	broken := writeCorpusDir(t, "broken")
	require.NoError(t, os.WriteFile(filepath.Join(broken, "recipes.json"), []byte("{"), 0600))
	_, err = Import(ctx, database, cfg, ImportInput{Path: broken})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
}

func TestExport_EmbeddedThenImport(t *testing.T) {
	database, home := setup(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()

	now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	out, err := Export(ctx, database, cfg, ExportInput{Version: "1.19"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "exports", "1.19-2024-05-01T123000.json"), out.Path)
	assert.Equal(t, 41, out.Recipes)
	assert.Equal(t, int64(1714566600), out.ExportedAt)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	var doc corpus.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "1.19", doc.Version)
	assert.Len(t, doc.Items, out.Items)

	imported, err := Import(ctx, database, cfg, ImportInput{Path: out.Path, Version: "copy"})
	require.NoError(t, err)
	assert.Equal(t, 41, imported.Recipes)

	embedded, err := corpus.Embedded().Load(ctx, "1.19")
	require.NoError(t, err)
	stored, err := db.LoadCorpus(ctx, database, "copy")
	require.NoError(t, err)
	assert.Equal(t, embedded.Items, stored.Items)
	assert.Equal(t, embedded.Recipes, stored.Recipes)
	assert.Equal(t, embedded.Foods, stored.Foods)
	assert.Equal(t, embedded.Blocks, stored.Blocks)
}

func TestExport_PrefersImported(t *testing.T) {
	database, home := setup(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()

	_, err := Import(ctx, database, cfg, ImportInput{Path: writeCorpusDir(t, "x"), Version: "1.19"})
	require.NoError(t, err)

	out, err := Export(ctx, database, cfg, ExportInput{Version: "1.19", Path: filepath.Join(home, "exports", "mine.json")})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Recipes)
}

func TestExport_Errors(t *testing.T) {
	database, _ := setup(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()

	_, err := Export(ctx, database, cfg, ExportInput{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Export(ctx, database, cfg, ExportInput{Version: "0.1"})
	assert.True(t, errors.Is(err, errors.ErrCorpusNotFound), "err = %v", err)

	_, err = Export(ctx, database, cfg, ExportInput{Version: "1.19", Path: "/tmp/outside.json"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
}

func TestImport_DocumentOutsideAllowedDirs(t *testing.T) {
	database, _ := setup(t)
	doc := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"version": "1.19", "items": [], "recipes": {}}`), 0600))

	_, err := Import(context.Background(), database, config.DefaultConfig(), ImportInput{Path: doc})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{filepath.Dir(doc)}
	out, err := Import(context.Background(), database, cfg, ImportInput{Path: doc})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Items)
}

func TestImport_DirOutsideRoots(t *testing.T) {
	database, _ := setup(t)
	ctx := context.Background()
	root := t.TempDir()
	dir := writeCorpusDirIn(t, root, "1.19")

	_, err := Import(ctx, database, config.DefaultConfig(), ImportInput{Path: dir})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)

	versions, err := db.ListVersions(ctx, database)
	require.NoError(t, err)
	assert.Empty(t, versions, "nothing is read from outside the corpus roots")

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{root}
	out, err := Import(ctx, database, cfg, ImportInput{Path: dir})
	require.NoError(t, err)
	assert.Equal(t, "1.19", out.Version)
}

func TestImport_DirSymlinkedFile(t *testing.T) {
	database, _ := setup(t)
	dir := writeCorpusDir(t, "linked")

	target := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(target, []byte(dirRecipes), 0600))
	recipes := filepath.Join(dir, corpus.RecipesFile)
	require.NoError(t, os.Remove(recipes))
	if err := os.Symlink(target, recipes); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	_, err := Import(context.Background(), database, config.DefaultConfig(), ImportInput{Path: dir})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
}

func TestListAndPurge(t *testing.T) {
	database, _ := setup(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()

	list, err := List(ctx, database)
	require.NoError(t, err)
	assert.Empty(t, list.Imported)
	assert.Contains(t, list.Embedded, "1.19")

	for _, v := range []string{"a", "b", "c"} {
		_, err := Import(ctx, database, cfg, ImportInput{Path: writeCorpusDir(t, v)})
		require.NoError(t, err)
	}

	list, err = List(ctx, database)
	require.NoError(t, err)
	assert.Len(t, list.Imported, 3)

	out, err := Purge(ctx, database, PurgeInput{Version: "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Purged)
	assert.Equal(t, `Deleted imported corpus "b"`, out.Message)

	out, err = Purge(ctx, database, PurgeInput{Version: "b"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Purged)
	assert.True(t, strings.HasPrefix(out.Message, "No imported corpus"))

	out, err = Purge(ctx, database, PurgeInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Purged)
	assert.Equal(t, "Deleted 2 imported corpora", out.Message)

	out, err = Purge(ctx, database, PurgeInput{})
	require.NoError(t, err)
	assert.Equal(t, "No imported corpora to purge", out.Message)
}
