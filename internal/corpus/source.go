package corpus

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
)

// ErrNotFound is returned by a Source that has no corpus for a version tag.
var ErrNotFound = errors.New("corpus not found")

// Source loads the corpus for a version tag.
type Source interface {
	Load(ctx context.Context, version string) (*Corpus, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, version string) (*Corpus, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context, version string) (*Corpus, error) {
	return f(ctx, version)
}

//go:embed data
var dataFS embed.FS

// Embedded returns the source backed by the corpora bundled in the binary.
func Embedded() Source {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		panic(err)
	}
	return FS(sub)
}

// EmbeddedVersions lists the version tags bundled in the binary.
func EmbeddedVersions() []string {
	entries, err := fs.ReadDir(dataFS, "data")
	if err != nil {
		return nil
	}
	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions
}

// FS returns a source reading <version>/items.json etc. from fsys.
func FS(fsys fs.FS) Source {
	return SourceFunc(func(ctx context.Context, version string) (*Corpus, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if version == "" || !fs.ValidPath(version) {
			return nil, fmt.Errorf("version %q: %w", version, ErrNotFound)
		}
		return LoadFS(fsys, version, version)
	})
}

// Dir returns a source reading <root>/<version>/ from disk.
func Dir(root string) Source {
	return FS(os.DirFS(root))
}

// Files of a minecraft-data directory. Items and recipes are required.
const (
	ItemsFile   = "items.json"
	RecipesFile = "recipes.json"
	FoodsFile   = "foods.json"
	BlocksFile  = "blocks.json"
)

// DataFiles lists every file LoadDir reads.
var DataFiles = []string{ItemsFile, RecipesFile, FoodsFile, BlocksFile}

// LoadDir reads a minecraft-data style directory (items.json, recipes.json,
// optional foods.json and blocks.json) as the given version.
func LoadDir(dir, version string) (*Corpus, error) {
	return LoadFS(os.DirFS(dir), ".", version)
}

// LoadFS reads the corpus files under dir in fsys. A missing items.json or
// recipes.json is reported as ErrNotFound.
func LoadFS(fsys fs.FS, dir, version string) (*Corpus, error) {
	items, err := readRequired(fsys, path.Join(dir, ItemsFile), version)
	if err != nil {
		return nil, err
	}
	recipes, err := readRequired(fsys, path.Join(dir, RecipesFile), version)
	if err != nil {
		return nil, err
	}
	foods, err := readOptional(fsys, path.Join(dir, FoodsFile))
	if err != nil {
		return nil, err
	}
	blocks, err := readOptional(fsys, path.Join(dir, BlocksFile))
	if err != nil {
		return nil, err
	}
	return Decode(version, items, recipes, foods, blocks)
}

func readRequired(fsys fs.FS, name, version string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("version %q: %s: %w", version, path.Base(name), ErrNotFound)
	}
	return data, err
}

func readOptional(fsys fs.FS, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Chain tries each source in order and returns the first corpus found.
// A source error other than ErrNotFound stops the chain.
func Chain(sources ...Source) Source {
	return SourceFunc(func(ctx context.Context, version string) (*Corpus, error) {
		for _, s := range sources {
			if s == nil {
				continue
			}
			c, err := s.Load(ctx, version)
			if err == nil {
				return c, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("version %q: %w", version, ErrNotFound)
	})
}
