package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hpungsan/stevept/internal/config"
	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/db"
	"github.com/hpungsan/stevept/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Version string // required
	Path    string // optional, default: <home>/exports/<version>-<timestamp>.json
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Version    string `json:"version"`
	Items      int    `json:"items"`
	Recipes    int    `json:"recipes"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes one corpus version as a single JSON document that Import can
// read back. Imported versions take precedence over embedded ones.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	version := strings.TrimSpace(input.Version)
	if version == "" {
		return nil, errors.NewInvalidRequest("version is required")
	}

	c, err := corpus.Chain(db.Source(database), corpus.Embedded()).Load(ctx, version)
	if stderrors.Is(err, corpus.ErrNotFound) {
		return nil, errors.NewCorpusNotFound(version)
	}
	if err != nil {
		return nil, err
	}

	t := now()
	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%s-%s%s", VersionFilename(version), t.Format("2006-01-02T150405"), DocumentExt)
		exportPath = filepath.Join(dir, name)
	}

	// Default paths are validated too, so a hostile version tag cannot escape.
	if err := CheckDocument(exportPath, true, cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	data, err := json.MarshalIndent(c.ToDocument(), "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := writeAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Version:    version,
		Items:      len(c.Items),
		Recipes:    c.RecipeCount(),
		ExportedAt: t.Unix(),
	}, nil
}

// writeAtomic writes data to a temp file next to path and renames it into
// place, leaving any existing file untouched on failure.
func writeAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := createDocument(tempPath)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}
