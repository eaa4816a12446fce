package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hpungsan/stevept/internal/config"
	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/db"
	"github.com/hpungsan/stevept/internal/errors"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	// Path is either a corpus document written by Export (.json) or a
	// minecraft-data style directory (items.json, recipes.json, optional
	// foods.json and blocks.json). See CheckDocument and CheckDataDir for
	// where each may live.
	Path string

	// Version tags the stored corpus. Defaults to the document's version, or
	// the directory name for a directory import.
	Version string

	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Version  string `json:"version"`
	ImportID string `json:"import_id"`
	Items    int    `json:"items"`
	Recipes  int    `json:"recipes"`
	Replaced bool   `json:"replaced"`
}

// Import reads a corpus from disk and stores it under a version tag.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	var c *corpus.Corpus
	var err error
	if filepath.Ext(path) == DocumentExt {
		c, err = readDocument(path, input.Version, cfg)
	} else {
		c, err = readDir(path, input.Version, cfg)
	}
	if err != nil {
		return nil, err
	}
	if c.Version == "" {
		return nil, errors.NewInvalidRequest("version is required")
	}

	exists, err := db.VersionExists(ctx, database, c.Version)
	if err != nil {
		return nil, err
	}
	if exists && input.Mode == ImportModeError {
		return nil, errors.NewVersionExists(c.Version)
	}

	importID, err := newImportID()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate import id: %w", err))
	}

	abs, _ := filepath.Abs(path)
	err = db.InsertCorpus(ctx, database, c, db.VersionInfo{
		Version:    c.Version,
		ImportID:   importID,
		Source:     abs,
		ImportedAt: now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &ImportOutput{
		Version:  c.Version,
		ImportID: importID,
		Items:    len(c.Items),
		Recipes:  c.RecipeCount(),
		Replaced: exists,
	}, nil
}

func readDir(dir, version string, cfg *config.Config) (*corpus.Corpus, error) {
	if err := CheckDataDir(dir, cfg); err != nil {
		return nil, err
	}
	if version == "" {
		version = filepath.Base(filepath.Clean(dir))
	}
	c, err := corpus.LoadDir(dir, version)
	if stderrors.Is(err, corpus.ErrNotFound) {
		return nil, errors.NewFileNotFound(dir)
	}
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid corpus directory %s: %v", filepath.Base(dir), err))
	}
	return c, nil
}

func readDocument(path, version string, cfg *config.Config) (*corpus.Corpus, error) {
	if err := CheckDocument(path, false, cfg); err != nil {
		return nil, err
	}
	file, err := openDocument(path)
	if err != nil {
		var sErr *errors.SteveError
		if stderrors.As(err, &sErr) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	var doc corpus.Document
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid corpus document: %v", err))
	}
	if version != "" {
		doc.Version = version
	}
	c, err := corpus.FromDocument(&doc)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return c, nil
}
