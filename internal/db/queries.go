package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/errors"
)

// VersionInfo describes one imported corpus version.
type VersionInfo struct {
	Version     string `json:"version"`
	ImportID    string `json:"import_id"`
	Source      string `json:"source,omitempty"`
	ItemCount   int    `json:"item_count"`
	RecipeCount int    `json:"recipe_count"`
	ImportedAt  int64  `json:"imported_at"`
}

// corpusTables lists the per-version child tables in delete order.
var corpusTables = []string{"corpus_items", "corpus_recipes", "corpus_foods", "corpus_blocks"}

// InsertCorpus stores c under info.Version, replacing any corpus already
// stored for that version. The item and recipe counts in info are filled in
// from c. All writes happen in one transaction.
func InsertCorpus(ctx context.Context, db *sql.DB, c *corpus.Corpus, info VersionInfo) error {
	if c == nil {
		return errors.NewInvalidRequest("corpus is required")
	}
	if info.Version == "" {
		info.Version = c.Version
	}
	if info.Version == "" {
		return errors.NewInvalidRequest("version is required")
	}
	info.ItemCount = len(c.Items)
	info.RecipeCount = c.RecipeCount()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := deleteVersion(ctx, tx, info.Version); err != nil {
		return errors.NewInternal(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO corpus_versions (version, import_id, source, item_count, recipe_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, info.Version, info.ImportID, toNullString(info.Source), info.ItemCount, info.RecipeCount, info.ImportedAt)
	if err != nil {
		return errors.NewInternal(err)
	}

	itemStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO corpus_items (version, id, name, display_name, stack_size)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer itemStmt.Close()
	for _, id := range corpus.SortedItemIDs(c) {
		it := c.Items[id]
		if _, err := itemStmt.ExecContext(ctx, info.Version, it.ID, it.Name, toNullString(it.DisplayName), toNullInt(it.StackSize)); err != nil {
			return errors.NewInternal(fmt.Errorf("insert item %d: %w", it.ID, err))
		}
	}

	recipeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO corpus_recipes (version, result_id, seq, recipe_json)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer recipeStmt.Close()
	for _, resultID := range corpus.SortedResultIDs(c) {
		for seq, r := range c.Recipes[resultID] {
			raw, err := json.Marshal(r)
			if err != nil {
				return errors.NewInternal(err)
			}
			if _, err := recipeStmt.ExecContext(ctx, info.Version, resultID, seq, string(raw)); err != nil {
				return errors.NewInternal(fmt.Errorf("insert recipe %d/%d: %w", resultID, seq, err))
			}
		}
	}

	if err := insertFlags(ctx, tx, "corpus_foods", info.Version, c.Foods); err != nil {
		return err
	}
	if err := insertFlags(ctx, tx, "corpus_blocks", info.Version, c.Blocks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func insertFlags(ctx context.Context, tx *sql.Tx, table, version string, set map[int]bool) error {
	query := fmt.Sprintf("INSERT INTO %s (version, item_id) VALUES (?, ?)", table)
	for id, ok := range set {
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, query, version, id); err != nil {
			return errors.NewInternal(fmt.Errorf("insert %s %d: %w", table, id, err))
		}
	}
	return nil
}

// VersionExists reports whether a corpus is stored for version.
func VersionExists(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM corpus_versions WHERE version = ? LIMIT 1", version).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// GetVersion returns the metadata of a stored version.
// Returns a CORPUS_NOT_FOUND error if nothing is stored for version.
func GetVersion(ctx context.Context, db *sql.DB, version string) (*VersionInfo, error) {
	row := db.QueryRowContext(ctx, `
		SELECT version, import_id, source, item_count, recipe_count, imported_at
		FROM corpus_versions WHERE version = ?
	`, version)
	info, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewCorpusNotFound(version)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return info, nil
}

// ListVersions returns every stored version, most recently imported first.
func ListVersions(ctx context.Context, db *sql.DB) ([]VersionInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT version, import_id, source, item_count, recipe_count, imported_at
		FROM corpus_versions
		ORDER BY imported_at DESC, version ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	versions := []VersionInfo{}
	for rows.Next() {
		info, err := scanVersion(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		versions = append(versions, *info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return versions, nil
}

// LoadCorpus reads the corpus stored for version.
// Returns a CORPUS_NOT_FOUND error if nothing is stored for version.
func LoadCorpus(ctx context.Context, db *sql.DB, version string) (*corpus.Corpus, error) {
	if _, err := GetVersion(ctx, db, version); err != nil {
		return nil, err
	}

	c := corpus.New(version)

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, display_name, stack_size
		FROM corpus_items WHERE version = ?
	`, version)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	for rows.Next() {
		var (
			it          corpus.RawItem
			displayName sql.NullString
			stackSize   sql.NullInt64
		)
		if err := rows.Scan(&it.ID, &it.Name, &displayName, &stackSize); err != nil {
			rows.Close()
			return nil, errors.NewInternal(err)
		}
		it.DisplayName = displayName.String
		it.StackSize = int(stackSize.Int64)
		c.Items[it.ID] = it
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err = db.QueryContext(ctx, `
		SELECT result_id, recipe_json
		FROM corpus_recipes WHERE version = ?
		ORDER BY result_id ASC, seq ASC
	`, version)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	for rows.Next() {
		var (
			resultID int
			raw      string
			r        corpus.RawRecipe
		)
		if err := rows.Scan(&resultID, &raw); err != nil {
			rows.Close()
			return nil, errors.NewInternal(err)
		}
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			rows.Close()
			return nil, errors.NewInternal(fmt.Errorf("recipe %d: %w", resultID, err))
		}
		c.Recipes[resultID] = append(c.Recipes[resultID], r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := loadFlags(ctx, db, "corpus_foods", version, c.Foods); err != nil {
		return nil, err
	}
	if err := loadFlags(ctx, db, "corpus_blocks", version, c.Blocks); err != nil {
		return nil, err
	}
	return c, nil
}

func loadFlags(ctx context.Context, db *sql.DB, table, version string, set map[int]bool) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT item_id FROM %s WHERE version = ?", table), version)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return errors.NewInternal(err)
		}
		set[id] = true
	}
	if err := rows.Err(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteVersion removes the corpus stored for version.
// Returns whether anything was deleted.
func DeleteVersion(ctx context.Context, db *sql.DB, version string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	deleted, err := deleteVersion(ctx, tx, version)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	if err := tx.Commit(); err != nil {
		return false, errors.NewInternal(err)
	}
	return deleted, nil
}

func deleteVersion(ctx context.Context, tx *sql.Tx, version string) (bool, error) {
	for _, table := range corpusTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE version = ?", table), version); err != nil {
			return false, err
		}
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM corpus_versions WHERE version = ?", version)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(row scanner) (*VersionInfo, error) {
	var (
		info   VersionInfo
		source sql.NullString
	)
	if err := row.Scan(&info.Version, &info.ImportID, &source, &info.ItemCount, &info.RecipeCount, &info.ImportedAt); err != nil {
		return nil, err
	}
	info.Source = source.String
	return &info, nil
}

// toNullString stores an empty string as NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// toNullInt stores a zero value as NULL.
func toNullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
