package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/db"
)

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Imported []db.VersionInfo `json:"imported"`
	Embedded []string         `json:"embedded"`
}

// List returns the imported corpus versions, newest first, and the versions
// bundled in the binary.
func List(ctx context.Context, database *sql.DB) (*ListOutput, error) {
	versions, err := db.ListVersions(ctx, database)
	if err != nil {
		return nil, err
	}
	embedded := corpus.EmbeddedVersions()
	if embedded == nil {
		embedded = []string{}
	}
	return &ListOutput{Imported: versions, Embedded: embedded}, nil
}
