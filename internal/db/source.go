package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/errors"
)

// Source returns a corpus.Source backed by the imported corpora in db.
// A version that was never imported is reported as corpus.ErrNotFound so the
// source can sit in front of the embedded data in a corpus.Chain.
func Source(db *sql.DB) corpus.Source {
	return corpus.SourceFunc(func(ctx context.Context, version string) (*corpus.Corpus, error) {
		c, err := LoadCorpus(ctx, db, version)
		if errors.Is(err, errors.ErrCorpusNotFound) {
			return nil, fmt.Errorf("version %q: %w", version, corpus.ErrNotFound)
		}
		return c, err
	})
}
