package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/stevept/internal/db"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Version string // optional; empty purges every imported version
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes imported corpora. Embedded versions are not
// affected.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	version := strings.TrimSpace(input.Version)

	var targets []string
	if version != "" {
		targets = []string{version}
	} else {
		versions, err := db.ListVersions(ctx, database)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			targets = append(targets, v.Version)
		}
	}

	count := 0
	for _, v := range targets {
		deleted, err := db.DeleteVersion(ctx, database, v)
		if err != nil {
			return nil, err
		}
		if deleted {
			count++
		}
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, version),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, version string) string {
	if count == 0 {
		if version != "" {
			return fmt.Sprintf("No imported corpus for version %q", version)
		}
		return "No imported corpora to purge"
	}
	if version != "" {
		return fmt.Sprintf("Deleted imported corpus %q", version)
	}
	word := "corpus"
	if count > 1 {
		word = "corpora"
	}
	return fmt.Sprintf("Deleted %d imported %s", count, word)
}
