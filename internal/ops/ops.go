// Package ops implements the corpus management operations shared by the CLI
// and MCP surfaces: import, export, list and purge.
package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// ImportMode controls what happens when an imported version is already stored.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail if the version exists
	ImportModeReplace ImportMode = "replace" // overwrite the stored version
)

// now is swapped in tests.
var now = time.Now

// newImportID returns a fresh ULID identifying one import run.
func newImportID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
