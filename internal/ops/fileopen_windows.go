//go:build windows

package ops

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/hpungsan/stevept/internal/errors"
)

// createDocument creates (or truncates) an export file. Windows has no
// O_NOFOLLOW; CheckDocument has already rejected symlinked paths.
func createDocument(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
}

// openDocument opens a corpus document for import.
func openDocument(path string) (*os.File, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NewFileNotFound(path)
	}
	return f, err
}
