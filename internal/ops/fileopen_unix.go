//go:build !windows

package ops

import (
	stderrors "errors"
	"os"

	"golang.org/x/sys/unix"

	"github.com/hpungsan/stevept/internal/errors"
)

// createDocument creates (or truncates) an export file. The final path
// component must not be a symlink; parent directories are covered by
// CheckDocument, which only accepts files directly inside a corpus root.
func createDocument(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_WRONLY|unix.O_TRUNC|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0600)
	if err != nil {
		if stderrors.Is(err, unix.ELOOP) {
			return nil, errors.NewInvalidRequest("export path is a symlink")
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// openDocument opens a corpus document for import under the same symlink
// rule as createDocument.
func openDocument(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, unix.ELOOP):
		return nil, errors.NewInvalidRequest("import path is a symlink")
	case stderrors.Is(err, unix.ENOENT):
		return nil, errors.NewFileNotFound(path)
	default:
		return nil, err
	}
}
