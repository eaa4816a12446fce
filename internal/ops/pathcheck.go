package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/hpungsan/stevept/internal/config"
	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/errors"
)

// Corpus files come in two shapes: an exported document (one .json file) and
// a minecraft-data directory (items.json, recipes.json, ...). Both live under
// a small set of roots: <home>/exports, <home>/corpora and cfg.AllowedPaths.
// A document sits directly in a root. A data directory is a direct child of a
// root, named after its version.
//
// AllowUnsafePaths lifts the root restriction only. Symlinks are refused
// regardless, since documents are opened with O_NOFOLLOW.

// DocumentExt is the required extension of corpus documents.
const DocumentExt = ".json"

const (
	exportsDirName = "exports"
	corporaDirName = "corpora"
)

// DefaultExportsDir returns <home>/exports, where Export writes by default.
func DefaultExportsDir() (string, error) {
	return homeSubdir(exportsDirName)
}

// DefaultCorporaDir returns <home>/corpora, the default root for
// minecraft-data directories.
func DefaultCorporaDir() (string, error) {
	return homeSubdir(corporaDirName)
}

func homeSubdir(name string) (string, error) {
	base, err := config.BaseDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(base, name), nil
}

// roots is the resolved set of directories corpus paths may live in.
type roots struct {
	dirs   []string
	unsafe bool
}

func loadRoots(cfg *config.Config) (*roots, error) {
	exports, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	corpora, err := DefaultCorporaDir()
	if err != nil {
		return nil, err
	}

	r := &roots{dirs: []string{exports, corpora}}
	if cfg != nil {
		r.unsafe = cfg.AllowUnsafePaths
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				r.dirs = append(r.dirs, p)
			}
		}
	}

	for i, d := range r.dirs {
		d = filepath.Clean(d)
		// A root that is itself a symlink is matched by its target.
		if info, err := os.Lstat(d); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(d)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve allowed path %s: %v", d, err))
			}
			d = resolved
		}
		r.dirs[i] = d
	}
	return r, nil
}

// holds reports whether dir is exactly one of the roots.
func (r *roots) holds(dir string) bool {
	return slices.Contains(r.dirs, filepath.Clean(dir))
}

func (r *roots) String() string {
	return strings.Join(r.dirs, ", ")
}

// CheckDocument validates a corpus document path before Import reads it
// (write false) or Export writes it.
func CheckDocument(path string, write bool, cfg *config.Config) error {
	abs, err := absPath(path)
	if err != nil {
		return err
	}
	if filepath.Ext(abs) != DocumentExt {
		return errors.NewInvalidRequest("corpus document must have " + DocumentExt + " extension")
	}

	r, err := loadRoots(cfg)
	if err != nil {
		return err
	}
	if !r.unsafe {
		parent := filepath.Dir(abs)
		if !r.holds(parent) {
			return errors.NewInvalidRequest(fmt.Sprintf("corpus document must be directly in one of: %s", r))
		}
		if err := refuseSymlink(parent, "document directory"); err != nil {
			return err
		}
	}

	if !write {
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	return refuseSymlink(abs, "corpus document")
}

// CheckDataDir validates a minecraft-data directory before Import reads it.
// Neither the directory nor any of the corpus files in it may be a symlink.
func CheckDataDir(dir string, cfg *config.Config) error {
	abs, err := absPath(dir)
	if err != nil {
		return err
	}

	r, err := loadRoots(cfg)
	if err != nil {
		return err
	}
	if !r.unsafe {
		parent := filepath.Dir(abs)
		if !r.holds(parent) {
			return errors.NewInvalidRequest(fmt.Sprintf("corpus directory must be a direct child of one of: %s", r))
		}
		if err := refuseSymlink(parent, "corpus root"); err != nil {
			return err
		}
	}

	info, err := os.Lstat(abs)
	if os.IsNotExist(err) {
		return errors.NewFileNotFound(dir)
	}
	if err != nil {
		return errors.NewInternal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("corpus directory must not be a symlink")
	}
	if !info.IsDir() {
		return errors.NewInvalidRequest("path must be a corpus directory or a " + DocumentExt + " document")
	}

	for _, name := range corpus.DataFiles {
		if err := refuseSymlink(filepath.Join(abs, name), name); err != nil {
			return err
		}
	}
	return nil
}

// absPath rejects empty and ".." paths and returns the cleaned absolute form.
func absPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	if hasTraversal(path) {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	return abs, nil
}

// refuseSymlink fails if path exists and is a symlink. A missing path passes.
func refuseSymlink(path, what string) error {
	info, err := os.Lstat(path)
	if err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest(what + " must not be a symlink")
	}
	return nil
}

// hasTraversal reports whether any component of path is "..". Forward
// slashes count as separators on every platform.
func hasTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// VersionFilename turns a version tag into a safe file name stem for exports.
// Letters, digits, '.', '_' and '-' are kept, other printable runes become
// '-', control runes are dropped, and ".." never survives.
func VersionFilename(version string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '_', r == '-':
			return r
		case unicode.IsControl(r):
			return -1
		default:
			return '-'
		}
	}, version)

	s = strings.ReplaceAll(s, "..", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "unnamed"
	}
	return s
}
