package texture

import (
	"io/fs"
	"path"
	"strings"
)

// Bucket is the asset directory a texture lives in.
type Bucket string

const (
	BucketItem  Bucket = "item"
	BucketBlock Bucket = "block"
)

// MissingFile is the asset served when nothing else resolves.
const MissingFile = "missing_texture.png"

// Resolver turns names into texture paths under a base URL path.
// When assets is nil no existence checks are made and the preferred path is
// returned; the display layer is expected to swap to MissingPath on load
// failure.
type Resolver struct {
	basePath string
	assets   fs.FS
}

// NewResolver creates a Resolver. assets may be nil.
func NewResolver(basePath string, assets fs.FS) *Resolver {
	return &Resolver{
		basePath: strings.TrimRight(basePath, "/"),
		assets:   assets,
	}
}

// Assets returns the asset filesystem, or nil.
func (r *Resolver) Assets() fs.FS {
	return r.assets
}

// BasePath returns the URL prefix paths are built under.
func (r *Resolver) BasePath() string {
	return r.basePath
}

// Location returns the bucket and key a name resolves to before any
// existence check.
func Location(name string) (Bucket, string) {
	norm := Normalize(name)
	key := Key(norm)
	if blockLocated[norm] {
		return BucketBlock, key
	}
	return BucketItem, key
}

// ItemPath resolves the texture path for an item or block name.
// It never fails: an empty name or a name with no asset in either bucket
// resolves to MissingPath.
func (r *Resolver) ItemPath(name string) string {
	if strings.TrimSpace(name) == "" {
		return r.MissingPath()
	}

	bucket, key := Location(name)
	primary := r.rel(bucket, key)

	if r.assets == nil {
		return r.join(primary)
	}
	if r.exists(primary) {
		return r.join(primary)
	}

	secondary := r.rel(otherBucket(bucket), key)
	if r.exists(secondary) {
		return r.join(secondary)
	}

	return r.MissingPath()
}

// BlockPath returns the block/ bucket path for a name regardless of where the
// name would normally be located.
func (r *Resolver) BlockPath(name string) string {
	if strings.TrimSpace(name) == "" {
		return r.MissingPath()
	}
	return r.join(r.rel(BucketBlock, Key(name)))
}

// MissingPath returns the designated missing-texture path.
func (r *Resolver) MissingPath() string {
	return r.join(MissingFile)
}

// Relative strips the base path from a resolved path, returning the asset
// path inside the asset filesystem. ok is false for paths outside the base.
func (r *Resolver) Relative(p string) (string, bool) {
	rel, ok := strings.CutPrefix(p, r.basePath+"/")
	if !ok {
		return "", false
	}
	return rel, true
}

func (r *Resolver) rel(bucket Bucket, key string) string {
	return path.Join(string(bucket), key+".png")
}

func (r *Resolver) join(rel string) string {
	return r.basePath + "/" + rel
}

func (r *Resolver) exists(rel string) bool {
	info, err := fs.Stat(r.assets, rel)
	return err == nil && !info.IsDir()
}

func otherBucket(b Bucket) Bucket {
	if b == BucketItem {
		return BucketBlock
	}
	return BucketItem
}
