package recipe

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/stevept/internal/corpus"
	"github.com/hpungsan/stevept/internal/logging"
	"github.com/hpungsan/stevept/internal/texture"
)

// DefaultTextureBase is the texture URL prefix used when no resolver is given.
const DefaultTextureBase = "/assets/textures"

// Service is the recipe pipeline. It is safe for concurrent use; queries
// read the index built by the last Initialize.
type Service struct {
	source   corpus.Source
	textures *texture.Resolver
	logger   logrus.FieldLogger

	initMu sync.Mutex

	mu  sync.RWMutex
	idx *index
}

// New creates an uninitialized Service. textures and logger may be nil.
func New(source corpus.Source, textures *texture.Resolver, logger logrus.FieldLogger) *Service {
	if textures == nil {
		textures = texture.NewResolver(DefaultTextureBase, nil)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		source:   source,
		textures: textures,
		logger:   logger,
	}
}

// Initialize builds the indices for version. Calling it again with the
// current version is a no-op; a different version rebuilds everything.
//
// A corpus that cannot be loaded leaves the service initialized and empty.
// The failure is logged, not returned.
func (s *Service) Initialize(ctx context.Context, version string) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.RLock()
	current := s.idx
	s.mu.RUnlock()
	if current != nil && current.version == version {
		return
	}

	s.rebuild(ctx, version)
}

// Reload rebuilds the indices for the current version, picking up a corpus
// that was imported or purged since. It is a no-op before Initialize.
func (s *Service) Reload(ctx context.Context) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.RLock()
	current := s.idx
	s.mu.RUnlock()
	if current == nil {
		s.logger.WithField("op", "reload").Warn("recipe service not initialized; call Initialize first")
		return
	}

	s.rebuild(ctx, current.version)
}

// rebuild loads version and swaps in a fresh index. Callers hold initMu.
func (s *Service) rebuild(ctx context.Context, version string) {
	log := s.logger.WithField("version", version)

	var idx *index
	c, err := s.load(ctx, version)
	if err != nil {
		log.WithError(err).Warn("corpus unavailable; recipe service is empty")
		idx = emptyIndex(version)
	} else {
		idx = build(c, log)
	}

	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()

	log.WithFields(logrus.Fields{
		"items":   len(idx.items),
		"recipes": len(idx.recipes),
	}).Info("recipe service initialized")
}

func (s *Service) load(ctx context.Context, version string) (*corpus.Corpus, error) {
	if s.source == nil {
		return nil, corpus.ErrNotFound
	}
	return s.source.Load(ctx, version)
}

// Initialized reports whether Initialize has completed at least once.
func (s *Service) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx != nil
}

// Version returns the version tag of the current index, or "" before
// initialization.
func (s *Service) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return ""
	}
	return s.idx.version
}

// Textures returns the resolver used for texture paths.
func (s *Service) Textures() *texture.Resolver {
	return s.textures
}

// current returns the index, or nil with a warning before initialization.
func (s *Service) current(op string) *index {
	s.mu.RLock()
	idx := s.idx
	s.mu.RUnlock()
	if idx == nil {
		s.logger.WithField("op", op).Warn("recipe service not initialized; call Initialize first")
	}
	return idx
}

// All returns every recipe sorted by display name. The slice is shared and
// must not be modified.
func (s *Service) All() []Recipe {
	idx := s.current("all")
	if idx == nil {
		return []Recipe{}
	}
	return idx.recipes
}

// Search returns recipes whose name, or any material's name or display
// name, contains query (case-insensitive). An empty query matches all.
func (s *Service) Search(query string) []Recipe {
	idx := s.current("search")
	if idx == nil {
		return []Recipe{}
	}

	q := strings.ToLower(query)
	return filter(idx.recipes, func(r Recipe) bool {
		if strings.Contains(strings.ToLower(r.Name), q) {
			return true
		}
		return anyMaterial(r, func(m Material) bool {
			return strings.Contains(strings.ToLower(m.Name), q) ||
				strings.Contains(strings.ToLower(m.DisplayName), q)
		})
	})
}

// ByCategory returns the recipes in a category. Unknown categories yield an
// empty, non-nil slice.
func (s *Service) ByCategory(c Category) []Recipe {
	idx := s.current("by_category")
	if idx == nil {
		return []Recipe{}
	}
	if list, ok := idx.categories[c]; ok {
		return list
	}
	return []Recipe{}
}

// ByID returns the recipe with the given id.
func (s *Service) ByID(id string) (Recipe, bool) {
	idx := s.current("by_id")
	if idx == nil {
		return Recipe{}, false
	}
	i, ok := idx.byID[id]
	if !ok {
		return Recipe{}, false
	}
	return idx.recipes[i], true
}

// ByMaterial returns recipes that use a material. ref is either a numeric
// item id or a case-insensitive substring of the material's name or
// display name.
func (s *Service) ByMaterial(ref string) []Recipe {
	idx := s.current("by_material")
	if idx == nil {
		return []Recipe{}
	}

	if id, ok := parseID(ref); ok {
		return filter(idx.recipes, func(r Recipe) bool {
			return anyMaterial(r, func(m Material) bool { return m.ID == id })
		})
	}

	q := strings.ToLower(ref)
	return filter(idx.recipes, func(r Recipe) bool {
		return anyMaterial(r, func(m Material) bool {
			return strings.Contains(strings.ToLower(m.Name), q) ||
				strings.Contains(strings.ToLower(m.DisplayName), q)
		})
	})
}

// Item looks up an item by numeric id, or by exact case-insensitive name or
// display name.
func (s *Service) Item(ref string) (Item, bool) {
	idx := s.current("item")
	if idx == nil {
		return Item{}, false
	}
	return idx.item(ref)
}

// Categories returns recipe counts for every category in display order.
func (s *Service) Categories() []CategoryCount {
	idx := s.current("categories")
	if idx == nil {
		return []CategoryCount{}
	}
	counts := make([]CategoryCount, 0, len(AllCategories))
	for _, c := range AllCategories {
		counts = append(counts, CategoryCount{Category: c, Count: len(idx.categories[c])})
	}
	return counts
}

// ItemTexture returns the texture path for an item id or name. Names that
// match no item are resolved as bare texture names. It never fails.
func (s *Service) ItemTexture(ref string) string {
	if strings.TrimSpace(ref) == "" {
		return s.textures.MissingPath()
	}

	s.mu.RLock()
	idx := s.idx
	s.mu.RUnlock()

	if idx != nil {
		if item, ok := idx.item(ref); ok {
			return s.textures.ItemPath(item.Name)
		}
	}
	if _, numeric := parseID(ref); numeric {
		return s.textures.MissingPath()
	}
	return s.textures.ItemPath(ref)
}

func (idx *index) item(ref string) (Item, bool) {
	if id, ok := parseID(ref); ok {
		item, found := idx.items[id]
		return item, found
	}
	for _, item := range idx.itemList {
		if strings.EqualFold(item.Name, ref) || strings.EqualFold(item.DisplayName, ref) {
			return item, true
		}
	}
	return Item{}, false
}

// parseID reports whether ref is all ASCII digits and returns its value.
func parseID(ref string) (int, bool) {
	if ref == "" {
		return 0, false
	}
	for _, r := range ref {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(ref)
	if err != nil {
		return 0, false
	}
	return id, true
}

func filter(recipes []Recipe, keep func(Recipe) bool) []Recipe {
	out := []Recipe{}
	for _, r := range recipes {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func anyMaterial(r Recipe, pred func(Material) bool) bool {
	for _, m := range r.Materials {
		if pred(m) {
			return true
		}
	}
	return false
}
