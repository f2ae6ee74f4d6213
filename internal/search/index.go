package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/hitorimeshi/hitori-server/internal/domain"
)

// Index wraps a Bleve index of restaurants.
// All methods are safe for concurrent use; Rebuild holds the write lock.
type Index struct {
	index  bleve.Index
	path   string // empty for in-memory indexes
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	Path   string       // Directory for the index; the index lives in {Path}/restaurants.bleve
	Logger *slog.Logger // Uses a discard logger if nil
}

// mappingVersion is bumped whenever the mapping changes, forcing a rebuild on startup.
const mappingVersion = "1"

// NewIndex opens the index under opts.Path, or creates it.
// An index with an outdated mapping or that fails to open is removed and recreated.
// The returned bool reports whether the index is new and needs to be filled.
func NewIndex(opts Options) (*Index, bool, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return nil, false, fmt.Errorf("create index directory: %w", err)
	}

	indexPath := filepath.Join(opts.Path, "restaurants.bleve")
	versionPath := filepath.Join(opts.Path, "restaurants.version")

	var index bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(version) != mappingVersion:
			logger.Info("search index mapping changed, will rebuild",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open existing index, will recreate",
					"path", indexPath,
					"error", err,
				)
			}
		}
	}

	if index != nil {
		logger.Info("opened existing search index", "path", indexPath)
		return &Index{index: index, path: indexPath, logger: logger}, false, nil
	}

	if err := os.RemoveAll(indexPath); err != nil {
		return nil, false, fmt.Errorf("remove old index: %w", err)
	}
	index, err := bleve.New(indexPath, buildIndexMapping())
	if err != nil {
		return nil, false, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("failed to write search version file", "error", err)
	}
	logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)

	return &Index{index: index, path: indexPath, logger: logger}, true, nil
}

// NewInMemory creates an index that is never written to disk.
func NewInMemory(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create in-memory index: %w", err)
	}
	return &Index{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Shutdown implements do.Shutdowner.
func (s *Index) Shutdown() error {
	return s.Close()
}

// IndexRestaurant adds or replaces one restaurant.
func (s *Index) IndexRestaurant(r *domain.Restaurant) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := FromRestaurant(r)
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexRestaurants indexes restaurants in batches of 500.
func (s *Index) IndexRestaurants(restaurants []*domain.Restaurant) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexBatched(restaurants)
}

func (s *Index) indexBatched(restaurants []*domain.Restaurant) error {
	const batchSize = 500

	for i := 0; i < len(restaurants); i += batchSize {
		end := min(i+batchSize, len(restaurants))

		batch := s.index.NewBatch()
		for _, r := range restaurants[i:end] {
			if r == nil {
				continue
			}
			doc := FromRestaurant(r)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the number of indexed restaurants.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with restaurants.
func (s *Index) Rebuild(restaurants []*domain.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	if err := s.indexBatched(restaurants); err != nil {
		return err
	}

	s.logger.Info("rebuilt search index", "path", s.path, "documents", len(restaurants))
	return nil
}
