package tables

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/graphport/internal/layout"
	"golang.org/x/sync/singleflight"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// Dir is the raw table directory, used to name the expected file of a
	// label that has none.
	Dir string
	// Paths maps labels to raw files, usually from Discovery.
	Paths map[string]string
	// Delimiter separates fields in raw files.
	Delimiter rune
	// RowBudget bounds how many rows stay cached. Zero disables caching.
	RowBudget int
}

// Store hands out loaded raw tables. Tables are cached up to a row budget so
// the node and relationship stages share one load; an evicted table is read
// again, which yields the same rows and ids.
type Store struct {
	opts  StoreOptions
	cache otter.Cache[string, *Table]
	group singleflight.Group

	cached bool
}

// NewStore creates a store.
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	s := &Store{opts: opts}

	if opts.RowBudget > 0 {
		cache, err := otter.MustBuilder[string, *Table](opts.RowBudget).
			Cost(func(_ string, t *Table) uint32 {
				return rowCost(t)
			}).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build table cache: %w", err)
		}
		s.cache = cache
		s.cached = true
	}

	return s, nil
}

func rowCost(t *Table) uint32 {
	n := uint64(t.Len()) + 1
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

// Has reports whether a raw file is known for label.
func (s *Store) Has(label string) bool {
	_, ok := s.opts.Paths[label]
	return ok
}

// Path returns the raw file of label.
func (s *Store) Path(label string) (string, bool) {
	p, ok := s.opts.Paths[label]
	return p, ok
}

// Labels returns the number of known raw files.
func (s *Store) Labels() int {
	return len(s.opts.Paths)
}

// Table returns the loaded raw table of label. Concurrent callers asking for
// the same label share one read.
func (s *Store) Table(label string) (*Table, error) {
	if s.cached {
		if t, ok := s.cache.Get(label); ok {
			return t, nil
		}
	}

	path, ok := s.opts.Paths[label]
	if !ok {
		return nil, &layout.IOError{
			Op:   "open",
			Path: filepath.Join(s.opts.Dir, label+".csv"),
			Err:  os.ErrNotExist,
		}
	}

	v, err, _ := s.group.Do(label, func() (interface{}, error) {
		t, err := Read(path, label, s.opts.Delimiter)
		if err != nil {
			return nil, err
		}
		if s.cached {
			// Tables above the budget are rejected and simply not cached.
			s.cache.Set(label, t)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Close releases the cache.
func (s *Store) Close() {
	if s.cached {
		s.cache.Close()
	}
}
