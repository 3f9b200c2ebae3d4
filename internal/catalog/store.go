package catalog

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Store holds the current catalog snapshot for concurrent readers. Reload
// replaces the snapshot wholesale; a snapshot already handed out is never
// modified.
type Store struct {
	dir     string
	opts    Options
	current atomic.Pointer[Catalog]
}

// NewStore loads dir once and returns a store serving that snapshot.
func NewStore(dir string, opts Options) (*Store, error) {
	s := &Store{dir: dir, opts: opts.withDefaults()}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the content directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Options returns the load options the store was created with.
func (s *Store) Options() Options { return s.opts }

// Reload rereads the content directory. On failure the previous snapshot
// stays in place.
func (s *Store) Reload() error {
	c, err := Load(s.dir, s.opts)
	if err != nil {
		s.opts.Logger.Error("catalog reload failed", zap.String("dir", s.dir), zap.Error(err))
		return err
	}
	prev := s.current.Swap(&c)
	if prev != nil {
		s.opts.Logger.Info("catalog reloaded",
			zap.Int("reviews", c.Len()),
			zap.Int("previous", prev.Len()))
	}
	return nil
}

// Snapshot returns the catalog as of the last successful load.
func (s *Store) Snapshot() Catalog {
	if c := s.current.Load(); c != nil {
		return *c
	}
	return Catalog{Dir: s.dir}
}

// Document reads the full document for slug from the content directory.
func (s *Store) Document(slug string) (Document, error) {
	return ReadDocument(s.dir, slug, s.opts)
}
