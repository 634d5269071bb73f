// Package memory provides an in-process document store. It backs tests and
// is the default backend when nothing else is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"bilancio/internal/docstore"
)

type Store struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// Read returns a copy of the stored document.
func (s *Store) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[path]
	if !ok {
		return nil, docstore.ErrNotExist
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores a copy so later caller mutations cannot leak in.
func (s *Store) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.docs[path] = stored
	return nil
}

// List returns sorted document ids under prefix.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for path := range s.docs {
		if strings.HasPrefix(path, prefix) {
			ids = append(ids, docstore.IDFromPath(prefix, path))
		}
	}
	sort.Strings(ids)
	return ids, nil
}
