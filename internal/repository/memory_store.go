package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
)

// MemoryStore evaluates selects against records held in process. Records
// are stored per collection under their logical field names.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]models.Record
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string][]models.Record{}}
}

// Load appends records to a collection.
func (s *MemoryStore) Load(collection string, records ...models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.collections[collection] = append(s.collections[collection], r.Clone())
	}
}

// LoadAll appends every collection of a seed.
func (s *MemoryStore) LoadAll(collections map[string][]models.Record) {
	for name, records := range collections {
		s.Load(name, records...)
	}
}

// Count returns the number of records matching the select's predicate.
func (s *MemoryStore) Count(ctx context.Context, sel query.Select) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s.match(sel)), nil
}

// Select returns the ordered, paged and projected records of the select.
func (s *MemoryStore) Select(ctx context.Context, sel query.Select) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched := s.match(sel)
	sort.SliceStable(matched, func(i, j int) bool {
		return query.Less(sel.Order, matched[i], matched[j])
	})

	if sel.Offset >= len(matched) {
		return []models.Record{}, nil
	}
	matched = matched[sel.Offset:]
	if sel.Limit > 0 && sel.Limit < len(matched) {
		matched = matched[:sel.Limit]
	}

	out := make([]models.Record, len(matched))
	for i, r := range matched {
		out[i] = query.Project(sel, r)
	}
	return out, nil
}

func (s *MemoryStore) match(sel query.Select) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Record
	for _, r := range s.collections[sel.Source.Name] {
		if sel.Where == nil || sel.Where.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
