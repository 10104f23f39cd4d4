package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
	"github.com/noah-isme/remui-admin-api/internal/repository"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

const testWindow = 30 * 24 * time.Hour

func fixedClock() time.Time { return testNow }

// countingStore wraps a memory store and counts every access.
type countingStore struct {
	inner   RecordStore
	mu      sync.Mutex
	counts  int
	selects int
	err     error
}

func newCountingStore(records ...models.Record) *countingStore {
	mem := repository.NewMemoryStore()
	mem.Load("users", records...)
	return &countingStore{inner: mem}
}

func (s *countingStore) Count(ctx context.Context, sel query.Select) (int, error) {
	s.mu.Lock()
	s.counts++
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.inner.Count(ctx, sel)
}

func (s *countingStore) Select(ctx context.Context, sel query.Select) ([]models.Record, error) {
	s.mu.Lock()
	s.selects++
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.inner.Select(ctx, sel)
}

func (s *countingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts + s.selects
}

// fixedStore returns the same rows for every select.
type fixedStore struct {
	rows []models.Record
}

func (s fixedStore) Count(context.Context, query.Select) (int, error) { return len(s.rows), nil }
func (s fixedStore) Select(context.Context, query.Select) ([]models.Record, error) {
	return s.rows, nil
}

// memoryCache is a CacheRepository backed by a map.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	raw, ok := c.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

var errStoreDown = errors.New("dial tcp: connection refused")

func alice() models.Record {
	return models.Record{"id": int64(3), "username": "alice01", "email": "alice@x.com", "firstname": "Alice", "lastname": "Smith",
		"city": "Austin", "suspended": int64(0), "deleted": int64(0), "timecreated": testNow.Add(-400 * 24 * time.Hour).Unix(),
		"lastaccess": testNow.Add(-48 * time.Hour).Unix()}
}

func bob() models.Record {
	return models.Record{"id": int64(4), "username": "bob02", "email": "bob@x.com", "firstname": "Bob", "lastname": "Jones",
		"city": "Boston", "suspended": int64(1), "deleted": int64(0), "timecreated": testNow.Add(-300 * 24 * time.Hour).Unix(),
		"lastaccess": int64(0)}
}

func manyUsers(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{
			"id":          int64(i + 3),
			"username":    fmt.Sprintf("user%03d", i),
			"email":       fmt.Sprintf("user%03d@x.com", i),
			"firstname":   "User",
			"lastname":    fmt.Sprintf("N%03d", i),
			"city":        "Town",
			"suspended":   int64(0),
			"deleted":     int64(0),
			"timecreated": testNow.Add(-time.Duration(i) * time.Hour).Unix(),
			"lastaccess":  testNow.Add(-time.Duration(i%7) * time.Hour).Unix(),
		}
	}
	return out
}

func testBuilder() *entity.Builder {
	return entity.NewBuilder(entity.DefaultLimits(), nil)
}

func usernames(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.String("username")
	}
	return out
}
