// Package memory is a full-scan restaurant store without spatial support.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

// Store keeps restaurants in an id-ordered slice.
type Store struct {
	mu     sync.RWMutex
	rows   []restaurant.Restaurant
	closed bool
}

// New creates a store seeded with rs.
func New(rs ...restaurant.Restaurant) *Store {
	s := &Store{}
	s.put(rs)
	return s
}

// Capabilities implements db.Store.
func (s *Store) Capabilities() db.Capabilities { return db.Capabilities{} }

// Ping implements db.Pinger.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Close implements db.Store.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Len returns the number of stored restaurants.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// LoadRestaurants implements db.Loader. Existing ids are replaced.
func (s *Store) LoadRestaurants(ctx context.Context, rs []restaurant.Restaurant) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpInsert, Err: db.ErrClosed}
	}
	s.put(rs)
	return nil
}

func (s *Store) put(rs []restaurant.Restaurant) {
	byID := make(map[int64]restaurant.Restaurant, len(s.rows)+len(rs))
	for _, r := range s.rows {
		byID[r.ID()] = r
	}
	for _, r := range rs {
		byID[r.ID()] = r
	}
	rows := make([]restaurant.Restaurant, 0, len(byID))
	for _, r := range byID {
		rows = append(rows, r)
	}
	slices.SortFunc(rows, func(a, b restaurant.Restaurant) int { return cmp.Compare(a.ID(), b.ID()) })
	s.rows = rows
}

// FindRestaurants scans every row. A spatial predicate, if still present, is
// evaluated in memory.
func (s *Store) FindRestaurants(ctx context.Context, q query.Query) ([]db.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpQuery, Err: db.ErrClosed}
	}

	var out []db.Candidate
	for i, r := range s.rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &db.Error{Op: db.OpQuery, Err: err}
			}
		}
		if !q.Matches(r) {
			continue
		}
		c := db.Candidate{Restaurant: r}
		if q.Spatial != nil {
			d, ok := q.Spatial.Contains(r)
			if !ok {
				continue
			}
			c.DistanceKm = optional.Some(d)
		}
		out = append(out, c)
	}
	return out, nil
}
