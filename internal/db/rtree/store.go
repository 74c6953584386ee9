// Package rtree is an in-process restaurant store backed by an R-tree spatial index.
package rtree

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

const (
	tolerance   = 1e-9
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// item adapts a located restaurant to rtreego.Spatial. Coordinates are (lat, lon).
type item struct {
	r    restaurant.Restaurant
	rect *rtreego.Rect
}

func (it *item) Bounds() *rtreego.Rect { return it.rect }

// Store indexes located restaurants in an R-tree and keeps the rest in a side list.
type Store struct {
	mu     sync.RWMutex
	tree   *rtreego.Rtree
	byID   map[int64]restaurant.Restaurant
	items  map[int64]*item
	closed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tree:  rtreego.NewTree(dimensions, minChildren, maxChildren),
		byID:  make(map[int64]restaurant.Restaurant),
		items: make(map[int64]*item),
	}
}

// Capabilities implements db.Store.
func (s *Store) Capabilities() db.Capabilities {
	return db.Capabilities{NativeSpatial: true}
}

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

// Size returns the number of stored restaurants.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
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

	for _, r := range rs {
		if old, ok := s.items[r.ID()]; ok {
			s.tree.Delete(old)
			delete(s.items, r.ID())
		}
		s.byID[r.ID()] = r
		loc, ok := r.Location()
		if !ok {
			continue
		}
		it := &item{r: r, rect: rtreego.Point{loc.Lat, loc.Lon}.ToRect(tolerance)}
		s.tree.Insert(it)
		s.items[r.ID()] = it
	}
	return nil
}

// FindRestaurants uses the index for push-down spatial predicates and a full
// scan otherwise. Results are ordered by id.
func (s *Store) FindRestaurants(ctx context.Context, q query.Query) ([]db.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpQuery, Err: db.ErrClosed}
	}
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	var pool []restaurant.Restaurant
	if q.Spatial != nil && q.Spatial.PushDown() {
		hits, err := s.searchBox(q.Spatial.Center().BoundingBox(q.Spatial.RadiusKm()))
		if err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		pool = hits
	} else {
		pool = make([]restaurant.Restaurant, 0, len(s.byID))
		for _, r := range s.byID {
			pool = append(pool, r)
		}
	}
	slices.SortFunc(pool, func(a, b restaurant.Restaurant) int { return cmp.Compare(a.ID(), b.ID()) })

	var out []db.Candidate
	for _, r := range pool {
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

// searchBox returns restaurants whose location lies inside box. Caller holds mu.
func (s *Store) searchBox(box geo.BoundingBox) ([]restaurant.Restaurant, error) {
	bounds, err := rtreego.NewRect(
		rtreego.Point{box.MinLat, box.MinLon},
		[]float64{box.MaxLat - box.MinLat, box.MaxLon - box.MinLon},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	hits := s.tree.SearchIntersect(bounds)
	out := make([]restaurant.Restaurant, 0, len(hits))
	for _, h := range hits {
		it, ok := h.(*item)
		if !ok {
			continue
		}
		loc, _ := it.r.Location()
		if box.Contains(loc) {
			out = append(out, it.r)
		}
	}
	return out, nil
}
