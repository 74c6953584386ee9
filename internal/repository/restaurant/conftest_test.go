package restaurant

import (
	"context"
	"testing"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	domrest "github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	native bool
	findFn func(ctx context.Context, q query.Query) ([]db.Candidate, error)
	loadFn func(ctx context.Context, rs []domrest.Restaurant) error
	lastQ  query.Query
}

func (m *mockStore) FindRestaurants(ctx context.Context, q query.Query) ([]db.Candidate, error) {
	m.lastQ = q
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) LoadRestaurants(ctx context.Context, rs []domrest.Restaurant) error {
	if m.loadFn != nil {
		return m.loadFn(ctx, rs)
	}
	return nil
}

func (m *mockStore) Capabilities() db.Capabilities {
	return db.Capabilities{NativeSpatial: m.native}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func located(id int64, lat, lon float64) domrest.Restaurant {
	p := geo.Point{Lat: lat, Lon: lon}
	return domrest.Reconstruct(domrest.Attributes{ID: id, Name: "r", Location: &p})
}
