package restaurant

import (
	"context"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
	domrest "github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/result"
)

// store is the consumer interface for restaurant reads and bulk writes (ISP).
type store interface {
	FindRestaurants(ctx context.Context, q query.Query) ([]db.Candidate, error)
	LoadRestaurants(ctx context.Context, rs []domrest.Restaurant) error
	Capabilities() db.Capabilities
}

// Repo implements usecase/search.Repository and usecase/dataset.Repository.
type Repo struct {
	store store
}

// New creates a restaurant repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Find returns every restaurant matching q.
//
// A spatial predicate is sent to the store only when it asks for push-down and
// the store advertises native support. Otherwise the store sees the query
// without it and the predicate is applied here.
func (r *Repo) Find(ctx context.Context, q query.Query) ([]result.Row, error) {
	pushed := q.Spatial != nil && q.Spatial.PushDown() && r.store.Capabilities().NativeSpatial
	if q.Spatial == nil || pushed {
		cands, err := r.store.FindRestaurants(ctx, q)
		if err != nil {
			return nil, domain.NewStorageError("find restaurants", err)
		}
		return toRows(cands, q.Spatial), nil
	}

	// The store can't narrow by location, so it must return every other match.
	cands, err := r.store.FindRestaurants(ctx, q.WithoutSpatial())
	if err != nil {
		return nil, domain.NewStorageError("find restaurants", err)
	}
	rows := make([]result.Row, 0, len(cands))
	for _, c := range cands {
		d, ok := q.Spatial.Contains(c.Restaurant)
		if !ok {
			continue
		}
		rows = append(rows, result.NewRow(c.Restaurant).WithDistance(d))
	}
	return rows, nil
}

// Save bulk-writes restaurants.
func (r *Repo) Save(ctx context.Context, rs []domrest.Restaurant) error {
	if len(rs) == 0 {
		return nil
	}
	if err := r.store.LoadRestaurants(ctx, rs); err != nil {
		return domain.NewStorageError("load restaurants", err)
	}
	return nil
}

func toRows(cands []db.Candidate, spatial query.SpatialPredicate) []result.Row {
	rows := make([]result.Row, 0, len(cands))
	for _, c := range cands {
		row := result.Row{Restaurant: c.Restaurant, DistanceKm: c.DistanceKm}
		if spatial != nil && !row.DistanceKm.IsSet() {
			d, ok := spatial.Contains(c.Restaurant)
			if !ok {
				continue
			}
			row = row.WithDistance(d)
		}
		rows = append(rows, row)
	}
	return rows
}
