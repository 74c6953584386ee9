package db

import (
	"context"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

// Store is the restaurant storage facade implemented by every backend.
type Store interface {
	Pinger
	Finder
	Capabilities() Capabilities
	Close()
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Finder returns every restaurant matching q. The result is never truncated.
//
// When q carries a spatial predicate with PushDown set, the store evaluates it
// and annotates each candidate with its distance. Stores without native spatial
// support receive queries with the spatial predicate already stripped.
type Finder interface {
	FindRestaurants(ctx context.Context, q query.Query) ([]Candidate, error)
}

// Loader bulk-writes restaurants into a store.
type Loader interface {
	LoadRestaurants(ctx context.Context, rs []restaurant.Restaurant) error
}

// Capabilities advertises optional store features.
type Capabilities struct {
	// NativeSpatial is set when the store can evaluate radius predicates itself.
	NativeSpatial bool
}

// Candidate is a restaurant returned by a store, with distance when computed.
type Candidate struct {
	Restaurant restaurant.Restaurant
	DistanceKm optional.Value[float64]
}
