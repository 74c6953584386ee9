// Package spatial builds radius predicates and distance projections over restaurants.
//
// Two adapters exist. Native marks its predicates for push-down so a store with
// a spatial index evaluates them; Haversine leaves evaluation to the caller.
// Both share the same containment rule, so result sets are identical.
package spatial

import (
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

// Adapter produces spatial predicates for the query builder.
type Adapter interface {
	WithinRadius(center geo.Point, radiusKm float64) query.SpatialPredicate
	DistanceKm(center geo.Point, r restaurant.Restaurant) (float64, bool)
	Name() string
}

// New selects the adapter for a store. nativeCapable should come from the
// store's capability flag, never from its concrete type.
func New(nativeCapable bool) Adapter {
	if nativeCapable {
		return Native{}
	}
	return Haversine{}
}

// DistanceKm returns the great-circle distance from center to r.
// ok is false when r has no location.
func DistanceKm(center geo.Point, r restaurant.Restaurant) (float64, bool) {
	loc, ok := r.Location()
	if !ok {
		return 0, false
	}
	return center.DistanceKm(loc), true
}

// Native evaluates radius predicates inside the store.
type Native struct{}

// WithinRadius returns a push-down predicate.
func (Native) WithinRadius(center geo.Point, radiusKm float64) query.SpatialPredicate {
	return &Radius{center: center, radiusKm: radiusKm, pushDown: true}
}

// DistanceKm implements Adapter.
func (Native) DistanceKm(center geo.Point, r restaurant.Restaurant) (float64, bool) {
	return DistanceKm(center, r)
}

// Name implements Adapter.
func (Native) Name() string { return "native" }

// Haversine evaluates radius predicates in memory.
type Haversine struct{}

// WithinRadius returns an in-memory predicate.
func (Haversine) WithinRadius(center geo.Point, radiusKm float64) query.SpatialPredicate {
	return &Radius{center: center, radiusKm: radiusKm}
}

// DistanceKm implements Adapter.
func (Haversine) DistanceKm(center geo.Point, r restaurant.Restaurant) (float64, bool) {
	return DistanceKm(center, r)
}

// Name implements Adapter.
func (Haversine) Name() string { return "haversine" }

// Radius is a "within radiusKm of center" predicate.
type Radius struct {
	center   geo.Point
	radiusKm float64
	pushDown bool
}

// Center returns the search origin.
func (p *Radius) Center() geo.Point { return p.center }

// RadiusKm returns the search radius.
func (p *Radius) RadiusKm() float64 { return p.radiusKm }

// PushDown reports whether a native store should evaluate the predicate.
func (p *Radius) PushDown() bool { return p.pushDown }

// BoundingBox returns a box enclosing the search circle, for index prefilters.
func (p *Radius) BoundingBox() geo.BoundingBox { return p.center.BoundingBox(p.radiusKm) }

// Contains reports whether r lies within the radius (inclusive) and its distance.
func (p *Radius) Contains(r restaurant.Restaurant) (float64, bool) {
	d, ok := DistanceKm(p.center, r)
	if !ok || d > p.radiusKm {
		return 0, false
	}
	return d, true
}
