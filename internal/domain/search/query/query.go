// Package query holds the storage-independent restaurant predicate set.
package query

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
)

// SpatialPredicate restricts results to restaurants within a radius of a point.
// Contains is the reference semantics; PushDown tells stores with native
// spatial support to evaluate it themselves.
type SpatialPredicate interface {
	Center() geo.Point
	RadiusKm() float64
	PushDown() bool
	Contains(r restaurant.Restaurant) (distanceKm float64, ok bool)
}

// PriceBand is an inclusive price range; either bound may be absent.
type PriceBand struct {
	Min optional.Value[decimal.Decimal]
	Max optional.Value[decimal.Decimal]
}

// IsSet reports whether any bound is present.
func (b PriceBand) IsSet() bool { return b.Min.IsSet() || b.Max.IsSet() }

// Contains reports whether price lies inside the band. Unknown prices never match.
func (b PriceBand) Contains(price decimal.NullDecimal) bool {
	if !price.Valid {
		return false
	}
	if lo, ok := b.Min.Get(); ok && price.Decimal.LessThan(lo) {
		return false
	}
	if hi, ok := b.Max.Get(); ok && price.Decimal.GreaterThan(hi) {
		return false
	}
	return true
}

// Query is a conjunction of optional predicates. Empty fields do not filter.
type Query struct {
	Text           string // case-insensitive substring of name or address
	Category       string // case-insensitive exact match
	CuisineTypeIDs []int64
	TagIDs         []int64
	Price          PriceBand
	Spatial        SpatialPredicate
}

// HasSpatial reports whether a spatial predicate is present.
func (q Query) HasSpatial() bool { return q.Spatial != nil }

// WithoutSpatial returns a copy of q with the spatial predicate removed.
func (q Query) WithoutSpatial() Query {
	q.Spatial = nil
	return q
}

// Matches evaluates every non-spatial predicate against r.
func (q Query) Matches(r restaurant.Restaurant) bool {
	if q.Text != "" && !ContainsFold(r.Name(), q.Text) && !ContainsFold(r.Address(), q.Text) {
		return false
	}
	if q.Category != "" && !strings.EqualFold(r.Category(), q.Category) {
		return false
	}
	if len(q.CuisineTypeIDs) > 0 && !Intersects(r.CuisineTypeIDs(), q.CuisineTypeIDs) {
		return false
	}
	if len(q.TagIDs) > 0 && !Intersects(r.TagIDs(), q.TagIDs) {
		return false
	}
	if q.Price.IsSet() && !q.Price.Contains(r.Price()) {
		return false
	}
	return true
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Intersects reports whether two id sets share at least one element.
func Intersects(a, b []int64) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for _, id := range a {
		if slices.Contains(b, id) {
			return true
		}
	}
	return false
}
