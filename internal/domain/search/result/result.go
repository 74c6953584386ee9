// Package result holds search rows and the paged response.
package result

import (
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/sortkey"
)

// Row is a single search hit. DistanceKm is set only when the query had an origin.
type Row struct {
	Restaurant restaurant.Restaurant
	DistanceKm optional.Value[float64]
}

// NewRow creates a row without distance.
func NewRow(r restaurant.Restaurant) Row {
	return Row{Restaurant: r}
}

// WithDistance returns a copy of the row annotated with distance in km.
func (r Row) WithDistance(km float64) Row {
	r.DistanceKm = optional.Some(km)
	return r
}

// Page is one page of ranked rows plus paging metadata.
type Page struct {
	Rows       []Row
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
	Sort       sortkey.Key
	// Origin is the resolved location when location criteria were supplied.
	Origin *geo.NormalizedLocation
}

// HasNext reports whether a page follows this one.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }
