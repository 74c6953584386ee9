package search

import (
	"slices"
	"strings"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/criteria"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/spatial"
)

// Build composes criteria and an optional origin into a query.
// It is pure: the same input always yields an equal query.
func Build(c criteria.Criteria, loc *geo.NormalizedLocation, adapter spatial.Adapter) query.Query {
	q := query.Query{
		Text:           strings.TrimSpace(c.Term.OrElse("")),
		Category:       strings.TrimSpace(c.Category.OrElse("")),
		CuisineTypeIDs: normalizeIDs(c.CuisineTypeIDs),
		TagIDs:         normalizeIDs(c.TagIDs),
		Price:          query.PriceBand{Min: c.MinPrice, Max: c.MaxPrice},
	}
	if loc != nil && adapter != nil {
		q.Spatial = adapter.WithinRadius(loc.Point, loc.RadiusKm)
	}
	return q
}

// unsatisfiable reports whether q can never match, so the store can be skipped.
func unsatisfiable(q query.Query) bool {
	lo, okLo := q.Price.Min.Get()
	hi, okHi := q.Price.Max.Get()
	return okLo && okHi && lo.GreaterThan(hi)
}

// normalizeIDs returns a sorted copy of ids without duplicates; nil when empty.
func normalizeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
