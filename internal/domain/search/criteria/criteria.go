// Package criteria defines the caller-facing restaurant search input.
package criteria

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/sortkey"
)

// Paging limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Criteria enumerates every recognized search option. Absent fields impose no filter.
type Criteria struct {
	Term     optional.Value[string]
	Category optional.Value[string]

	// Location: explicit coordinates win over Address.
	Address    optional.Value[string]
	Lat        optional.Value[float64]
	Lng        optional.Value[float64]
	RadiusText optional.Value[string] // kilometers, as supplied by the caller

	CuisineTypeIDs []int64
	TagIDs         []int64

	MinPrice optional.Value[decimal.Decimal]
	MaxPrice optional.Value[decimal.Decimal]

	Sort optional.Value[sortkey.Key]

	Page     int
	PageSize optional.Value[int] // absent takes the configured default
}

// RadiusKm formats a numeric radius for Criteria.RadiusText.
func RadiusKm(km float64) optional.Value[string] {
	return optional.Some(strconv.FormatFloat(km, 'f', -1, 64))
}

// HasLocation reports whether any location-related field was supplied.
func (c *Criteria) HasLocation() bool {
	if addr, ok := c.Address.Get(); ok && strings.TrimSpace(addr) != "" {
		return true
	}
	return c.Lat.IsSet() || c.Lng.IsSet() || c.RadiusText.IsSet()
}

// HasPriceFilter reports whether a price bound was supplied.
func (c *Criteria) HasPriceFilter() bool {
	return c.MinPrice.IsSet() || c.MaxPrice.IsSet()
}
