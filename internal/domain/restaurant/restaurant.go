package restaurant

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
)

// MaxNameLength is the maximum restaurant name length.
const MaxNameLength = 256

// Attributes carries every restaurant field; used to build and export a Restaurant.
type Attributes struct {
	ID             int64
	Name           string
	Address        string
	Location       *geo.Point
	Category       string
	CuisineTypeIDs []int64
	TagIDs         []int64
	Price          decimal.NullDecimal
	Rating         float64
	ReviewCount    int
	OpeningTime    *TimeOfDay
	ClosingTime    *TimeOfDay
}

// Restaurant is the read-only restaurant aggregate (immutable value object).
type Restaurant struct {
	attrs Attributes
}

// New validates and creates a Restaurant.
func New(a Attributes) (Restaurant, error) {
	if a.ID <= 0 {
		return Restaurant{}, fmt.Errorf("restaurant id must be positive")
	}
	if strings.TrimSpace(a.Name) == "" {
		return Restaurant{}, fmt.Errorf("restaurant name is required")
	}
	if len(a.Name) > MaxNameLength {
		return Restaurant{}, fmt.Errorf("restaurant name too long (max %d)", MaxNameLength)
	}
	if a.Location != nil && !geo.ValidateCoordinates(a.Location.Lat, a.Location.Lon) {
		return Restaurant{}, fmt.Errorf("restaurant %d: invalid location (lat=%v, lon=%v)",
			a.ID, a.Location.Lat, a.Location.Lon)
	}
	if a.Price.Valid && a.Price.Decimal.IsNegative() {
		return Restaurant{}, fmt.Errorf("restaurant %d: price must not be negative", a.ID)
	}
	if a.Rating < 0 || a.Rating > 5 {
		return Restaurant{}, fmt.Errorf("restaurant %d: rating must be between 0 and 5", a.ID)
	}
	if a.ReviewCount < 0 {
		return Restaurant{}, fmt.Errorf("restaurant %d: review count must not be negative", a.ID)
	}
	return Reconstruct(a), nil
}

// Reconstruct creates a Restaurant without validation (storage hydration).
func Reconstruct(a Attributes) Restaurant {
	a.CuisineTypeIDs = normalizeIDs(a.CuisineTypeIDs)
	a.TagIDs = normalizeIDs(a.TagIDs)
	if a.Location != nil {
		loc := *a.Location
		a.Location = &loc
	}
	return Restaurant{attrs: a}
}

// ID returns the restaurant identifier.
func (r Restaurant) ID() int64 { return r.attrs.ID }

// Name returns the display name.
func (r Restaurant) Name() string { return r.attrs.Name }

// Address returns the street address.
func (r Restaurant) Address() string { return r.attrs.Address }

// Location returns the point location and whether one is set.
func (r Restaurant) Location() (geo.Point, bool) {
	if r.attrs.Location == nil {
		return geo.Point{}, false
	}
	return *r.attrs.Location, true
}

// Category returns the category label.
func (r Restaurant) Category() string { return r.attrs.Category }

// CuisineTypeIDs returns the sorted cuisine type ids.
func (r Restaurant) CuisineTypeIDs() []int64 { return r.attrs.CuisineTypeIDs }

// TagIDs returns the sorted tag ids.
func (r Restaurant) TagIDs() []int64 { return r.attrs.TagIDs }

// Price returns the price, invalid when unknown.
func (r Restaurant) Price() decimal.NullDecimal { return r.attrs.Price }

// Rating returns the cached average rating.
func (r Restaurant) Rating() float64 { return r.attrs.Rating }

// ReviewCount returns the number of reviews.
func (r Restaurant) ReviewCount() int { return r.attrs.ReviewCount }

// OpeningTime returns the opening time, nil when unknown.
func (r Restaurant) OpeningTime() *TimeOfDay { return r.attrs.OpeningTime }

// ClosingTime returns the closing time, nil when unknown.
func (r Restaurant) ClosingTime() *TimeOfDay { return r.attrs.ClosingTime }

// Attributes returns a copy of all fields.
func (r Restaurant) Attributes() Attributes {
	a := r.attrs
	a.CuisineTypeIDs = slices.Clone(a.CuisineTypeIDs)
	a.TagIDs = slices.Clone(a.TagIDs)
	if a.Location != nil {
		loc := *a.Location
		a.Location = &loc
	}
	return a
}

// normalizeIDs returns a sorted, de-duplicated copy; empty input yields nil.
func normalizeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
