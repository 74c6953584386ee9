package redis

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
)

func (s *Store) key(id int64) string {
	return s.prefix + strconv.FormatInt(id, 10)
}

// encodeRestaurant flattens r into hash fields. Absent values are omitted so
// NUMERIC/GEO filters never match them.
func encodeRestaurant(r restaurant.Restaurant) map[string]string {
	m := map[string]string{
		fieldID:          strconv.FormatInt(r.ID(), 10),
		fieldName:        r.Name(),
		fieldAddress:     r.Address(),
		fieldCategory:    r.Category(),
		fieldCategoryTag: strings.ToLower(r.Category()),
		fieldRating:      strconv.FormatFloat(r.Rating(), 'f', -1, 64),
		fieldReviewCount: strconv.Itoa(r.ReviewCount()),
	}
	if p, ok := r.Location(); ok {
		m[fieldLocation] = strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
	}
	if p := r.Price(); p.Valid {
		m[fieldPrice] = p.Decimal.String()
	}
	if ids := r.CuisineTypeIDs(); len(ids) > 0 {
		m[fieldCuisines] = joinIDs(ids)
	}
	if ids := r.TagIDs(); len(ids) > 0 {
		m[fieldTags] = joinIDs(ids)
	}
	if t := r.OpeningTime(); t != nil {
		m[fieldOpening] = strconv.Itoa(int(*t))
	}
	if t := r.ClosingTime(); t != nil {
		m[fieldClosing] = strconv.Itoa(int(*t))
	}
	return m
}

// decodeRestaurant rebuilds a restaurant from hash fields.
func decodeRestaurant(m map[string]string) (restaurant.Restaurant, bool) {
	id, err := strconv.ParseInt(m[fieldID], 10, 64)
	if err != nil {
		return restaurant.Restaurant{}, false
	}
	a := restaurant.Attributes{
		ID:       id,
		Name:     m[fieldName],
		Address:  m[fieldAddress],
		Category: m[fieldCategory],
	}
	if v, ok := m[fieldLocation]; ok {
		if lonStr, latStr, found := strings.Cut(v, ","); found {
			lon, errLon := strconv.ParseFloat(lonStr, 64)
			lat, errLat := strconv.ParseFloat(latStr, 64)
			if errLon == nil && errLat == nil {
				a.Location = &geo.Point{Lat: lat, Lon: lon}
			}
		}
	}
	if v, ok := m[fieldPrice]; ok {
		if d, err := decimal.NewFromString(v); err == nil {
			a.Price = decimal.NewNullDecimal(d)
		}
	}
	a.Rating, _ = strconv.ParseFloat(m[fieldRating], 64)
	a.ReviewCount, _ = strconv.Atoi(m[fieldReviewCount])
	a.CuisineTypeIDs = splitIDs(m[fieldCuisines])
	a.TagIDs = splitIDs(m[fieldTags])
	a.OpeningTime = parseMinutes(m, fieldOpening)
	a.ClosingTime = parseMinutes(m, fieldClosing)
	return restaurant.Reconstruct(a), true
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	var out []int64
	for _, p := range strings.Split(s, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func parseMinutes(m map[string]string, field string) *restaurant.TimeOfDay {
	v, ok := m[field]
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	t := restaurant.TimeOfDay(n)
	return &t
}
