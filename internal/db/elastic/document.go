package elastic

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
)

// mapping is the index schema. price is a scaled_float for range filters;
// price_text keeps the exact decimal.
const mapping = `{
  "mappings": {
    "properties": {
      "id":               {"type": "long"},
      "name":             {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "address":          {"type": "text"},
      "category":         {"type": "keyword"},
      "category_key":     {"type": "keyword"},
      "location":         {"type": "geo_point"},
      "price":            {"type": "scaled_float", "scaling_factor": 100},
      "price_text":       {"type": "keyword", "index": false},
      "rating":           {"type": "float"},
      "review_count":     {"type": "integer"},
      "cuisine_type_ids": {"type": "long"},
      "tag_ids":          {"type": "long"},
      "opening_time":     {"type": "integer"},
      "closing_time":     {"type": "integer"}
    }
  }
}`

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type document struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Category       string    `json:"category"`
	CategoryKey    string    `json:"category_key"`
	Location       *geoPoint `json:"location,omitempty"`
	Price          *float64  `json:"price,omitempty"`
	PriceText      string    `json:"price_text,omitempty"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"review_count"`
	CuisineTypeIDs []int64   `json:"cuisine_type_ids,omitempty"`
	TagIDs         []int64   `json:"tag_ids,omitempty"`
	OpeningTime    *int      `json:"opening_time,omitempty"`
	ClosingTime    *int      `json:"closing_time,omitempty"`
}

func toDocument(r restaurant.Restaurant) document {
	d := document{
		ID:             r.ID(),
		Name:           r.Name(),
		Address:        r.Address(),
		Category:       r.Category(),
		CategoryKey:    strings.ToLower(r.Category()),
		Rating:         r.Rating(),
		ReviewCount:    r.ReviewCount(),
		CuisineTypeIDs: r.CuisineTypeIDs(),
		TagIDs:         r.TagIDs(),
		OpeningTime:    minutes(r.OpeningTime()),
		ClosingTime:    minutes(r.ClosingTime()),
	}
	if p, ok := r.Location(); ok {
		d.Location = &geoPoint{Lat: p.Lat, Lon: p.Lon}
	}
	if p := r.Price(); p.Valid {
		f := p.Decimal.InexactFloat64()
		d.Price = &f
		d.PriceText = p.Decimal.String()
	}
	return d
}

func (d document) toRestaurant() restaurant.Restaurant {
	a := restaurant.Attributes{
		ID:             d.ID,
		Name:           d.Name,
		Address:        d.Address,
		Category:       d.Category,
		Rating:         d.Rating,
		ReviewCount:    d.ReviewCount,
		CuisineTypeIDs: d.CuisineTypeIDs,
		TagIDs:         d.TagIDs,
		OpeningTime:    timeOfDay(d.OpeningTime),
		ClosingTime:    timeOfDay(d.ClosingTime),
	}
	if d.Location != nil {
		a.Location = &geo.Point{Lat: d.Location.Lat, Lon: d.Location.Lon}
	}
	switch {
	case d.PriceText != "":
		if p, err := decimal.NewFromString(d.PriceText); err == nil {
			a.Price = decimal.NewNullDecimal(p)
		}
	case d.Price != nil:
		a.Price = decimal.NewNullDecimal(decimal.NewFromFloat(*d.Price))
	}
	return restaurant.Reconstruct(a)
}

func minutes(t *restaurant.TimeOfDay) *int {
	if t == nil {
		return nil
	}
	m := int(*t)
	return &m
}

func timeOfDay(m *int) *restaurant.TimeOfDay {
	if m == nil {
		return nil
	}
	t := restaurant.TimeOfDay(*m)
	return &t
}
