package dataset

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
)

// Record is one restaurant in a JSON dataset file.
type Record struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Address        string           `json:"address"`
	Latitude       *float64         `json:"latitude"`
	Longitude      *float64         `json:"longitude"`
	Category       string           `json:"category"`
	CuisineTypeIDs []int64          `json:"cuisine_type_ids"`
	TagIDs         []int64          `json:"tag_ids"`
	Price          *decimal.Decimal `json:"price"`
	Rating         float64          `json:"rating"`
	ReviewCount    int              `json:"review_count"`
	OpeningTime    string           `json:"opening_time"`
	ClosingTime    string           `json:"closing_time"`
}

// Restaurant validates the record and converts it.
func (r Record) Restaurant() (restaurant.Restaurant, error) {
	a := restaurant.Attributes{
		ID:             r.ID,
		Name:           r.Name,
		Address:        r.Address,
		Category:       r.Category,
		CuisineTypeIDs: r.CuisineTypeIDs,
		TagIDs:         r.TagIDs,
		Rating:         r.Rating,
		ReviewCount:    r.ReviewCount,
	}

	switch {
	case r.Latitude != nil && r.Longitude != nil:
		a.Location = &geo.Point{Lat: *r.Latitude, Lon: *r.Longitude}
	case r.Latitude != nil || r.Longitude != nil:
		return restaurant.Restaurant{}, fmt.Errorf("restaurant %d: latitude and longitude must be set together", r.ID)
	}

	if r.Price != nil {
		a.Price = decimal.NewNullDecimal(*r.Price)
	}

	var err error
	if a.OpeningTime, err = parseTime(r.OpeningTime); err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("restaurant %d: opening_time: %w", r.ID, err)
	}
	if a.ClosingTime, err = parseTime(r.ClosingTime); err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("restaurant %d: closing_time: %w", r.ID, err)
	}

	return restaurant.New(a)
}

func parseTime(s string) (*restaurant.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	t, err := restaurant.ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
