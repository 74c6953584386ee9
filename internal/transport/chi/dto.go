package chi

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/result"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SearchResponse is the JSON body of GET /api/v1/restaurants.
type SearchResponse struct {
	Items      []RestaurantItem `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
	Sort       string           `json:"sort"`
	Origin     *Origin          `json:"origin,omitempty"`
}

// Origin is the resolved search location.
type Origin struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	Defaulted bool    `json:"defaulted"`
}

// RestaurantItem is one search hit.
type RestaurantItem struct {
	ID             int64                 `json:"id"`
	Name           string                `json:"name"`
	Address        string                `json:"address"`
	Category       string                `json:"category"`
	Latitude       *float64              `json:"latitude"`
	Longitude      *float64              `json:"longitude"`
	Price          decimal.NullDecimal   `json:"price"`
	Rating         float64               `json:"rating"`
	ReviewCount    int                   `json:"review_count"`
	CuisineTypeIDs []int64               `json:"cuisine_type_ids"`
	TagIDs         []int64               `json:"tag_ids"`
	OpeningTime    *restaurant.TimeOfDay `json:"opening_time"`
	ClosingTime    *restaurant.TimeOfDay `json:"closing_time"`
	DistanceKm     *float64              `json:"distance_km,omitempty"`
}

func pageToResponse(p result.Page) SearchResponse {
	items := make([]RestaurantItem, len(p.Rows))
	for i, row := range p.Rows {
		items[i] = rowToItem(row)
	}

	resp := SearchResponse{
		Items:      items,
		TotalCount: p.TotalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext(),
		Sort:       string(p.Sort),
	}
	if o := p.Origin; o != nil {
		resp.Origin = &Origin{
			Address:   o.Address,
			Latitude:  o.Latitude(),
			Longitude: o.Longitude(),
			RadiusKm:  o.RadiusKm,
			Defaulted: o.Defaulted,
		}
	}
	return resp
}

func rowToItem(row result.Row) RestaurantItem {
	r := row.Restaurant
	item := RestaurantItem{
		ID:             r.ID(),
		Name:           r.Name(),
		Address:        r.Address(),
		Category:       r.Category(),
		Price:          r.Price(),
		Rating:         r.Rating(),
		ReviewCount:    r.ReviewCount(),
		CuisineTypeIDs: nonNil(r.CuisineTypeIDs()),
		TagIDs:         nonNil(r.TagIDs()),
		OpeningTime:    r.OpeningTime(),
		ClosingTime:    r.ClosingTime(),
		DistanceKm:     row.DistanceKm.Ptr(),
	}
	if loc, ok := r.Location(); ok {
		item.Latitude = &loc.Lat
		item.Longitude = &loc.Lon
	}
	if item.DistanceKm != nil {
		d := math.Round(*item.DistanceKm*1000) / 1000
		item.DistanceKm = &d
	}
	return item
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
