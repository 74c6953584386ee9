package postgis

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/spatial"
)

func TestBuildSelect_Empty(t *testing.T) {
	stmt, args := buildSelect(query.Query{})
	assert.NotContains(t, stmt, "WHERE")
	assert.True(t, strings.HasSuffix(stmt, "ORDER BY r.id"), stmt)
	assert.Empty(t, args)
}

func TestBuildSelect_AllFilters(t *testing.T) {
	q := query.Query{
		Text:           "50%_off",
		Category:       "Cafe",
		CuisineTypeIDs: []int64{1, 2},
		TagIDs:         []int64{7},
		Price: query.PriceBand{
			Min: optional.Some(decimal.RequireFromString("10.00")),
			Max: optional.Some(decimal.RequireFromString("20.50")),
		},
		Spatial: spatial.Native{}.WithinRadius(geo.Point{Lat: 16.047, Lon: 108.206}, 5),
	}
	stmt, args := buildSelect(q)

	assert.Contains(t, stmt, "(r.name ILIKE $1 OR r.address ILIKE $1)")
	assert.Contains(t, stmt, "lower(r.category) = lower($2)")
	assert.Contains(t, stmt, "r.cuisine_type_ids && $3::bigint[]")
	assert.Contains(t, stmt, "r.tag_ids && $4::bigint[]")
	assert.Contains(t, stmt, "r.price IS NOT NULL")
	assert.Contains(t, stmt, "r.price >= $5::numeric")
	assert.Contains(t, stmt, "r.price <= $6::numeric")
	assert.Contains(t, stmt, "ST_DWithin(r.location, ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography, $9)")
	assert.True(t, strings.HasSuffix(stmt, "ORDER BY r.id"), stmt)
	assert.NotContains(t, stmt, "LIMIT")

	require.Len(t, args, 9)
	assert.Equal(t, `%50\%\_off%`, args[0])
	assert.Equal(t, "Cafe", args[1])
	assert.Equal(t, "10", args[4])
	assert.Equal(t, "20.5", args[5])
	assert.Equal(t, 108.206, args[6])
	assert.Equal(t, 16.047, args[7])
	assert.InDelta(t, 5050.0, args[8], 1e-9)
}

func TestBuildSelect_NonASCIIFiltersStayInMemory(t *testing.T) {
	q := query.Query{Text: "PHỞ", Category: "Quán Ăn", TagIDs: []int64{7}}
	stmt, args := buildSelect(q)
	assert.NotContains(t, stmt, "ILIKE")
	assert.NotContains(t, stmt, "lower(")
	assert.Contains(t, stmt, "r.tag_ids && $1::bigint[]")
	require.Len(t, args, 1)

	// The in-memory refine still folds the Unicode term.
	r := restaurant.Reconstruct(restaurant.Attributes{ID: 1, Name: "Phở Hòa", Category: "quán ăn", TagIDs: []int64{7}})
	assert.True(t, q.Matches(r))
}

func TestBuildSelect_HaversinePredicateNotPushedDown(t *testing.T) {
	q := query.Query{Spatial: spatial.Haversine{}.WithinRadius(geo.Point{Lat: 1, Lon: 2}, 5)}
	stmt, args := buildSelect(q)
	assert.NotContains(t, stmt, "ST_DWithin")
	assert.Empty(t, args)
}

type fakeRow []any

func (f fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = f[i].(int64)
		case *string:
			*p = f[i].(string)
		case *float64:
			*p = f[i].(float64)
		case *int:
			*p = f[i].(int)
		default:
			if s, ok := d.(interface{ Scan(any) error }); ok {
				if err := s.Scan(f[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func TestScanRestaurant(t *testing.T) {
	row := fakeRow{
		int64(9), "Pho Hoa", "12 Bach Dang", "Vietnamese",
		108.2, 16.05, "12.50",
		4.5, 120, []byte("{3,1}"), []byte("{}"),
		int64(480), nil,
	}
	r, err := scanRestaurant(row)
	require.NoError(t, err)

	assert.Equal(t, int64(9), r.ID())
	loc, ok := r.Location()
	require.True(t, ok)
	assert.Equal(t, geo.Point{Lat: 16.05, Lon: 108.2}, loc)
	require.True(t, r.Price().Valid)
	assert.Equal(t, "12.5", r.Price().Decimal.String())
	assert.Equal(t, []int64{1, 3}, r.CuisineTypeIDs())
	assert.Nil(t, r.TagIDs())
	require.NotNil(t, r.OpeningTime())
	assert.Equal(t, restaurant.TimeOfDay(480), *r.OpeningTime())
	assert.Nil(t, r.ClosingTime())
}

func TestUpsertArgs(t *testing.T) {
	r := restaurant.Reconstruct(restaurant.Attributes{ID: 1, Name: "x"})
	args := upsertArgs(r)
	require.Len(t, args, 13)
	assert.Equal(t, sql.NullFloat64{}, args[4], "missing location must bind as NULL")
	assert.Equal(t, sql.NullString{}, args[6], "missing price must bind as NULL")
}
