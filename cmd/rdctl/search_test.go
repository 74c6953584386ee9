package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/result"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/sortkey"
)

func TestPriceFlag(t *testing.T) {
	v, err := priceFlag("min-price", "")
	require.NoError(t, err)
	assert.False(t, v.IsSet())

	v, err = priceFlag("min-price", "12.50")
	require.NoError(t, err)
	got, ok := v.Get()
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("12.5")))

	_, err = priceFlag("max-price", "cheap")
	assert.ErrorContains(t, err, "--max-price")
}

func TestSearchFlags_PageSize(t *testing.T) {
	parse := func(args ...string) optional.Value[int] {
		t.Helper()
		var f searchFlags
		cmd := &cobra.Command{}
		cmd.Flags().IntVarP(&f.pageSize, "page-size", "n", 0, "")
		require.NoError(t, cmd.ParseFlags(args))
		c, err := f.criteria(cmd)
		require.NoError(t, err)
		return c.PageSize
	}

	assert.False(t, parse().IsSet())
	assert.Equal(t, optional.Some(0), parse("-n", "0"))
	assert.Equal(t, optional.Some(30), parse("--page-size", "30"))
}

func TestPrintPage(t *testing.T) {
	origin := geo.NormalizedLocation{
		Address:  "Current location",
		Point:    geo.Point{Lat: 16.0544, Lon: 108.2022},
		RadiusKm: 5,
	}
	page := result.Page{
		Rows: []result.Row{
			result.NewRow(restaurant.Reconstruct(restaurant.Attributes{
				ID: 7, Name: "Pho Hoa", Category: "Vietnamese", Rating: 4.5,
				Price: decimal.NewNullDecimal(decimal.RequireFromString("45000")),
			})).WithDistance(1.234),
			result.NewRow(restaurant.Reconstruct(restaurant.Attributes{ID: 8, Name: "Banh Mi"})),
		},
		TotalCount: 2,
		Page:       1,
		PageSize:   20,
		TotalPages: 1,
		Sort:       sortkey.Distance,
		Origin:     &origin,
	}

	var buf bytes.Buffer
	printPage(&buf, page)
	out := buf.String()

	assert.Contains(t, out, "Origin: Current location (16.05440, 108.20220) radius 5.0 km")
	assert.Contains(t, out, "Page 1/1, 2 matches, sorted by distance")
	assert.Contains(t, out, "Pho Hoa")
	assert.Contains(t, out, "45000")
	assert.Contains(t, out, "1.23 km")
	assert.Contains(t, out, "Banh Mi")
}
