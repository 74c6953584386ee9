package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/app"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/criteria"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/result"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/sortkey"
)

type searchFlags struct {
	term     string
	category string
	address  string
	lat      float64
	lng      float64
	radius   string
	cuisines []int64
	tags     []int64
	minPrice string
	maxPrice string
	sort     string
	page     int
	pageSize int
}

func newSearchCmd() *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search restaurants in the configured store",
		Long: `Run a restaurant search with the same normalization, filtering, ranking and
paging as the HTTP API, and print the requested page as a table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := f.criteria(cmd)
			if err != nil {
				return err
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			store, err := app.OpenStore(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := app.Seed(ctx, cfg.Store.DatasetFile, store, logger); err != nil {
				return err
			}

			geocoder := app.NewGeocoder(cfg.Geocoding)
			svc := app.NewSearch(cfg, store, app.NewNormalizer(cfg, geocoder, logger))

			page, err := svc.Search(ctx, c)
			if err != nil {
				return err
			}
			printPage(cmd.OutOrStdout(), page)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.term, "q", "", "Name or address text")
	fl.StringVarP(&f.category, "category", "c", "", "Category filter")
	fl.StringVarP(&f.address, "address", "a", "", "Address to search around")
	fl.Float64Var(&f.lat, "lat", 0, "Origin latitude")
	fl.Float64Var(&f.lng, "lng", 0, "Origin longitude")
	fl.StringVarP(&f.radius, "radius", "r", "", "Search radius in km")
	fl.Int64SliceVar(&f.cuisines, "cuisines", nil, "Cuisine type ids (all required)")
	fl.Int64SliceVar(&f.tags, "tags", nil, "Tag ids (all required)")
	fl.StringVar(&f.minPrice, "min-price", "", "Minimum price")
	fl.StringVar(&f.maxPrice, "max-price", "", "Maximum price")
	fl.StringVarP(&f.sort, "sort", "s", "", "Sort key: relevance, distance, rating or price")
	fl.IntVarP(&f.page, "page", "p", 1, "Page number")
	fl.IntVarP(&f.pageSize, "page-size", "n", 0, "Page size (defaults to the configured page size)")
	return cmd
}

func (f searchFlags) criteria(cmd *cobra.Command) (criteria.Criteria, error) {
	changed := cmd.Flags().Changed
	c := criteria.Criteria{
		CuisineTypeIDs: f.cuisines,
		TagIDs:         f.tags,
		Page:           f.page,
	}
	if changed("page-size") {
		c.PageSize = optional.Some(f.pageSize)
	}
	if f.term != "" {
		c.Term = optional.Some(f.term)
	}
	if f.category != "" {
		c.Category = optional.Some(f.category)
	}
	if f.address != "" {
		c.Address = optional.Some(f.address)
	}
	if changed("lat") {
		c.Lat = optional.Some(f.lat)
	}
	if changed("lng") {
		c.Lng = optional.Some(f.lng)
	}
	if changed("radius") {
		c.RadiusText = optional.Some(f.radius)
	}
	if f.sort != "" {
		k, err := sortkey.Parse(f.sort)
		if err != nil {
			return criteria.Criteria{}, err
		}
		c.Sort = optional.Some(k)
	}

	var err error
	if c.MinPrice, err = priceFlag("min-price", f.minPrice); err != nil {
		return criteria.Criteria{}, err
	}
	if c.MaxPrice, err = priceFlag("max-price", f.maxPrice); err != nil {
		return criteria.Criteria{}, err
	}
	return c, nil
}

func priceFlag(name, raw string) (optional.Value[decimal.Decimal], error) {
	if raw == "" {
		return optional.None[decimal.Decimal](), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return optional.None[decimal.Decimal](), fmt.Errorf("--%s: %w", name, err)
	}
	return optional.Some(d), nil
}

func printPage(out io.Writer, page result.Page) {
	if page.Origin != nil {
		fmt.Fprintf(out, "Origin: %s (%.5f, %.5f) radius %.1f km\n",
			page.Origin.Address, page.Origin.Latitude(), page.Origin.Longitude(), page.Origin.RadiusKm)
	}
	fmt.Fprintf(out, "Page %d/%d, %d matches, sorted by %s\n\n",
		page.Page, page.TotalPages, page.TotalCount, page.Sort)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tRATING\tPRICE\tDISTANCE")
	for _, row := range page.Rows {
		r := row.Restaurant
		price := "-"
		if p := r.Price(); p.Valid {
			price = p.Decimal.String()
		}
		distance := "-"
		if d, ok := row.DistanceKm.Get(); ok {
			distance = strconv.FormatFloat(d, 'f', 2, 64) + " km"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\t%s\n",
			r.ID(), r.Name(), r.Category(), r.Rating(), price, distance)
	}
	_ = tw.Flush()
}
