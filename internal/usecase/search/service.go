// Package search implements restaurant search: location normalization, query
// building, ranking and paging.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/criteria"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/result"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/logger"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/metrics"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/spatial"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/usecase/geonorm"
)

// Config tunes search behaviour. Zero fields take package defaults.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	// DefaultToCity resolves the configured city center when the caller gave
	// no location, so results carry distances.
	DefaultToCity bool
}

// Service runs restaurant searches.
type Service struct {
	repo    Repository
	norm    Normalizer
	adapter spatial.Adapter
	cfg     Config
}

// New creates a search service. adapter should be chosen from the store's
// capabilities with spatial.New.
func New(repo Repository, norm Normalizer, adapter spatial.Adapter, cfg Config) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = criteria.DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = criteria.MaxPageSize
	}
	if adapter == nil {
		adapter = spatial.Haversine{}
	}
	return &Service{repo: repo, norm: norm, adapter: adapter, cfg: cfg}
}

// Search executes c and returns one ranked page. An empty match is a valid
// empty page, not an error.
func (s *Service) Search(ctx context.Context, c criteria.Criteria) (result.Page, error) {
	start := time.Now()
	sortLabel := "unresolved"

	page, err := s.search(ctx, c, &sortLabel)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(sortLabel, status).Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.SearchResultsTotal.Observe(float64(page.TotalCount))
	}
	return page, err
}

func (s *Service) search(ctx context.Context, c criteria.Criteria, sortLabel *string) (result.Page, error) {
	pageNum, pageSize, maxPageSize := clampPaging(c.Page, c.PageSize.OrElse(s.cfg.DefaultPageSize), s.cfg.MaxPageSize)
	if err := validatePaging(pageNum, pageSize, maxPageSize); err != nil {
		return result.Page{}, err
	}

	origin := s.origin(ctx, &c)
	key := ResolveSort(c.Sort, origin != nil)
	*sortLabel = string(key)

	q := Build(c, origin, s.adapter)

	var rows []result.Row
	if !unsatisfiable(q) {
		var err error
		rows, err = s.repo.Find(ctx, q)
		if err != nil {
			return result.Page{}, err
		}
	}

	// Only rows up to the end of the requested page need ordering. The total
	// still counts every match.
	top := 0
	if pageNum <= (len(rows)+pageSize-1)/pageSize {
		top = pageNum * pageSize
	}
	rows = RankTop(rows, key, q.Text, top)
	slice, total, totalPages := Paginate(rows, pageNum, pageSize, maxPageSize)

	fields := []zap.Field{
		zap.String("sort", string(key)),
		zap.String("spatial", s.adapter.Name()),
		zap.Int("total", total),
		zap.Int("page", pageNum),
		zap.Int("page_size", pageSize),
	}
	if origin != nil {
		fields = append(fields,
			zap.Float64("lat", origin.Latitude()),
			zap.Float64("lng", origin.Longitude()),
			zap.Float64("radius_km", origin.RadiusKm),
			zap.Bool("defaulted", origin.Defaulted),
		)
	}
	logger.FromContext(ctx).Debug("Restaurant search", fields...)

	return result.Page{
		Rows:       slice,
		TotalCount: total,
		Page:       pageNum,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Sort:       key,
		Origin:     origin,
	}, nil
}

// origin resolves the search point, or nil when the search is not spatial.
func (s *Service) origin(ctx context.Context, c *criteria.Criteria) *geo.NormalizedLocation {
	if s.norm == nil || (!c.HasLocation() && !s.cfg.DefaultToCity) {
		return nil
	}
	loc := s.norm.Normalize(ctx, geonorm.Input{
		Address:    c.Address,
		Lat:        c.Lat,
		Lng:        c.Lng,
		RadiusText: c.RadiusText,
	})
	return &loc
}
