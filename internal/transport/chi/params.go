package chi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/criteria"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/sortkey"
)

// criteriaFromQuery maps query parameters onto search criteria. Malformed
// numbers are rejected; an unusable radius is left for the normalizer.
func criteriaFromQuery(v url.Values) (criteria.Criteria, error) {
	c := criteria.Criteria{
		Term:     textParam(v, "q"),
		Category: textParam(v, "category"),
		Address:  textParam(v, "address"),
	}
	if v.Has("radius") {
		c.RadiusText = optional.Some(v.Get("radius"))
	}

	var err error
	if c.Lat, err = floatParam(v, "lat"); err != nil {
		return criteria.Criteria{}, err
	}
	if c.Lng, err = floatParam(v, "lng"); err != nil {
		return criteria.Criteria{}, err
	}
	if c.CuisineTypeIDs, err = idsParam(v, "cuisines"); err != nil {
		return criteria.Criteria{}, err
	}
	if c.TagIDs, err = idsParam(v, "tags"); err != nil {
		return criteria.Criteria{}, err
	}
	if c.MinPrice, err = priceParam(v, "min_price"); err != nil {
		return criteria.Criteria{}, err
	}
	if c.MaxPrice, err = priceParam(v, "max_price"); err != nil {
		return criteria.Criteria{}, err
	}
	page, err := intParam(v, "page")
	if err != nil {
		return criteria.Criteria{}, err
	}
	c.Page = page.OrElse(1)
	if c.PageSize, err = intParam(v, "page_size"); err != nil {
		return criteria.Criteria{}, err
	}

	if raw := strings.TrimSpace(v.Get("sort")); raw != "" {
		k, err := sortkey.Parse(raw)
		if err != nil {
			return criteria.Criteria{}, domain.NewValidationError("sort", "must be one of relevance, distance, rating, price")
		}
		c.Sort = optional.Some(k)
	}
	return c, nil
}

func textParam(v url.Values, key string) optional.Value[string] {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return optional.None[string]()
	}
	return optional.Some(s)
}

func floatParam(v url.Values, key string) (optional.Value[float64], error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return optional.None[float64](), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return optional.None[float64](), domain.NewValidationError(key, "must be a number")
	}
	return optional.Some(f), nil
}

func intParam(v url.Values, key string) (optional.Value[int], error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return optional.None[int](), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return optional.None[int](), domain.NewValidationError(key, "must be an integer")
	}
	return optional.Some(n), nil
}

// idsParam accepts "1,2,3" and repeated keys.
func idsParam(v url.Values, key string) ([]int64, error) {
	var ids []int64
	for _, raw := range v[key] {
		for part := range strings.SplitSeq(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, domain.NewValidationError(key, "must be a comma-separated list of positive integers")
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func priceParam(v url.Values, key string) (optional.Value[decimal.Decimal], error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return optional.None[decimal.Decimal](), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return optional.None[decimal.Decimal](), domain.NewValidationError(key, "must be a non-negative decimal")
	}
	return optional.Some(d), nil
}
