package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

// defaultWindow is how many hits one FT.SEARCH round trip returns.
const defaultWindow = 1000

// geoPad widens the server-side GEO radius; the exact haversine check runs after.
const geoPad = 1.01

// FindRestaurants runs FT.SEARCH with TAG/NUMERIC/GEO pre-filters, then applies
// the full in-memory predicate set to each hit. Text matching is substring
// based and therefore evaluated only in memory, so the server is read in id
// windows until it has no more hits.
func (s *Store) FindRestaurants(ctx context.Context, q query.Query) ([]db.Candidate, error) {
	filter := buildQuery(q)

	var (
		out   []db.Candidate
		after optional.Value[int64]
	)
	for {
		hits, err := s.searchWindow(ctx, windowQuery(filter, after))
		if err != nil {
			return nil, err
		}

		next := after
		for _, fields := range hits {
			if id, err := strconv.ParseInt(fields[fieldID], 10, 64); err == nil {
				next = optional.Some(id)
			}
			r, ok := decodeRestaurant(fields)
			if !ok || !q.Matches(r) {
				continue
			}
			c := db.Candidate{Restaurant: r}
			if q.Spatial != nil {
				d, ok := q.Spatial.Contains(r)
				if !ok {
					continue
				}
				c.DistanceKm = optional.Some(d)
			}
			out = append(out, c)
		}

		if len(hits) < s.window {
			return out, nil
		}
		if next == after {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("no id progress after %d hits", len(hits))}
		}
		after = next
	}
}

// searchWindow fetches up to s.window hits for qry in id order.
func (s *Store) searchWindow(ctx context.Context, qry string) ([]map[string]string, error) {
	args := []string{
		s.index, qry,
		"SORTBY", fieldID, "ASC",
		"LIMIT", "0", strconv.Itoa(s.window),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	hits, err := parseSearchResult(raw)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return hits, nil
}

// windowQuery restricts filter to ids greater than after.
func windowQuery(filter string, after optional.Value[int64]) string {
	id, ok := after.Get()
	if !ok {
		return filter
	}
	rng := fmt.Sprintf("@%s:[(%d +inf]", fieldID, id)
	if filter == "*" {
		return rng
	}
	return rng + " " + filter
}

// buildQuery translates q into an FT.SEARCH pre-filter query string.
func buildQuery(q query.Query) string {
	var parts []string

	if q.Category != "" {
		parts = append(parts, buildTagFilter(fieldCategoryTag, strings.ToLower(q.Category)))
	}
	if len(q.CuisineTypeIDs) > 0 {
		parts = append(parts, buildIDFilter(fieldCuisines, q.CuisineTypeIDs))
	}
	if len(q.TagIDs) > 0 {
		parts = append(parts, buildIDFilter(fieldTags, q.TagIDs))
	}
	if q.Price.IsSet() {
		parts = append(parts, buildPriceFilter(q.Price))
	}
	if q.Spatial != nil && q.Spatial.PushDown() {
		c := q.Spatial.Center()
		parts = append(parts, fmt.Sprintf("@%s:[%s %s %s km]", fieldLocation,
			formatFloat(c.Lon), formatFloat(c.Lat), formatFloat(q.Spatial.RadiusKm()*geoPad)))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

func buildIDFilter(key string, ids []int64) string {
	vals := make([]string, len(ids))
	for i, id := range ids {
		vals[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(vals, " | "))
}

func buildPriceFilter(b query.PriceBand) string {
	minBound := "-inf"
	maxBound := "+inf"
	if lo, ok := b.Min.Get(); ok {
		minBound = lo.String()
	}
	if hi, ok := b.Max.Get(); ok {
		maxBound = hi.String()
	}
	return fmt.Sprintf("@%s:[%s %s]", fieldPrice, minBound, maxBound)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --- Result parsing ---

// parseSearchResult reads a RESP2 reply: [total, key1, fields1, key2, fields2, ...].
func parseSearchResult(raw []rueidis.RedisMessage) ([]map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	hits := make([]map[string]string, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		hits = append(hits, parseFieldPairs(fields))
	}
	return hits, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)
