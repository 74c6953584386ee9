package postgis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lib/pq"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

// prefilterPad widens ST_DWithin so the sphere/spheroid difference never drops a
// row the haversine check would keep.
const prefilterPad = 1.01

const selectColumns = `r.id, r.name, r.address, r.category,
	ST_X(r.location::geometry), ST_Y(r.location::geometry),
	r.price, r.rating, r.review_count, r.cuisine_type_ids, r.tag_ids,
	r.opening_time, r.closing_time`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSelect renders q as a parameterized SELECT ordered by id. There is no
// LIMIT: rows are refined in Go afterwards, so the SQL set must stay a superset.
//
// ILIKE and lower() only fold ASCII under a C collation, so non-ASCII text and
// category filters are left to the in-memory check.
func buildSelect(q query.Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Text != "" && isASCII(q.Text) {
		p := next("%" + likeEscaper.Replace(q.Text) + "%")
		conds = append(conds, fmt.Sprintf("(r.name ILIKE %s OR r.address ILIKE %s)", p, p))
	}
	if q.Category != "" && isASCII(q.Category) {
		conds = append(conds, fmt.Sprintf("lower(r.category) = lower(%s)", next(q.Category)))
	}
	if len(q.CuisineTypeIDs) > 0 {
		conds = append(conds, fmt.Sprintf("r.cuisine_type_ids && %s::bigint[]", next(pq.Array(q.CuisineTypeIDs))))
	}
	if len(q.TagIDs) > 0 {
		conds = append(conds, fmt.Sprintf("r.tag_ids && %s::bigint[]", next(pq.Array(q.TagIDs))))
	}
	if q.Price.IsSet() {
		conds = append(conds, "r.price IS NOT NULL")
		if lo, ok := q.Price.Min.Get(); ok {
			conds = append(conds, fmt.Sprintf("r.price >= %s::numeric", next(lo.String())))
		}
		if hi, ok := q.Price.Max.Get(); ok {
			conds = append(conds, fmt.Sprintf("r.price <= %s::numeric", next(hi.String())))
		}
	}
	if q.Spatial != nil && q.Spatial.PushDown() {
		c := q.Spatial.Center()
		lon, lat := next(c.Lon), next(c.Lat)
		meters := next(q.Spatial.RadiusKm() * 1000 * prefilterPad)
		conds = append(conds, fmt.Sprintf(
			"ST_DWithin(r.location, ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography, %s)", lon, lat, meters))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectColumns)
	b.WriteString(" FROM restaurants r")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY r.id")
	return b.String(), args
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
