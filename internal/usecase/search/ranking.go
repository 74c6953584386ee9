package search

import (
	"cmp"
	"container/heap"
	"slices"
	"strings"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/result"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/sortkey"
)

// ResolveSort picks the effective sort key. Distance needs a resolved point;
// without one it degrades to relevance.
func ResolveSort(requested optional.Value[sortkey.Key], hasPoint bool) sortkey.Key {
	if k, ok := requested.Get(); ok && k.IsValid() {
		if k == sortkey.Distance && !hasPoint {
			return sortkey.Relevance
		}
		return k
	}
	if hasPoint {
		return sortkey.Distance
	}
	return sortkey.Relevance
}

// Rank orders rows in place by key and returns them. Every ordering ends
// with id ascending, so the result is total and repeatable.
func Rank(rows []result.Row, key sortkey.Key, term string) []result.Row {
	slices.SortFunc(rows, comparator(key, term))
	return rows
}

// RankTop moves the k best rows by key to the front of rows, in order, and
// leaves the rest unordered behind them. The first k positions equal those of
// Rank(rows, key, term).
func RankTop(rows []result.Row, key sortkey.Key, term string, k int) []result.Row {
	if k <= 0 {
		return rows
	}
	compare := comparator(key, term)
	if k >= len(rows) {
		slices.SortFunc(rows, compare)
		return rows
	}

	// rows[:k] is a heap with the worst kept row at the root.
	h := &worstFirst{rows: rows[:k], compare: compare}
	heap.Init(h)
	for i := k; i < len(rows); i++ {
		if compare(rows[i], rows[0]) < 0 {
			rows[0], rows[i] = rows[i], rows[0]
			heap.Fix(h, 0)
		}
	}
	slices.SortFunc(rows[:k], compare)
	return rows
}

func comparator(key sortkey.Key, term string) func(a, b result.Row) int {
	switch key {
	case sortkey.Distance:
		return byDistance
	case sortkey.Rating:
		return byRating
	case sortkey.Price:
		return byPrice
	default:
		return byRelevance(strings.TrimSpace(term))
	}
}

type worstFirst struct {
	rows    []result.Row
	compare func(a, b result.Row) int
}

func (h *worstFirst) Len() int           { return len(h.rows) }
func (h *worstFirst) Less(i, j int) bool { return h.compare(h.rows[i], h.rows[j]) > 0 }
func (h *worstFirst) Swap(i, j int)      { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }

func (h *worstFirst) Push(x any) { h.rows = append(h.rows, x.(result.Row)) }

func (h *worstFirst) Pop() any {
	n := len(h.rows) - 1
	x := h.rows[n]
	h.rows = h.rows[:n]
	return x
}

func byRelevance(term string) func(a, b result.Row) int {
	return func(a, b result.Row) int {
		if term != "" {
			ea := strings.EqualFold(a.Restaurant.Name(), term)
			eb := strings.EqualFold(b.Restaurant.Name(), term)
			if ea != eb {
				if ea {
					return -1
				}
				return 1
			}
		}
		if c := cmp.Compare(b.Restaurant.Rating(), a.Restaurant.Rating()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Restaurant.ReviewCount(), a.Restaurant.ReviewCount()); c != 0 {
			return c
		}
		return cmp.Compare(a.Restaurant.ID(), b.Restaurant.ID())
	}
}

// byDistance sorts rows without a distance last.
func byDistance(a, b result.Row) int {
	da, okA := a.DistanceKm.Get()
	db, okB := b.DistanceKm.Get()
	if okA != okB {
		if okA {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(da, db); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Restaurant.Rating(), a.Restaurant.Rating()); c != 0 {
		return c
	}
	return cmp.Compare(a.Restaurant.ID(), b.Restaurant.ID())
}

func byRating(a, b result.Row) int {
	if c := cmp.Compare(b.Restaurant.Rating(), a.Restaurant.Rating()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Restaurant.ReviewCount(), a.Restaurant.ReviewCount()); c != 0 {
		return c
	}
	return cmp.Compare(a.Restaurant.ID(), b.Restaurant.ID())
}

// byPrice sorts unknown prices last.
func byPrice(a, b result.Row) int {
	pa, pb := a.Restaurant.Price(), b.Restaurant.Price()
	if pa.Valid != pb.Valid {
		if pa.Valid {
			return -1
		}
		return 1
	}
	if pa.Valid {
		if c := pa.Decimal.Cmp(pb.Decimal); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Restaurant.ID(), b.Restaurant.ID())
}
