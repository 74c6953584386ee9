package elastic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/spatial"
)

var daNang = geo.Point{Lat: 16.047, Lon: 108.206}

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewWithClient(client, "restaurants")
}

func TestBuildSearchBody_Filters(t *testing.T) {
	q := query.Query{
		Category:       "Cafe",
		CuisineTypeIDs: []int64{1, 2},
		Price:          query.PriceBand{Max: optional.Some(decimal.RequireFromString("20"))},
		Spatial:        spatial.Native{}.WithinRadius(daNang, 5),
	}
	raw, err := json.Marshal(buildSearchBody(q, 100, optional.None[int64]()))
	require.NoError(t, err)
	s := string(raw)

	assert.Contains(t, s, `"term":{"category_key":"cafe"}`)
	assert.Contains(t, s, `"terms":{"cuisine_type_ids":[1,2]}`)
	assert.Contains(t, s, `"range":{"price":{"lte":20}}`)
	assert.Contains(t, s, `"distance":"5.05km"`)
	assert.Contains(t, s, `"location":{"lat":16.047,"lon":108.206}`)
	assert.Contains(t, s, `"size":100`)
	assert.Contains(t, s, `"sort":[{"id":{"order":"asc"}}]`)
	assert.NotContains(t, s, "search_after")
}

func TestBuildSearchBody_SearchAfter(t *testing.T) {
	raw, err := json.Marshal(buildSearchBody(query.Query{}, 10, optional.Some[int64](42)))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"search_after":[42]`)
}

func TestBuildSearchBody_MatchAll(t *testing.T) {
	q := query.Query{Text: "pho", Spatial: spatial.Haversine{}.WithinRadius(daNang, 5)}
	raw, err := json.Marshal(buildSearchBody(q, 10, optional.None[int64]()))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"match_all":{}`)
}

func TestFindRestaurants(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/restaurants/_search") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "geo_distance") {
			t.Errorf("expected geo_distance filter, got %s", body)
		}
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":3},"hits":[
			{"_id":"1","_source":{"id":1,"name":"Pho Hoa","category":"Vietnamese","location":{"lat":16.05,"lon":108.21},"price":12.5,"price_text":"12.50","rating":4.5,"review_count":10}},
			{"_id":"2","_source":{"id":2,"name":"Pho Edge","location":{"lat":16.0921,"lon":108.206}}},
			{"_id":"3","_source":{"id":3,"name":"Banh Mi","location":{"lat":16.047,"lon":108.206}}}
		]}}`)
	})

	q := query.Query{Text: "pho", Spatial: spatial.Native{}.WithinRadius(daNang, 5)}
	got, err := s.FindRestaurants(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0].Restaurant
	assert.Equal(t, int64(1), r.ID())
	assert.True(t, r.Price().Valid)
	assert.Equal(t, "12.5", r.Price().Decimal.String())
	d, ok := got[0].DistanceKm.Get()
	assert.True(t, ok)
	assert.Less(t, d, 5.0)
}

func TestFindRestaurants_ReadsEveryWindow(t *testing.T) {
	windows := []string{
		`{"hits":{"hits":[
			{"_source":{"id":1,"name":"Banh Mi"}},
			{"_source":{"id":2,"name":"Com Ga"}}
		]}}`,
		`{"hits":{"hits":[
			{"_source":{"id":3,"name":"Pho Bac"}},
			{"_source":{"id":4,"name":"Bun Cha"}}
		]}}`,
		`{"hits":{"hits":[
			{"_source":{"id":5,"name":"Pho Ga"}}
		]}}`,
	}
	var (
		mu     sync.Mutex
		bodies []string
	)
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		n := len(bodies)
		bodies = append(bodies, string(body))
		mu.Unlock()
		if n >= len(windows) {
			t.Errorf("unexpected request %d: %s", n, body)
			_, _ = io.WriteString(w, `{"hits":{"hits":[]}}`)
			return
		}
		_, _ = io.WriteString(w, windows[n])
	})
	s.window = 2

	got, err := s.FindRestaurants(context.Background(), query.Query{Text: "pho"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Restaurant.ID())
	assert.Equal(t, int64(5), got[1].Restaurant.ID())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 3)
	assert.NotContains(t, bodies[0], "search_after")
	assert.Contains(t, bodies[1], `"search_after":[2]`)
	assert.Contains(t, bodies[2], `"search_after":[4]`)
}

func TestFindRestaurants_IndexMissing(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
	})
	_, err := s.FindRestaurants(context.Background(), query.Query{})
	assert.ErrorIs(t, err, db.ErrIndexNotFound)
}

func TestFindRestaurants_ServerError(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"parsing_exception"},"status":400}`)
	})
	_, err := s.FindRestaurants(context.Background(), query.Query{})
	var dbErr *db.Error
	require.True(t, errors.As(err, &dbErr), "got %v", err)
	assert.Equal(t, db.OpQuery, dbErr.Op)
}

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	var (
		mu      sync.Mutex
		created bool
	)
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), `"geo_point"`) {
				t.Errorf("mapping missing geo_point: %s", body)
			}
			mu.Lock()
			created = true
			mu.Unlock()
			_, _ = io.WriteString(w, `{"acknowledged":true,"index":"restaurants"}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	require.NoError(t, s.EnsureIndex(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, created)
}

func TestEnsureIndex_Exists(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, s.EnsureIndex(context.Background()))
}

func TestLoadRestaurants_Bulk(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/_bulk") {
			http.NotFound(w, r)
			return
		}
		var items []string
		sc := bufio.NewScanner(r.Body)
		for line := 0; sc.Scan(); line++ {
			if line%2 != 0 {
				continue
			}
			var meta struct {
				Index struct {
					ID string `json:"_id"`
				} `json:"index"`
			}
			if err := json.Unmarshal(sc.Bytes(), &meta); err != nil {
				t.Errorf("bad action line: %v", err)
			}
			mu.Lock()
			ids = append(ids, meta.Index.ID)
			mu.Unlock()
			items = append(items, fmt.Sprintf(`{"index":{"_index":"restaurants","_id":%q,"status":201}}`, meta.Index.ID))
		}
		_, _ = fmt.Fprintf(w, `{"took":1,"errors":false,"items":[%s]}`, strings.Join(items, ","))
	})

	loc := geo.Point{Lat: 16.05, Lon: 108.21}
	rs := []restaurant.Restaurant{
		restaurant.Reconstruct(restaurant.Attributes{ID: 1, Name: "a", Location: &loc}),
		restaurant.Reconstruct(restaurant.Attributes{ID: 2, Name: "b"}),
	}
	require.NoError(t, s.LoadRestaurants(context.Background(), rs))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestLoadRestaurants_ItemFailure(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"took":1,"errors":true,"items":[
			{"index":{"_index":"restaurants","_id":"9","status":400,"error":{"type":"mapper_parsing_exception","reason":"bad location"}}}
		]}`)
	})
	err := s.LoadRestaurants(context.Background(), []restaurant.Restaurant{
		restaurant.Reconstruct(restaurant.Attributes{ID: 9, Name: "x"}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad location")
}

func TestDocument_RoundTrip(t *testing.T) {
	loc := geo.Point{Lat: 1.5, Lon: 2.5}
	open := restaurant.TimeOfDay(600)
	in := restaurant.Reconstruct(restaurant.Attributes{
		ID: 4, Name: "n", Category: "Bar", Location: &loc,
		Price:          decimal.NewNullDecimal(decimal.RequireFromString("10.05")),
		CuisineTypeIDs: []int64{3}, OpeningTime: &open,
	})
	doc := toDocument(in)
	assert.Equal(t, "bar", doc.CategoryKey)
	assert.Equal(t, "10.05", doc.PriceText)

	out := doc.toRestaurant()
	assert.Equal(t, in.Attributes(), out.Attributes())
}
