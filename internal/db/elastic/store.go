// Package elastic is an Elasticsearch restaurant store using geo_point filters.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

const (
	defaultIndex = "restaurants"
	// defaultWindow is how many hits one search request returns.
	defaultWindow = 1000
	// geoPad widens geo_distance; the exact haversine check runs after.
	geoPad = 1.01
)

// Compile-time checks.
var (
	_ db.Store  = (*Store)(nil)
	_ db.Loader = (*Store)(nil)
)

// Config holds Elasticsearch connection parameters.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// Store implements db.Store on an Elasticsearch index.
type Store struct {
	client *elasticsearch.Client
	index  string
	window int
}

// New creates a store client. It does not contact the cluster.
func New(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("addresses is required")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return NewWithClient(client, cfg.Index), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *elasticsearch.Client, index string) *Store {
	if index == "" {
		index = defaultIndex
	}
	return &Store{client: client, index: index, window: defaultWindow}
}

// Capabilities implements db.Store.
func (s *Store) Capabilities() db.Capabilities {
	return db.Capabilities{NativeSpatial: true}
}

// Ping implements db.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: responseError(res)}
	}
	return nil
}

// Close implements db.Store. The HTTP transport needs no teardown.
func (s *Store) Close() {}

// EnsureIndex creates the index with its geo_point mapping if it does not exist.
func (s *Store) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	_ = res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return &db.Error{Op: db.OpIndexInfo, Err: fmt.Errorf("unexpected status %d", res.StatusCode)}
	}

	res, err = s.client.Indices.Create(s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if strings.Contains(res.String(), "resource_already_exists_exception") {
			return nil
		}
		return &db.Error{Op: db.OpCreateIndex, Err: responseError(res)}
	}
	return nil
}

// FindRestaurants runs a bool filter query sorted by id, then applies the full
// in-memory predicate set to each hit. The text term is only checked in memory,
// so every window is read with search_after until the index is exhausted.
func (s *Store) FindRestaurants(ctx context.Context, q query.Query) ([]db.Candidate, error) {
	var (
		out   []db.Candidate
		after optional.Value[int64]
	)
	for {
		docs, err := s.searchWindow(ctx, buildSearchBody(q, s.window, after))
		if err != nil {
			return nil, err
		}

		for _, d := range docs {
			r := d.toRestaurant()
			if !q.Matches(r) {
				continue
			}
			c := db.Candidate{Restaurant: r}
			if q.Spatial != nil {
				dist, ok := q.Spatial.Contains(r)
				if !ok {
					continue
				}
				c.DistanceKm = optional.Some(dist)
			}
			out = append(out, c)
		}

		if len(docs) < s.window {
			return out, nil
		}
		last := docs[len(docs)-1].ID
		if prev, ok := after.Get(); ok && last <= prev {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("no id progress after %d", prev)}
		}
		after = optional.Some(last)
	}
}

// searchWindow runs one search request and returns its documents in id order.
func (s *Store) searchWindow(ctx context.Context, body object) ([]document, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == http.StatusNotFound {
		return nil, &db.Error{Op: db.OpQuery, Err: db.ErrIndexNotFound}
	}
	if res.IsError() {
		return nil, &db.Error{Op: db.OpQuery, Err: responseError(res)}
	}

	var payload struct {
		Hits struct {
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("decode response: %w", err)}
	}

	docs := make([]document, len(payload.Hits.Hits))
	for i, h := range payload.Hits.Hits {
		docs[i] = h.Source
	}
	return docs, nil
}

type object = map[string]any

func buildSearchBody(q query.Query, size int, after optional.Value[int64]) object {
	var filters []object

	if q.Category != "" {
		filters = append(filters, object{"term": object{"category_key": strings.ToLower(q.Category)}})
	}
	if len(q.CuisineTypeIDs) > 0 {
		filters = append(filters, object{"terms": object{"cuisine_type_ids": q.CuisineTypeIDs}})
	}
	if len(q.TagIDs) > 0 {
		filters = append(filters, object{"terms": object{"tag_ids": q.TagIDs}})
	}
	if q.Price.IsSet() {
		rng := object{}
		if lo, ok := q.Price.Min.Get(); ok {
			rng["gte"] = lo.InexactFloat64()
		}
		if hi, ok := q.Price.Max.Get(); ok {
			rng["lte"] = hi.InexactFloat64()
		}
		filters = append(filters, object{"range": object{"price": rng}})
	}
	if q.Spatial != nil && q.Spatial.PushDown() {
		c := q.Spatial.Center()
		filters = append(filters, object{"geo_distance": object{
			"distance":      strconv.FormatFloat(q.Spatial.RadiusKm()*geoPad, 'f', -1, 64) + "km",
			"distance_type": "arc",
			"location":      object{"lat": c.Lat, "lon": c.Lon},
		}})
	}

	var qry object
	if len(filters) == 0 {
		qry = object{"match_all": object{}}
	} else {
		qry = object{"bool": object{"filter": filters}}
	}

	body := object{
		"size":  size,
		"query": qry,
		"sort":  []object{{"id": object{"order": "asc"}}},
	}
	if id, ok := after.Get(); ok {
		body["search_after"] = []int64{id}
	}
	return body
}

// LoadRestaurants bulk-indexes restaurants with refresh=wait_for so they are
// searchable when the call returns.
func (s *Store) LoadRestaurants(ctx context.Context, rs []restaurant.Restaurant) error {
	if len(rs) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         s.index,
		Client:        s.client,
		NumWorkers:    2,
		FlushBytes:    1024 * 1024,
		FlushInterval: 30 * time.Second,
		Refresh:       "wait_for",
	})
	if err != nil {
		return &db.Error{Op: db.OpBulk, Err: err}
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	onFailure := func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = fmt.Errorf("restaurant %s: %w", item.DocumentID, err)
		} else {
			firstErr = fmt.Errorf("restaurant %s: %s: %s", item.DocumentID, res.Error.Type, res.Error.Reason)
		}
	}

	for _, r := range rs {
		data, err := json.Marshal(toDocument(r))
		if err != nil {
			return &db.Error{Op: db.OpBulk, Err: err}
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.FormatInt(r.ID(), 10),
			Body:       bytes.NewReader(data),
			OnFailure:  onFailure,
		})
		if err != nil {
			return &db.Error{Op: db.OpBulk, Err: err}
		}
	}

	if err := bi.Close(ctx); err != nil {
		return &db.Error{Op: db.OpBulk, Err: err}
	}
	if stats := bi.Stats(); stats.NumFailed > 0 {
		mu.Lock()
		defer mu.Unlock()
		return &db.Error{Op: db.OpBulk, Err: fmt.Errorf("%d of %d documents failed: %w",
			stats.NumFailed, stats.NumAdded, firstErr)}
	}
	return nil
}

func responseError(res *esapi.Response) error {
	return fmt.Errorf("elasticsearch: %s", res.String())
}
