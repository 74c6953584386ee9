// Package postgis is a PostgreSQL/PostGIS restaurant store.
package postgis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
)

// Config holds connection pool settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store runs restaurant queries against a PostGIS database.
type Store struct {
	db *sql.DB
}

// New opens a connection pool and verifies connectivity.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgis: dsn is required")
	}
	conn, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, &db.Error{Op: db.OpPing, Err: err}
	}
	return &Store{db: conn}, nil
}

// NewWithDB wraps an existing pool.
func NewWithDB(conn *sql.DB) *Store {
	return &Store{db: conn}
}

// Capabilities implements db.Store.
func (s *Store) Capabilities() db.Capabilities {
	return db.Capabilities{NativeSpatial: true}
}

// Ping implements db.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close implements db.Store.
func (s *Store) Close() {
	_ = s.db.Close()
}

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS restaurants (
		id               BIGINT PRIMARY KEY,
		name             TEXT NOT NULL,
		address          TEXT NOT NULL DEFAULT '',
		category         TEXT NOT NULL DEFAULT '',
		location         GEOGRAPHY(POINT, 4326),
		price            NUMERIC(12, 2),
		rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count     INTEGER NOT NULL DEFAULT 0,
		cuisine_type_ids BIGINT[] NOT NULL DEFAULT '{}',
		tag_ids          BIGINT[] NOT NULL DEFAULT '{}',
		opening_time     INTEGER,
		closing_time     INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurants_location ON restaurants USING GIST (location)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurants_cuisines ON restaurants USING GIN (cuisine_type_ids)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurants_tags ON restaurants USING GIN (tag_ids)`,
}

// Migrate creates the restaurants table and its indexes if missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: err}
		}
	}
	return nil
}

const upsertSQL = `
INSERT INTO restaurants (id, name, address, category, location, price, rating, review_count,
	cuisine_type_ids, tag_ids, opening_time, closing_time)
VALUES ($1, $2, $3, $4,
	CASE WHEN $5::float8 IS NULL THEN NULL
	     ELSE ST_SetSRID(ST_MakePoint($5::float8, $6::float8), 4326)::geography END,
	$7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name, address = EXCLUDED.address, category = EXCLUDED.category,
	location = EXCLUDED.location, price = EXCLUDED.price, rating = EXCLUDED.rating,
	review_count = EXCLUDED.review_count, cuisine_type_ids = EXCLUDED.cuisine_type_ids,
	tag_ids = EXCLUDED.tag_ids, opening_time = EXCLUDED.opening_time, closing_time = EXCLUDED.closing_time`

// LoadRestaurants implements db.Loader as a single upsert transaction.
func (s *Store) LoadRestaurants(ctx context.Context, rs []restaurant.Restaurant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, upsertArgs(r)...); err != nil {
			return &db.Error{Op: db.OpInsert, Err: fmt.Errorf("restaurant %d: %w", r.ID(), err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	return nil
}

func upsertArgs(r restaurant.Restaurant) []any {
	var lon, lat sql.NullFloat64
	if p, ok := r.Location(); ok {
		lon = sql.NullFloat64{Float64: p.Lon, Valid: true}
		lat = sql.NullFloat64{Float64: p.Lat, Valid: true}
	}
	var price sql.NullString
	if p := r.Price(); p.Valid {
		price = sql.NullString{String: p.Decimal.String(), Valid: true}
	}
	return []any{
		r.ID(), r.Name(), r.Address(), r.Category(), lon, lat, price,
		r.Rating(), r.ReviewCount(),
		pq.Array(nonNil(r.CuisineTypeIDs())), pq.Array(nonNil(r.TagIDs())),
		minutes(r.OpeningTime()), minutes(r.ClosingTime()),
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func minutes(t *restaurant.TimeOfDay) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*t), Valid: true}
}

// FindRestaurants implements db.Finder. SQL narrows the candidate set; each row
// is then checked against the same in-memory predicates other stores use.
func (s *Store) FindRestaurants(ctx context.Context, q query.Query) ([]db.Candidate, error) {
	stmt, args := buildSelect(q)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var out []db.Candidate
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		if !q.Matches(r) {
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
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row scanner) (restaurant.Restaurant, error) {
	var (
		a                restaurant.Attributes
		lon, lat         sql.NullFloat64
		cuisines, tags   pq.Int64Array
		opening, closing sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Address, &a.Category, &lon, &lat, &a.Price,
		&a.Rating, &a.ReviewCount, &cuisines, &tags, &opening, &closing); err != nil {
		return restaurant.Restaurant{}, err
	}
	if lon.Valid && lat.Valid {
		a.Location = &geo.Point{Lat: lat.Float64, Lon: lon.Float64}
	}
	a.CuisineTypeIDs = cuisines
	a.TagIDs = tags
	if opening.Valid {
		t := restaurant.TimeOfDay(opening.Int64)
		a.OpeningTime = &t
	}
	if closing.Valid {
		t := restaurant.TimeOfDay(closing.Int64)
		a.ClosingTime = &t
	}
	return restaurant.Reconstruct(a), nil
}
