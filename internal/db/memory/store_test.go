package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/search/query"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/spatial"
)

func mk(id int64, name string, lat, lon float64) restaurant.Restaurant {
	p := geo.Point{Lat: lat, Lon: lon}
	return restaurant.Reconstruct(restaurant.Attributes{ID: id, Name: name, Location: &p})
}

func TestStore_FindAllOrderedByID(t *testing.T) {
	s := New(mk(3, "c", 1, 1), mk(1, "a", 1, 1), mk(2, "b", 1, 1))
	got, err := s.FindRestaurants(context.Background(), query.Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, c := range got {
		if c.Restaurant.ID() != int64(i+1) {
			t.Fatalf("row %d has id %d", i, c.Restaurant.ID())
		}
		if c.DistanceKm.IsSet() {
			t.Fatal("distance must be absent without a spatial predicate")
		}
	}
}

func TestStore_ReturnsEveryMatch(t *testing.T) {
	var rs []restaurant.Restaurant
	for i := int64(1); i <= 6000; i++ {
		name := "Quan"
		if i%2 == 0 || i > 5990 {
			name = "Pho"
		}
		rs = append(rs, mk(i, name, 1, 1))
	}
	s := New(rs...)
	got, err := s.FindRestaurants(context.Background(), query.Query{Text: "pho"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3005 {
		t.Fatalf("len = %d, want 3005", len(got))
	}
	if last := got[len(got)-1].Restaurant.ID(); last != 6000 {
		t.Fatalf("last id = %d, want 6000", last)
	}
}

func TestStore_TextFilter(t *testing.T) {
	s := New(mk(1, "Pho Hoa", 1, 1), mk(2, "Banh Mi", 1, 1))
	got, err := s.FindRestaurants(context.Background(), query.Query{Text: "pho"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Restaurant.ID() != 1 {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestStore_SpatialEvaluatedInMemory(t *testing.T) {
	s := New(mk(1, "near", 16.05, 108.21), mk(2, "far", 17, 108.21))
	q := query.Query{Spatial: spatial.Haversine{}.WithinRadius(geo.Point{Lat: 16.047, Lon: 108.206}, 5)}
	got, err := s.FindRestaurants(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Restaurant.ID() != 1 {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if !got[0].DistanceKm.IsSet() {
		t.Fatal("expected distance annotation")
	}
}

func TestStore_LoadReplacesByID(t *testing.T) {
	s := New(mk(1, "old", 1, 1))
	if err := s.LoadRestaurants(context.Background(), []restaurant.Restaurant{mk(1, "new", 1, 1), mk(2, "b", 1, 1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	got, _ := s.FindRestaurants(context.Background(), query.Query{Text: "new"})
	if len(got) != 1 {
		t.Fatalf("expected replaced row, got %+v", got)
	}
}

func TestStore_Closed(t *testing.T) {
	s := New()
	s.Close()
	if err := s.Ping(context.Background()); !errors.Is(err, db.ErrClosed) {
		t.Fatalf("Ping() = %v, want ErrClosed", err)
	}
	if _, err := s.FindRestaurants(context.Background(), query.Query{}); !errors.Is(err, db.ErrClosed) {
		t.Fatalf("FindRestaurants() = %v, want ErrClosed", err)
	}
}

func TestStore_NoNativeSpatial(t *testing.T) {
	if New().Capabilities().NativeSpatial {
		t.Fatal("memory store must not advertise native spatial support")
	}
}
