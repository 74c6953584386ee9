package restaurant

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
)

func validAttrs() Attributes {
	return Attributes{
		ID:             1,
		Name:           "Pho Hoa",
		Address:        "12 Tran Phu, Da Nang",
		Location:       &geo.Point{Lat: 16.047, Lon: 108.206},
		Category:       "Vietnamese",
		CuisineTypeIDs: []int64{3, 1, 3},
		TagIDs:         []int64{7},
		Price:          decimal.NewNullDecimal(decimal.RequireFromString("45.50")),
		Rating:         4.5,
		ReviewCount:    120,
	}
}

func TestNew_Valid(t *testing.T) {
	r, err := New(validAttrs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != 1 || r.Name() != "Pho Hoa" {
		t.Errorf("unexpected identity: %d %q", r.ID(), r.Name())
	}
	loc, ok := r.Location()
	if !ok || loc.Lat != 16.047 {
		t.Errorf("Location() = %+v, %v", loc, ok)
	}
	ids := r.CuisineTypeIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("CuisineTypeIDs() = %v, want [1 3]", ids)
	}
	if !r.Price().Valid || r.Price().Decimal.String() != "45.5" {
		t.Errorf("Price() = %v", r.Price())
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Attributes)
	}{
		{"zero id", func(a *Attributes) { a.ID = 0 }},
		{"blank name", func(a *Attributes) { a.Name = "   " }},
		{"lat out of range", func(a *Attributes) { a.Location = &geo.Point{Lat: 91, Lon: 0} }},
		{"lon out of range", func(a *Attributes) { a.Location = &geo.Point{Lat: 0, Lon: 181} }},
		{"negative price", func(a *Attributes) {
			a.Price = decimal.NewNullDecimal(decimal.NewFromInt(-1))
		}},
		{"rating above 5", func(a *Attributes) { a.Rating = 5.1 }},
		{"negative reviews", func(a *Attributes) { a.ReviewCount = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := validAttrs()
			tc.mutate(&a)
			if _, err := New(a); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNew_NoLocation(t *testing.T) {
	a := validAttrs()
	a.Location = nil
	r, err := New(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.Location(); ok {
		t.Error("expected no location")
	}
}

func TestAttributes_ReturnsCopy(t *testing.T) {
	r, _ := New(validAttrs())
	a := r.Attributes()
	a.CuisineTypeIDs[0] = 99
	a.Location.Lat = 0
	if r.CuisineTypeIDs()[0] != 1 {
		t.Error("cuisine ids mutation leaked into restaurant")
	}
	if loc, _ := r.Location(); loc.Lat != 16.047 {
		t.Error("location mutation leaked into restaurant")
	}
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("07:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int(tod) != 450 || tod.String() != "07:30" {
		t.Fatalf("got %d / %s", tod, tod)
	}
	for _, bad := range []string{"", "7", "24:00", "12:60", "ab:cd"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("ParseTimeOfDay(%q) expected error", bad)
		}
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	var v struct {
		Open *TimeOfDay `json:"open"`
	}
	if err := json.Unmarshal([]byte(`{"open":"22:15"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Open == nil || v.Open.String() != "22:15" {
		t.Fatalf("got %v", v.Open)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"open":"22:15"}` {
		t.Fatalf("got %s", b)
	}
}
