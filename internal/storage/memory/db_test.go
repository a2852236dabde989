package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

func seeded(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	db := New(Config{})

	properties := []*search.Property{
		{ID: "a", Name: "Cedar", IsActive: true, Rating: search.Rating{Average: 4.1, Count: 9}, Stats: search.Stats{TotalSites: 1}},
		{ID: "b", Name: "Aspen", IsActive: true, Rating: search.Rating{Average: 4.8, Count: 3}, Stats: search.Stats{TotalSites: 2}},
		{ID: "c", Name: "Birch", IsActive: true, Rating: search.Rating{Average: 4.8, Count: 7}},
	}

	sites := []*search.Site{
		{ID: "a-1", PropertyID: "a", IsActive: true, Pricing: search.Pricing{BasePrice: 80}},
		{ID: "b-1", PropertyID: "b", IsActive: true, Pricing: search.Pricing{BasePrice: 120}},
		{ID: "b-2", PropertyID: "b", IsActive: false, Pricing: search.Pricing{BasePrice: 10}},
	}

	if err := db.SaveProperties(ctx, properties); err != nil {
		t.Fatalf("SaveProperties() error = %v", err)
	}

	if err := db.SaveSites(ctx, sites); err != nil {
		t.Fatalf("SaveSites() error = %v", err)
	}

	return db
}

func TestSaveValidatesReferences(t *testing.T) {
	ctx := context.Background()
	db := New(Config{})

	err := db.SaveSites(ctx, []*search.Site{{ID: "s", PropertyID: "missing"}})
	if !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("SaveSites() error = %v, want %v", err, ErrUnknownProperty)
	}

	err = db.SaveBookings(ctx, []*search.Booking{{ID: "b", SiteID: "missing"}})
	if !errors.Is(err, ErrUnknownSite) {
		t.Errorf("SaveBookings() error = %v, want %v", err, ErrUnknownSite)
	}

	err = db.SaveProperties(ctx, []*search.Property{{Name: "no id"}})
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("SaveProperties() error = %v, want %v", err, ErrMissingID)
	}
}

func TestFindPropertiesSorted(t *testing.T) {
	db := seeded(t)

	tests := []struct {
		name   string
		fields []search.SortField
		want   []string
	}{
		{name: "name", fields: []search.SortField{{Field: search.FieldName}}, want: []string{"b", "c", "a"}},
		{
			name:   "rating then reviews",
			fields: []search.SortField{{Field: search.FieldRatingAverage, Desc: true}, {Field: search.FieldRatingCount, Desc: true}},
			want:   []string{"c", "b", "a"},
		},
		{name: "total sites", fields: []search.SortField{{Field: search.FieldTotalSites, Desc: true}}, want: []string{"b", "a", "c"}},
		{name: "id fallback", fields: nil, want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FindProperties(context.Background(), search.PropertyQuery{}, tt.fields, 0, 10)
			if err != nil {
				t.Fatalf("FindProperties() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d properties, want %d", len(got), len(tt.want))
			}

			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("position %d = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestFindPropertiesUnsupportedField(t *testing.T) {
	_, err := seeded(t).FindProperties(context.Background(), search.PropertyQuery{}, []search.SortField{{Field: "distance"}}, 0, 10)
	if !errors.Is(err, ErrUnsupportedSortKey) {
		t.Errorf("error = %v, want %v", err, ErrUnsupportedSortKey)
	}
}

func TestFindPropertiesByMinPrice(t *testing.T) {
	db := seeded(t)

	got, err := db.FindPropertiesByMinPrice(context.Background(), search.PropertyQuery{}, false, 0, 10)
	if err != nil {
		t.Fatalf("FindPropertiesByMinPrice() error = %v", err)
	}

	want := []struct {
		id    string
		price float64
	}{{"a", 80}, {"b", 120}, {"c", search.NoActivePrice}}

	for i, w := range want {
		if got[i].ID != w.id || got[i].MinPrice != w.price {
			t.Errorf("position %d = %s/%v, want %s/%v", i, got[i].ID, got[i].MinPrice, w.id, w.price)
		}
	}

	desc, err := db.FindPropertiesByMinPrice(context.Background(), search.PropertyQuery{}, true, 0, 2)
	if err != nil {
		t.Fatalf("FindPropertiesByMinPrice() error = %v", err)
	}

	if len(desc) != 2 || desc[0].ID != "b" || desc[1].ID != "a" {
		t.Errorf("desc page = %+v, want b then a", desc)
	}
}

func TestFindPropertiesRestricted(t *testing.T) {
	db := seeded(t)

	q := search.PropertyQuery{Restricted: true, IDs: []string{"c", "zzz"}}

	total, err := db.CountProperties(context.Background(), q)
	if err != nil || total != 1 {
		t.Errorf("CountProperties() = %d, %v; want 1", total, err)
	}

	total, err = db.CountProperties(context.Background(), search.PropertyQuery{Restricted: true})
	if err != nil || total != 0 {
		t.Errorf("CountProperties() of empty restriction = %d, %v; want 0", total, err)
	}
}

func TestMinActivePrice(t *testing.T) {
	db := seeded(t)

	price, ok, err := db.MinActivePrice(context.Background(), "b")
	if err != nil || !ok || price != 120 {
		t.Errorf("MinActivePrice(b) = %v, %v, %v; want 120 ignoring the inactive site", price, ok, err)
	}

	if _, ok, _ := db.MinActivePrice(context.Background(), "c"); ok {
		t.Error("property without sites must have no price")
	}
}

func TestFindBookingsCandidates(t *testing.T) {
	ctx := context.Background()
	db := seeded(t)

	day := func(d int) time.Time { return time.Date(2024, 7, d, 0, 0, 0, 0, time.UTC) }

	err := db.SaveBookings(ctx, []*search.Booking{
		{ID: "1", SiteID: "a-1", CheckIn: day(1), CheckOut: day(5), Status: search.BookingConfirmed},
		{ID: "2", SiteID: "a-1", CheckIn: day(5), CheckOut: day(7), Status: search.BookingCancelled},
		{ID: "3", SiteID: "b-1", CheckIn: day(4), CheckOut: day(6), Status: search.BookingPending},
		{ID: "4", SiteID: "a-1", CheckIn: day(20), CheckOut: day(22), Status: search.BookingConfirmed},
	})
	if err != nil {
		t.Fatalf("SaveBookings() error = %v", err)
	}

	got, err := db.FindBookings(ctx, search.BookingQuery{
		SiteIDs:  []string{"a-1"},
		Statuses: search.BlockingStatuses,
		Range:    search.DateRange{CheckIn: day(3), CheckOut: day(6)},
	})
	if err != nil {
		t.Fatalf("FindBookings() error = %v", err)
	}

	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("bookings = %+v, want only booking 1", got)
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	if got := page(items, 4, 10); len(got) != 1 || got[0] != 5 {
		t.Errorf("page(4, 10) = %v", got)
	}

	if got := page(items, 10, 2); len(got) != 0 {
		t.Errorf("page(10, 2) = %v, want empty", got)
	}

	if got := page(items, 1, 2); len(got) != 2 || got[0] != 2 {
		t.Errorf("page(1, 2) = %v", got)
	}
}
