package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/idgen/simple"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/migration"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/storage/memory"
)

type stubSearcher struct {
	res *search.Result
	err error
}

func (s *stubSearcher) Search(_ context.Context, c search.Criteria) (*search.Result, error) {
	if s.res == nil && s.err == nil {
		return search.EmptyResult(c.Normalized(search.Defaults{Limit: 10})), nil
	}

	return s.res, s.err
}

type panicSearcher struct{}

func (panicSearcher) Search(context.Context, search.Criteria) (*search.Result, error) {
	panic("boom")
}

func newTestServer(t *testing.T, s searcher) *Server {
	t.Helper()

	srv, err := New(context.Background(), Conf{
		L:                logger.Discard(),
		Host:             "localhost",
		Port:             "0",
		LivenessEndpoint: "/liveness",
	}, s)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return srv
}

func do(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Srv().Handler.ServeHTTP(rec, req)

	return rec
}

func TestParseCriteria(t *testing.T) {
	values := url.Values{
		"search":       {" lake "},
		"checkIn":      {"2024-07-10"},
		"checkOut":     {"2024-07-12T00:00:00Z"},
		"guests":       {"4"},
		"lat":          {"11.94"},
		"lng":          {"108.45"},
		"radius":       {"25"},
		"campingStyle": {"tent,rv"},
		"amenities[]":  {"a1", "a2"},
		"amenities":    {"a3"},
		"sortBy":       {"minPrice-asc"},
		"page":         {"2"},
	}

	c, err := parseCriteria(values)
	if err != nil {
		t.Fatalf("parseCriteria() error = %v", err)
	}

	if c.Search != "lake" || c.Guests != 4 || c.Page != 2 || c.SortBy != search.SortMinPriceAsc {
		t.Errorf("scalars = %+v", c)
	}

	if c.CheckIn == nil || c.CheckOut == nil || c.CheckOut.Sub(*c.CheckIn).Hours() != 48 {
		t.Errorf("dates = %v - %v", c.CheckIn, c.CheckOut)
	}

	if c.Lat == nil || *c.Lat != 11.94 || c.Radius == nil || *c.Radius != 25 {
		t.Errorf("geo = %v %v %v", c.Lat, c.Lng, c.Radius)
	}

	if len(c.CampingStyles) != 2 || len(c.Amenities) != 3 {
		t.Errorf("lists = %v %v", c.CampingStyles, c.Amenities)
	}
}

func TestParseCriteriaInstantBookAlias(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  *bool
	}{
		{name: "neither", query: url.Values{}, want: nil},
		{name: "alias only", query: url.Values{"instantBooking": {"true"}}, want: ptr(true)},
		{name: "canonical only", query: url.Values{"instantBook": {"true"}}, want: ptr(true)},
		{name: "canonical wins", query: url.Values{"instantBook": {"false"}, "instantBooking": {"true"}}, want: ptr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseCriteria(tt.query)
			if err != nil {
				t.Fatalf("parseCriteria() error = %v", err)
			}

			switch {
			case tt.want == nil && c.InstantBook != nil:
				t.Errorf("InstantBook = %v, want nil", *c.InstantBook)
			case tt.want != nil && (c.InstantBook == nil || *c.InstantBook != *tt.want):
				t.Errorf("InstantBook = %v, want %v", c.InstantBook, *tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestSearchBadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{name: "guests not a number", query: "guests=four", field: "guests"},
		{name: "bad date", query: "checkIn=10/07/2024", field: "checkIn"},
		{name: "bad flag", query: "isFeatured=yes please", field: "isFeatured"},
		{name: "unknown sort", query: "sortBy=cheapest", field: "sortBy"},
		{name: "lat out of range", query: "lat=91&lng=0&radius=5", field: "lat"},
		{name: "unknown camping style", query: "campingStyle=hammock", field: "campingStyle"},
	}

	db := memory.New(memory.Config{})
	srv := newTestServer(t, search.New(search.Config{}, db, db, db, db))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "/api/properties/search/v1?"+url.PathEscape(tt.query))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}

			var fields map[string][]string
			if err := json.NewDecoder(rec.Body).Decode(&fields); err != nil {
				t.Fatalf("decode body: %v", err)
			}

			if len(fields[tt.field]) == 0 {
				t.Errorf("fields = %v, want an error for %s", fields, tt.field)
			}
		})
	}
}

func TestSearchStoreFailure(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{err: errors.New("connection refused")})

	rec := do(t, srv, "/api/properties/search/v1")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSearchPanicRecovered(t *testing.T) {
	srv := newTestServer(t, panicSearcher{})

	rec := do(t, srv, "/api/properties/search/v1")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSearchEmptyPage(t *testing.T) {
	ctx := context.Background()
	db := memory.New(memory.Config{})

	if err := migration.Up(ctx, logger.Discard(), db, db, simple.New()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	srv := newTestServer(t, search.New(search.Config{}, db, db, db, db))

	rec := do(t, srv, "/api/properties/search/v1?checkIn=2024-07-12&checkOut=2024-07-10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Properties []json.RawMessage `json:"properties"`
		Pagination search.Pagination `json:"pagination"`
	}

	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body.Properties == nil || len(body.Properties) != 0 {
		t.Errorf("properties = %v, want []", body.Properties)
	}

	if body.Pagination.Total != 0 || body.Pagination.Pages != 0 || body.Pagination.Page != 1 {
		t.Errorf("pagination = %+v", body.Pagination)
	}
}

func TestSearchSeededCatalog(t *testing.T) {
	ctx := context.Background()
	db := memory.New(memory.Config{})

	if err := migration.Up(ctx, logger.Discard(), db, db, simple.New()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	srv := newTestServer(t, search.New(search.Config{}, db, db, db, db))

	rec := do(t, srv, "/api/properties/search/v1?campingStyle=glamping&sortBy=minPrice-asc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("response has no request id")
	}

	var body struct {
		Properties []struct {
			Name     string   `json:"name"`
			MinPrice *float64 `json:"minPrice"`
			Host     *struct {
				Name string `json:"name"`
			} `json:"host"`
		} `json:"properties"`
		Pagination search.Pagination `json:"pagination"`
	}

	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	// the cloud cabin is inactive, so only Langbiang offers active glamping
	if body.Pagination.Total != 1 || len(body.Properties) != 1 {
		t.Fatalf("result = %+v, want only Langbiang Glamping", body)
	}

	got := body.Properties[0]
	if got.Name != "Langbiang Glamping" || got.MinPrice == nil || *got.MinPrice != 900000 {
		t.Errorf("listing = %+v", got)
	}

	if got.Host == nil || got.Host.Name != "Lan Nguyen" {
		t.Errorf("host = %+v", got.Host)
	}
}

func TestLiveness(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	rec := do(t, srv, "/liveness")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/liveness", nil)
	req.Header.Set(requestIDHeader, "4f8c7a4e-2b1d-4d3e-9a55-0c6b1f0e7d21")

	rec := httptest.NewRecorder()
	srv.Srv().Handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "4f8c7a4e-2b1d-4d3e-9a55-0c6b1f0e7d21" {
		t.Errorf("request id = %q", got)
	}
}

func TestParseCriteriaDateOffset(t *testing.T) {
	c, err := parseCriteria(url.Values{
		"checkIn":  {"2024-07-05T00:30:00+07:00"},
		"checkOut": {"2024-07-07"},
	})
	if err != nil {
		t.Fatalf("parseCriteria() error = %v", err)
	}

	n := c.Normalized(search.Defaults{Limit: 10})

	if y, m, d := n.CheckIn.Date(); y != 2024 || m != 7 || d != 5 {
		t.Errorf("CheckIn = %v, want 2024-07-05", n.CheckIn)
	}
}
