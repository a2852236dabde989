package web

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// queryReader collects parse failures of query parameters into one InputError.
type queryReader struct {
	values url.Values
	errs   *search.InputError
}

func (q *queryReader) str(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

// list accepts repeated keys, "key[]" keys and comma separated values.
func (q *queryReader) list(key string) []string {
	var out []string

	for _, raw := range append(q.values[key], q.values[key+"[]"]...) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

func (q *queryReader) integer(key string) int {
	raw := q.str(key)
	if raw == "" {
		return 0
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errs.AddError(key, "must be an integer")

		return 0
	}

	return n
}

func (q *queryReader) number(key string) *float64 {
	raw := q.str(key)
	if raw == "" {
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.errs.AddError(key, "must be a number")

		return nil
	}

	return &f
}

func (q *queryReader) flag(key string) *bool {
	raw := q.str(key)
	if raw == "" {
		return nil
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.errs.AddError(key, "must be true or false")

		return nil
	}

	return &b
}

func (q *queryReader) date(key string) *time.Time {
	raw := q.str(key)
	if raw == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	q.errs.AddError(key, "must be a date in YYYY-MM-DD or RFC 3339 format")

	return nil
}

// parseCriteria reads search criteria from query parameters. Malformed values
// are reported as an *search.InputError.
func parseCriteria(values url.Values) (search.Criteria, error) {
	q := &queryReader{values: values, errs: search.NewInputError()}

	c := search.Criteria{
		Search:        q.str("search"),
		City:          q.str("city"),
		State:         q.str("state"),
		Country:       q.str("country"),
		CheckIn:       q.date("checkIn"),
		CheckOut:      q.date("checkOut"),
		Guests:        q.integer("guests"),
		Pets:          q.integer("pets"),
		Lat:           q.number("lat"),
		Lng:           q.number("lng"),
		Radius:        q.number("radius"),
		PropertyTypes: q.list("propertyType"),
		CampingStyles: q.list("campingStyle"),
		Amenities:     q.list("amenities"),
		IsActive:      q.flag("isActive"),
		IsFeatured:    q.flag("isFeatured"),
		IsVerified:    q.flag("isVerified"),
		Host:          q.str("host"),
		MinRating:     q.number("minRating"),
		SortBy:        search.SortKey(q.str("sortBy")),
		Page:          q.integer("page"),
		Limit:         q.integer("limit"),
	}

	// instantBook takes precedence over its instantBooking alias.
	c.InstantBook = q.flag("instantBook")
	if c.InstantBook == nil {
		c.InstantBook = q.flag("instantBooking")
	}

	if !q.errs.Empty() {
		return search.Criteria{}, q.errs
	}

	return c, nil
}
