package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type SortKey string

const (
	SortPopular      SortKey = "popular"
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortRating       SortKey = "rating"
	SortReviewCount  SortKey = "reviewCount"
	SortMinPriceAsc  SortKey = "minPrice-asc"
	SortMinPriceDesc SortKey = "minPrice-desc"
	SortName         SortKey = "name"
	SortTotalSites   SortKey = "totalSites"
	SortNearest      SortKey = "nearestFirst"
)

type CampingStyle string

const (
	StyleTent     CampingStyle = "tent"
	StyleRV       CampingStyle = "rv"
	StyleGlamping CampingStyle = "glamping"
)

// Criteria is a guest's search request. Nil pointers and empty values mean
// "no constraint".
type Criteria struct {
	Search        string
	City          string
	State         string
	Country       string
	CheckIn       *time.Time
	CheckOut      *time.Time
	Guests        int      `validate:"gte=0"`
	Pets          int      `validate:"gte=0"`
	Lat           *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lng           *float64 `validate:"omitempty,gte=-180,lte=180"`
	Radius        *float64 `validate:"omitempty,gt=0"`
	PropertyTypes []string `validate:"dive,oneof=tent rv cabin yurt treehouse tiny_home safari_tent bell_tent glamping_pod dome airstream vintage_trailer van"` //nolint:lll
	CampingStyles []string `validate:"dive,oneof=tent rv glamping"`
	Amenities     []string
	InstantBook   *bool
	IsActive      *bool
	IsFeatured    *bool
	IsVerified    *bool
	Host          string
	MinRating     *float64 `validate:"omitempty,gte=0,lte=5"`
	SortBy        SortKey  `validate:"oneof=popular newest oldest rating reviewCount minPrice-asc minPrice-desc name totalSites nearestFirst"` //nolint:lll
	Page          int      `validate:"gte=1"`
	Limit         int      `validate:"gte=1"`
}

// Defaults bound paging for a search.
type Defaults struct {
	Limit    int
	MaxLimit int
}

var validate = validator.New()

// Normalized returns a sanitized copy of c.
func (c Criteria) Normalized(d Defaults) Criteria {
	n := c
	n.Search = strings.TrimSpace(n.Search)
	n.City = strings.TrimSpace(n.City)
	n.State = strings.TrimSpace(n.State)
	n.Country = strings.TrimSpace(n.Country)
	n.Host = strings.TrimSpace(n.Host)
	n.PropertyTypes = normalizeTokens(n.PropertyTypes, true)
	n.CampingStyles = normalizeTokens(n.CampingStyles, true)
	n.Amenities = normalizeTokens(n.Amenities, false)
	n.CheckIn = normalizeDate(n.CheckIn)
	n.CheckOut = normalizeDate(n.CheckOut)

	if n.IsActive == nil {
		active := true
		n.IsActive = &active
	}

	switch strings.TrimSpace(string(n.SortBy)) {
	case "", string(SortPopular):
		n.SortBy = SortPopular
	case "nearest", string(SortNearest):
		n.SortBy = SortNearest
	}

	if n.Page < 1 {
		n.Page = 1
	}

	if n.Limit < 1 {
		n.Limit = d.Limit
	}

	if d.MaxLimit > 0 && n.Limit > d.MaxLimit {
		n.Limit = d.MaxLimit
	}

	return n
}

// Validate reports malformed fields as an *InputError.
func (c Criteria) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate criteria: %w", err)
	}

	inputErr := NewInputError()

	for _, fe := range fieldErrs {
		inputErr.AddError(fieldName(fe.Field()), fmt.Sprintf("failed on '%s' rule", fe.Tag()))
	}

	return inputErr
}

func (c Criteria) HasDates() bool {
	return c.CheckIn != nil && c.CheckOut != nil
}

func (c Criteria) Stay() DateRange {
	if !c.HasDates() {
		return DateRange{}
	}

	return DateRange{CheckIn: *c.CheckIn, CheckOut: *c.CheckOut}
}

func (c Criteria) HasGeo() bool {
	return c.Lat != nil && c.Lng != nil && c.Radius != nil
}

func fieldName(structField string) string {
	if i := strings.IndexByte(structField, '['); i >= 0 {
		structField = structField[:i]
	}

	switch structField {
	case "PropertyTypes":
		return "propertyType"
	case "CampingStyles":
		return "campingStyle"
	case "SortBy":
		return "sortBy"
	case "MinRating":
		return "minRating"
	}

	if structField == "" {
		return structField
	}

	return strings.ToLower(structField[:1]) + structField[1:]
}

func normalizeTokens(tokens []string, lower bool) []string {
	if len(tokens) == 0 {
		return nil
	}

	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if lower {
			token = strings.ToLower(token)
		}

		if token == "" {
			continue
		}

		if _, ok := seen[token]; ok {
			continue
		}

		seen[token] = struct{}{}
		out = append(out, token)
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

func normalizeDate(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}

	y, m, d := value.Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return &t
}
