package memory

import (
	"fmt"
	"strings"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

type lessFunc func(a, b *search.Property) bool

// propertyLess orders properties by the given fields, then by distance for a
// nearest-first geo filter, then by id.
func propertyLess(fields []search.SortField, geo *search.GeoFilter) (lessFunc, error) {
	compares := make([]func(a, b *search.Property) int, 0, len(fields)+2) //nolint:gomnd

	for _, f := range fields {
		cmp, err := compareBy(f.Field)
		if err != nil {
			return nil, err
		}

		if f.Desc {
			asc := cmp
			cmp = func(a, b *search.Property) int { return -asc(a, b) }
		}

		compares = append(compares, cmp)
	}

	if len(fields) == 0 && geo != nil && geo.Mode == search.GeoNearest {
		compares = append(compares, func(a, b *search.Property) int {
			return compareFloat(geo.DistanceKm(a.Address.Location), geo.DistanceKm(b.Address.Location))
		})
	}

	compares = append(compares, func(a, b *search.Property) int {
		return strings.Compare(a.ID, b.ID)
	})

	return func(a, b *search.Property) bool {
		for _, cmp := range compares {
			if c := cmp(a, b); c != 0 {
				return c < 0
			}
		}

		return false
	}, nil
}

func compareBy(field string) (func(a, b *search.Property) int, error) {
	switch field {
	case search.FieldCreatedAt:
		return func(a, b *search.Property) int { return a.CreatedAt.Compare(b.CreatedAt) }, nil
	case search.FieldRatingAverage:
		return func(a, b *search.Property) int { return compareFloat(a.Rating.Average, b.Rating.Average) }, nil
	case search.FieldRatingCount:
		return func(a, b *search.Property) int { return a.Rating.Count - b.Rating.Count }, nil
	case search.FieldName:
		return func(a, b *search.Property) int { return strings.Compare(a.Name, b.Name) }, nil
	case search.FieldTotalSites:
		return func(a, b *search.Property) int { return a.Stats.TotalSites - b.Stats.TotalSites }, nil
	}

	return nil, fmt.Errorf("sort by %q: %w", field, ErrUnsupportedSortKey)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}
