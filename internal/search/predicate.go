package search

import "math"

// EarthRadiusKm is the sphere radius used to convert distances to radians.
const EarthRadiusKm = 6378.1

type GeoMode int

const (
	// GeoNearest selects by maximum distance and orders results nearest first.
	GeoNearest GeoMode = iota + 1
	// GeoWithinSphere selects inside a spherical cap and leaves ordering to the sort.
	GeoWithinSphere
)

func (m GeoMode) String() string {
	switch m {
	case GeoNearest:
		return "nearest"
	case GeoWithinSphere:
		return "withinSphere"
	}

	return "none"
}

type GeoFilter struct {
	Mode     GeoMode
	Center   GeoPoint
	RadiusKm float64
}

// NewGeoFilter picks the geo mode for a sort key. Stores cannot combine
// nearest-neighbour selection with any other ordering, so only the
// nearest-first sort (or no explicit sort) gets GeoNearest.
func NewGeoFilter(lat, lng, radiusKm float64, sortBy SortKey) *GeoFilter {
	mode := GeoWithinSphere
	if sortBy == SortNearest || sortBy == SortPopular || sortBy == "" {
		mode = GeoNearest
	}

	return &GeoFilter{
		Mode:     mode,
		Center:   NewGeoPoint(lat, lng),
		RadiusKm: radiusKm,
	}
}

func (g GeoFilter) MaxDistanceMeters() float64 {
	return g.RadiusKm * 1000 //nolint:gomnd
}

func (g GeoFilter) RadiusRadians() float64 {
	return g.RadiusKm / EarthRadiusKm
}

// DistanceKm is the great-circle distance from the filter center to p.
func (g GeoFilter) DistanceKm(p GeoPoint) float64 {
	return haversineKm(g.Center.Lat(), g.Center.Lng(), p.Lat(), p.Lng())
}

func (g GeoFilter) Contains(p GeoPoint) bool {
	if !p.Valid() {
		return false
	}

	return g.DistanceKm(p) <= g.RadiusKm
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0 //nolint:gomnd
	dLon := (lon2 - lon1) * math.Pi / 180.0 //nolint:gomnd
	la1 := lat1 * math.Pi / 180.0           //nolint:gomnd
	la2 := lat2 * math.Pi / 180.0           //nolint:gomnd
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(la1)*math.Cos(la2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a)) //nolint:gomnd
}

// PropertyQuery is the conjunction of property-level predicates for one search.
// Zero values mean "no constraint"; IDs only apply when Restricted is set.
type PropertyQuery struct {
	Restricted bool
	IDs        []string
	Text       string
	City       string
	State      string
	Country    string
	IsActive   *bool
	IsFeatured *bool
	IsVerified *bool
	HostID     string
	MinRating  *float64
	Geo        *GeoFilter
}

// SiteQuery selects sites. Zero-valued numeric limits are omitted.
type SiteQuery struct {
	ActiveOnly         bool
	MinGuests          int
	MinPets            int
	Nights             int
	AccommodationTypes []AccommodationType
	AmenityIDs         []string
	InstantBookOnly    bool
}

// BookingQuery selects bookings on SiteIDs with one of Statuses whose stay
// may overlap Range.
type BookingQuery struct {
	SiteIDs  []string
	Statuses []BookingStatus
	Range    DateRange
}

// Sort fields understood by property stores.
const (
	FieldCreatedAt     = "createdAt"
	FieldRatingAverage = "rating.average"
	FieldRatingCount   = "rating.count"
	FieldName          = "name"
	FieldTotalSites    = "stats.totalSites"
)

type SortField struct {
	Field string
	Desc  bool
}

// sortFieldsFor maps a stored-field sort key to store sort fields.
func sortFieldsFor(key SortKey, geo *GeoFilter) ([]SortField, error) {
	switch key {
	case SortNewest:
		return []SortField{{Field: FieldCreatedAt, Desc: true}}, nil
	case SortOldest:
		return []SortField{{Field: FieldCreatedAt}}, nil
	case SortRating:
		return []SortField{{Field: FieldRatingAverage, Desc: true}, {Field: FieldRatingCount, Desc: true}}, nil
	case SortReviewCount:
		return []SortField{{Field: FieldRatingCount, Desc: true}}, nil
	case SortName:
		return []SortField{{Field: FieldName}}, nil
	case SortTotalSites:
		return []SortField{{Field: FieldTotalSites, Desc: true}}, nil
	case SortNearest, SortPopular:
		if geo != nil && geo.Mode == GeoNearest {
			return nil, nil
		}

		return []SortField{{Field: FieldRatingCount, Desc: true}}, nil
	case SortMinPriceAsc, SortMinPriceDesc:
	}

	return nil, ErrUnknownSort
}
