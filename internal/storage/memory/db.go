package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

type Config struct {
	L *logger.Logger
}

// DB keeps properties, sites, bookings and hosts in process. It serves every
// store the search engine reads from.
type DB struct {
	mu         sync.RWMutex
	l          *logger.Logger
	properties map[string]*search.Property
	sites      map[string]*search.Site
	bookings   map[string]*search.Booking
	hosts      map[string]*search.HostSummary
}

func New(conf Config) *DB {
	if conf.L == nil {
		conf.L = logger.Discard()
	}

	//nolint:exhaustruct
	return &DB{
		l:          conf.L,
		properties: make(map[string]*search.Property),
		sites:      make(map[string]*search.Site),
		bookings:   make(map[string]*search.Booking),
		hosts:      make(map[string]*search.HostSummary),
	}
}

func (db *DB) SaveProperties(_ context.Context, properties []*search.Property) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range properties {
		if p.ID == "" {
			return fmt.Errorf("save property %q: %w", p.Name, ErrMissingID)
		}

		if p.CancellationPolicy != nil {
			p.CancellationPolicy.Normalize()
		}

		db.properties[p.ID] = p
	}

	db.l.LogDebugf("Saved %d properties", len(properties))

	return nil
}

func (db *DB) SaveSites(_ context.Context, sites []*search.Site) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range sites {
		if s.ID == "" {
			return fmt.Errorf("save site %q: %w", s.Name, ErrMissingID)
		}

		if _, ok := db.properties[s.PropertyID]; !ok {
			return fmt.Errorf("save site %s of property %s: %w", s.ID, s.PropertyID, ErrUnknownProperty)
		}

		db.sites[s.ID] = s
	}

	db.l.LogDebugf("Saved %d sites", len(sites))

	return nil
}

func (db *DB) SaveBookings(_ context.Context, bookings []*search.Booking) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, b := range bookings {
		if b.ID == "" {
			return fmt.Errorf("save booking of site %s: %w", b.SiteID, ErrMissingID)
		}

		if _, ok := db.sites[b.SiteID]; !ok {
			return fmt.Errorf("save booking %s on site %s: %w", b.ID, b.SiteID, ErrUnknownSite)
		}

		db.bookings[b.ID] = b
	}

	db.l.LogDebugf("Saved %d bookings", len(bookings))

	return nil
}

func (db *DB) SaveHosts(_ context.Context, hosts []*search.HostSummary) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, h := range hosts {
		if h.ID == "" {
			return fmt.Errorf("save host %q: %w", h.Name, ErrMissingID)
		}

		db.hosts[h.ID] = h
	}

	return nil
}

func (db *DB) FindProperties(
	_ context.Context,
	q search.PropertyQuery,
	sortFields []search.SortField,
	skip, limit int64,
) ([]search.Property, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	matched := db.matchProperties(q)

	less, err := propertyLess(sortFields, q.Geo)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j])
	})

	matched = page(matched, skip, limit)

	out := make([]search.Property, 0, len(matched))
	for _, p := range matched {
		out = append(out, *p)
	}

	return out, nil
}

func (db *DB) CountProperties(_ context.Context, q search.PropertyQuery) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.matchProperties(q))), nil
}

func (db *DB) FindPropertiesByMinPrice(
	_ context.Context,
	q search.PropertyQuery,
	desc bool,
	skip, limit int64,
) ([]search.PricedProperty, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	matched := db.matchProperties(q)

	priced := make([]search.PricedProperty, 0, len(matched))

	for _, p := range matched {
		price, ok := db.minActivePrice(p.ID)
		if !ok {
			price = search.NoActivePrice
		}

		priced = append(priced, search.PricedProperty{Property: *p, MinPrice: price})
	}

	sort.SliceStable(priced, func(i, j int) bool {
		a, b := priced[i], priced[j]

		aMissing, bMissing := a.MinPrice >= search.NoActivePrice, b.MinPrice >= search.NoActivePrice
		if aMissing != bMissing {
			return bMissing
		}

		if a.MinPrice != b.MinPrice {
			if desc {
				return a.MinPrice > b.MinPrice
			}

			return a.MinPrice < b.MinPrice
		}

		return a.ID < b.ID
	})

	return page(priced, skip, limit), nil
}

func (db *DB) FindSiteRefs(_ context.Context, q search.SiteQuery) ([]search.SiteRef, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var refs []search.SiteRef

	for _, s := range db.sites {
		if siteMatches(s, q) {
			refs = append(refs, search.SiteRef{ID: s.ID, PropertyID: s.PropertyID})
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })

	return refs, nil
}

func (db *DB) MinActivePrice(_ context.Context, propertyID string) (float64, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	price, ok := db.minActivePrice(propertyID)

	return price, ok, nil
}

func (db *DB) FindBookings(_ context.Context, q search.BookingQuery) ([]search.Booking, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	sites := search.NewIDSet(q.SiteIDs...)
	statuses := make(map[search.BookingStatus]struct{}, len(q.Statuses))

	for _, status := range q.Statuses {
		statuses[status] = struct{}{}
	}

	var out []search.Booking

	for _, b := range db.bookings {
		if !sites.Has(b.SiteID) {
			continue
		}

		if _, ok := statuses[b.Status]; len(statuses) > 0 && !ok {
			continue
		}

		// overlap candidates only, exact conflict checks belong to the caller
		if !b.CheckIn.Before(q.Range.CheckOut) || !b.CheckOut.After(q.Range.CheckIn) {
			continue
		}

		out = append(out, *b)
	}

	return out, nil
}

func (db *DB) HostSummaries(_ context.Context, ids []string) (map[string]search.HostSummary, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make(map[string]search.HostSummary, len(ids))

	for _, id := range ids {
		if h, ok := db.hosts[id]; ok {
			out[id] = *h
		}
	}

	return out, nil
}

func (db *DB) minActivePrice(propertyID string) (float64, bool) {
	var (
		minPrice float64
		found    bool
	)

	for _, s := range db.sites {
		if s.PropertyID != propertyID || !s.IsActive {
			continue
		}

		if !found || s.Pricing.BasePrice < minPrice {
			minPrice = s.Pricing.BasePrice
			found = true
		}
	}

	return minPrice, found
}

func (db *DB) matchProperties(q search.PropertyQuery) []*search.Property {
	var ids search.IDSet
	if q.Restricted {
		ids = search.NewIDSet(q.IDs...)
	}

	out := make([]*search.Property, 0, len(db.properties))

	for _, p := range db.properties {
		if q.Restricted && !ids.Has(p.ID) {
			continue
		}

		if propertyMatches(p, q) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func propertyMatches(p *search.Property, q search.PropertyQuery) bool {
	switch {
	case q.IsActive != nil && p.IsActive != *q.IsActive,
		q.IsFeatured != nil && p.IsFeatured != *q.IsFeatured,
		q.IsVerified != nil && p.IsVerified != *q.IsVerified,
		q.HostID != "" && p.HostID != q.HostID,
		q.MinRating != nil && p.Rating.Average < *q.MinRating,
		q.City != "" && !containsFold(p.Address.City, q.City),
		q.State != "" && !containsFold(p.Address.State, q.State),
		q.Country != "" && p.Address.Country != q.Country,
		q.Text != "" && !matchesText(p, q.Text),
		q.Geo != nil && !q.Geo.Contains(p.Address.Location):
		return false
	}

	return true
}

// matchesText approximates a full-text index: every word must appear in the
// name, description or city.
func matchesText(p *search.Property, text string) bool {
	haystack := strings.ToLower(strings.Join([]string{p.Name, p.Description, p.Address.City}, " "))

	for _, word := range strings.Fields(strings.ToLower(text)) {
		if !strings.Contains(haystack, word) {
			return false
		}
	}

	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func siteMatches(s *search.Site, q search.SiteQuery) bool {
	switch {
	case q.ActiveOnly && !s.IsActive,
		q.MinGuests > 0 && s.Capacity.MaxGuests < q.MinGuests,
		q.MinPets > 0 && s.Capacity.MaxPets < q.MinPets,
		q.InstantBookOnly && !s.BookingSettings.InstantBook:
		return false
	}

	if q.Nights > 0 {
		if s.BookingSettings.MinimumNights > q.Nights {
			return false
		}

		if maxNights := s.BookingSettings.MaximumNights; maxNights != nil && *maxNights < q.Nights {
			return false
		}
	}

	if len(q.AccommodationTypes) > 0 && !containsType(q.AccommodationTypes, s.AccommodationType) {
		return false
	}

	if len(q.AmenityIDs) > 0 && !intersects(q.AmenityIDs, s.Amenities) {
		return false
	}

	return true
}

func containsType(types []search.AccommodationType, t search.AccommodationType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}

	return false
}

func intersects(wanted, have []string) bool {
	set := search.NewIDSet(have...)

	for _, id := range wanted {
		if set.Has(id) {
			return true
		}
	}

	return false
}

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return items[:0]
	}

	items = items[skip:]

	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}

	return items
}
