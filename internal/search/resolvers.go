package search

import (
	"context"
	"fmt"
)

// glampingTypes is the closed set of accommodation types offered as glamping.
var glampingTypes = []AccommodationType{
	AccommodationCabin,
	AccommodationYurt,
	AccommodationTreehouse,
	AccommodationTinyHome,
	AccommodationSafariTent,
	AccommodationBellTent,
	AccommodationGlampingPod,
	AccommodationDome,
	AccommodationAirstream,
	AccommodationVintageTrailer,
	AccommodationVan,
}

// ExpandStyles maps coarse camping styles to concrete accommodation types.
// Unknown styles expand to nothing.
func ExpandStyles(styles []string) []AccommodationType {
	var out []AccommodationType

	for _, style := range styles {
		switch CampingStyle(style) {
		case StyleTent:
			out = append(out, AccommodationTent)
		case StyleRV:
			out = append(out, AccommodationRV)
		case StyleGlamping:
			out = append(out, glampingTypes...)
		}
	}

	return out
}

// accommodationTypes unions the expanded camping styles with explicit property types.
func accommodationTypes(c Criteria) []AccommodationType {
	expanded := ExpandStyles(c.CampingStyles)
	for _, t := range c.PropertyTypes {
		expanded = append(expanded, AccommodationType(t))
	}

	seen := make(map[AccommodationType]struct{}, len(expanded))
	out := make([]AccommodationType, 0, len(expanded))

	for _, t := range expanded {
		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}

// capacityQuery narrows active sites by guests, pets and stay length.
// Criteria that are not set add no clause.
func capacityQuery(c Criteria) SiteQuery {
	q := SiteQuery{
		ActiveOnly: true,
		MinGuests:  c.Guests,
		MinPets:    c.Pets,
	}

	if c.HasDates() {
		q.Nights = c.Stay().Nights()
	}

	return q
}

type resolver struct {
	name    string
	applies func(c Criteria) bool
	resolve func(ctx context.Context, c Criteria) (IDSet, error)
}

// resolvers lists the id-set filters in the order they narrow the candidates.
func (e *Engine) resolvers() []resolver {
	return []resolver{
		{name: "availability", applies: Criteria.HasDates, resolve: e.resolveAvailability},
		{name: "capacity", applies: needsCapacityOnly, resolve: e.resolveCapacity},
		{name: "amenities", applies: func(c Criteria) bool { return len(c.Amenities) > 0 }, resolve: e.resolveAmenities},
		{
			name:    "accommodation",
			applies: func(c Criteria) bool { return len(c.CampingStyles) > 0 || len(c.PropertyTypes) > 0 },
			resolve: e.resolveAccommodation,
		},
		{
			name:    "instantBook",
			applies: func(c Criteria) bool { return c.InstantBook != nil && *c.InstantBook },
			resolve: e.resolveInstantBook,
		},
	}
}

// needsCapacityOnly is true when guest or pet counts are given without a full
// stay; with a stay the availability resolver already applies capacity.
func needsCapacityOnly(c Criteria) bool {
	return !c.HasDates() && (c.Guests > 0 || c.Pets > 0)
}

func (e *Engine) resolveAvailability(ctx context.Context, c Criteria) (IDSet, error) {
	stay := c.Stay()
	if !stay.Valid() {
		e.l.LogDebugf("Stay %v - %v is empty, nothing is available", stay.CheckIn, stay.CheckOut)

		return IDSet{}, nil
	}

	refs, err := e.sites.FindSiteRefs(ctx, capacityQuery(c))
	if err != nil {
		return nil, fmt.Errorf("find capacity eligible sites: %w", err)
	}

	if len(refs) == 0 {
		return IDSet{}, nil
	}

	siteIDs := make([]string, 0, len(refs))
	for _, ref := range refs {
		siteIDs = append(siteIDs, ref.ID)
	}

	bookings, err := e.bookings.FindBookings(ctx, BookingQuery{
		SiteIDs:  siteIDs,
		Statuses: BlockingStatuses,
		Range:    stay,
	})
	if err != nil {
		return nil, fmt.Errorf("find bookings on %d sites: %w", len(siteIDs), err)
	}

	// A site with any conflicting booking is unavailable, whatever its
	// maxConcurrentBookings says.
	conflicting := make(IDSet)

	for i := range bookings {
		if bookings[i].BlocksCalendar() && Overlaps(stay, bookings[i].Range()) {
			conflicting[bookings[i].SiteID] = struct{}{}
		}
	}

	properties := make(IDSet)

	for _, ref := range refs {
		if !conflicting.Has(ref.ID) {
			properties[ref.PropertyID] = struct{}{}
		}
	}

	e.l.LogDebugf("Availability: %d sites eligible, %d booked, %d properties left", len(refs), len(conflicting), len(properties))

	return properties, nil
}

func (e *Engine) resolveCapacity(ctx context.Context, c Criteria) (IDSet, error) {
	return e.propertiesOfSites(ctx, capacityQuery(c))
}

func (e *Engine) resolveAmenities(ctx context.Context, c Criteria) (IDSet, error) {
	return e.propertiesOfSites(ctx, SiteQuery{ActiveOnly: true, AmenityIDs: c.Amenities})
}

func (e *Engine) resolveAccommodation(ctx context.Context, c Criteria) (IDSet, error) {
	types := accommodationTypes(c)
	if len(types) == 0 {
		return IDSet{}, nil
	}

	return e.propertiesOfSites(ctx, SiteQuery{ActiveOnly: true, AccommodationTypes: types})
}

func (e *Engine) resolveInstantBook(ctx context.Context, _ Criteria) (IDSet, error) {
	return e.propertiesOfSites(ctx, SiteQuery{ActiveOnly: true, InstantBookOnly: true})
}

// propertiesOfSites returns the distinct owners of the sites matching q.
func (e *Engine) propertiesOfSites(ctx context.Context, q SiteQuery) (IDSet, error) {
	refs, err := e.sites.FindSiteRefs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find sites: %w", err)
	}

	properties := make(IDSet, len(refs))
	for _, ref := range refs {
		properties[ref.PropertyID] = struct{}{}
	}

	return properties, nil
}
