package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

type catalog interface {
	SaveHosts(ctx context.Context, hosts []*search.HostSummary) error
	SaveProperties(ctx context.Context, properties []*search.Property) error
	SaveSites(ctx context.Context, sites []*search.Site) error
}

type ledger interface {
	SaveBookings(ctx context.Context, bookings []*search.Booking) error
}

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func nights(n int) *int {
	return &n
}

func price(p float64) *float64 {
	return &p
}

// idPool hands out pre-generated ids in order.
type idPool struct {
	ids []string
}

func newIDPool(ctx context.Context, gen idGenerator, n int) (*idPool, error) {
	ids := make([]string, 0, n)

	for i := 0; i < n; i++ {
		id, err := gen.GetID(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}

		ids = append(ids, id)
	}

	return &idPool{ids: ids}, nil
}

func (p *idPool) next() string {
	id := p.ids[0]
	p.ids = p.ids[1:]

	return id
}

// Dataset is the demo catalog written by Up.
type Dataset struct {
	Hosts      []*search.HostSummary
	Properties []*search.Property
	Sites      []*search.Site
	Bookings   []*search.Booking
}

const datasetIDs = 32

// Demo builds a small catalog of Vietnamese campgrounds with a few bookings in
// July 2024.
func Demo(ctx context.Context, gen idGenerator) (*Dataset, error) {
	ids, err := newIDPool(ctx, gen, datasetIDs)
	if err != nil {
		return nil, err
	}

	wifi, firePit, showers := ids.next(), ids.next(), ids.next()

	hostMinh := &search.HostSummary{ID: ids.next(), Name: "Minh Tran", Avatar: "https://img.example.com/hosts/minh.jpg"}
	hostLan := &search.HostSummary{ID: ids.next(), Name: "Lan Nguyen"}

	created := date(2023, 3, 1)

	pineHill := &search.Property{
		ID:          ids.next(),
		Name:        "Pine Hill Campground",
		Description: "Tent and RV pitches under the pines, ten minutes from the lake.",
		HostID:      hostMinh.ID,
		Address: search.Address{
			City:     "Da Lat",
			State:    "Lam Dong",
			Country:  "Vietnam",
			Location: search.NewGeoPoint(11.9404, 108.4583),
		},
		IsActive:   true,
		IsFeatured: true,
		IsVerified: true,
		Rating:     search.Rating{Average: 4.7, Count: 128},
		CancellationPolicy: &search.CancellationPolicy{
			Type: "moderate",
			Rules: []search.CancellationRule{
				{DaysBeforeCheckIn: 1, RefundPercentage: 50},
				{DaysBeforeCheckIn: 5, RefundPercentage: 100},
			},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	langbiang := &search.Property{
		ID:          ids.next(),
		Name:        "Langbiang Glamping",
		Description: "Domes and safari tents facing the Langbiang peaks.",
		HostID:      hostLan.ID,
		Address: search.Address{
			City:     "Lac Duong",
			State:    "Lam Dong",
			Country:  "Vietnam",
			Location: search.NewGeoPoint(12.0464, 108.4400),
		},
		IsActive:   true,
		IsVerified: true,
		Rating:     search.Rating{Average: 4.9, Count: 64},
		CreatedAt:  created.AddDate(0, 4, 0),
		UpdatedAt:  created.AddDate(0, 4, 0),
	}

	muiNe := &search.Property{
		ID:          ids.next(),
		Name:        "Mui Ne Dunes Camp",
		Description: "Beach camping next to the red sand dunes.",
		HostID:      hostMinh.ID,
		Address: search.Address{
			City:     "Phan Thiet",
			State:    "Binh Thuan",
			Country:  "Vietnam",
			Location: search.NewGeoPoint(10.9333, 108.2833),
		},
		IsActive:  true,
		Rating:    search.Rating{Average: 4.2, Count: 40},
		CreatedAt: created.AddDate(0, 8, 0),
		UpdatedAt: created.AddDate(0, 8, 0),
	}

	taXua := &search.Property{
		ID:          ids.next(),
		Name:        "Ta Xua Cloud Camp",
		Description: "Cabins above the cloud line, currently closed for renovation.",
		HostID:      hostLan.ID,
		Address: search.Address{
			City:     "Bac Yen",
			State:    "Son La",
			Country:  "Vietnam",
			Location: search.NewGeoPoint(21.3167, 104.4333),
		},
		IsActive:  true,
		Rating:    search.Rating{Average: 4.5, Count: 12},
		CreatedAt: created.AddDate(1, 0, 0),
		UpdatedAt: created.AddDate(1, 0, 0),
	}

	sites := []*search.Site{
		{
			ID:                ids.next(),
			PropertyID:        pineHill.ID,
			Name:              "Lakeside tent pitch",
			AccommodationType: search.AccommodationTent,
			Capacity:          search.Capacity{MaxGuests: 4, MaxPets: 2, MaxTents: 2},
			BookingSettings:   search.BookingSettings{MinimumNights: 1, InstantBook: true, MaxConcurrentBookings: 1},
			Pricing:           search.Pricing{BasePrice: 250000, Currency: "VND"},
			Amenities:         []string{firePit, showers},
			IsActive:          true,
		},
		{
			ID:                ids.next(),
			PropertyID:        pineHill.ID,
			Name:              "RV bay",
			AccommodationType: search.AccommodationRV,
			Capacity:          search.Capacity{MaxGuests: 6, MaxPets: 1, MaxVehicles: 1},
			BookingSettings:   search.BookingSettings{MinimumNights: 2, MaximumNights: nights(14), MaxConcurrentBookings: 1},
			Pricing:           search.Pricing{BasePrice: 400000, Currency: "VND"},
			Amenities:         []string{wifi, showers},
			IsActive:          true,
		},
		{
			ID:                ids.next(),
			PropertyID:        langbiang.ID,
			Name:              "Stargazer dome",
			AccommodationType: search.AccommodationDome,
			Capacity:          search.Capacity{MaxGuests: 2},
			BookingSettings:   search.BookingSettings{MinimumNights: 1, InstantBook: true, MaxConcurrentBookings: 1},
			Pricing:           search.Pricing{BasePrice: 1200000, WeekendPrice: price(1500000), Currency: "VND"},
			Amenities:         []string{wifi},
			IsActive:          true,
		},
		{
			ID:                ids.next(),
			PropertyID:        langbiang.ID,
			Name:              "Safari tent",
			AccommodationType: search.AccommodationSafariTent,
			Capacity:          search.Capacity{MaxGuests: 4, MaxPets: 1},
			BookingSettings:   search.BookingSettings{MinimumNights: 2, MaxConcurrentBookings: 1},
			Pricing:           search.Pricing{BasePrice: 900000, Currency: "VND"},
			Amenities:         []string{firePit},
			IsActive:          true,
		},
		{
			ID:                ids.next(),
			PropertyID:        muiNe.ID,
			Name:              "Dune tent",
			AccommodationType: search.AccommodationTent,
			Capacity:          search.Capacity{MaxGuests: 3, MaxTents: 1},
			BookingSettings:   search.BookingSettings{MinimumNights: 1, MaxConcurrentBookings: 1},
			Pricing:           search.Pricing{BasePrice: 180000, Currency: "VND"},
			Amenities:         []string{showers},
			IsActive:          true,
		},
		{
			ID:                ids.next(),
			PropertyID:        taXua.ID,
			Name:              "Cloud cabin",
			AccommodationType: search.AccommodationCabin,
			Capacity:          search.Capacity{MaxGuests: 5},
			BookingSettings:   search.BookingSettings{MinimumNights: 1, MaxConcurrentBookings: 1},
			Pricing:           search.Pricing{BasePrice: 700000, Currency: "VND"},
			IsActive:          false,
		},
	}

	properties := []*search.Property{pineHill, langbiang, muiNe, taXua}

	for _, p := range properties {
		for _, s := range sites {
			if s.PropertyID == p.ID {
				p.Stats.TotalSites++
			}
		}
	}

	lakeside, dome := sites[0], sites[2]

	bookings := []*search.Booking{
		{
			ID:         ids.next(),
			SiteID:     lakeside.ID,
			PropertyID: lakeside.PropertyID,
			GuestID:    ids.next(),
			CheckIn:    date(2024, 7, 10),
			CheckOut:   date(2024, 7, 12),
			Status:     search.BookingConfirmed,
		},
		{
			ID:         ids.next(),
			SiteID:     dome.ID,
			PropertyID: dome.PropertyID,
			GuestID:    ids.next(),
			CheckIn:    date(2024, 7, 9),
			CheckOut:   date(2024, 7, 11),
			Status:     search.BookingCancelled,
		},
	}

	return &Dataset{
		Hosts:      []*search.HostSummary{hostMinh, hostLan},
		Properties: properties,
		Sites:      sites,
		Bookings:   bookings,
	}, nil
}

// Up seeds the demo catalog into c and its bookings into b.
func Up(ctx context.Context, l *logger.Logger, c catalog, b ledger, gen idGenerator) error {
	data, err := Demo(ctx, gen)
	if err != nil {
		return fmt.Errorf("build demo dataset: %w", err)
	}

	if err := c.SaveHosts(ctx, data.Hosts); err != nil {
		return fmt.Errorf("save hosts to storage: %w", err)
	}

	if err := c.SaveProperties(ctx, data.Properties); err != nil {
		return fmt.Errorf("save properties to storage: %w", err)
	}

	if err := c.SaveSites(ctx, data.Sites); err != nil {
		return fmt.Errorf("save sites to storage: %w", err)
	}

	if err := b.SaveBookings(ctx, data.Bookings); err != nil {
		return fmt.Errorf("save bookings to storage: %w", err)
	}

	l.LogInfo(
		"Demo data has been seeded: %d properties, %d sites, %d bookings",
		len(data.Properties),
		len(data.Sites),
		len(data.Bookings),
	)

	return nil
}
