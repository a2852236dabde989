package search

import (
	"sort"
	"time"
)

type AccommodationType string

const (
	AccommodationTent           AccommodationType = "tent"
	AccommodationRV             AccommodationType = "rv"
	AccommodationCabin          AccommodationType = "cabin"
	AccommodationYurt           AccommodationType = "yurt"
	AccommodationTreehouse      AccommodationType = "treehouse"
	AccommodationTinyHome       AccommodationType = "tiny_home"
	AccommodationSafariTent     AccommodationType = "safari_tent"
	AccommodationBellTent       AccommodationType = "bell_tent"
	AccommodationGlampingPod    AccommodationType = "glamping_pod"
	AccommodationDome           AccommodationType = "dome"
	AccommodationAirstream      AccommodationType = "airstream"
	AccommodationVintageTrailer AccommodationType = "vintage_trailer"
	AccommodationVan            AccommodationType = "van"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingRefunded  BookingStatus = "refunded"
)

// BlockingStatuses are the booking statuses that occupy a site's calendar.
var BlockingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

// GeoPoint is a GeoJSON point. Coordinates are stored as [lng, lat].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 { //nolint:gomnd
		return 0
	}

	return p.Coordinates[1]
}

func (p GeoPoint) Lng() float64 {
	if len(p.Coordinates) < 1 {
		return 0
	}

	return p.Coordinates[0]
}

func (p GeoPoint) Valid() bool {
	return len(p.Coordinates) == 2 //nolint:gomnd
}

type Address struct {
	Street   string   `json:"street,omitempty" bson:"street,omitempty"`
	City     string   `json:"city" bson:"city"`
	State    string   `json:"state" bson:"state"`
	Country  string   `json:"country" bson:"country"`
	Location GeoPoint `json:"location" bson:"location"`
}

type Rating struct {
	Average   float64            `json:"average" bson:"average"`
	Count     int                `json:"count" bson:"count"`
	Breakdown map[string]float64 `json:"breakdown,omitempty" bson:"breakdown,omitempty"`
}

type Stats struct {
	TotalSites    int `json:"totalSites" bson:"totalSites"`
	TotalBookings int `json:"totalBookings" bson:"totalBookings"`
}

type CancellationRule struct {
	DaysBeforeCheckIn int `json:"daysBeforeCheckIn" bson:"daysBeforeCheckIn"`
	RefundPercentage  int `json:"refundPercentage" bson:"refundPercentage"`
}

type CancellationPolicy struct {
	Type  string             `json:"type" bson:"type"`
	Rules []CancellationRule `json:"rules" bson:"rules"`
}

// Normalize keeps rules ordered by DaysBeforeCheckIn, largest first.
func (p *CancellationPolicy) Normalize() {
	sort.SliceStable(p.Rules, func(i, j int) bool {
		return p.Rules[i].DaysBeforeCheckIn > p.Rules[j].DaysBeforeCheckIn
	})
}

// RefundFor returns the refund percentage granted when cancelling daysBefore days
// ahead of check-in. Rules must be normalized.
func (p *CancellationPolicy) RefundFor(daysBefore int) int {
	for _, rule := range p.Rules {
		if daysBefore >= rule.DaysBeforeCheckIn {
			return rule.RefundPercentage
		}
	}

	return 0
}

type Property struct {
	ID                 string              `json:"id" bson:"_id"`
	Name               string              `json:"name" bson:"name"`
	Description        string              `json:"description,omitempty" bson:"description,omitempty"`
	HostID             string              `json:"hostId" bson:"host"`
	Address            Address             `json:"address" bson:"address"`
	IsActive           bool                `json:"isActive" bson:"isActive"`
	IsFeatured         bool                `json:"isFeatured" bson:"isFeatured"`
	IsVerified         bool                `json:"isVerified" bson:"isVerified"`
	Rating             Rating              `json:"rating" bson:"rating"`
	Stats              Stats               `json:"stats" bson:"stats"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty" bson:"cancellationPolicy,omitempty"`
	CreatedAt          time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type Capacity struct {
	MaxGuests   int `json:"maxGuests" bson:"maxGuests"`
	MaxPets     int `json:"maxPets" bson:"maxPets"`
	MaxVehicles int `json:"maxVehicles" bson:"maxVehicles"`
	MaxTents    int `json:"maxTents" bson:"maxTents"`
}

type BookingSettings struct {
	MinimumNights         int  `json:"minimumNights" bson:"minimumNights"`
	MaximumNights         *int `json:"maximumNights,omitempty" bson:"maximumNights,omitempty"`
	InstantBook           bool `json:"instantBook" bson:"instantBook"`
	MaxConcurrentBookings int  `json:"maxConcurrentBookings" bson:"maxConcurrentBookings"`
}

type Fees struct {
	Cleaning float64 `json:"cleaning,omitempty" bson:"cleaning,omitempty"`
	Pet      float64 `json:"pet,omitempty" bson:"pet,omitempty"`
	Vehicle  float64 `json:"vehicle,omitempty" bson:"vehicle,omitempty"`
	Service  float64 `json:"service,omitempty" bson:"service,omitempty"`
}

type Pricing struct {
	BasePrice    float64  `json:"basePrice" bson:"basePrice"`
	WeekendPrice *float64 `json:"weekendPrice,omitempty" bson:"weekendPrice,omitempty"`
	Currency     string   `json:"currency,omitempty" bson:"currency,omitempty"`
	Fees         Fees     `json:"fees" bson:"fees"`
}

type Site struct {
	ID                string            `json:"id" bson:"_id"`
	PropertyID        string            `json:"propertyId" bson:"property"`
	Name              string            `json:"name" bson:"name"`
	AccommodationType AccommodationType `json:"accommodationType" bson:"accommodationType"`
	Capacity          Capacity          `json:"capacity" bson:"capacity"`
	BookingSettings   BookingSettings   `json:"bookingSettings" bson:"bookingSettings"`
	Pricing           Pricing           `json:"pricing" bson:"pricing"`
	Amenities         []string          `json:"amenities" bson:"amenities"`
	IsActive          bool              `json:"isActive" bson:"isActive"`
}

// SiteRef is the id-only projection of a site.
type SiteRef struct {
	ID         string `bson:"_id"`
	PropertyID string `bson:"property"`
}

type Booking struct {
	ID         string        `json:"id" bson:"_id"`
	SiteID     string        `json:"siteId" bson:"site"`
	PropertyID string        `json:"propertyId" bson:"property"`
	GuestID    string        `json:"guestId" bson:"guest"`
	CheckIn    time.Time     `json:"checkIn" bson:"checkIn"`
	CheckOut   time.Time     `json:"checkOut" bson:"checkOut"`
	Status     BookingStatus `json:"status" bson:"status"`
}

func (b *Booking) BlocksCalendar() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// HostSummary is the public part of a host profile attached to search results.
type HostSummary struct {
	ID     string `json:"-" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// PricedProperty is a property with its lowest active nightly price computed by the store.
type PricedProperty struct {
	Property `bson:",inline"`
	MinPrice float64 `bson:"minPrice"`
}

// Listing is one row of a search result.
type Listing struct {
	*Property
	Host     *HostSummary `json:"host"`
	MinPrice *float64     `json:"minPrice"`
}
