package search

import "time"

const day = 24 * time.Hour

// DateRange is a half-open [CheckIn, CheckOut) stay.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func (r DateRange) Valid() bool {
	return r.CheckIn.Before(r.CheckOut)
}

// Nights counts whole nights between check-in and check-out.
func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}

	return int(r.CheckOut.Sub(r.CheckIn) / day)
}

// Overlaps reports whether a booked stay conflicts with the requested one.
// Check-out day is free for the next check-in, so touching ranges never conflict.
func Overlaps(requested, booked DateRange) bool {
	// booking starts inside the requested window
	startsInside := !booked.CheckIn.Before(requested.CheckIn) && booked.CheckIn.Before(requested.CheckOut)

	// booking ends inside the requested window
	endsInside := booked.CheckOut.After(requested.CheckIn) && !booked.CheckOut.After(requested.CheckOut)

	// booking covers the whole requested window
	spans := !booked.CheckIn.After(requested.CheckIn) && !booked.CheckOut.Before(requested.CheckOut)

	return startsInside || endsInside || spans
}
