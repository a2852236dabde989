package search

import (
	"testing"
	"time"
)

func july(day int) time.Time {
	return time.Date(2024, time.July, day, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	requested := DateRange{CheckIn: july(10), CheckOut: july(12)}

	tests := []struct {
		name   string
		booked DateRange
		want   bool
	}{
		{name: "same stay", booked: DateRange{CheckIn: july(10), CheckOut: july(12)}, want: true},
		{name: "ends at check-in", booked: DateRange{CheckIn: july(8), CheckOut: july(10)}, want: false},
		{name: "starts at check-out", booked: DateRange{CheckIn: july(12), CheckOut: july(14)}, want: false},
		{name: "ends inside", booked: DateRange{CheckIn: july(9), CheckOut: july(11)}, want: true},
		{name: "starts inside", booked: DateRange{CheckIn: july(11), CheckOut: july(13)}, want: true},
		{name: "spans", booked: DateRange{CheckIn: july(9), CheckOut: july(13)}, want: true},
		{name: "inside", booked: DateRange{CheckIn: july(10), CheckOut: july(11)}, want: true},
		{name: "well before", booked: DateRange{CheckIn: july(1), CheckOut: july(5)}, want: false},
		{name: "well after", booked: DateRange{CheckIn: july(20), CheckOut: july(25)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(requested, tt.booked); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", requested, tt.booked, got, tt.want)
			}
		})
	}
}

func TestDateRangeNights(t *testing.T) {
	tests := []struct {
		name string
		r    DateRange
		want int
	}{
		{name: "two nights", r: DateRange{CheckIn: july(10), CheckOut: july(12)}, want: 2},
		{name: "same day", r: DateRange{CheckIn: july(10), CheckOut: july(10)}, want: 0},
		{name: "reversed", r: DateRange{CheckIn: july(12), CheckOut: july(10)}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}
