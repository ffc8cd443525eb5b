package domain

import "time"

// SearchFilters holds the user-entered search criteria for one submission.
// Every setter enforces its own invariant at the call site, so after any
// sequence of calls the held range is valid: check-out is strictly after
// check-in, and guest/room counts are at least 1. Out-of-range inputs are
// clamped silently rather than rejected.
type SearchFilters struct {
	location string
	checkIn  time.Time
	checkOut time.Time
	guests   int
	rooms    int
	today    time.Time
}

// NewSearchFilters returns filters with the form-mount defaults:
// check-in today, check-out tomorrow, one guest, one room.
func NewSearchFilters() *SearchFilters {
	return NewSearchFiltersAt(time.Now())
}

// NewSearchFiltersAt pins "today" for deterministic tests.
func NewSearchFiltersAt(now time.Time) *SearchFilters {
	today := day(now)
	return &SearchFilters{
		checkIn:  today,
		checkOut: today.AddDate(0, 0, 1),
		guests:   1,
		rooms:    1,
		today:    today,
	}
}

// SetLocation accepts any string; empty means "any location".
func (f *SearchFilters) SetLocation(v string) { f.location = v }

// SetCheckIn clamps dates before today up to today. If the held check-out no
// longer follows the new check-in it is advanced to check-in + 1 day.
func (f *SearchFilters) SetCheckIn(d time.Time) {
	d = day(d)
	if d.Before(f.today) {
		d = f.today
	}
	f.checkIn = d
	if !f.checkOut.After(f.checkIn) {
		f.checkOut = f.checkIn.AddDate(0, 0, 1)
	}
}

// SetCheckOut clamps dates at or before check-in to check-in + 1 day.
func (f *SearchFilters) SetCheckOut(d time.Time) {
	d = day(d)
	if !d.After(f.checkIn) {
		d = f.checkIn.AddDate(0, 0, 1)
	}
	f.checkOut = d
}

// SetGuests clamps values below 1 to 1. The guest menu presented by the form
// stops at 6, but that is advisory only; larger values are accepted.
func (f *SearchFilters) SetGuests(n int) {
	if n < 1 {
		n = 1
	}
	f.guests = n
}

// SetRooms clamps values below 1 to 1.
func (f *SearchFilters) SetRooms(n int) {
	if n < 1 {
		n = 1
	}
	f.rooms = n
}

func (f *SearchFilters) Location() string    { return f.location }
func (f *SearchFilters) CheckIn() time.Time  { return f.checkIn }
func (f *SearchFilters) CheckOut() time.Time { return f.checkOut }
func (f *SearchFilters) Guests() int         { return f.guests }
func (f *SearchFilters) Rooms() int          { return f.rooms }

// GuestOptions is the fixed menu the search form offers.
func GuestOptions() []int { return []int{1, 2, 3, 4, 5, 6} }

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
