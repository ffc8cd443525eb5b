package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"staybooker/internal/domain"
)

// LookupState is the booking-confirmation state machine.
type LookupState int

const (
	// LookupUnauthenticated is terminal: the caller must redirect to login.
	LookupUnauthenticated LookupState = iota
	// LookupNoIdentifier renders as perpetual loading; a missing id never
	// triggers a fetch and never redirects. Kept as-is.
	LookupNoIdentifier
	LookupLoading
	LookupFound
	// LookupNotFound covers both "no such booking" and "service failed".
	// The two are rendered with identical text.
	LookupNotFound
)

func (s LookupState) String() string {
	switch s {
	case LookupUnauthenticated:
		return "unauthenticated"
	case LookupNoIdentifier:
		return "no_identifier"
	case LookupLoading:
		return "loading"
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	}
	return "unknown"
}

// NotFoundMessage is the single inline text for every failed lookup. Service
// errors and zero-row results are deliberately indistinguishable to the user.
const NotFoundMessage = "We couldn't find the booking details you're looking for. Please check your booking reference and try again."

// PolicyNotices are static content attached to every confirmation. They are
// not derived from booking data.
var PolicyNotices = [4]string{
	"Check-in time starts at 3 PM",
	"Check-out time is 12 PM",
	"Please present your ID at check-in",
	"Free cancellation until 24 hours before check-in",
}

// Confirmation is the display-ready view of a resolved booking.
type Confirmation struct {
	Reference     string               `json:"reference"`
	Status        domain.BookingStatus `json:"status"`
	HotelName     string               `json:"hotel_name"`
	HotelLocation string               `json:"hotel_location"`
	CheckIn       string               `json:"check_in"`
	CheckOut      string               `json:"check_out"`
	RoomType      string               `json:"room_type"`
	RoomNumber    string               `json:"room_number"`
	TotalPrice    string               `json:"total_price"`
	Notices       []string             `json:"notices"`
}

type LookupResult struct {
	State LookupState
	View  *Confirmation
}

// BookingLookup resolves a booking identifier into a confirmation view through
// three dependent reads: booking, then the hotel and room it references.
type BookingLookup struct {
	bookings domain.BookingRepository
	hotels   domain.HotelRepository
	rooms    domain.RoomRepository
}

func NewBookingLookup(b domain.BookingRepository, h domain.HotelRepository, r domain.RoomRepository) *BookingLookup {
	return &BookingLookup{bookings: b, hotels: h, rooms: r}
}

// Resolve drives the state machine. An absent session short-circuits before
// any fetch. The three reads run strictly in sequence because the hotel and
// room lookups need the booking's foreign keys; the first failure aborts the
// rest. The returned error carries the cause for logging when the state is
// LookupNotFound; callers render the same message regardless.
func (l *BookingLookup) Resolve(ctx context.Context, sess *domain.Session, bookingID string) (LookupResult, error) {
	if sess == nil {
		return LookupResult{State: LookupUnauthenticated}, nil
	}
	if bookingID == "" {
		return LookupResult{State: LookupNoIdentifier}, nil
	}

	booking, err := l.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return LookupResult{State: LookupNotFound}, classify("booking", bookingID, err)
	}
	hotel, err := l.hotels.GetHotel(ctx, booking.HotelID)
	if err != nil {
		return LookupResult{State: LookupNotFound}, classify("hotel", booking.HotelID, err)
	}
	room, err := l.rooms.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return LookupResult{State: LookupNotFound}, classify("room", booking.RoomID, err)
	}

	view := &Confirmation{
		Reference:     booking.ID,
		Status:        booking.Status,
		HotelName:     hotel.Name,
		HotelLocation: hotel.Location,
		CheckIn:       booking.CheckIn.Format("January 2, 2006"),
		CheckOut:      booking.CheckOut.Format("January 2, 2006"),
		RoomType:      room.Type,
		RoomNumber:    room.RoomNumber,
		TotalPrice:    formatUSD(booking.TotalPrice),
		Notices:       PolicyNotices[:],
	}
	return LookupResult{State: LookupFound, View: view}, nil
}

func classify(kind, id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w: %w", kind, id, domain.ErrFetchFailed, err)
}

// formatUSD renders whole-dollar amounts without a decimal part: 240 -> "$240",
// 199.5 -> "$199.5".
func formatUSD(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}
