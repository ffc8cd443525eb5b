package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"staybooker/internal/app"
	"staybooker/internal/domain"
)

type fakeBookingRepo struct {
	booking domain.Booking
	err     error
	calls   int
}

func (f *fakeBookingRepo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	f.calls++
	if f.err != nil {
		return domain.Booking{}, f.err
	}
	if id != f.booking.ID {
		return domain.Booking{}, domain.ErrNotFound
	}
	return f.booking, nil
}

type fakeRoomRepo struct {
	room  domain.Room
	err   error
	calls int
}

func (f *fakeRoomRepo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	f.calls++
	if f.err != nil {
		return domain.Room{}, f.err
	}
	if id != f.room.ID {
		return domain.Room{}, domain.ErrNotFound
	}
	return f.room, nil
}

func (f *fakeRoomRepo) UpsertRoom(ctx context.Context, r domain.Room) error { return nil }

func session() *domain.Session {
	return &domain.Session{UserID: "u1", Email: "guest@example.com", Token: "t"}
}

func fixtures() (*fakeBookingRepo, *fakeHotelRepo, *fakeRoomRepo) {
	bookings := &fakeBookingRepo{booking: domain.Booking{
		ID:         "b1",
		UserID:     "u1",
		HotelID:    "h1",
		RoomID:     "r1",
		CheckIn:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
		TotalPrice: 240,
		Status:     domain.BookingConfirmed,
	}}
	hotels := &fakeHotelRepo{byID: map[string]domain.Hotel{
		"h1": {ID: "h1", Name: "Grand Riviera", Location: "Paris"},
	}}
	rooms := &fakeRoomRepo{room: domain.Room{ID: "r1", HotelID: "h1", RoomNumber: "204", Type: "Double Deluxe"}}
	return bookings, hotels, rooms
}

func TestResolve_Found(t *testing.T) {
	bookings, hotels, rooms := fixtures()
	l := app.NewBookingLookup(bookings, hotels, rooms)

	res, err := l.Resolve(context.Background(), session(), "b1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.State != app.LookupFound || res.View == nil {
		t.Fatalf("state %v, view %v", res.State, res.View)
	}
	v := res.View
	if v.CheckIn != "March 10, 2025" || v.CheckOut != "March 12, 2025" {
		t.Fatalf("dates: %q / %q", v.CheckIn, v.CheckOut)
	}
	if v.TotalPrice != "$240" {
		t.Fatalf("total: %q", v.TotalPrice)
	}
	if v.RoomType != "Double Deluxe" || v.RoomNumber != "204" {
		t.Fatalf("room: %+v", v)
	}
	if v.HotelName != "Grand Riviera" || v.Reference != "b1" {
		t.Fatalf("view: %+v", v)
	}
	if len(v.Notices) != 4 || v.Notices[0] != "Check-in time starts at 3 PM" {
		t.Fatalf("notices: %v", v.Notices)
	}
}

func TestResolve_UnauthenticatedIssuesNoFetch(t *testing.T) {
	bookings, hotels, rooms := fixtures()
	l := app.NewBookingLookup(bookings, hotels, rooms)

	res, err := l.Resolve(context.Background(), nil, "b1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.State != app.LookupUnauthenticated {
		t.Fatalf("state: %v", res.State)
	}
	if bookings.calls != 0 || hotels.searches != 0 || rooms.calls != 0 {
		t.Fatalf("fetches issued: %d/%d/%d", bookings.calls, hotels.searches, rooms.calls)
	}
}

func TestResolve_NoIdentifier(t *testing.T) {
	bookings, hotels, rooms := fixtures()
	l := app.NewBookingLookup(bookings, hotels, rooms)

	res, err := l.Resolve(context.Background(), session(), "")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.State != app.LookupNoIdentifier {
		t.Fatalf("state: %v", res.State)
	}
	if bookings.calls != 0 {
		t.Fatalf("fetch issued for empty id")
	}
}

func TestResolve_HotelFailureShortCircuitsRoomLookup(t *testing.T) {
	bookings, hotels, rooms := fixtures()
	hotels.err = errors.New("connection reset")
	l := app.NewBookingLookup(bookings, hotels, rooms)

	res, err := l.Resolve(context.Background(), session(), "b1")
	if res.State != app.LookupNotFound {
		t.Fatalf("state: %v", res.State)
	}
	if rooms.calls != 0 {
		t.Fatalf("room lookup must never be issued after a hotel failure")
	}
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected fetch-failed cause, got %v", err)
	}
}

func TestResolve_MissingBooking(t *testing.T) {
	bookings, hotels, rooms := fixtures()
	l := app.NewBookingLookup(bookings, hotels, rooms)

	res, err := l.Resolve(context.Background(), session(), "nope")
	if res.State != app.LookupNotFound {
		t.Fatalf("state: %v", res.State)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found cause, got %v", err)
	}
	if rooms.calls != 0 {
		t.Fatalf("downstream lookups issued for missing booking")
	}
}

func TestResolve_FractionalPriceKeepsDecimals(t *testing.T) {
	bookings, hotels, rooms := fixtures()
	bookings.booking.TotalPrice = 199.5
	l := app.NewBookingLookup(bookings, hotels, rooms)

	res, _ := l.Resolve(context.Background(), session(), "b1")
	if res.View.TotalPrice != "$199.5" {
		t.Fatalf("total: %q", res.View.TotalPrice)
	}
}
