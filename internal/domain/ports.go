package domain

import (
	"context"
	"time"
)

// HotelSearch is the remote-query form of a filter submission. Only the
// location takes part in filtering; dates and guest counts are carried on the
// URL but not matched against room availability in the current scope.
// Results are always ordered by rating, descending.
type HotelSearch struct {
	Location string // empty = no location predicate; else ci substring match
}

type HotelRepository interface {
	SearchHotels(ctx context.Context, q HotelSearch) ([]Hotel, error)
	GetHotel(ctx context.Context, id string) (Hotel, error)
	ListLocations(ctx context.Context) ([]string, error)

	// Admin paths
	ListHotels(ctx context.Context) ([]Hotel, error)
	CreateHotel(ctx context.Context, h Hotel) error
	DeleteHotel(ctx context.Context, id string) error
}

type RoomRepository interface {
	GetRoom(ctx context.Context, id string) (Room, error)
	UpsertRoom(ctx context.Context, r Room) error
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id string) (Booking, error)
}

// AccessController answers the admin-flag lookup keyed by user id. Admin
// status is never derived from the session token itself.
type AccessController interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Session is the authenticated-user state handed out by the auth service.
type Session struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// AuthClient is the boundary to the external auth collaborator.
type AuthClient interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (Session, error)
	Refresh(ctx context.Context, token string) (Session, error)
}
