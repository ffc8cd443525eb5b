package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is read-only from this service's perspective: it is created and
// transitioned by the booking-submission flow, we only resolve and display it.
type Booking struct {
	ID         string
	UserID     string
	HotelID    string
	RoomID     string
	CheckIn    time.Time
	CheckOut   time.Time
	TotalPrice float64
	Status     BookingStatus
	CreatedAt  time.Time
}
