package domain

import "time"

type Hotel struct {
	ID            string
	Name          string
	Description   string
	Location      string
	ImageURL      string
	PricePerNight float64
	Rating        float64
	Amenities     []string // order-preserving
	CreatedAt     time.Time
}

type Room struct {
	ID          string
	HotelID     string
	RoomNumber  string
	Type        string
	Price       float64
	IsAvailable bool
}
