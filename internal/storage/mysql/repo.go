package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	"staybooker/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SearchHotels(ctx context.Context, q domain.HotelSearch) ([]domain.Hotel, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if q.Location == "" {
		rows, err = r.db.QueryContext(ctx, searchHotelsAllSQL)
	} else {
		rows, err = r.db.QueryContext(ctx, searchHotelsSQL, q.Location)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHotels(rows)
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, id)
	h, err := scanHotel(row)
	if err == sql.ErrNoRows {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, err
}

func (r *Repo) ListLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listLocationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHotels(rows)
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) error {
	amen, _ := json.Marshal(h.Amenities)
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		h.Name,
		h.Description,
		h.Location,
		h.ImageURL,
		h.PricePerNight,
		h.Rating,
		string(amen),
	)
	return err
}

func (r *Repo) DeleteHotel(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteHotelSQL, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	var rm domain.Room
	err := r.db.QueryRowContext(ctx, getRoomSQL, id).Scan(
		&rm.ID,
		&rm.HotelID,
		&rm.RoomNumber,
		&rm.Type,
		&rm.Price,
		&rm.IsAvailable,
	)
	if err == sql.ErrNoRows {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, err
}

func (r *Repo) UpsertRoom(ctx context.Context, rm domain.Room) error {
	_, err := r.db.ExecContext(ctx, upsertRoomSQL,
		rm.ID,
		rm.HotelID,
		rm.RoomNumber,
		rm.Type,
		rm.Price,
		rm.IsAvailable,
	)
	return err
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)
	err := r.db.QueryRowContext(ctx, getBookingSQL, id).Scan(
		&b.ID,
		&b.UserID,
		&b.HotelID,
		&b.RoomID,
		&b.CheckIn,
		&b.CheckOut,
		&b.TotalPrice,
		&status,
		&b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *Repo) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, isAdminSQL, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanHotel(row rowScanner) (domain.Hotel, error) {
	var (
		h             domain.Hotel
		amenitiesJSON []byte
	)
	if err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Description,
		&h.Location,
		&h.ImageURL,
		&h.PricePerNight,
		&h.Rating,
		&amenitiesJSON,
		&h.CreatedAt,
	); err != nil {
		return domain.Hotel{}, err
	}
	_ = json.Unmarshal(amenitiesJSON, &h.Amenities)
	return h, nil
}

func scanHotels(rows *sql.Rows) ([]domain.Hotel, error) {
	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
