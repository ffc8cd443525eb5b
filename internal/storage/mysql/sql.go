package mysql

const hotelColumns = `id, name, description, location, image_url, price_per_night, rating, amenities, created_at`

// Location predicate is a case-insensitive substring ("contains"); ordering is
// always rating descending. No pagination.
const searchHotelsSQL = `
SELECT ` + hotelColumns + `
FROM hotels
WHERE LOWER(location) LIKE CONCAT('%', LOWER(?), '%')
ORDER BY rating DESC
`

const searchHotelsAllSQL = `
SELECT ` + hotelColumns + `
FROM hotels
ORDER BY rating DESC
`

const getHotelSQL = `
SELECT ` + hotelColumns + `
FROM hotels
WHERE id = ?
`

// Admin listing mirrors the dashboard: newest first.
const listHotelsSQL = `
SELECT ` + hotelColumns + `
FROM hotels
ORDER BY created_at DESC
`

const listLocationsSQL = `
SELECT DISTINCT location
FROM hotels
ORDER BY location
`

const upsertHotelSQL = `
INSERT INTO hotels
  (id, name, description, location, image_url, price_per_night, rating, amenities)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name            = VALUES(name),
  description     = VALUES(description),
  location        = VALUES(location),
  image_url       = VALUES(image_url),
  price_per_night = VALUES(price_per_night),
  rating          = VALUES(rating),
  amenities       = VALUES(amenities)
`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

const getRoomSQL = `
SELECT id, hotel_id, room_number, type, price, is_available
FROM rooms
WHERE id = ?
`

const upsertRoomSQL = `
INSERT INTO rooms
  (id, hotel_id, room_number, type, price, is_available)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  room_number  = VALUES(room_number),
  type         = VALUES(type),
  price        = VALUES(price),
  is_available = VALUES(is_available)
`

const getBookingSQL = `
SELECT id, user_id, hotel_id, room_id, check_in, check_out, total_price, status, created_at
FROM bookings
WHERE id = ?
`

const isAdminSQL = `SELECT 1 FROM admin_users WHERE user_id = ?`
