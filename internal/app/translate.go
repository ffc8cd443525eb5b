package app

import (
	"net/url"
	"strconv"
	"time"

	"staybooker/internal/domain"
)

// BuildHotelSearch converts one filter snapshot into the remote hotel query.
// Only the location participates: empty means no predicate, non-empty becomes a
// case-insensitive substring match. Dates and guest counts never filter hotel
// availability here; no room join happens at search time.
func BuildHotelSearch(f *domain.SearchFilters) domain.HotelSearch {
	return domain.HotelSearch{Location: f.Location()}
}

// EncodeSearchParams serializes a filter snapshot into shareable URL query
// parameters: location raw, dates as RFC 3339, counts as decimal strings.
func EncodeSearchParams(f *domain.SearchFilters) url.Values {
	v := url.Values{}
	v.Set("location", f.Location())
	v.Set("checkIn", f.CheckIn().Format(time.RFC3339))
	v.Set("checkOut", f.CheckOut().Format(time.RFC3339))
	v.Set("guests", strconv.Itoa(f.Guests()))
	v.Set("rooms", strconv.Itoa(f.Rooms()))
	return v
}

// DecodeSearchParams re-hydrates filters from URL parameters when navigating
// into the results view. Only the location is read back; dates and counts stay
// at their defaults. That partial decode is a documented gap of the search
// flow, kept as-is.
func DecodeSearchParams(v url.Values) *domain.SearchFilters {
	return DecodeSearchParamsAt(v, time.Now())
}

func DecodeSearchParamsAt(v url.Values, now time.Time) *domain.SearchFilters {
	f := domain.NewSearchFiltersAt(now)
	f.SetLocation(v.Get("location"))
	return f
}
