package app

import (
	"strings"
	"unicode"

	"staybooker/internal/domain"
)

// SkeletonCards is the number of placeholder cards shown while a search is
// outstanding.
const SkeletonCards = 3

// EmptyResultsMessage is the literal empty-state text. No retry, no pagination.
const EmptyResultsMessage = "No hotels found matching your criteria."

const (
	summaryLimit = 160 // two display lines
	topAmenities = 3
)

// HotelCard is the display-ready projection of one search result.
type HotelCard struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Rating        float64  `json:"rating"`
	PricePerNight float64  `json:"price_per_night"`
	ImageURL      string   `json:"image_url"`
	Summary       string   `json:"summary"`
	TopAmenities  []string `json:"top_amenities"`
}

// PresentHotels maps hotels to cards in the order given. The input arrives
// already sorted by rating from the query; no re-sorting happens here.
func PresentHotels(hotels []domain.Hotel) []HotelCard {
	cards := make([]HotelCard, 0, len(hotels))
	for _, h := range hotels {
		cards = append(cards, HotelCard{
			ID:            h.ID,
			Name:          h.Name,
			Location:      h.Location,
			Rating:        h.Rating,
			PricePerNight: h.PricePerNight,
			ImageURL:      h.ImageURL,
			Summary:       truncate(h.Description, summaryLimit),
			TopAmenities:  firstN(h.Amenities, topAmenities),
		})
	}
	return cards
}

func firstN(ss []string, n int) []string {
	if len(ss) <= n {
		return append([]string(nil), ss...)
	}
	return append([]string(nil), ss[:n]...)
}

// truncate caps s at limit runes, cutting back to the last word boundary and
// appending an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !unicode.IsSpace(r[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return strings.TrimRight(string(r[:cut]), " \t\n") + "…"
}
