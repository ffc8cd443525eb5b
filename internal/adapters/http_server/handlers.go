package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"staybooker/internal/app"
	"staybooker/internal/auth"
	"staybooker/internal/domain"
)

type Handlers struct {
	Search *app.SearchService
	Hotels *app.HotelService
	Lookup *app.BookingLookup
	Gate   *auth.Gate

	validate *validator.Validate
}

func NewHandlers(search *app.SearchService, hotels *app.HotelService, lookup *app.BookingLookup, gate *auth.Gate) *Handlers {
	return &Handlers{
		Search:   search,
		Hotels:   hotels,
		Lookup:   lookup,
		Gate:     gate,
		validate: validator.New(),
	}
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/hotels/search", h.searchHotels)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Get("/v1/locations", h.listLocations)
	s.mux.Get("/v1/bookings/confirm", h.confirmBooking)

	s.mux.Post("/v1/auth/login", h.login)
	s.mux.With(RequireUser(h.Gate)).Post("/v1/auth/logout", h.logout)
	s.mux.Get("/v1/auth/session", h.session)

	s.mux.Route("/v1/admin", func(r chi.Router) {
		r.Use(RequireAdmin(h.Gate))
		r.Get("/hotels", h.adminListHotels)
		r.Post("/hotels", h.adminCreateHotel)
		r.Delete("/hotels/{id}", h.adminDeleteHotel)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- search & catalogue ----

type searchResponse struct {
	Items  []app.HotelCard `json:"items"`
	Self   string          `json:"self"`
	Notice string          `json:"notice,omitempty"`
}

// Only the location is re-hydrated from the URL; dates and counts ride along
// on the shareable link but are not decoded back.
func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	filters := app.DecodeSearchParams(r.URL.Query())
	self := "/v1/hotels/search?" + app.EncodeSearchParams(filters).Encode()

	cards, err := h.Search.Search(r.Context(), filters)
	if err != nil {
		// Recoverable: empty results plus a one-shot notice, logged here.
		log.Error().Err(err).Str("location", filters.Location()).Msg("hotel search failed")
		writeJSON(w, http.StatusOK, searchResponse{Items: cards, Self: self, Notice: "Failed to load hotels"})
		return
	}
	if len(cards) == 0 {
		writeJSON(w, http.StatusOK, searchResponse{Items: []app.HotelCard{}, Self: self, Notice: app.EmptyResultsMessage})
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: cards, Self: self})
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	hotel, err := h.Hotels.GetHotel(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	}

	etag, body := calcETagAndBody(hotelJSON(hotel))
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) listLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Search.Locations(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list locations failed")
		writeJSON(w, http.StatusOK, map[string]any{"items": []string{}, "notice": "Failed to load locations"})
		return
	}
	if locs == nil {
		locs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": locs})
}

// ---- booking confirmation ----

type confirmResponse struct {
	State        string            `json:"state"`
	Message      string            `json:"message,omitempty"`
	Confirmation *app.Confirmation `json:"confirmation,omitempty"`
}

func (h *Handlers) confirmBooking(w http.ResponseWriter, r *http.Request) {
	var sess *domain.Session
	if cur, ok := h.Gate.Current(); ok {
		sess = &cur
	}
	bookingID := r.URL.Query().Get("id")

	res, err := h.Lookup.Resolve(r.Context(), sess, bookingID)
	switch res.State {
	case app.LookupUnauthenticated:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case app.LookupNoIdentifier:
		// No id never resolves; the view stays on its loading skeleton.
		writeJSON(w, http.StatusOK, confirmResponse{State: app.LookupLoading.String()})
	case app.LookupNotFound:
		// Service failure and missing record read identically to the user.
		log.Warn().Err(err).Str("booking", bookingID).Msg("booking lookup failed")
		writeJSON(w, http.StatusOK, confirmResponse{State: res.State.String(), Message: app.NotFoundMessage})
	case app.LookupFound:
		writeJSON(w, http.StatusOK, confirmResponse{State: res.State.String(), Confirmation: res.View})
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal", "unexpected lookup state")
	}
}

// ---- session ----

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Token         string `json:"token,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected JSON credentials")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Credentials Payload", err.Error())
		return
	}
	s, err := h.Gate.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("sign-in failed")
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "sign-in failed")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		UserID:        s.UserID,
		Email:         s.Email,
		Token:         s.Token,
		IsAdmin:       h.Gate.IsAdmin(),
	})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Gate.SignOut(r.Context()); err != nil {
		// Local state is already cleared; the remote failure is log-only.
		log.Warn().Err(err).Msg("remote sign-out failed")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) {
	cur, ok := h.Gate.Current()
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		UserID:        cur.UserID,
		Email:         cur.Email,
		IsAdmin:       h.Gate.IsAdmin(),
	})
}

// ---- admin catalogue ----

type createHotelRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Location      string   `json:"location" validate:"required"`
	ImageURL      string   `json:"image_url" validate:"omitempty,url"`
	PricePerNight float64  `json:"price_per_night" validate:"gte=0"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=5"`
	Amenities     []string `json:"amenities"`
}

func (h *Handlers) adminListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Hotels.ListHotels(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("admin list hotels failed")
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "failed to load hotels")
		return
	}
	items := make([]map[string]any, 0, len(hotels))
	for _, hv := range hotels {
		items = append(items, hotelJSON(hv))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) adminCreateHotel(w http.ResponseWriter, r *http.Request) {
	var req createHotelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected JSON hotel")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Hotel", err.Error())
		return
	}
	hotel := domain.Hotel{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		ImageURL:      req.ImageURL,
		PricePerNight: req.PricePerNight,
		Rating:        req.Rating,
		Amenities:     req.Amenities,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Hotels.AddHotel(r.Context(), hotel); err != nil {
		log.Error().Err(err).Msg("create hotel failed")
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "failed to create hotel")
		return
	}
	writeJSON(w, http.StatusCreated, hotelJSON(hotel))
}

func (h *Handlers) adminDeleteHotel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Hotels.RemoveHotel(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
			return
		}
		log.Error().Err(err).Str("id", id).Msg("delete hotel failed")
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "failed to delete hotel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func hotelJSON(h domain.Hotel) map[string]any {
	amenities := h.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return map[string]any{
		"id":              h.ID,
		"name":            h.Name,
		"description":     h.Description,
		"location":        h.Location,
		"image_url":       h.ImageURL,
		"price_per_night": h.PricePerNight,
		"rating":          h.Rating,
		"amenities":       amenities,
		"created_at":      h.CreatedAt,
	}
}
