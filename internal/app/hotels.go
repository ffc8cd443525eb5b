package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybooker/internal/domain"
)

// SearchService runs one filter submission against the catalogue and presents
// the result. Search results are never cached; each navigation queries anew.
type SearchService struct {
	repo domain.HotelRepository
}

func NewSearchService(r domain.HotelRepository) *SearchService {
	return &SearchService{repo: r}
}

// Search translates the filters, queries, and presents. On a service failure
// it surfaces an empty card list together with a fetch-failed error so the
// caller can log and notify once; nothing panics past this boundary.
func (s *SearchService) Search(ctx context.Context, f *domain.SearchFilters) ([]HotelCard, error) {
	hotels, err := s.repo.SearchHotels(ctx, BuildHotelSearch(f))
	if err != nil {
		return []HotelCard{}, fmt.Errorf("search hotels: %w", errors.Join(domain.ErrFetchFailed, err))
	}
	return PresentHotels(hotels), nil
}

// Locations lists the distinct hotel locations for the destination dropdown.
func (s *SearchService) Locations(ctx context.Context) ([]string, error) {
	locs, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", errors.Join(domain.ErrFetchFailed, err))
	}
	return locs, nil
}

// HotelService serves hotel details with a read-through cache and carries the
// admin catalogue operations.
type HotelService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewHotelService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *HotelService {
	return &HotelService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *HotelService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	key := "hotel:" + id
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

func (s *HotelService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	return s.repo.ListHotels(ctx)
}

func (s *HotelService) AddHotel(ctx context.Context, h domain.Hotel) error {
	if err := s.repo.CreateHotel(ctx, h); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, "hotel:"+h.ID)
	return nil
}

func (s *HotelService) RemoveHotel(ctx context.Context, id string) error {
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, "hotel:"+id)
	return nil
}
