package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"staybooker/internal/adapters/observability"
	redisad "staybooker/internal/adapters/redis"
	"staybooker/internal/domain"
	"staybooker/internal/shared"
	mysqlrepo "staybooker/internal/storage/mysql"
)

// seedHotel is the catalogue file shape: one hotel with its rooms.
type seedHotel struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	ImageURL      string     `json:"image_url"`
	PricePerNight float64    `json:"price_per_night"`
	Rating        float64    `json:"rating"`
	Amenities     []string   `json:"amenities"`
	Rooms         []seedRoom `json:"rooms"`
}

type seedRoom struct {
	ID          string  `json:"id"`
	RoomNumber  string  `json:"room_number"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.Workers).
		Msg("seeder starting")

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file failed")
	}
	var hotels []seedHotel
	if err := json.Unmarshal(raw, &hotels); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, sh := range hotels {
		sh := sh

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if err := seedOne(ctx, repo, cache, sh); err != nil {
				log.Warn().Str("hotel", sh.Name).Err(err).Msg("seed failed")
				return
			}
			log.Info().Str("hotel", sh.Name).Int("rooms", len(sh.Rooms)).Msg("seed ok")
		}()
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}

func seedOne(ctx context.Context, repo *mysqlrepo.Repo, cache domain.Cache, sh seedHotel) error {
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	h := domain.Hotel{
		ID:            sh.ID,
		Name:          sh.Name,
		Description:   sh.Description,
		Location:      sh.Location,
		ImageURL:      sh.ImageURL,
		PricePerNight: sh.PricePerNight,
		Rating:        sh.Rating,
		Amenities:     sh.Amenities,
	}
	if err := repo.CreateHotel(ctx, h); err != nil {
		return err
	}
	for _, sr := range sh.Rooms {
		if sr.ID == "" {
			sr.ID = uuid.NewString()
		}
		r := domain.Room{
			ID:          sr.ID,
			HotelID:     sh.ID,
			RoomNumber:  sr.RoomNumber,
			Type:        sr.Type,
			Price:       sr.Price,
			IsAvailable: sr.IsAvailable,
		}
		if err := repo.UpsertRoom(ctx, r); err != nil {
			return err
		}
	}
	// Re-seeding must not leave a stale detail snapshot behind.
	return cache.Del(ctx, "hotel:"+sh.ID)
}
