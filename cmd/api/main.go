package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"staybooker/internal/adapters/authsvc"
	server "staybooker/internal/adapters/http_server"
	"staybooker/internal/adapters/observability"
	redisad "staybooker/internal/adapters/redis"
	"staybooker/internal/app"
	"staybooker/internal/auth"
	"staybooker/internal/shared"
	mysqlrepo "staybooker/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	authClient, err := authsvc.New(cfg.AuthBase, cfg.AuthSecret, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("auth client init failed")
	}
	gate := auth.NewGate(authClient, repo)
	defer gate.Close()
	if err := gate.Resume(ctx, cfg.AuthToken); err != nil {
		log.Warn().Err(err).Msg("session resume failed")
	}
	gate.StartRefresh(ctx, cfg.SessionRefresh)

	search := app.NewSearchService(repo)
	hotels := app.NewHotelService(repo, cache, cfg.CacheTTL)
	lookup := app.NewBookingLookup(repo, repo, repo)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(server.NewHandlers(search, hotels, lookup, gate))

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
