package main

import (
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"placefinder/internal/adapters/googleplaces"
	server "placefinder/internal/adapters/http_server"
	"placefinder/internal/adapters/observability"
	redisad "placefinder/internal/adapters/redis"
	"placefinder/internal/app"
	"placefinder/internal/gate"
	"placefinder/internal/shared"
	mysqlrepo "placefinder/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db (blog posts)
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// outbound places client; a missing key is fatal here rather than a
	// per-request 500
	places, err := googleplaces.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS, cfg.PhotoMaxWidth)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	var vendor *app.VendorDetector
	if cfg.VendorDetect {
		vendor = app.NewVendorDetector(cfg.VendorWorkers, nil)
		log.Info().Int("workers", cfg.VendorWorkers).Msg("vendor detection enabled")
	}
	search := app.NewSearchService(places, cache, cfg.CacheTTL, cfg, vendor)
	posts := app.NewPostQueryService(mysqlrepo.New(db), cache, cfg.CacheTTL)

	g := gate.New(cfg.RateLimit, cfg.RateWindow)
	stop := make(chan struct{})
	defer close(stop)
	go g.SweepLoop(time.Minute, stop)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Search: search, Posts: posts, Gate: g})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
