// Package main wires the search engine together and starts the HTTP
// server. No business logic lives here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pressly/goose/v3"

	"github.com/dkramer/flightdeck/internal/aggregator"
	"github.com/dkramer/flightdeck/internal/balance"
	"github.com/dkramer/flightdeck/internal/cache"
	"github.com/dkramer/flightdeck/internal/config"
	"github.com/dkramer/flightdeck/internal/engine"
	"github.com/dkramer/flightdeck/internal/handler"
	"github.com/dkramer/flightdeck/internal/normalizer"
	"github.com/dkramer/flightdeck/internal/providers"
	"github.com/dkramer/flightdeck/internal/ratelimit"
	"github.com/dkramer/flightdeck/internal/repo"
	"github.com/dkramer/flightdeck/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	balanceRepo, cleanup, err := initBalanceRepo(cfg)
	if err != nil {
		slog.Error("failed to initialize balance store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	providerList, err := initializeProviders(cfg)
	if err != nil {
		slog.Error("failed to initialize providers", "error", err)
		os.Exit(1)
	}
	slog.Info("providers initialized", "count", len(providerList))

	rateLimiter := ratelimit.New(map[string]ratelimit.Limit{
		"amadeus":   {RequestsPerSecond: 10, Burst: 20},
		"duffel":    {RequestsPerSecond: 10, Burst: 20},
		"seatsaero": {RequestsPerSecond: 5, Burst: 10},
	})

	agg := aggregator.New(providerList, aggregator.Config{
		Timeout:    cfg.SearchTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelays: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
		RateLimiter: rateLimiter,
	})

	balanceService := balance.NewService(balanceRepo, cfg.CloseTolerance)
	eng := engine.New(normalizer.New(cfg.DefaultCurrency), balanceService, cfg.PairingPoolLimit)

	var offerCache cache.Cache
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		offerCache = redisCache
		slog.Info("redis cache enabled", "host", cfg.RedisHost, "port", cfg.RedisPort, "ttl", cfg.RedisTTL)
	} else {
		offerCache = cache.NewNoOpCache()
		slog.Info("cache disabled")
	}
	defer offerCache.Close()

	searchHandler := handler.NewSearchHandler(agg, eng, offerCache)
	awardHandler := handler.NewAwardHandler(agg, eng)
	balanceHandler := handler.NewBalanceHandler(balanceService)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	api.POST("/awards/search", awardHandler.Search)
	api.GET("/awards/fare-classes", awardHandler.FareClasses)
	api.GET("/balances", balanceHandler.List)
	api.GET("/balances/:program", balanceHandler.Get)
	api.PUT("/balances/:program", balanceHandler.Update)
	api.GET("/balances/:program/history", balanceHandler.History)
	e.GET("/health", handler.HealthHandler)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// initBalanceRepo picks the balance store: Postgres with migrations
// applied when DATABASE_URL is set, in-memory otherwise.
func initBalanceRepo(cfg config.Config) (repo.BalanceRepo, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Info("no database configured, balances are in-memory")
		return repo.NewMemoryBalanceRepo(), func() {}, nil
	}

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, nil, err
	}
	slog.Info("database connection established")
	return repo.NewPostgresBalanceRepo(pool), pool.Close, nil
}

// runMigrations applies pending schema migrations. goose needs a plain
// *sql.DB, so a short-lived one is opened beside the pgx pool.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return err
	}
	return nil
}

func initializeProviders(cfg config.Config) ([]providers.FlightProvider, error) {
	var providerList []providers.FlightProvider

	if cfg.Amadeus.APIKey != "" {
		amadeus, err := providers.NewAmadeusProvider(cfg.Amadeus.APIKey, cfg.Amadeus.BaseURL)
		if err != nil {
			return nil, err
		}
		providerList = append(providerList, amadeus)
	}
	if cfg.Duffel.APIKey != "" {
		duffel, err := providers.NewDuffelProvider(cfg.Duffel.APIKey, cfg.Duffel.BaseURL)
		if err != nil {
			return nil, err
		}
		providerList = append(providerList, duffel)
	}
	if cfg.SeatsAero.APIKey != "" {
		seatsAero, err := providers.NewSeatsAeroProvider(cfg.SeatsAero.APIKey, cfg.SeatsAero.BaseURL)
		if err != nil {
			return nil, err
		}
		providerList = append(providerList, seatsAero)
	}

	return providerList, nil
}
