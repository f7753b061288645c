package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/logging"
	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/router"
	"github.com/iliyamo/salon-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func openDB(cfg config.Config) (*sql.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return database.OpenSQLite(cfg.SQLitePath)
	}
	return database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return err
	}

	slots, err := service.NewSlotTemplate(cfg.Slots)
	if err != nil {
		return err
	}

	// Redis backs caching and rate limiting; both degrade to pass-through
	// when it is unreachable.
	var rdb *redis.Client
	if client, err := config.NewRedisClient(ctx); err != nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
	}

	var events queue.Publisher = queue.NopPublisher{}
	if ev := config.LoadEventsConfig(); ev.Enabled {
		events = queue.NewAMQPPublisher(ev.URL, ev.Exchange, logger)
		logger.Info("booking events enabled", zap.String("exchange", ev.Exchange))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bm := metrics.NewBookingMetrics(reg)

	bookingRepo := repository.NewBookingRepo(db, cfg.DBDriver)
	catalogRepo := repository.NewCatalogRepo(db)

	bookings := service.NewBookingService(bookingRepo, catalogRepo, slots, events, bm, logger, cfg.ListLimit)
	availability := service.NewAvailabilityService(bookingRepo, slots, bm)
	catalog := service.NewCatalogService(catalogRepo)

	h := router.Handlers{
		Health:       &handler.HealthHandler{DB: db, Env: cfg.Env},
		Catalog:      handler.NewCatalogHandler(catalog, logger),
		Availability: handler.NewAvailabilityHandler(availability, logger),
		Bookings:     handler.NewBookingHandler(bookings, logger),
		Auth:         handler.NewAuthHandler(cfg, logger),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)

	router.RegisterRoutes(e, h, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.RegisterPublic(e, h, cache, limit)
	router.RegisterStaff(e, h, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
