// Command seed resets the catalog, loads the demo booking and optionally
// prints a bcrypt hash for STAFF_PASSWORD_HASH.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/logging"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/seed"
	"github.com/iliyamo/salon-booking/internal/service"
	"github.com/iliyamo/salon-booking/internal/utils"
)

func main() {
	staffPassword := flag.String("staff-password", "", "print a bcrypt hash of this password and exit")
	flag.Parse()

	_ = godotenv.Load()

	if *staffPassword != "" {
		cost := 12
		if cfg, err := config.Load(); err == nil {
			cost = cfg.BcryptCost
		}
		hash, err := utils.HashPassword(*staffPassword, cost)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "STAFF_PASSWORD_HASH=%s\n", hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var db *sql.DB
	if cfg.DBDriver == config.DriverSQLite {
		db, err = database.OpenSQLite(cfg.SQLitePath)
	} else {
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	slots, err := service.NewSlotTemplate(cfg.Slots)
	if err != nil {
		logger.Fatal("slot template", zap.Error(err))
	}

	catalog := repository.NewCatalogRepo(db)
	bookings := service.NewBookingService(repository.NewBookingRepo(db, cfg.DBDriver), catalog, slots, nil, nil, logger, cfg.ListLimit)

	res, err := seed.Run(ctx, db, catalog, bookings, logger)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	fmt.Printf("seeded %d services, %d specialists, demo booking #%d\n", res.Services, res.Specialists, res.BookingID)
}
