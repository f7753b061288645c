// Package config loads application configuration from environment
// variables.  A .env file, when present, is read by the caller before
// Load runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env               string // APP_ENV (dev, prod, test)
	Port              string // APP_PORT
	LogLevel          string // LOG_LEVEL (debug, info, warn, error)
	DBDriver          string // DB_DRIVER (mysql or sqlite)
	DBUser            string // DB_USER
	DBPass            string // DB_PASS (empty allowed)
	DBHost            string // DB_HOST
	DBPort            string // DB_PORT
	DBName            string // DB_NAME
	SQLitePath        string // SQLITE_PATH, directory holding salon.db
	JWTSecret         string // JWT_SECRET
	AccessTTLMin      int    // ACCESS_TOKEN_TTL_MIN
	StaffUsername     string // STAFF_USERNAME (default "staff")
	StaffPasswordHash string // STAFF_PASSWORD_HASH (bcrypt); staff login disabled when empty
	BcryptCost        int    // BCRYPT_COST, used by the seed command to hash a staff password
	ListLimit         int    // BOOKINGS_LIST_LIMIT, default page size for booking listing
	Slots             SlotConfig
}

// SlotConfig describes the daily slot template: every Step from Open up
// to and including Close.
type SlotConfig struct {
	Open  string     // SLOT_OPEN, HH:MM
	Close string     // SLOT_CLOSE, HH:MM
	Step  time.Duration // SLOT_STEP
}

// loader collects missing or malformed required variables so Load can
// report all of them at once.
type loader struct {
	problems []string
}

func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		l.problems = append(l.problems, "missing required env var: "+key)
		return ""
	}
	return strings.TrimSpace(v)
}

func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.problems = append(l.problems, fmt.Sprintf("invalid int for %s: %q", key, s))
	}
	return n
}

// Load reads configuration values from environment variables.  Database
// connection variables are only required for the mysql driver.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:               l.must("APP_ENV"),
		Port:              l.must("APP_PORT"),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		DBDriver:          strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
		DBPass:            os.Getenv("DB_PASS"),
		SQLitePath:        envStr("SQLITE_PATH", "data"),
		JWTSecret:         l.must("JWT_SECRET"),
		AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 60),
		StaffUsername:     envStr("STAFF_USERNAME", "staff"),
		StaffPasswordHash: os.Getenv("STAFF_PASSWORD_HASH"),
		BcryptCost:        envInt("BCRYPT_COST", 12),
		ListLimit:         envInt("BOOKINGS_LIST_LIMIT", 50),
		Slots: SlotConfig{
			Open:  envStr("SLOT_OPEN", "09:00"),
			Close: envStr("SLOT_CLOSE", "20:00"),
			Step:  envDur("SLOT_STEP", 15*time.Minute),
		},
	}
	switch cfg.DBDriver {
	case DriverMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = l.must("DB_PORT")
		cfg.DBName = l.must("DB_NAME")
	case DriverSQLite:
	default:
		l.problems = append(l.problems, fmt.Sprintf("unsupported DB_DRIVER %q", cfg.DBDriver))
	}
	if cfg.AccessTTLMin < 1 {
		cfg.AccessTTLMin = 60
	}
	if cfg.Slots.Step <= 0 {
		l.problems = append(l.problems, "SLOT_STEP must be positive")
	}
	if len(l.problems) > 0 {
		return cfg, fmt.Errorf("config: %s", strings.Join(l.problems, "; "))
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with APP_ENV=prod.
func (c Config) IsProduction() bool {
	e := strings.ToLower(c.Env)
	return e == "prod" || e == "production"
}
