// Command consumer appends booking lifecycle events from RabbitMQ to a
// log file, one line per event.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/logging"
	"github.com/iliyamo/salon-booking/internal/queue"
)

func main() {
	out := flag.String("out", filepath.Join("logs", "booking.log"), "file the events are appended to")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := logging.New(os.Getenv("APP_ENV") == "prod", os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		logger.Fatal("create log directory", zap.Error(err))
	}
	f, err := os.OpenFile(*out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Fatal("open event log", zap.Error(err))
	}
	defer f.Close()

	ev := config.LoadEventsConfig()
	c := queue.NewConsumer(queue.ConsumerConfig{URL: ev.URL, Exchange: ev.Exchange, Queue: ev.Queue}, f, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("booking consumer started", zap.String("exchange", ev.Exchange), zap.String("queue", ev.Queue), zap.String("out", *out))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("booking consumer stopped", zap.Error(err))
	}
}
