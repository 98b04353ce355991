package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/bootstrap"
	"github.com/Domenick1991/flightdesk/internal/cache"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/notify"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"golang.org/x/sync/errgroup"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Error("open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer storage.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Itinerary.FlightsCacheTTL)*time.Second,
		time.Duration(cfg.Itinerary.AirportsCacheTTL)*time.Second,
	)
	defer redisCache.Close()

	consumer := kafka.NewFlightEventConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	sender := notify.NewSender(notify.NewLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Consume(ctx, sender.Send)
	})
	g.Go(func() error {
		return refreshDirectory(ctx, log, storage.Airports, redisCache, time.Duration(cfg.Worker.DirectoryRefreshMinutes)*time.Minute)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("worker shut down")
}

// refreshDirectory reloads the airport directory into the cache on every tick, starting immediately.
func refreshDirectory(ctx context.Context, log *slog.Logger, airports repository.AirportRepository, c *cache.RedisCache, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		list, err := airports.List(ctx)
		if err == nil {
			err = c.SetAirports(ctx, list)
		}
		if err != nil {
			log.Warn("refresh airport directory", slog.Any("error", err))
		} else {
			log.Info("airport directory refreshed", slog.Int("airports", len(list)))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
