package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightdesk/api"
	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/bootstrap"
	"github.com/Domenick1991/flightdesk/internal/cache"
	"github.com/Domenick1991/flightdesk/internal/itinerary"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	var builderOpts []itinerary.BuilderOption
	if cfg.Itinerary.RejectInvertedTimes {
		builderOpts = append(builderOpts, itinerary.WithRejectInvertedTimes())
	}
	if cfg.Itinerary.MatchLegTimes {
		builderOpts = append(builderOpts, itinerary.WithMatchLegTimes())
	}
	builder := itinerary.NewBuilder(itinerary.UUIDSource{}, itinerary.SystemClock{}, builderOpts...)

	serviceOpts := []flights.FlightServiceOption{
		flights.WithProducer(producer, cfg.Kafka.FlightEventsTopic, cfg.Kafka.NotificationsTopic),
		flights.WithLogger(log),
	}
	if cfg.Itinerary.CheckAirplaneOrigin {
		serviceOpts = append(serviceOpts, flights.WithAirplaneOriginCheck())
	}
	flightService := flights.NewFlightService(storage.Flights, storage.Airports, redisCache, builder, serviceOpts...)

	auth := api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	router := api.NewRouter(api.RouterConfig{
		Flights:    api.NewFlightHandler(flightService, auth),
		Airports:   api.NewAirportHandler(flightService),
		Auth:       auth,
		SwaggerDir: cfg.HTTP.SwaggerDir,
	})

	if err := bootstrap.Run(ctx, cfg.HTTP.Address, router); err != nil {
		log.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
