package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/backend"
	"github.com/Domenick1991/flightdesk/internal/notify"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

// Storage is the persistence pair selected by backend.driver.
type Storage struct {
	Flights  repository.FlightRepository
	Airports repository.AirportRepository
	close    func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects to Postgres or builds a REST client, depending on cfg.Backend.Driver.
func OpenStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Storage, error) {
	switch cfg.Backend.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Storage{
			Flights:  repository.NewFlightRepository(pool),
			Airports: repository.NewAirportRepository(pool),
			close:    pool.Close,
		}, nil
	case config.DriverREST:
		client := NewBackendClient(cfg, log)
		return &Storage{Flights: client.Flights(), Airports: client.Airports()}, nil
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
	}
}

func NewBackendClient(cfg *config.Config, log *slog.Logger) *backend.Client {
	rps := cfg.Backend.RequestsPerSecond
	burst := max(1, int(rps))
	return backend.NewClient(
		cfg.Backend.BaseURL,
		backend.StaticToken(cfg.Auth.ServiceToken),
		notify.NewLogger(log),
		backend.WithTimeout(cfg.Backend.Timeout()),
		backend.WithRateLimiter(rate.NewLimiter(rate.Limit(rps), burst)),
	)
}
