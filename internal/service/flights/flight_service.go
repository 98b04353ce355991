package flights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/itinerary"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/repository"
)

var ErrAirplaneNotAtOrigin = errors.New("selected airplane is not at the flight origin")

type FlightUseCase interface {
	Search(ctx context.Context, q SearchQuery) ([]domain.Itinerary, error)
	GetByID(ctx context.Context, id string) (*domain.Itinerary, error)
	Validate(ctx context.Context, draft itinerary.Draft) error
	Create(ctx context.Context, draft itinerary.Draft) (*domain.Itinerary, error)
	SearchAirports(ctx context.Context, query string) ([]domain.Airport, error)
	AirplaneLocation(ctx context.Context, airplaneID string, at time.Time) (string, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Itinerary, error)
	SetFlights(ctx context.Context, flights []domain.Itinerary) error
	InvalidateFlights(ctx context.Context) error
	GetAirports(ctx context.Context) ([]domain.Airport, error)
	SetAirports(ctx context.Context, airports []domain.Airport) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	flights             repository.FlightRepository
	airports            repository.AirportRepository
	cache               Cache
	builder             *itinerary.Builder
	producer            Producer
	eventsTopic         string
	notificationsTopic  string
	checkAirplaneOrigin bool
	log                 *slog.Logger
}

type FlightServiceOption func(*FlightService)

func WithProducer(producer Producer, eventsTopic, notificationsTopic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
		s.notificationsTopic = notificationsTopic
	}
}

// WithAirplaneOriginCheck rejects flights whose airplane last landed somewhere other than the origin.
func WithAirplaneOriginCheck() FlightServiceOption {
	return func(s *FlightService) {
		s.checkAirplaneOrigin = true
	}
}

func WithLogger(log *slog.Logger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

func NewFlightService(
	flights repository.FlightRepository,
	airports repository.AirportRepository,
	cache Cache,
	builder *itinerary.Builder,
	opts ...FlightServiceOption,
) *FlightService {
	s := &FlightService{
		flights:  flights,
		airports: airports,
		cache:    cache,
		builder:  builder,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = itinerary.NewBuilder(nil, nil)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]domain.Itinerary, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	return s.flights.GetByID(ctx, id)
}

func (s *FlightService) Airports(ctx context.Context) ([]domain.Airport, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAirports(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	airports, err := s.airports.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetAirports(ctx, airports)
	}
	return airports, nil
}

func (s *FlightService) AirplaneLocation(ctx context.Context, airplaneID string, at time.Time) (string, error) {
	return s.flights.AirplaneLocation(ctx, airplaneID, at)
}

func (s *FlightService) Validate(ctx context.Context, draft itinerary.Draft) error {
	_, err := s.check(ctx, draft)
	return err
}

func (s *FlightService) Create(ctx context.Context, draft itinerary.Draft) (*domain.Itinerary, error) {
	dir, err := s.check(ctx, draft)
	if err != nil {
		return nil, err
	}

	if s.checkAirplaneOrigin && draft.AirplaneID != "" {
		loc, err := s.flights.AirplaneLocation(ctx, draft.AirplaneID, draft.DepartureTime)
		if err != nil {
			return nil, fmt.Errorf("airplane location: %w", err)
		}
		if loc != "" && loc != draft.OriginID {
			return nil, fmt.Errorf("%w: airplane %s is at %s", ErrAirplaneNotAtOrigin, draft.AirplaneID, loc)
		}
	}

	it, err := s.builder.Build(draft)
	if err != nil {
		return nil, err
	}

	if err := s.flights.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("persist flight: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.WarnContext(ctx, "invalidate flights cache", slog.String("err", err.Error()))
		}
	}
	if err := s.publish(ctx, kafka.EventFlightCreated, it, dir); err != nil {
		s.log.WarnContext(ctx, "publish flight event", slog.String("flight_id", it.ID), slog.String("err", err.Error()))
	}

	s.log.InfoContext(ctx, "flight created",
		slog.String("flight_id", it.ID),
		slog.String("flight_number", it.FlightNumber),
		slog.Int("legs", len(it.Legs)),
		slog.Int("duration", it.Duration),
	)
	return it, nil
}

// check runs chain validation and the airport directory lookup, returning every problem at once.
func (s *FlightService) check(ctx context.Context, draft itinerary.Draft) (itinerary.Directory, error) {
	airports, err := s.Airports(ctx)
	if err != nil {
		return nil, fmt.Errorf("load airports: %w", err)
	}
	dir := itinerary.NewDirectory(airports)

	res := s.builder.Check(draft)
	res.Errors = append(res.Errors, dir.Check(draft.OriginID, draft.DestinationID, draft.Legs)...)
	return dir, res.Err()
}

func (s *FlightService) publish(ctx context.Context, eventType string, it *domain.Itinerary, dir itinerary.Directory) error {
	if s.producer == nil || s.eventsTopic == "" {
		return nil
	}

	origin, _ := dir.Lookup(it.OriginID)
	dest, _ := dir.Lookup(it.DestinationID)
	stops := it.Stops()
	for i, id := range stops {
		if a, ok := dir.Lookup(id); ok && a.Code != "" {
			stops[i] = a.Code
		}
	}

	event := kafka.FlightEvent{
		Type:            eventType,
		FlightID:        it.ID,
		Airline:         it.Airline,
		FlightNumber:    it.FlightNumber,
		OriginID:        it.OriginID,
		OriginCode:      origin.Code,
		OriginTimeZone:  origin.TimeZone,
		DestinationID:   it.DestinationID,
		DestinationCode: dest.Code,
		DepartureTime:   it.DepartureTime,
		ArrivalTime:     it.ArrivalTime,
		Duration:        it.Duration,
		Stops:           stops,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, it.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, it.ID, event)
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
