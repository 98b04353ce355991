package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/repository"
)

type FlightStore struct {
	c *Client
}

func (s *FlightStore) List(ctx context.Context) ([]domain.Itinerary, error) {
	var flights []domain.Itinerary
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/flights", out: &flights, onError: "Failed to load flights"}); err != nil {
		return nil, err
	}
	if flights == nil {
		flights = []domain.Itinerary{}
	}
	return flights, nil
}

func (s *FlightStore) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	var flight domain.Itinerary
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/flights/" + url.PathEscape(id), out: &flight}); err != nil {
		return nil, err
	}
	return &flight, nil
}

// Create posts the itinerary; fields echoed back by the backend, such as a
// server-assigned id, overwrite the local values.
func (s *FlightStore) Create(ctx context.Context, it *domain.Itinerary) error {
	return s.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/flights",
		body:      it,
		out:       it,
		onSuccess: "Flight created successfully",
		onError:   "Failed to create flight",
	})
}

type locationResponse struct {
	Data string `json:"data"`
}

func (s *FlightStore) AirplaneLocation(ctx context.Context, airplaneID string, at time.Time) (string, error) {
	var res locationResponse
	path := "/flights/" + url.PathEscape(airplaneID) + "/current-location?departureTime=" + url.QueryEscape(at.UTC().Format(time.RFC3339))
	if err := s.c.do(ctx, call{method: http.MethodGet, path: path, out: &res}); err != nil {
		return "", err
	}
	return res.Data, nil
}

type AirportStore struct {
	c *Client
}

func (s *AirportStore) List(ctx context.Context) ([]domain.Airport, error) {
	var airports []domain.Airport
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/airports", out: &airports, onError: "Failed to load airports"}); err != nil {
		return nil, err
	}
	if airports == nil {
		airports = []domain.Airport{}
	}
	return airports, nil
}

var (
	_ repository.FlightRepository  = (*FlightStore)(nil)
	_ repository.AirportRepository = (*AirportStore)(nil)
)
