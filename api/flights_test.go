package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/backend"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/itinerary"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Search(ctx context.Context, q flights.SearchQuery) ([]domain.Itinerary, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Itinerary), args.Error(1)
}

func (m *MockFlightUseCase) Validate(ctx context.Context, draft itinerary.Draft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockFlightUseCase) Create(ctx context.Context, draft itinerary.Draft) (*domain.Itinerary, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Itinerary), args.Error(1)
}

func (m *MockFlightUseCase) SearchAirports(ctx context.Context, query string) ([]domain.Airport, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Airport), args.Error(1)
}

func (m *MockFlightUseCase) AirplaneLocation(ctx context.Context, airplaneID string, at time.Time) (string, error) {
	args := m.Called(ctx, airplaneID, at)
	return args.String(0), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc flights.FlightUseCase, auth *Authenticator) *gin.Engine {
	return NewRouter(RouterConfig{
		Flights:  NewFlightHandler(svc, auth),
		Airports: NewAirportHandler(svc),
		Auth:     auth,
	})
}

const flightBody = `{
	"airline": "AA",
	"flight_number": "AA100",
	"airplane_id": "N100AA",
	"origin_id": "JFK",
	"destination_id": "LHR",
	"departure_time": "2025-07-15T08:00:00Z",
	"arrival_time": "2025-07-15T18:00:00Z",
	"economy_seats": 150,
	"economy_price_cents": 45000,
	"flight_legs": [
		{"leg_origin_id": "JFK", "leg_destination_id": "CDG", "leg_departure_time": "2025-07-15T08:00:00Z", "leg_arrival_time": "2025-07-15T15:00:00Z", "transit_duration": 60},
		{"leg_origin_id": "CDG", "leg_destination_id": "LHR", "leg_departure_time": "2025-07-15T16:00:00Z", "leg_arrival_time": "2025-07-15T18:00:00Z"}
	]
}`

func doRequest(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	flightsList := []domain.Itinerary{{ID: "AA-1", OriginID: "JFK", DestinationID: "LHR", Duration: 210}}
	mockService.On("Search", mock.Anything, flights.SearchQuery{}).Return(flightsList, nil)

	w := doRequest(newTestRouter(mockService, nil), http.MethodGet, "/api/v1/flights", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "AA-1", body[0]["flight_id"])
	assert.Equal(t, "3h 30m", body[0]["duration_label"])
	mockService.AssertExpectations(t)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	want := flights.SearchQuery{
		Origin:        "JFK",
		Destination:   "LHR",
		DirectOnly:    true,
		Cabin:         domain.CabinBusiness,
		MaxPriceCents: 150000,
		Airlines:      []string{"AA", "BA"},
		Sort:          flights.SortDurationLow,
	}
	mockService.On("Search", mock.Anything, want).Return([]domain.Itinerary{}, nil).Once()
	r := newTestRouter(mockService, nil)

	w := doRequest(r, http.MethodGet,
		"/api/v1/flights?origin=JFK&destination=LHR&direct=true&cabin=BUSINESS&max_price=150000&airline=AA&airline=BA&sort=duration_low", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	mockService.AssertExpectations(t)

	for _, bad := range []string{"sort=cheapest", "cabin=PREMIUM", "max_price=-1", "direct=maybe"} {
		w = doRequest(r, http.MethodGet, "/api/v1/flights?"+bad, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
	mockService.AssertNumberOfCalls(t, "Search", 1)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "AA-1"}}
	c.Request = httptest.NewRequest("GET", "/flights/AA-1", nil)

	mockService.On("GetByID", c.Request.Context(), "AA-1").Return(&domain.Itinerary{ID: "AA-1"}, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("GetByID", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

	w := doRequest(newTestRouter(mockService, nil), http.MethodGet, "/api/v1/flights/nope", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	created := &domain.Itinerary{ID: "AA-1", Duration: 600}
	mockService.On("Create", mock.Anything, mock.MatchedBy(func(d itinerary.Draft) bool {
		return d.OriginID == "JFK" && len(d.Legs) == 2 &&
			d.Legs[0].TransitDuration == 60 && d.Legs[1].OriginID == "CDG" &&
			d.Cabins.EconomySeats == 150
	})).Return(created, nil)

	w := doRequest(newTestRouter(mockService, nil), http.MethodPost, "/api/v1/flights", flightBody, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"duration_label":"10h"`)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_create_BindErrors(t *testing.T) {
	mockService := &MockFlightUseCase{}
	r := newTestRouter(mockService, nil)

	cases := map[string]string{
		"malformed":        `{`,
		"missing fields":   `{"airline": "AA"}`,
		"same endpoints":   `{"airline":"AA","flight_number":"1","airplane_id":"x","origin_id":"JFK","destination_id":"JFK","departure_time":"2025-07-15T08:00:00Z","arrival_time":"2025-07-15T09:00:00Z"}`,
		"negative transit": `{"airline":"AA","flight_number":"1","airplane_id":"x","origin_id":"JFK","destination_id":"LAX","departure_time":"2025-07-15T08:00:00Z","arrival_time":"2025-07-15T09:00:00Z","flight_legs":[{"leg_origin_id":"JFK","leg_destination_id":"LAX","leg_departure_time":"2025-07-15T08:00:00Z","leg_arrival_time":"2025-07-15T09:00:00Z","transit_duration":-5}]}`,
		"bad status":       `{"airline":"AA","flight_number":"1","airplane_id":"x","origin_id":"JFK","destination_id":"LAX","departure_time":"2025-07-15T08:00:00Z","arrival_time":"2025-07-15T09:00:00Z","status":"IN_AIR"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/v1/flights", body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFlightHandler_create_ValidationError(t *testing.T) {
	mockService := &MockFlightUseCase{}
	verr := &itinerary.ValidationError{Errors: []itinerary.LegError{
		{Leg: 1, Field: itinerary.FieldOrigin, Kind: itinerary.KindBrokenChain, Message: "Leg 2 origin must match leg 1 destination"},
	}}
	mockService.On("Create", mock.Anything, mock.Anything).Return(nil, verr)

	w := doRequest(newTestRouter(mockService, nil), http.MethodPost, "/api/v1/flights", flightBody, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Valid   bool                 `json:"valid"`
		Details []itinerary.LegError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Valid)
	assert.Equal(t, verr.Errors, body.Details)
}

func TestFlightHandler_create_AirplaneConflict(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("Create", mock.Anything, mock.Anything).Return(nil, flights.ErrAirplaneNotAtOrigin)

	w := doRequest(newTestRouter(mockService, nil), http.MethodPost, "/api/v1/flights", flightBody, "")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFlightHandler_create_BackendRejects(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{
			name: "client error relayed",
			err: fmt.Errorf("persist flight: %w", backend.ResponseStatusError{
				StatusCode: http.StatusUnprocessableEntity, Status: "422 Unprocessable Entity",
				Message: "Flight number AA100 already exists",
			}),
			code: http.StatusUnprocessableEntity,
			body: `{"error":"Flight number AA100 already exists"}`,
		},
		{
			name: "server error becomes bad gateway",
			err:  backend.ResponseStatusError{StatusCode: http.StatusServiceUnavailable, Status: "503 Service Unavailable"},
			code: http.StatusBadGateway,
			body: `{"error":"503 Service Unavailable"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockFlightUseCase{}
			mockService.On("Create", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doRequest(newTestRouter(mockService, nil), http.MethodPost, "/api/v1/flights", flightBody, "")

			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestFlightHandler_create_RequiresOperator(t *testing.T) {
	mockService := &MockFlightUseCase{}
	auth := NewAuthenticator("test-secret", "flightdesk")
	r := newTestRouter(mockService, auth)
	mockService.On("Create", mock.Anything, mock.Anything).Return(&domain.Itinerary{ID: "AA-1"}, nil)

	w := doRequest(r, http.MethodPost, "/api/v1/flights", flightBody, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	customer, err := auth.Issue("u1", RoleCustomer, time.Hour)
	require.NoError(t, err)
	w = doRequest(r, http.MethodPost, "/api/v1/flights", flightBody, customer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	operator, err := auth.Issue("u2", RoleOperator, time.Hour)
	require.NoError(t, err)
	w = doRequest(r, http.MethodPost, "/api/v1/flights", flightBody, operator)
	assert.Equal(t, http.StatusCreated, w.Code)

	mockService.AssertNumberOfCalls(t, "Create", 1)
}

func TestFlightHandler_validate(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("Validate", mock.Anything, mock.Anything).Return(nil)

	w := doRequest(newTestRouter(mockService, nil), http.MethodPost, "/api/v1/flights/validate", flightBody, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true,"duration":600,"duration_label":"10h"}`, w.Body.String())
}

func TestFlightHandler_duration(t *testing.T) {
	r := newTestRouter(&MockFlightUseCase{}, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/itinerary/duration?departure=2025-07-15T08:00:00Z&arrival=2025-07-15T11:30:00Z", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"duration":210,"duration_label":"3h 30m"}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/v1/itinerary/duration?departure=2025-07-15T11:30:00Z&arrival=2025-07-15T08:00:00Z", "", "")
	assert.JSONEq(t, `{"duration":0,"duration_label":"0m"}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/v1/itinerary/duration?departure=yesterday", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAirportHandler(t *testing.T) {
	mockService := &MockFlightUseCase{}
	mockService.On("SearchAirports", mock.Anything, "").Return([]domain.Airport{{ID: "1", Code: "JFK"}}, nil)
	mockService.On("SearchAirports", mock.Anything, "paris").Return([]domain.Airport{{ID: "2", Code: "CDG"}}, nil)
	at := time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)
	mockService.On("AirplaneLocation", mock.Anything, "N100AA", mock.MatchedBy(func(ts time.Time) bool { return ts.Equal(at) })).Return("1", nil)
	mockService.On("AirplaneLocation", mock.Anything, "broken", mock.Anything).Return("", errors.New("db down"))
	r := newTestRouter(mockService, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/airports", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"JFK"`)

	w = doRequest(r, http.MethodGet, "/api/v1/airports?query=paris", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"CDG"`)

	w = doRequest(r, http.MethodGet, "/api/v1/airplanes/N100AA/location?at=2025-07-15T08:00:00Z", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":"1"}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/v1/airplanes/broken/location", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouter_HealthAndCORS(t *testing.T) {
	r := newTestRouter(&MockFlightUseCase{}, NewAuthenticator("s", ""))

	w := doRequest(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(r, http.MethodOptions, "/api/v1/flights", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
