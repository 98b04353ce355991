package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/itinerary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFixture() []domain.Itinerary {
	dep := time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)
	return []domain.Itinerary{
		{
			ID: "AA-1", Airline: "AA", OriginID: "1", DestinationID: "3",
			DepartureTime: dep.Add(2 * time.Hour), Duration: 420,
			Cabins: domain.Cabins{EconomySeats: 100, EconomyPriceCents: 50000, BusinessSeats: 10, BusinessPriceCents: 200000},
		},
		{
			ID: "BA-2", Airline: "BA", OriginID: "1", DestinationID: "3",
			DepartureTime: dep, Duration: 600,
			Cabins: domain.Cabins{EconomySeats: 100, EconomyPriceCents: 40000},
			Legs:   []domain.Leg{{OriginID: "1", DestinationID: "2"}, {OriginID: "2", DestinationID: "3"}},
		},
		{
			ID: "AF-3", Airline: "AF", OriginID: "2", DestinationID: "3",
			DepartureTime: dep.Add(time.Hour), Duration: 75,
			Cabins: domain.Cabins{FirstSeats: 4, FirstPriceCents: 90000},
		},
		{
			ID: "AA-4", Airline: "AA", OriginID: "1", DestinationID: "2",
			DepartureTime: dep.Add(3 * time.Hour), Duration: 480,
		},
	}
}

func ids(list []domain.Itinerary) []string {
	out := make([]string, 0, len(list))
	for _, it := range list {
		out = append(out, it.ID)
	}
	return out
}

func TestSearchFlights(t *testing.T) {
	dir := itinerary.NewDirectory(airports)

	tests := []struct {
		name string
		q    SearchQuery
		want []string
	}{
		{name: "no filters keeps order", q: SearchQuery{}, want: []string{"AA-1", "BA-2", "AF-3", "AA-4"}},
		{name: "origin by code", q: SearchQuery{Origin: "jfk"}, want: []string{"AA-1", "BA-2", "AA-4"}},
		{name: "origin by id", q: SearchQuery{Origin: "2"}, want: []string{"AF-3"}},
		{name: "route", q: SearchQuery{Origin: "JFK", Destination: "LHR"}, want: []string{"AA-1", "BA-2"}},
		{name: "unknown airport", q: SearchQuery{Origin: "SFO"}, want: []string{}},
		{name: "direct only", q: SearchQuery{Origin: "JFK", Destination: "LHR", DirectOnly: true}, want: []string{"AA-1"}},
		{name: "airlines", q: SearchQuery{Airlines: []string{"ba", "AF"}}, want: []string{"BA-2", "AF-3"}},
		{name: "cabin", q: SearchQuery{Cabin: domain.CabinBusiness}, want: []string{"AA-1"}},
		{name: "max price any cabin", q: SearchQuery{MaxPriceCents: 50000}, want: []string{"AA-1", "BA-2"}},
		{name: "max price in cabin", q: SearchQuery{Cabin: domain.CabinBusiness, MaxPriceCents: 100000}, want: []string{}},
		{name: "price low, unpriced last", q: SearchQuery{Sort: SortPriceLow}, want: []string{"BA-2", "AA-1", "AF-3", "AA-4"}},
		{name: "price high, unpriced last", q: SearchQuery{Sort: SortPriceHigh}, want: []string{"AF-3", "AA-1", "BA-2", "AA-4"}},
		{name: "duration low", q: SearchQuery{Sort: SortDurationLow}, want: []string{"AF-3", "AA-1", "AA-4", "BA-2"}},
		{name: "duration high", q: SearchQuery{Sort: SortDurationHigh}, want: []string{"BA-2", "AA-4", "AA-1", "AF-3"}},
		{name: "departure early", q: SearchQuery{Sort: SortDepartureEarly}, want: []string{"BA-2", "AF-3", "AA-1", "AA-4"}},
		{name: "departure late", q: SearchQuery{Sort: SortDepartureLate}, want: []string{"AA-4", "AA-1", "AF-3", "BA-2"}},
		{name: "filter and sort", q: SearchQuery{Origin: "JFK", Sort: SortDurationLow}, want: []string{"AA-1", "AA-4", "BA-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := searchFixture()
			got := SearchFlights(list, dir, tt.q)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []string{"AA-1", "BA-2", "AF-3", "AA-4"}, ids(list))
		})
	}
}

func TestMatchAirports(t *testing.T) {
	list := []domain.Airport{
		{ID: "1", Code: "JFK", Name: "John F. Kennedy International", City: "New York", Country: "United States"},
		{ID: "2", Code: "CDG", Name: "Charles de Gaulle", City: "Paris", Country: "France"},
		{ID: "3", Code: "ORY", Name: "Orly", City: "Paris", Country: "France"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"1", "2", "3"}},
		{query: "cdg", want: []string{"2"}},
		{query: " Paris ", want: []string{"2", "3"}},
		{query: "kennedy", want: []string{"1"}},
		{query: "united", want: []string{"1"}},
		{query: "tokyo", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := make([]string, 0)
			for _, a := range MatchAirports(list, tt.query) {
				got = append(got, a.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlightService_Search(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockAirports := &MockAirportRepository{}
	service := NewFlightService(mockRepo, mockAirports, nil, testBuilder())

	ctx := context.Background()
	mockRepo.On("List", ctx).Return(searchFixture(), nil)
	mockAirports.On("List", ctx).Return(airports, nil).Once()

	got, err := service.Search(ctx, SearchQuery{Origin: "CDG"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AF-3"}, ids(got))

	got, err = service.Search(ctx, SearchQuery{Sort: SortPriceLow})
	require.NoError(t, err)
	assert.Len(t, got, 4)
	mockAirports.AssertNumberOfCalls(t, "List", 1)
}

func TestFlightService_Search_Errors(t *testing.T) {
	ctx := context.Background()

	mockRepo := &MockFlightRepository{}
	mockRepo.On("List", ctx).Return([]domain.Itinerary(nil), errors.New("db down"))
	_, err := NewFlightService(mockRepo, &MockAirportRepository{}, nil, testBuilder()).Search(ctx, SearchQuery{})
	assert.ErrorContains(t, err, "db down")

	okRepo := &MockFlightRepository{}
	okRepo.On("List", ctx).Return(searchFixture(), nil)
	mockAirports := &MockAirportRepository{}
	mockAirports.On("List", ctx).Return([]domain.Airport(nil), errors.New("backend down"))
	_, err = NewFlightService(okRepo, mockAirports, nil, testBuilder()).Search(ctx, SearchQuery{Origin: "JFK"})
	assert.ErrorContains(t, err, "backend down")
}

func TestFlightService_SearchAirports(t *testing.T) {
	mockAirports := &MockAirportRepository{}
	service := NewFlightService(&MockFlightRepository{}, mockAirports, nil, testBuilder())

	ctx := context.Background()
	mockAirports.On("List", ctx).Return(airports, nil)

	got, err := service.SearchAirports(ctx, "lh")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "LHR", got[0].Code)
}
