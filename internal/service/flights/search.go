package flights

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/itinerary"
)

type SortOrder string

const (
	SortPriceLow       SortOrder = "price_low"
	SortPriceHigh      SortOrder = "price_high"
	SortDurationLow    SortOrder = "duration_low"
	SortDurationHigh   SortOrder = "duration_high"
	SortDepartureEarly SortOrder = "departure_early"
	SortDepartureLate  SortOrder = "departure_late"
)

// SearchQuery narrows the flight list. Zero fields do not filter.
type SearchQuery struct {
	// Origin and Destination match an airport id or IATA code.
	Origin      string
	Destination string
	DirectOnly  bool
	// Cabin restricts results to flights selling that class; it also picks the fare
	// compared against MaxPriceCents and used for price sorting.
	Cabin         domain.CabinClass
	MaxPriceCents int64
	Airlines      []string
	Sort          SortOrder
}

func (s *FlightService) Search(ctx context.Context, q SearchQuery) ([]domain.Itinerary, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var dir itinerary.Directory
	if q.Origin != "" || q.Destination != "" {
		airports, err := s.Airports(ctx)
		if err != nil {
			return nil, err
		}
		dir = itinerary.NewDirectory(airports)
	}
	return SearchFlights(list, dir, q), nil
}

func (s *FlightService) SearchAirports(ctx context.Context, query string) ([]domain.Airport, error) {
	airports, err := s.Airports(ctx)
	if err != nil {
		return nil, err
	}
	return MatchAirports(airports, query), nil
}

// SearchFlights filters and orders flights without touching the input slice.
// Without a sort order the input order is kept.
func SearchFlights(list []domain.Itinerary, dir itinerary.Directory, q SearchQuery) []domain.Itinerary {
	out := make([]domain.Itinerary, 0, len(list))
	for _, it := range list {
		if q.matches(&it, dir) {
			out = append(out, it)
		}
	}

	if cmpFn := q.compare(); cmpFn != nil {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

func (q SearchQuery) matches(it *domain.Itinerary, dir itinerary.Directory) bool {
	if q.Origin != "" && !airportMatches(dir, it.OriginID, q.Origin) {
		return false
	}
	if q.Destination != "" && !airportMatches(dir, it.DestinationID, q.Destination) {
		return false
	}
	if q.DirectOnly && !it.Direct() {
		return false
	}
	if len(q.Airlines) > 0 && !slices.ContainsFunc(q.Airlines, func(a string) bool {
		return strings.EqualFold(a, it.Airline)
	}) {
		return false
	}

	price, ok := q.fare(it)
	if q.Cabin != "" && !ok {
		return false
	}
	if q.MaxPriceCents > 0 && (!ok || price > q.MaxPriceCents) {
		return false
	}
	return true
}

func (q SearchQuery) fare(it *domain.Itinerary) (int64, bool) {
	if q.Cabin != "" {
		return it.Cabins.Fare(q.Cabin)
	}
	return it.Cabins.LowestFare()
}

func (q SearchQuery) compare() func(a, b domain.Itinerary) int {
	switch q.Sort {
	case SortPriceLow, SortPriceHigh:
		desc := q.Sort == SortPriceHigh
		return func(a, b domain.Itinerary) int {
			pa, okA := q.fare(&a)
			pb, okB := q.fare(&b)
			// flights without a fare go last either way
			switch {
			case !okA || !okB:
				return cmp.Compare(boolRank(okB), boolRank(okA))
			case desc:
				return cmp.Compare(pb, pa)
			default:
				return cmp.Compare(pa, pb)
			}
		}
	case SortDurationLow:
		return func(a, b domain.Itinerary) int { return cmp.Compare(a.Duration, b.Duration) }
	case SortDurationHigh:
		return func(a, b domain.Itinerary) int { return cmp.Compare(b.Duration, a.Duration) }
	case SortDepartureEarly:
		return func(a, b domain.Itinerary) int { return a.DepartureTime.Compare(b.DepartureTime) }
	case SortDepartureLate:
		return func(a, b domain.Itinerary) int { return b.DepartureTime.Compare(a.DepartureTime) }
	}
	return nil
}

func boolRank(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

func airportMatches(dir itinerary.Directory, id, want string) bool {
	if strings.EqualFold(id, want) {
		return true
	}
	a, ok := dir.Lookup(id)
	return ok && a.Code != "" && strings.EqualFold(a.Code, want)
}

// MatchAirports keeps airports whose code, name, city or country contains query,
// ignoring case. An empty query matches everything.
func MatchAirports(airports []domain.Airport, query string) []domain.Airport {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return airports
	}
	out := make([]domain.Airport, 0, len(airports))
	for _, a := range airports {
		for _, field := range []string{a.Code, a.Name, a.City, a.Country} {
			if strings.Contains(strings.ToLower(field), query) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
