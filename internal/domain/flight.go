package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
	FlightStatusBoarding  FlightStatus = "BOARDING"
	FlightStatusInAir     FlightStatus = "IN_AIR"
	FlightStatusLanded    FlightStatus = "LANDED"
	FlightStatusDiverted  FlightStatus = "DIVERTED"
)

// Cabins holds seat counts and fares per travel class.
type Cabins struct {
	EconomySeats       int   `json:"economy_seats"`
	BusinessSeats      int   `json:"business_seats"`
	FirstSeats         int   `json:"first_seats"`
	EconomyPriceCents  int64 `json:"economy_price_cents"`
	BusinessPriceCents int64 `json:"business_price_cents"`
	FirstPriceCents    int64 `json:"first_price_cents"`
}

type CabinClass string

const (
	CabinEconomy  CabinClass = "ECONOMY"
	CabinBusiness CabinClass = "BUSINESS"
	CabinFirst    CabinClass = "FIRST"
)

// Fare returns the price of class and whether the flight sells seats in it.
func (c Cabins) Fare(class CabinClass) (int64, bool) {
	switch class {
	case CabinEconomy:
		return c.EconomyPriceCents, c.EconomySeats > 0
	case CabinBusiness:
		return c.BusinessPriceCents, c.BusinessSeats > 0
	case CabinFirst:
		return c.FirstPriceCents, c.FirstSeats > 0
	}
	return 0, false
}

// LowestFare is the cheapest price among the classes on sale.
func (c Cabins) LowestFare() (int64, bool) {
	var (
		lowest int64
		found  bool
	)
	for _, class := range []CabinClass{CabinEconomy, CabinBusiness, CabinFirst} {
		if price, ok := c.Fare(class); ok && (!found || price < lowest) {
			lowest, found = price, true
		}
	}
	return lowest, found
}

// FlightLeg is one non-stop segment of a draft itinerary.
type FlightLeg struct {
	OriginID        string    `json:"leg_origin_id"`
	DestinationID   string    `json:"leg_destination_id"`
	DepartureTime   time.Time `json:"leg_departure_time"`
	ArrivalTime     time.Time `json:"leg_arrival_time"`
	TransitDuration int       `json:"transit_duration"`
}

// Leg is a persisted segment of an Itinerary.
type Leg struct {
	ID              string    `json:"leg_id"`
	FlightID        string    `json:"flight_id"`
	LegOrder        int       `json:"leg_order"`
	OriginID        string    `json:"origin_id"`
	DestinationID   string    `json:"destination_id"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	Duration        int       `json:"duration"`
	TransitDuration int       `json:"transit_duration"`
}

// Itinerary is a flight record ready to be persisted or read back from storage.
type Itinerary struct {
	ID            string       `json:"flight_id"`
	Airline       string       `json:"airline"`
	FlightNumber  string       `json:"flight_number"`
	AirplaneID    string       `json:"airplane_id"`
	OriginID      string       `json:"origin_id"`
	DestinationID string       `json:"destination_id"`
	DepartureTime time.Time    `json:"departure_time"`
	ArrivalTime   time.Time    `json:"arrival_time"`
	Duration      int          `json:"duration"`
	Status        FlightStatus `json:"status"`
	Cabins
	Legs      []Leg     `json:"flight_legs"`
	CreatedAt time.Time `json:"created_at"`
}

// Direct reports whether the itinerary was declared without legs.
func (i *Itinerary) Direct() bool {
	return len(i.Legs) == 0
}

// Stops returns the connecting airports in flight order.
func (i *Itinerary) Stops() []string {
	if len(i.Legs) < 2 {
		return nil
	}
	stops := make([]string, 0, len(i.Legs)-1)
	for _, l := range i.Legs[:len(i.Legs)-1] {
		stops = append(stops, l.DestinationID)
	}
	return stops
}
