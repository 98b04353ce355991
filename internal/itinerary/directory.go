package itinerary

import (
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// Directory is a materialized airport lookup keyed by airport id.
type Directory map[string]domain.Airport

func NewDirectory(airports []domain.Airport) Directory {
	dir := make(Directory, len(airports))
	for _, a := range airports {
		dir[a.ID] = a
	}
	return dir
}

func (d Directory) Lookup(id string) (domain.Airport, bool) {
	a, ok := d[id]
	return a, ok
}

// Check reports every airport id referenced by the flight or its legs that the
// directory does not know. Flight endpoints come first, then legs in order.
func (d Directory) Check(originID, destinationID string, legs []domain.FlightLeg) []LegError {
	var errs []LegError
	unknown := func(leg int, field, id string) {
		if _, ok := d[id]; ok {
			return
		}
		errs = append(errs, LegError{
			Leg:     leg,
			Field:   field,
			Kind:    KindUnknownAirport,
			Message: fmt.Sprintf("Airport %q does not exist", id),
		})
	}

	unknown(FlightLevel, FieldOrigin, originID)
	unknown(FlightLevel, FieldDestination, destinationID)
	for i, l := range legs {
		unknown(i, FieldOrigin, l.OriginID)
		unknown(i, FieldDestination, l.DestinationID)
	}
	return errs
}
