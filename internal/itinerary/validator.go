package itinerary

import (
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// Result is the outcome of a chain validation. A zero Result is valid.
type Result struct {
	Errors []LegError
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns a *ValidationError for an invalid result and nil otherwise.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// Validate checks that legs form a connected chain from originID to destinationID.
// An empty chain is a direct flight and always valid. All problems are collected:
// origin mismatch first, then destination mismatch, then breaks in ascending leg order.
func Validate(originID, destinationID string, legs []domain.FlightLeg) Result {
	if len(legs) == 0 {
		return Result{}
	}

	var errs []LegError
	if legs[0].OriginID != originID {
		errs = append(errs, LegError{
			Leg:     0,
			Field:   FieldOrigin,
			Kind:    KindOriginMismatch,
			Message: "First leg origin must match main flight origin",
		})
	}

	last := len(legs) - 1
	if legs[last].DestinationID != destinationID {
		errs = append(errs, LegError{
			Leg:     last,
			Field:   FieldDestination,
			Kind:    KindDestinationMismatch,
			Message: "Last leg destination must match main flight destination",
		})
	}

	for i := 0; i < last; i++ {
		if legs[i].DestinationID == legs[i+1].OriginID {
			continue
		}
		errs = append(errs, LegError{
			Leg:     i + 1,
			Field:   FieldOrigin,
			Kind:    KindBrokenChain,
			Message: fmt.Sprintf("Leg %d origin must match leg %d destination", i+2, i+1),
		})
	}

	return Result{Errors: errs}
}
