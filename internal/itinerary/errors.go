package itinerary

import (
	"errors"
	"fmt"
	"strings"
)

// FlightLevel is the leg index used for problems that belong to the flight as a whole.
const FlightLevel = -1

const (
	FieldOrigin        = "origin"
	FieldDestination   = "destination"
	FieldDepartureTime = "departure_time"
	FieldArrivalTime   = "arrival_time"
)

type Kind string

const (
	KindOriginMismatch      Kind = "origin_mismatch"
	KindDestinationMismatch Kind = "destination_mismatch"
	KindBrokenChain         Kind = "broken_chain"
	KindUnknownAirport      Kind = "unknown_airport"
	KindInvertedTimes       Kind = "inverted_times"
	KindTimeMismatch        Kind = "time_mismatch"
)

var (
	ErrContinuity     = errors.New("leg chain is not continuous")
	ErrTemporal       = errors.New("flight times are inconsistent")
	ErrUnknownAirport = errors.New("unknown airport")
)

// LegError ties a single problem to the leg and field it belongs to.
type LegError struct {
	Leg     int    `json:"leg"`
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e LegError) Error() string {
	if e.Leg == FlightLevel {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("leg %d %s: %s", e.Leg, e.Field, e.Message)
}

// Unwrap maps the problem kind onto its sentinel.
func (e LegError) Unwrap() error {
	switch e.Kind {
	case KindOriginMismatch, KindDestinationMismatch, KindBrokenChain:
		return ErrContinuity
	case KindInvertedTimes, KindTimeMismatch:
		return ErrTemporal
	case KindUnknownAirport:
		return ErrUnknownAirport
	}
	return nil
}

// ValidationError aggregates every problem found in a draft.
type ValidationError struct {
	Errors []LegError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, le := range e.Errors {
		msgs = append(msgs, le.Error())
	}
	return "invalid itinerary: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, le := range e.Errors {
		errs = append(errs, le)
	}
	return errs
}
