package itinerary

import (
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// Draft is an itinerary as submitted by an operator, before validation.
type Draft struct {
	Airline       string
	FlightNumber  string
	AirplaneID    string
	OriginID      string
	DestinationID string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Status        domain.FlightStatus
	Cabins        domain.Cabins
	Legs          []domain.FlightLeg
}

type Builder struct {
	ids                 IDSource
	clock               Clock
	rejectInvertedTimes bool
	matchLegTimes       bool
}

type BuilderOption func(*Builder)

// WithRejectInvertedTimes reports arrival before departure as an error
// instead of clamping the duration to zero.
func WithRejectInvertedTimes() BuilderOption {
	return func(b *Builder) {
		b.rejectInvertedTimes = true
	}
}

// WithMatchLegTimes requires a multi-leg draft to depart with its first leg
// and arrive with its last one.
func WithMatchLegTimes() BuilderOption {
	return func(b *Builder) {
		b.matchLegTimes = true
	}
}

func NewBuilder(ids IDSource, clock Clock, opts ...BuilderOption) *Builder {
	b := &Builder{ids: ids, clock: clock}
	for _, opt := range opts {
		opt(b)
	}
	if b.ids == nil {
		b.ids = UUIDSource{}
	}
	if b.clock == nil {
		b.clock = SystemClock{}
	}
	return b
}

// Check runs every rule Build enforces without generating anything.
func (b *Builder) Check(draft Draft) Result {
	res := Validate(draft.OriginID, draft.DestinationID, draft.Legs)
	if b.rejectInvertedTimes {
		res.Errors = append(res.Errors, invertedTimes(draft)...)
	}
	if b.matchLegTimes {
		res.Errors = append(res.Errors, legTimeMismatches(draft)...)
	}
	return res
}

// Build validates the draft and assembles a persistable itinerary. On any
// validation failure it returns a *ValidationError and nothing else.
func (b *Builder) Build(draft Draft) (*domain.Itinerary, error) {
	if err := b.Check(draft).Err(); err != nil {
		return nil, err
	}

	flightID, err := b.ids.NewID(draft.Airline)
	if err != nil {
		return nil, fmt.Errorf("generate flight id: %w", err)
	}

	status := draft.Status
	if status == "" {
		status = domain.FlightStatusScheduled
	}

	it := &domain.Itinerary{
		ID:            flightID,
		Airline:       draft.Airline,
		FlightNumber:  draft.FlightNumber,
		AirplaneID:    draft.AirplaneID,
		OriginID:      draft.OriginID,
		DestinationID: draft.DestinationID,
		DepartureTime: draft.DepartureTime.UTC(),
		ArrivalTime:   draft.ArrivalTime.UTC(),
		Duration:      ComputeDuration(draft.DepartureTime, draft.ArrivalTime),
		Status:        status,
		Cabins:        draft.Cabins,
		Legs:          make([]domain.Leg, 0, len(draft.Legs)),
		CreatedAt:     b.clock.Now(),
	}

	for i, l := range draft.Legs {
		legID, err := b.ids.NewID(draft.Airline)
		if err != nil {
			return nil, fmt.Errorf("generate leg id: %w", err)
		}
		it.Legs = append(it.Legs, domain.Leg{
			ID:              legID,
			FlightID:        flightID,
			LegOrder:        i + 1,
			OriginID:        l.OriginID,
			DestinationID:   l.DestinationID,
			DepartureTime:   l.DepartureTime.UTC(),
			ArrivalTime:     l.ArrivalTime.UTC(),
			Duration:        ComputeDuration(l.DepartureTime, l.ArrivalTime),
			TransitDuration: l.TransitDuration,
		})
	}
	return it, nil
}

func invertedTimes(draft Draft) []LegError {
	var errs []LegError
	if draft.ArrivalTime.Before(draft.DepartureTime) {
		errs = append(errs, LegError{
			Leg:     FlightLevel,
			Field:   FieldArrivalTime,
			Kind:    KindInvertedTimes,
			Message: "Arrival time must not precede departure time",
		})
	}
	for i, l := range draft.Legs {
		if l.ArrivalTime.Before(l.DepartureTime) {
			errs = append(errs, LegError{
				Leg:     i,
				Field:   FieldArrivalTime,
				Kind:    KindInvertedTimes,
				Message: fmt.Sprintf("Leg %d arrival time must not precede its departure time", i+1),
			})
		}
	}
	return errs
}

func legTimeMismatches(draft Draft) []LegError {
	if len(draft.Legs) == 0 {
		return nil
	}
	var errs []LegError
	if first := draft.Legs[0]; !first.DepartureTime.Equal(draft.DepartureTime) {
		errs = append(errs, LegError{
			Leg:     FlightLevel,
			Field:   FieldDepartureTime,
			Kind:    KindTimeMismatch,
			Message: "Departure time must match first leg departure time",
		})
	}
	if last := draft.Legs[len(draft.Legs)-1]; !last.ArrivalTime.Equal(draft.ArrivalTime) {
		errs = append(errs, LegError{
			Leg:     FlightLevel,
			Field:   FieldArrivalTime,
			Kind:    KindTimeMismatch,
			Message: "Arrival time must match last leg arrival time",
		})
	}
	return errs
}
