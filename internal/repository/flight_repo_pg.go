package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Itinerary, error)
	GetByID(ctx context.Context, id string) (*domain.Itinerary, error)
	Create(ctx context.Context, it *domain.Itinerary) error
	// AirplaneLocation returns the airport the airplane last arrived at on or before at.
	// An empty id means the airplane has no recorded flights.
	AirplaneLocation(ctx context.Context, airplaneID string, at time.Time) (string, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, airline, flight_number, airplane_id, origin_id, destination_id, departure_time, arrival_time, duration_minutes, status,
	economy_seats, business_seats, first_seats, economy_price_cents, business_price_cents, first_price_cents, created_at`

const legColumns = `id, flight_id, leg_order, origin_id, destination_id, departure_time, arrival_time, duration_minutes, transit_duration`

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Itinerary, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Itinerary, 0)
	index := make(map[string]int)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		index[f.ID] = len(flights)
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return flights, nil
	}

	ids := make([]string, 0, len(flights))
	for _, f := range flights {
		ids = append(ids, f.ID)
	}
	legs, err := r.legs(ctx, `SELECT `+legColumns+` FROM flight_legs WHERE flight_id = ANY($1) ORDER BY flight_id, leg_order`, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range legs {
		i := index[l.FlightID]
		flights[i].Legs = append(flights[i].Legs, l)
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	f.Legs, err = r.legs(ctx, `SELECT `+legColumns+` FROM flight_legs WHERE flight_id=$1 ORDER BY leg_order`, id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create writes the flight and its legs in one transaction.
func (r *PGFlightRepository) Create(ctx context.Context, it *domain.Itinerary) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO flights (`+flightColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		it.ID, it.Airline, it.FlightNumber, it.AirplaneID, it.OriginID, it.DestinationID,
		it.DepartureTime, it.ArrivalTime, it.Duration, string(it.Status),
		it.EconomySeats, it.BusinessSeats, it.FirstSeats,
		it.EconomyPriceCents, it.BusinessPriceCents, it.FirstPriceCents, it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}

	if len(it.Legs) > 0 {
		batch := &pgx.Batch{}
		for _, l := range it.Legs {
			batch.Queue(`INSERT INTO flight_legs (`+legColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				l.ID, l.FlightID, l.LegOrder, l.OriginID, l.DestinationID, l.DepartureTime, l.ArrivalTime, l.Duration, l.TransitDuration)
		}
		br := tx.SendBatch(ctx, batch)
		for range it.Legs {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert flight leg: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("insert flight legs: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGFlightRepository) AirplaneLocation(ctx context.Context, airplaneID string, at time.Time) (string, error) {
	var airportID string
	err := r.db.QueryRow(ctx, `SELECT destination_id FROM flights
		WHERE airplane_id=$1 AND arrival_time <= $2 AND status <> 'CANCELLED'
		ORDER BY arrival_time DESC LIMIT 1`, airplaneID, at).Scan(&airportID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return airportID, err
}

func (r *PGFlightRepository) legs(ctx context.Context, query string, args ...any) ([]domain.Leg, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	legs := make([]domain.Leg, 0)
	for rows.Next() {
		var l domain.Leg
		if err := rows.Scan(&l.ID, &l.FlightID, &l.LegOrder, &l.OriginID, &l.DestinationID, &l.DepartureTime, &l.ArrivalTime, &l.Duration, &l.TransitDuration); err != nil {
			return nil, err
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

func scanFlight(row pgx.Row) (domain.Itinerary, error) {
	var (
		f      domain.Itinerary
		status string
	)
	err := row.Scan(&f.ID, &f.Airline, &f.FlightNumber, &f.AirplaneID, &f.OriginID, &f.DestinationID,
		&f.DepartureTime, &f.ArrivalTime, &f.Duration, &status,
		&f.EconomySeats, &f.BusinessSeats, &f.FirstSeats,
		&f.EconomyPriceCents, &f.BusinessPriceCents, &f.FirstPriceCents, &f.CreatedAt)
	f.Status = domain.FlightStatus(status)
	return f, err
}

var _ FlightRepository = (*PGFlightRepository)(nil)
