package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightSelect = `
	SELECT f.id, f.flight_code, f.flight_name, f.owner_id, o.company_code, o.company_name,
	       f.departure_airport_id, f.destination_airport_id, f.departure_time, f.arrival_time,
	       f.capacity,
	       GREATEST(f.capacity - (SELECT count(*) FROM bookings b WHERE b.flight_id = f.id AND b.booking_status = 'CONFIRMED'), 0),
	       f.price_cents, f.created_at, f.updated_at
	FROM flights f
	JOIN flight_owners o ON o.id = f.owner_id`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Code, &f.Name, &f.OwnerID, &f.AirlineCode, &f.AirlineName,
		&f.DepartureAirportID, &f.DestinationAirportID, &f.DepartureTime, &f.ArrivalTime,
		&f.Capacity, &f.AvailableSeats, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) queryFlights(ctx context.Context, op, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		flights = append(flights, *f)
	}
	return flights, mapError(op, rows.Err())
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.queryFlights(ctx, "list flights", flightSelect+` ORDER BY f.departure_time`)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, flightSelect+` WHERE f.id = $1`, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("get flight %d", id), err)
	}
	return f, nil
}

func (r *PGFlightRepository) Search(ctx context.Context, fromAirportID, toAirportID int64, day time.Time) ([]domain.Flight, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.queryFlights(ctx, "search flights", flightSelect+`
		WHERE f.departure_airport_id = $1 AND f.destination_airport_id = $2
		  AND f.departure_time >= $3 AND f.departure_time < $4
		ORDER BY f.departure_time`, fromAirportID, toAirportID, start, start.AddDate(0, 0, 1))
}

func (r *PGFlightRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Flight, error) {
	return r.queryFlights(ctx, "list owner flights", flightSelect+` WHERE f.owner_id = $1 ORDER BY f.departure_time`, ownerID)
}

func (r *PGFlightRepository) ExistsCode(ctx context.Context, ownerID int64, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE owner_id = $1 AND flight_code = $2 AND id <> $3)`, ownerID, code, excludeID).Scan(&exists)
	return exists, mapError("check flight code", err)
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_code, flight_name, owner_id, departure_airport_id, destination_airport_id,
			departure_time, arrival_time, capacity, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		f.Code, f.Name, f.OwnerID, f.DepartureAirportID, f.DestinationAirportID,
		f.DepartureTime, f.ArrivalTime, f.Capacity, f.PriceCents).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return mapError("create flight", err)
	}
	f.AvailableSeats = f.Capacity
	return nil
}

func (r *PGFlightRepository) Update(ctx context.Context, f *domain.Flight) error {
	err := r.db.QueryRow(ctx, `UPDATE flights SET flight_code = $2, flight_name = $3, departure_airport_id = $4,
			destination_airport_id = $5, departure_time = $6, arrival_time = $7, capacity = $8, price_cents = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		f.ID, f.Code, f.Name, f.DepartureAirportID, f.DestinationAirportID,
		f.DepartureTime, f.ArrivalTime, f.Capacity, f.PriceCents).
		Scan(&f.UpdatedAt)
	return mapError(fmt.Sprintf("update flight %d", f.ID), err)
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id = $1`, id)
	if err != nil {
		return mapError(fmt.Sprintf("delete flight %d", id), err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete flight %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
