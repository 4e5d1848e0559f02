package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, pnr, user_id, flight_id, departure_airport_id, destination_airport_id,
	departure_time, arrival_time, amount_cents, booking_status, payment_status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.PNR, &b.UserID, &b.FlightID, &b.DepartureAirportID, &b.DestinationAirportID,
		&b.DepartureTime, &b.ArrivalTime, &b.AmountCents, &b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Insert locks the flight row, re-checks capacity and inserts the booking in
// one transaction, so the database never holds more confirmed bookings than
// seats even without the in-process inventory lock.
func (r *PGBookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapError("begin insert booking", err)
	}
	defer tx.Rollback(ctx)

	var capacity int
	if err := tx.QueryRow(ctx, `SELECT capacity FROM flights WHERE id = $1 FOR UPDATE`, booking.FlightID).Scan(&capacity); err != nil {
		return mapError(fmt.Sprintf("lock flight %d", booking.FlightID), err)
	}

	if booking.Status.OccupiesSeat() {
		var used int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE flight_id = $1 AND booking_status = $2`,
			booking.FlightID, domain.BookingStatusConfirmed).Scan(&used); err != nil {
			return mapError("count confirmed bookings", err)
		}
		if used >= capacity {
			return fmt.Errorf("insert booking: %w", domain.ErrExhausted)
		}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (pnr, user_id, flight_id, departure_airport_id, destination_airport_id,
			departure_time, arrival_time, amount_cents, booking_status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		booking.PNR, booking.UserID, booking.FlightID, booking.DepartureAirportID, booking.DestinationAirportID,
		booking.DepartureTime, booking.ArrivalTime, booking.AmountCents, booking.Status, booking.PaymentStatus).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return mapInsertBookingError(err)
	}

	return mapError("commit booking", tx.Commit(ctx))
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("get booking %d", id), err)
	}
	return b, nil
}

func (r *PGBookingRepository) FindByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr = $1`, pnr))
	if err != nil {
		return nil, mapError(fmt.Sprintf("find booking %s", pnr), err)
	}
	return b, nil
}

func (r *PGBookingRepository) ExistsPNR(ctx context.Context, pnr string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE pnr = $1)`, pnr).Scan(&exists)
	return exists, mapError("check pnr", err)
}

func (r *PGBookingRepository) CountConfirmedByFlight(ctx context.Context, flightID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE flight_id = $1 AND booking_status = $2`,
		flightID, domain.BookingStatusConfirmed).Scan(&n)
	return n, mapError("count confirmed bookings", err)
}

func (r *PGBookingRepository) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE flight_id = $1`, flightID).Scan(&n)
	return n, mapError("count bookings", err)
}

// UpdateStatus moves a booking to status. A move that takes a seat back runs
// under the flight row lock and fails with ErrExhausted when the flight is full.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	op := fmt.Sprintf("update booking %d status", id)
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, mapError("begin "+op, err)
	}
	defer tx.Rollback(ctx)

	if status.OccupiesSeat() {
		var flightID int64
		var current domain.BookingStatus
		if err := tx.QueryRow(ctx, `SELECT flight_id, booking_status FROM bookings WHERE id = $1`, id).
			Scan(&flightID, &current); err != nil {
			return nil, mapError(op, err)
		}
		if !current.OccupiesSeat() {
			var capacity int
			if err := tx.QueryRow(ctx, `SELECT capacity FROM flights WHERE id = $1 FOR UPDATE`, flightID).Scan(&capacity); err != nil {
				return nil, mapError(fmt.Sprintf("lock flight %d", flightID), err)
			}
			var used int
			if err := tx.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE flight_id = $1 AND booking_status = $2`,
				flightID, domain.BookingStatusConfirmed).Scan(&used); err != nil {
				return nil, mapError("count confirmed bookings", err)
			}
			if used >= capacity {
				return nil, fmt.Errorf("%s: %w", op, domain.ErrExhausted)
			}
		}
	}

	b, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET booking_status = $2, updated_at = now()
		WHERE id = $1 RETURNING `+bookingColumns, id, status))
	if err != nil {
		return nil, mapError(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit "+op, err)
	}
	return b, nil
}

func (r *PGBookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, from, to domain.PaymentStatus) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET payment_status = $3, updated_at = now()
		WHERE id = $1 AND payment_status = $2 RETURNING `+bookingColumns, id, from, to))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(fmt.Sprintf("update booking %d payment", id), err)
	}

	var current domain.PaymentStatus
	if err := r.db.QueryRow(ctx, `SELECT payment_status FROM bookings WHERE id = $1`, id).Scan(&current); err != nil {
		return nil, mapError(fmt.Sprintf("get booking %d", id), err)
	}
	return nil, domain.NewPaymentTransitionError(current, to)
}

func (r *PGBookingRepository) queryBookings(ctx context.Context, op, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, mapError(op, rows.Err())
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.queryBookings(ctx, "list user bookings",
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *PGBookingRepository) ListByFlights(ctx context.Context, flightIDs []int64) ([]domain.Booking, error) {
	if len(flightIDs) == 0 {
		return []domain.Booking{}, nil
	}
	return r.queryBookings(ctx, "list flight bookings",
		`SELECT `+bookingColumns+` FROM bookings WHERE flight_id = ANY($1) ORDER BY id`, flightIDs)
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return r.queryBookings(ctx, "list bookings", `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
}

func (r *PGBookingRepository) ListPendingPaymentDepartedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	return r.queryBookings(ctx, "list overdue payments",
		`SELECT `+bookingColumns+` FROM bookings WHERE payment_status = $1 AND departure_time <= $2 ORDER BY id`,
		domain.PaymentStatusPending, deadline)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
