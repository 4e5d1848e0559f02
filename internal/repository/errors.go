package repository

import (
	"errors"
	"fmt"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"

	bookingsPNRKey = "bookings_pnr_key"
)

// ErrDuplicatePNR reports that a record locator is already stored. It is the
// only conflict a booking insert can recover from by drawing a new code.
var ErrDuplicatePNR = fmt.Errorf("%w: record locator already taken", domain.ErrConflict)

// mapError translates driver errors into domain errors. Anything it does not
// recognize is reported as a storage failure.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == bookingsPNRKey {
				return fmt.Errorf("%s: %w", op, ErrDuplicatePNR)
			}
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: referenced by %s", op, domain.ErrConflict, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidArgument, pgErr.ConstraintName)
		}
	}
	if isDomainError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorage, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrExhausted, domain.ErrConflict,
		domain.ErrInvalidArgument, domain.ErrInvalidTransition, domain.ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mapInsertBookingError is mapError for the booking insert, where a foreign
// key violation means the user or flight vanished rather than a conflict.
func mapInsertBookingError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("insert booking: %w: %s", domain.ErrNotFound, pgErr.ConstraintName)
	}
	return mapError("insert booking", err)
}
