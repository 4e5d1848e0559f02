// Package inventory tracks bookable seats per flight and serializes every
// change to a flight's confirmed-booking count.
package inventory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/metrics"
)

type FlightReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type ConfirmedCounter interface {
	CountConfirmedByFlight(ctx context.Context, flightID int64) (int, error)
}

type Inventory struct {
	flights  FlightReader
	bookings ConfirmedCounter
	locker   Locker
}

func New(flights FlightReader, bookings ConfirmedCounter, locker Locker) *Inventory {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Inventory{flights: flights, bookings: bookings, locker: locker}
}

// AvailableSeats is capacity minus confirmed bookings, read from the store on
// every call.
func (inv *Inventory) AvailableSeats(ctx context.Context, flightID int64) (int, error) {
	flight, err := inv.flights.GetByID(ctx, flightID)
	if err != nil {
		return 0, err
	}
	return inv.available(ctx, flight)
}

func (inv *Inventory) available(ctx context.Context, flight *domain.Flight) (int, error) {
	used, err := inv.bookings.CountConfirmedByFlight(ctx, flight.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: count confirmed bookings: %v", domain.ErrStorage, err)
	}
	free := flight.Capacity - used
	if free < 0 {
		free = 0
	}
	return free, nil
}

// Reserve takes one seat on the flight. The flight stays locked until the
// reservation is committed (the booking was persisted and is now counted) or
// released (nothing was persisted).
func (inv *Inventory) Reserve(ctx context.Context, flightID int64) (*Reservation, error) {
	unlock, err := inv.lock(ctx, flightID)
	if err != nil {
		return nil, err
	}

	flight, err := inv.flights.GetByID(ctx, flightID)
	if err != nil {
		unlock()
		return nil, err
	}
	free, err := inv.available(ctx, flight)
	if err != nil {
		unlock()
		return nil, err
	}
	if free <= 0 {
		unlock()
		return nil, fmt.Errorf("flight %s: %w", flight.Code, domain.ErrExhausted)
	}

	return &Reservation{Flight: flight, unlock: unlock}, nil
}

// WithFlightLock runs fn while holding the flight's lock.
func (inv *Inventory) WithFlightLock(ctx context.Context, flightID int64, fn func(ctx context.Context) error) error {
	unlock, err := inv.lock(ctx, flightID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}

func (inv *Inventory) lock(ctx context.Context, flightID int64) (func(), error) {
	start := time.Now()
	unlock, err := inv.locker.LockFlight(ctx, flightID)
	metrics.SeatLockWait.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("lock flight %d: %w", flightID, err)
	}
	return unlock, nil
}

// Reservation is a seat held for a booking that is about to be persisted.
type Reservation struct {
	Flight *domain.Flight

	once     sync.Once
	unlock   func()
	released atomic.Bool
}

// Commit ends the reservation after the booking was stored.
func (r *Reservation) Commit() {
	r.once.Do(r.unlock)
}

// Release gives the seat back. It is the compensating action for a booking
// that could not be stored and is a no-op after Commit.
func (r *Reservation) Release() {
	r.once.Do(func() {
		r.released.Store(true)
		metrics.SeatsReleased.Inc()
		r.unlock()
	})
}

func (r *Reservation) Released() bool {
	return r.released.Load()
}
