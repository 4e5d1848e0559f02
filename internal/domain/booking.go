package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Booking is a seat on a flight held by a user. The travel facts and the
// amount are copied from the flight when the booking is created and never
// change afterwards; only Status and PaymentStatus move.
type Booking struct {
	ID                   int64
	PNR                  string
	UserID               int64
	FlightID             int64
	DepartureAirportID   int64
	DestinationAirportID int64
	DepartureTime        time.Time
	ArrivalTime          time.Time
	AmountCents          int64
	Status               BookingStatus
	PaymentStatus        PaymentStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the engine itself may move a booking from s
// to next. Administrative overrides do not consult it.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	}
	return false
}

// OccupiesSeat reports whether a booking in this status counts against the
// flight capacity.
func (s BookingStatus) OccupiesSeat() bool {
	return s == BookingStatusConfirmed
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentStatusPending && next.Terminal()
}

// IsCancellable reports whether the booking may still be cancelled by its
// owner at the given moment.
func (b *Booking) IsCancellable(now time.Time) bool {
	if b.Status != BookingStatusPending && b.Status != BookingStatusConfirmed {
		return false
	}
	return now.Before(b.DepartureTime)
}

// NewBookingFromFlight builds the snapshot persisted at creation time.
func NewBookingFromFlight(userID int64, f *Flight, pnr string) *Booking {
	return &Booking{
		PNR:                  pnr,
		UserID:               userID,
		FlightID:             f.ID,
		DepartureAirportID:   f.DepartureAirportID,
		DestinationAirportID: f.DestinationAirportID,
		DepartureTime:        f.DepartureTime,
		ArrivalTime:          f.ArrivalTime,
		AmountCents:          f.PriceCents,
		Status:               BookingStatusConfirmed,
		PaymentStatus:        PaymentStatusPending,
	}
}
