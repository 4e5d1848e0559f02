package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/goaero/internal/domain"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, fromAirportID, toAirportID int64, day time.Time) ([]domain.Flight, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Flight, error)
	ExistsCode(ctx context.Context, ownerID int64, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
}

type BookingRepository interface {
	// Insert stores a new booking. It fails with domain.ErrConflict when the
	// PNR is taken and domain.ErrExhausted when the flight is full.
	Insert(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ExistsPNR(ctx context.Context, pnr string) (bool, error)
	CountConfirmedByFlight(ctx context.Context, flightID int64) (int, error)
	CountByFlight(ctx context.Context, flightID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	// UpdatePaymentStatus moves the payment status only if it still equals
	// from; otherwise it returns a *domain.TransitionError.
	UpdatePaymentStatus(ctx context.Context, id int64, from, to domain.PaymentStatus) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByFlights(ctx context.Context, flightIDs []int64) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListPendingPaymentDepartedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type AccountRepository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)
	GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error)
	GetOwner(ctx context.Context, id int64) (*domain.FlightOwner, error)
	GetOwnerByCode(ctx context.Context, code string) (*domain.FlightOwner, error)
	CreateOwner(ctx context.Context, owner *domain.FlightOwner) error
	CountOwners(ctx context.Context) (int, error)
	// UpdatePassword replaces the stored hash of a user or an owner.
	UpdatePassword(ctx context.Context, role domain.Role, id int64, hash string) error
}

type AirportRepository interface {
	List(ctx context.Context) ([]domain.Airport, error)
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
}
