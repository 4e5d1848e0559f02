package flights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/inventory"
	"github.com/Domenick1991/goaero/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Availability(ctx context.Context, id int64) (int, error)
	Search(ctx context.Context, input SearchInput) ([]domain.Flight, error)
	ListByOwner(ctx context.Context, session domain.Session, ownerID int64) ([]domain.Flight, error)
	Create(ctx context.Context, session domain.Session, input FlightInput) (*domain.Flight, error)
	Update(ctx context.Context, session domain.Session, id int64, input FlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, session domain.Session, id int64) error
	Airports(ctx context.Context) ([]domain.Airport, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

// BookingCounter tells whether a flight already has bookings.
type BookingCounter interface {
	CountByFlight(ctx context.Context, flightID int64) (int, error)
}

type SearchInput struct {
	FromAirportID int64
	ToAirportID   int64
	Date          time.Time
}

// FlightInput carries the editable fields of a flight. OwnerID is only read
// when an admin creates a flight; owners always create for themselves.
type FlightInput struct {
	Code                 string
	Name                 string
	OwnerID              int64
	DepartureAirportID   int64
	DestinationAirportID int64
	DepartureTime        time.Time
	ArrivalTime          time.Time
	Capacity             int
	PriceCents           int64
}

type FlightService struct {
	repo      repository.FlightRepository
	airports  repository.AirportRepository
	bookings  BookingCounter
	inventory *inventory.Inventory
	cache     FlightCache
	now       func() time.Time
	log       *slog.Logger
}

type Option func(*FlightService)

func WithCache(cache FlightCache) Option {
	return func(s *FlightService) { s.cache = cache }
}

func WithClock(now func() time.Time) Option {
	return func(s *FlightService) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *FlightService) {
		if log != nil {
			s.log = log
		}
	}
}

func NewFlightService(
	repo repository.FlightRepository,
	airports repository.AirportRepository,
	bookings BookingCounter,
	inv *inventory.Inventory,
	opts ...Option,
) *FlightService {
	s := &FlightService{
		repo:      repo,
		airports:  airports,
		bookings:  bookings,
		inventory: inv,
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn("read flights cache", "error", err)
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("write flights cache", "error", err)
		}
	}
	return flights, nil
}

// Refresh reloads the flight list into the cache.
func (s *FlightService) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	flights, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	return s.cache.SetFlights(ctx, flights)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Availability(ctx context.Context, id int64) (int, error) {
	return s.inventory.AvailableSeats(ctx, id)
}

// Search lists the flights between two airports departing on the given day.
func (s *FlightService) Search(ctx context.Context, input SearchInput) ([]domain.Flight, error) {
	if input.FromAirportID <= 0 || input.ToAirportID <= 0 {
		return nil, fmt.Errorf("%w: departure and destination airports are required", domain.ErrInvalidArgument)
	}
	if input.FromAirportID == input.ToAirportID {
		return nil, fmt.Errorf("%w: departure and destination airports cannot be the same", domain.ErrInvalidArgument)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: travel date is required", domain.ErrInvalidArgument)
	}
	if startOfDay(input.Date).Before(startOfDay(s.now().In(input.Date.Location()))) {
		return nil, fmt.Errorf("%w: travel date cannot be in the past", domain.ErrInvalidArgument)
	}
	return s.repo.Search(ctx, input.FromAirportID, input.ToAirportID, input.Date)
}

func (s *FlightService) ListByOwner(ctx context.Context, session domain.Session, ownerID int64) ([]domain.Flight, error) {
	if !session.IsAdmin() && !session.IsOwner(ownerID) {
		return nil, fmt.Errorf("list flights of owner %d: %w", ownerID, domain.ErrForbidden)
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *FlightService) Create(ctx context.Context, session domain.Session, input FlightInput) (*domain.Flight, error) {
	switch {
	case session.Role == domain.RoleOwner:
		input.OwnerID = session.PrincipalID
	case session.IsAdmin():
	default:
		return nil, fmt.Errorf("create flight: %w", domain.ErrForbidden)
	}

	flight := input.flight()
	if err := s.validate(ctx, flight, 0); err != nil {
		return nil, err
	}
	if !flight.DepartureTime.After(s.now()) {
		return nil, fmt.Errorf("%w: departure cannot be in the past", domain.ErrInvalidArgument)
	}

	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.log.Info("flight created", "flight_id", flight.ID, "code", flight.Code, "owner_id", flight.OwnerID)
	s.invalidate(ctx)
	return flight, nil
}

// Update changes a flight. Capacity is fixed once the flight has bookings.
// The flight stays locked meanwhile so no booking slips in between the check
// and the write.
func (s *FlightService) Update(ctx context.Context, session domain.Session, id int64, input FlightInput) (*domain.Flight, error) {
	current, err := s.owned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	flight := input.flight()
	flight.ID = id
	flight.OwnerID = current.OwnerID
	if err := s.validate(ctx, flight, id); err != nil {
		return nil, err
	}

	err = s.inventory.WithFlightLock(ctx, id, func(ctx context.Context) error {
		if flight.Capacity != current.Capacity {
			booked, err := s.bookings.CountByFlight(ctx, id)
			if err != nil {
				return err
			}
			if booked > 0 {
				return fmt.Errorf("%w: capacity cannot change once the flight has bookings", domain.ErrInvalidArgument)
			}
		}
		return s.repo.Update(ctx, flight)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Delete(ctx context.Context, session domain.Session, id int64) error {
	if _, err := s.owned(ctx, session, id); err != nil {
		return err
	}
	err := s.inventory.WithFlightLock(ctx, id, func(ctx context.Context) error {
		booked, err := s.bookings.CountByFlight(ctx, id)
		if err != nil {
			return err
		}
		if booked > 0 {
			return fmt.Errorf("%w: flight has %d bookings", domain.ErrConflict, booked)
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("flight deleted", "flight_id", id)
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) Airports(ctx context.Context) ([]domain.Airport, error) {
	return s.airports.List(ctx)
}

func (s *FlightService) owned(ctx context.Context, session domain.Session, id int64) (*domain.Flight, error) {
	if session.Role != domain.RoleOwner && !session.IsAdmin() {
		return nil, fmt.Errorf("manage flight %d: %w", id, domain.ErrForbidden)
	}
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && !session.IsOwner(flight.OwnerID) {
		return nil, fmt.Errorf("manage flight %d: %w", id, domain.ErrForbidden)
	}
	return flight, nil
}

func (s *FlightService) validate(ctx context.Context, flight *domain.Flight, excludeID int64) error {
	if err := flight.Validate(); err != nil {
		return err
	}
	for _, airportID := range []int64{flight.DepartureAirportID, flight.DestinationAirportID} {
		if _, err := s.airports.GetByID(ctx, airportID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: unknown airport %d", domain.ErrInvalidArgument, airportID)
			}
			return err
		}
	}
	taken, err := s.repo.ExistsCode(ctx, flight.OwnerID, flight.Code, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: flight code %s already exists for this airline", domain.ErrConflict, flight.Code)
	}
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("invalidate flights cache", "error", err)
	}
}

func (in FlightInput) flight() *domain.Flight {
	return &domain.Flight{
		Code:                 strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:                 strings.TrimSpace(in.Name),
		OwnerID:              in.OwnerID,
		DepartureAirportID:   in.DepartureAirportID,
		DestinationAirportID: in.DestinationAirportID,
		DepartureTime:        in.DepartureTime,
		ArrivalTime:          in.ArrivalTime,
		Capacity:             in.Capacity,
		PriceCents:           in.PriceCents,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var _ FlightUseCase = (*FlightService)(nil)
