package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/inventory"
	"github.com/Domenick1991/goaero/internal/kafka"
	"github.com/Domenick1991/goaero/internal/metrics"
	"github.com/Domenick1991/goaero/internal/pnr"
	"github.com/Domenick1991/goaero/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, session domain.Session, bookingID int64) (*domain.Booking, error)
	SetPaymentStatus(ctx context.Context, session domain.Session, bookingID int64, status domain.PaymentStatus) (*domain.Booking, error)
	SetBookingStatus(ctx context.Context, session domain.Session, bookingID int64, status domain.BookingStatus) (*domain.Booking, error)
	FailOverduePayments(ctx context.Context) ([]domain.Booking, error)
	GetBooking(ctx context.Context, session domain.Session, bookingID int64) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, session domain.Session) ([]domain.Booking, error)
	ListAllBookings(ctx context.Context, session domain.Session) ([]domain.Booking, error)
}

type EventProducer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type LocatorGenerator interface {
	Generate(ctx context.Context, airlineCode string) (string, error)
	MaxAttempts() int
}

// FlightsCache is dropped whenever seat counts change so cached flight lists
// do not show stale availability.
type FlightsCache interface {
	InvalidateFlights(ctx context.Context) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	accounts           repository.AccountRepository
	inventory          *inventory.Inventory
	locators           LocatorGenerator
	producer           EventProducer
	cache              FlightsCache
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
	log                *slog.Logger
}

type CreateBookingInput struct {
	UserID   int64 `json:"user_id"`
	FlightID int64 `json:"flight_id"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(log *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithFlightsCache(cache FlightsCache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

// NewBookingService wires the booking engine. producer may be nil, in which
// case no events are published.
func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	accounts repository.AccountRepository,
	inv *inventory.Inventory,
	locators LocatorGenerator,
	producer EventProducer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		accounts:     accounts,
		inventory:    inv,
		locators:     locators,
		producer:     producer,
		bookingTopic: bookingTopic,
		now:          time.Now,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking books one seat on a flight for a user. The booking is
// CONFIRMED with payment PENDING. If anything fails after the seat was
// reserved the reservation is released.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.UserID <= 0 || input.FlightID <= 0 {
		return nil, s.reject(fmt.Errorf("%w: user and flight are required", domain.ErrInvalidArgument))
	}

	user, err := s.accounts.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, s.reject(err)
	}

	reservation, err := s.inventory.Reserve(ctx, input.FlightID)
	if err != nil {
		return nil, s.reject(err)
	}

	booking, err := s.persist(ctx, user.ID, reservation.Flight)
	if err != nil {
		reservation.Release()
		s.log.Warn("booking not stored, seat released",
			"flight_id", input.FlightID, "user_id", user.ID, "error", err)
		return nil, s.reject(err)
	}
	reservation.Commit()

	metrics.BookingsCreated.Inc()
	s.log.Info("booking created", "pnr", booking.PNR, "flight_id", booking.FlightID, "user_id", booking.UserID)
	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventBookingCreated, booking, user.Email)
	return booking, nil
}

// persist draws a locator and inserts the booking. A unique violation on the
// locator means another instance took it between the check and the insert,
// so a fresh one is drawn.
func (s *BookingService) persist(ctx context.Context, userID int64, flight *domain.Flight) (*domain.Booking, error) {
	if !flight.DepartureTime.After(s.now()) {
		return nil, fmt.Errorf("%w: flight %s has already departed", domain.ErrInvalidArgument, flight.Code)
	}

	attempts := s.locators.MaxAttempts()
	for attempt := 1; ; attempt++ {
		code, err := s.locators.Generate(ctx, flight.AirlineCode)
		if err != nil {
			return nil, err
		}

		booking := domain.NewBookingFromFlight(userID, flight, code)
		err = s.bookings.Insert(ctx, booking)
		if err == nil {
			return booking, nil
		}
		if !errors.Is(err, repository.ErrDuplicatePNR) {
			if errors.Is(err, domain.ErrConflict) {
				return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
			}
			return nil, storageError(err)
		}
		if attempt >= attempts {
			return nil, fmt.Errorf("%w: %v", pnr.ErrNamespaceExhausted, err)
		}
		s.log.Warn("record locator taken at insert, retrying", "pnr", code, "attempt", attempt)
	}
}

// CancelBooking cancels a PENDING or CONFIRMED booking before departure. The
// seat returns to the flight because only CONFIRMED bookings are counted.
func (s *BookingService) CancelBooking(ctx context.Context, session domain.Session, bookingID int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && !session.IsUser(current.UserID) {
		return nil, fmt.Errorf("cancel booking %d: %w", bookingID, domain.ErrForbidden)
	}

	var updated *domain.Booking
	err = s.inventory.WithFlightLock(ctx, current.FlightID, func(ctx context.Context) error {
		fresh, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !fresh.IsCancellable(s.now()) {
			return fmt.Errorf("booking %s (%s): %w", fresh.PNR, fresh.Status, domain.ErrNotCancellable)
		}
		updated, err = s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCancelled.Inc()
	s.log.Info("booking cancelled", "pnr", updated.PNR, "flight_id", updated.FlightID)
	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventBookingCancelled, updated, s.emailOf(ctx, updated.UserID))
	return updated, nil
}

// SetPaymentStatus moves a PENDING payment to COMPLETED or FAILED. Both are
// terminal, so a second call fails with domain.ErrInvalidTransition.
func (s *BookingService) SetPaymentStatus(ctx context.Context, session domain.Session, bookingID int64, status domain.PaymentStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidArgument, status)
	}

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && !session.IsUser(current.UserID) {
		return nil, fmt.Errorf("update payment of booking %d: %w", bookingID, domain.ErrForbidden)
	}
	if !current.PaymentStatus.CanTransitionTo(status) {
		return nil, domain.NewPaymentTransitionError(current.PaymentStatus, status)
	}

	updated, err := s.bookings.UpdatePaymentStatus(ctx, bookingID, current.PaymentStatus, status)
	if err != nil {
		return nil, err
	}

	metrics.PaymentTransitions.WithLabelValues(string(status)).Inc()
	s.log.Info("payment updated", "pnr", updated.PNR, "payment_status", updated.PaymentStatus)
	s.publish(ctx, kafka.EventPaymentUpdated, updated, s.emailOf(ctx, updated.UserID))
	return updated, nil
}

// SetBookingStatus is the administrative override. Any status may be set, but
// moving a booking into CONFIRMED needs a free seat.
func (s *BookingService) SetBookingStatus(ctx context.Context, session domain.Session, bookingID int64, status domain.BookingStatus) (*domain.Booking, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("set booking status: %w", domain.ErrForbidden)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", domain.ErrInvalidArgument, status)
	}

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var (
		updated *domain.Booking
		changed bool
	)
	err = s.inventory.WithFlightLock(ctx, current.FlightID, func(ctx context.Context) error {
		fresh, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if fresh.Status == status {
			updated = fresh
			return nil
		}
		if status.OccupiesSeat() {
			free, err := s.inventory.AvailableSeats(ctx, fresh.FlightID)
			if err != nil {
				return err
			}
			if free <= 0 {
				return fmt.Errorf("reinstate booking %s: %w", fresh.PNR, domain.ErrExhausted)
			}
		}
		updated, err = s.bookings.UpdateStatus(ctx, bookingID, status)
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return updated, nil
	}

	if status == domain.BookingStatusCancelled {
		metrics.BookingsCancelled.Inc()
	}
	s.log.Info("booking status overridden", "pnr", updated.PNR, "from", current.Status, "to", updated.Status, "admin_id", session.PrincipalID)
	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventBookingStatusChanged, updated, s.emailOf(ctx, updated.UserID))
	return updated, nil
}

// FailOverduePayments marks every payment still PENDING after departure as
// FAILED and returns the bookings it changed. A booking whose payment moved
// concurrently is skipped.
func (s *BookingService) FailOverduePayments(ctx context.Context) ([]domain.Booking, error) {
	overdue, err := s.bookings.ListPendingPaymentDepartedBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}

	var (
		failed []domain.Booking
		errs   []error
	)
	for _, b := range overdue {
		updated, err := s.bookings.UpdatePaymentStatus(ctx, b.ID, domain.PaymentStatusPending, domain.PaymentStatusFailed)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				continue
			}
			errs = append(errs, fmt.Errorf("booking %s: %w", b.PNR, err))
			continue
		}
		metrics.PaymentTransitions.WithLabelValues(string(domain.PaymentStatusFailed)).Inc()
		s.publish(ctx, kafka.EventPaymentUpdated, updated, s.emailOf(ctx, updated.UserID))
		failed = append(failed, *updated)
	}
	return failed, errors.Join(errs...)
}

// GetBooking returns a booking to its user, to the airline operating the
// flight or to an admin.
func (s *BookingService) GetBooking(ctx context.Context, session domain.Session, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, session, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) GetByPNR(ctx context.Context, code string) (*domain.Booking, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: pnr is required", domain.ErrInvalidArgument)
	}
	return s.bookings.FindByPNR(ctx, code)
}

// CanView reports whether the session may see the booking.
func (s *BookingService) CanView(ctx context.Context, session domain.Session, b *domain.Booking) error {
	return s.authorizeView(ctx, session, b)
}

func (s *BookingService) ListUserBookings(ctx context.Context, session domain.Session) ([]domain.Booking, error) {
	if session.Role != domain.RoleUser {
		return nil, fmt.Errorf("list bookings: %w", domain.ErrForbidden)
	}
	return s.bookings.ListByUser(ctx, session.PrincipalID)
}

func (s *BookingService) ListAllBookings(ctx context.Context, session domain.Session) ([]domain.Booking, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("list all bookings: %w", domain.ErrForbidden)
	}
	return s.bookings.ListAll(ctx)
}

func (s *BookingService) authorizeView(ctx context.Context, session domain.Session, b *domain.Booking) error {
	switch session.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleUser:
		if session.PrincipalID == b.UserID {
			return nil
		}
	case domain.RoleOwner:
		flight, err := s.flights.GetByID(ctx, b.FlightID)
		if err != nil {
			return err
		}
		if flight.OwnerID == session.PrincipalID {
			return nil
		}
	}
	return fmt.Errorf("booking %d: %w", b.ID, domain.ErrForbidden)
}

func (s *BookingService) emailOf(ctx context.Context, userID int64) string {
	user, err := s.accounts.GetUser(ctx, userID)
	if err != nil {
		s.log.Warn("user lookup for notification", "user_id", userID, "error", err)
		return ""
	}
	return user.Email
}

func (s *BookingService) invalidateFlights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("invalidate flights cache", "error", err)
	}
}

// publish is best effort: a booking that was stored is never failed because
// the event could not be delivered.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, email string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := NewEvent(eventType, booking, email, s.now())

	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, booking.PNR, event); err != nil {
			metrics.PublishErrors.Inc()
			s.log.Warn("publish booking event", "type", eventType, "topic", topic, "pnr", booking.PNR, "error", err)
			continue
		}
		metrics.EventsPublished.Inc()
	}
}

func NewEvent(eventType string, b *domain.Booking, email string, at time.Time) kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:          eventType,
		EventID:       uuid.NewString(),
		BookingID:     b.ID,
		PNR:           b.PNR,
		FlightID:      b.FlightID,
		UserID:        b.UserID,
		Email:         email,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		AmountCents:   b.AmountCents,
		DepartureTime: b.DepartureTime,
		OccurredAt:    at,
	}
}

// reject counts a failed creation attempt and returns err unchanged.
func (s *BookingService) reject(err error) error {
	metrics.BookingsRejected.WithLabelValues(reason(err)).Inc()
	return err
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, domain.ErrExhausted):
		return metrics.ReasonExhausted
	case errors.Is(err, domain.ErrConflict):
		return metrics.ReasonConflict
	case errors.Is(err, domain.ErrStorage):
		return metrics.ReasonStorage
	}
	return metrics.ReasonOther
}

// storageError keeps classified errors as they are and tags everything else
// as a storage failure.
func storageError(err error) error {
	for _, known := range []error{
		domain.ErrNotFound, domain.ErrExhausted, domain.ErrConflict,
		domain.ErrStorage, domain.ErrInvalidArgument,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrStorage, err)
}

var _ BookingUseCase = (*BookingService)(nil)
