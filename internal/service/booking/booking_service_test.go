package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/inventory"
	"github.com/Domenick1991/goaero/internal/kafka"
	"github.com/Domenick1991/goaero/internal/pnr"
	"github.com/Domenick1991/goaero/internal/repository"
)

var testNow = time.Date(2030, 4, 1, 12, 0, 0, 0, time.UTC)

type mocks struct {
	bookings *MockBookingRepository
	flights  *MockFlightRepository
	accounts *MockAccountRepository
	locators *MockLocatorGenerator
	producer *MockProducer
}

func newTestService() (*BookingService, *mocks) {
	m := &mocks{
		bookings: &MockBookingRepository{},
		flights:  &MockFlightRepository{},
		accounts: &MockAccountRepository{},
		locators: &MockLocatorGenerator{},
		producer: &MockProducer{},
	}
	inv := inventory.New(m.flights, m.bookings, nil)
	service := NewBookingService(m.bookings, m.flights, m.accounts, inv, m.locators, m.producer, "bookings",
		WithNotificationsTopic("notifications"),
		WithClock(func() time.Time { return testNow }),
	)
	return service, m
}

func testFlight() *domain.Flight {
	dep := testNow.Add(48 * time.Hour)
	return &domain.Flight{
		ID: 100, Code: "AA100", OwnerID: 3, AirlineCode: "AA",
		DepartureAirportID: 1, DestinationAirportID: 2,
		DepartureTime: dep, ArrivalTime: dep.Add(2 * time.Hour),
		Capacity: 1, PriceCents: 25000,
	}
}

func testUser() *domain.User {
	return &domain.User{ID: 7, FirstName: "Ann", Email: "ann@example.com"}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil).Once()
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(testFlight(), nil).Once()
	m.bookings.On("CountConfirmedByFlight", mock.Anything, int64(100)).Return(0, nil).Once()
	m.locators.On("MaxAttempts").Return(16)
	m.locators.On("Generate", mock.Anything, "AA").Return("AA7K3Q9Z", nil).Once()
	m.bookings.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	m.producer.On("Publish", mock.Anything, "bookings", "AA7K3Q9Z", mock.AnythingOfType("kafka.BookingEvent")).Return(nil).Once()
	m.producer.On("Publish", mock.Anything, "notifications", "AA7K3Q9Z", mock.AnythingOfType("kafka.BookingEvent")).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 7, FlightID: 100})

	require.NoError(t, err)
	assert.Equal(t, "AA7K3Q9Z", booking.PNR)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, domain.PaymentStatusPending, booking.PaymentStatus)
	assert.Equal(t, int64(25000), booking.AmountCents)
	assert.Equal(t, testFlight().DepartureTime, booking.DepartureTime)

	event := m.producer.Calls[1].Arguments.Get(3).(kafka.BookingEvent)
	assert.Equal(t, kafka.EventBookingCreated, event.Type)
	assert.Equal(t, "ann@example.com", event.Email)

	m.bookings.AssertExpectations(t)
	m.producer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_Exhausted(t *testing.T) {
	service, m := newTestService()

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(testFlight(), nil)
	m.bookings.On("CountConfirmedByFlight", mock.Anything, int64(100)).Return(1, nil)

	booking, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 7, FlightID: 100})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrExhausted)
	m.bookings.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	m.producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_FlightNotFound(t *testing.T) {
	service, m := newTestService()

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(nil, domain.ErrNotFound)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 7, FlightID: 100})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_CreateBooking_InvalidInput(t *testing.T) {
	service, _ := newTestService()

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{FlightID: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBookingService_CreateBooking_InsertConflictRetries(t *testing.T) {
	service, m := newTestService()

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(testFlight(), nil)
	m.bookings.On("CountConfirmedByFlight", mock.Anything, int64(100)).Return(0, nil)
	m.locators.On("MaxAttempts").Return(16)
	m.locators.On("Generate", mock.Anything, "AA").Return("AA000001", nil).Once()
	m.locators.On("Generate", mock.Anything, "AA").Return("AA000002", nil).Once()
	m.bookings.On("Insert", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool { return b.PNR == "AA000001" })).
		Return(repository.ErrDuplicatePNR).Once()
	m.bookings.On("Insert", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool { return b.PNR == "AA000002" })).
		Return(nil).Once()
	m.producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	booking, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 7, FlightID: 100})

	require.NoError(t, err)
	assert.Equal(t, "AA000002", booking.PNR)
	m.locators.AssertNumberOfCalls(t, "Generate", 2)
}

func TestBookingService_CreateBooking_InsertConflictExhausted(t *testing.T) {
	service, m := newTestService()

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(testFlight(), nil)
	m.bookings.On("CountConfirmedByFlight", mock.Anything, int64(100)).Return(0, nil)
	m.locators.On("MaxAttempts").Return(2)
	m.locators.On("Generate", mock.Anything, "AA").Return("AA000001", nil)
	m.bookings.On("Insert", mock.Anything, mock.Anything).Return(repository.ErrDuplicatePNR)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 7, FlightID: 100})

	assert.ErrorIs(t, err, pnr.ErrNamespaceExhausted)
	m.bookings.AssertNumberOfCalls(t, "Insert", 2)
}

func TestBookingService_CreateBooking_OtherConflictIsNotRetried(t *testing.T) {
	service, m := newTestService()

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(testFlight(), nil)
	m.bookings.On("CountConfirmedByFlight", mock.Anything, int64(100)).Return(0, nil)
	m.locators.On("MaxAttempts").Return(16)
	m.locators.On("Generate", mock.Anything, "AA").Return("AA000001", nil)
	m.bookings.On("Insert", mock.Anything, mock.Anything).
		Return(fmt.Errorf("insert booking: %w: referenced by bookings_user_id_fkey", domain.ErrConflict))

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 7, FlightID: 100})

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, pnr.ErrNamespaceExhausted)
	m.bookings.AssertNumberOfCalls(t, "Insert", 1)
	m.locators.AssertNumberOfCalls(t, "Generate", 1)
}

func TestBookingService_CreateBooking_StorageFailureReleasesSeat(t *testing.T) {
	service, m := newTestService()

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(testFlight(), nil)
	m.bookings.On("CountConfirmedByFlight", mock.Anything, int64(100)).Return(0, nil)
	m.locators.On("MaxAttempts").Return(16)
	m.locators.On("Generate", mock.Anything, "AA").Return("AA000001", nil)
	m.bookings.On("Insert", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 7, FlightID: 100})
	assert.ErrorIs(t, err, domain.ErrStorage)

	// The flight lock was given back, so the next reservation goes through.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := service.inventory.Reserve(ctx, 100)
	require.NoError(t, err)
	res.Release()
}

func TestBookingService_CreateBooking_DepartedFlight(t *testing.T) {
	service, m := newTestService()
	flight := testFlight()
	flight.DepartureTime = testNow.Add(-time.Hour)

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(flight, nil)
	m.bookings.On("CountConfirmedByFlight", mock.Anything, int64(100)).Return(0, nil)

	_, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 7, FlightID: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	m.bookings.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_PublishFailureIgnored(t *testing.T) {
	service, m := newTestService()

	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(testFlight(), nil)
	m.bookings.On("CountConfirmedByFlight", mock.Anything, int64(100)).Return(0, nil)
	m.locators.On("MaxAttempts").Return(16)
	m.locators.On("Generate", mock.Anything, "AA").Return("AA000001", nil)
	m.bookings.On("Insert", mock.Anything, mock.Anything).Return(nil)
	m.producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	booking, err := service.CreateBooking(context.Background(), CreateBookingInput{UserID: 7, FlightID: 100})
	require.NoError(t, err)
	assert.NotNil(t, booking)
}

func TestBookingService_CancelBooking_Forbidden(t *testing.T) {
	service, m := newTestService()
	m.bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{ID: 1, UserID: 7, FlightID: 100}, nil)

	_, err := service.CancelBooking(context.Background(), domain.UserSession(8), 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	m.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CancelBooking_NotCancellable(t *testing.T) {
	service, m := newTestService()
	cancelled := &domain.Booking{ID: 1, PNR: "AA000001", UserID: 7, FlightID: 100,
		Status: domain.BookingStatusCancelled, DepartureTime: testNow.Add(time.Hour)}
	m.bookings.On("GetByID", mock.Anything, int64(1)).Return(cancelled, nil)

	_, err := service.CancelBooking(context.Background(), domain.UserSession(7), 1)
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
}

func TestBookingService_CancelBooking_Success(t *testing.T) {
	service, m := newTestService()
	current := &domain.Booking{ID: 1, PNR: "AA000001", UserID: 7, FlightID: 100,
		Status: domain.BookingStatusConfirmed, DepartureTime: testNow.Add(time.Hour)}
	cancelled := *current
	cancelled.Status = domain.BookingStatusCancelled

	m.bookings.On("GetByID", mock.Anything, int64(1)).Return(current, nil)
	m.bookings.On("UpdateStatus", mock.Anything, int64(1), domain.BookingStatusCancelled).Return(&cancelled, nil).Once()
	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.producer.On("Publish", mock.Anything, mock.Anything, "AA000001", mock.Anything).Return(nil).Twice()

	got, err := service.CancelBooking(context.Background(), domain.AdminSession(1), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	m.producer.AssertExpectations(t)
}

func TestBookingService_SetPaymentStatus_AlreadyTerminal(t *testing.T) {
	service, m := newTestService()
	m.bookings.On("GetByID", mock.Anything, int64(1)).Return(&domain.Booking{
		ID: 1, UserID: 7, PaymentStatus: domain.PaymentStatusCompleted,
	}, nil)

	_, err := service.SetPaymentStatus(context.Background(), domain.UserSession(7), 1, domain.PaymentStatusFailed)

	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "COMPLETED", te.From)
	assert.Equal(t, "FAILED", te.To)
	m.bookings.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_SetPaymentStatus_UnknownStatus(t *testing.T) {
	service, _ := newTestService()
	_, err := service.SetPaymentStatus(context.Background(), domain.AdminSession(1), 1, "REFUNDED")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBookingService_SetBookingStatus_RequiresAdmin(t *testing.T) {
	service, _ := newTestService()
	_, err := service.SetBookingStatus(context.Background(), domain.UserSession(7), 1, domain.BookingStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_FailOverduePayments(t *testing.T) {
	service, m := newTestService()
	overdue := []domain.Booking{
		{ID: 1, PNR: "AA000001", UserID: 7, PaymentStatus: domain.PaymentStatusPending},
		{ID: 2, PNR: "AA000002", UserID: 7, PaymentStatus: domain.PaymentStatusPending},
	}
	failed := overdue[0]
	failed.PaymentStatus = domain.PaymentStatusFailed

	m.bookings.On("ListPendingPaymentDepartedBefore", mock.Anything, testNow).Return(overdue, nil)
	m.bookings.On("UpdatePaymentStatus", mock.Anything, int64(1), domain.PaymentStatusPending, domain.PaymentStatusFailed).Return(&failed, nil)
	m.bookings.On("UpdatePaymentStatus", mock.Anything, int64(2), domain.PaymentStatusPending, domain.PaymentStatusFailed).
		Return(nil, domain.NewPaymentTransitionError(domain.PaymentStatusCompleted, domain.PaymentStatusFailed))
	m.accounts.On("GetUser", mock.Anything, int64(7)).Return(testUser(), nil)
	m.producer.On("Publish", mock.Anything, mock.Anything, "AA000001", mock.Anything).Return(nil)

	got, err := service.FailOverduePayments(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, domain.PaymentStatusFailed, got[0].PaymentStatus)
}

func TestBookingService_GetBooking_OwnerOfFlight(t *testing.T) {
	service, m := newTestService()
	b := &domain.Booking{ID: 1, UserID: 7, FlightID: 100}
	m.bookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)
	m.flights.On("GetByID", mock.Anything, int64(100)).Return(testFlight(), nil)

	got, err := service.GetBooking(context.Background(), domain.OwnerSession(3), 1)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = service.GetBooking(context.Background(), domain.OwnerSession(4), 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_ListBookings_Roles(t *testing.T) {
	service, m := newTestService()
	m.bookings.On("ListByUser", mock.Anything, int64(7)).Return([]domain.Booking{{ID: 1}}, nil)
	m.bookings.On("ListAll", mock.Anything).Return([]domain.Booking{{ID: 1}, {ID: 2}}, nil)

	mine, err := service.ListUserBookings(context.Background(), domain.UserSession(7))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = service.ListUserBookings(context.Background(), domain.AdminSession(1))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	all, err := service.ListAllBookings(context.Background(), domain.AdminSession(1))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = service.ListAllBookings(context.Background(), domain.UserSession(7))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStorageError(t *testing.T) {
	assert.ErrorIs(t, storageError(errors.New("boom")), domain.ErrStorage)
	assert.Equal(t, domain.ErrExhausted, storageError(domain.ErrExhausted))
}
