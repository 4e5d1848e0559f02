package booking

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/goaero/internal/domain"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingRepository) FindByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, pnr))
}

func (m *MockBookingRepository) ExistsPNR(ctx context.Context, pnr string) (bool, error) {
	args := m.Called(ctx, pnr)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) CountConfirmedByFlight(ctx context.Context, flightID int64) (int, error) {
	args := m.Called(ctx, flightID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	args := m.Called(ctx, flightID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, status))
}

func (m *MockBookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, from, to domain.PaymentStatus) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, from, to))
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByFlights(ctx context.Context, flightIDs []int64) ([]domain.Booking, error) {
	args := m.Called(ctx, flightIDs)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListPendingPaymentDepartedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, from, to int64, day time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, from, to, day)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Flight, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ExistsCode(ctx context.Context, ownerID int64, code string, excludeID int64) (bool, error) {
	args := m.Called(ctx, ownerID, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountRepository) CreateUser(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockAccountRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAccountRepository) GetOwner(ctx context.Context, id int64) (*domain.FlightOwner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightOwner), args.Error(1)
}

func (m *MockAccountRepository) GetOwnerByCode(ctx context.Context, code string) (*domain.FlightOwner, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightOwner), args.Error(1)
}

func (m *MockAccountRepository) CountOwners(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) CreateOwner(ctx context.Context, owner *domain.FlightOwner) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, role domain.Role, id int64, hash string) error {
	return m.Called(ctx, role, id, hash).Error(0)
}

type MockLocatorGenerator struct {
	mock.Mock
}

func (m *MockLocatorGenerator) Generate(ctx context.Context, airlineCode string) (string, error) {
	args := m.Called(ctx, airlineCode)
	return args.String(0), args.Error(1)
}

func (m *MockLocatorGenerator) MaxAttempts() int {
	return m.Called().Int(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value any) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}
