package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/service/auth"
	"github.com/Domenick1991/goaero/internal/service/booking"
	"github.com/Domenick1991/goaero/internal/service/flights"
	"github.com/Domenick1991/goaero/internal/service/reports"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Availability(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, input flights.SearchInput) ([]domain.Flight, error) {
	args := m.Called(ctx, input)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ListByOwner(ctx context.Context, session domain.Session, ownerID int64) ([]domain.Flight, error) {
	args := m.Called(ctx, session, ownerID)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, session domain.Session, input flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, session, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, session domain.Session, id int64, input flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, session, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, session domain.Session, id int64) error {
	args := m.Called(ctx, session, id)
	return args.Error(0)
}

func (m *MockFlightUseCase) Airports(ctx context.Context) ([]domain.Airport, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Airport), args.Error(1)
}

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, input))
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, session domain.Session, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, session, id))
}

func (m *MockBookingUseCase) SetPaymentStatus(ctx context.Context, session domain.Session, id int64, status domain.PaymentStatus) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, session, id, status))
}

func (m *MockBookingUseCase) SetBookingStatus(ctx context.Context, session domain.Session, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, session, id, status))
}

func (m *MockBookingUseCase) FailOverduePayments(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, session domain.Session, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, session, id))
}

func (m *MockBookingUseCase) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, pnr))
}

func (m *MockBookingUseCase) ListUserBookings(ctx context.Context, session domain.Session) ([]domain.Booking, error) {
	args := m.Called(ctx, session)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListAllBookings(ctx context.Context, session domain.Session) ([]domain.Booking, error) {
	args := m.Called(ctx, session)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockAuthUseCase is a mock implementation of auth.AuthUseCase
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) RegisterUser(ctx context.Context, input auth.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUseCase) token(args mock.Arguments) (*auth.Token, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func (m *MockAuthUseCase) LoginUser(ctx context.Context, email, password string) (*auth.Token, error) {
	return m.token(m.Called(ctx, email, password))
}

func (m *MockAuthUseCase) LoginAdmin(ctx context.Context, username, password string) (*auth.Token, error) {
	return m.token(m.Called(ctx, username, password))
}

func (m *MockAuthUseCase) LoginOwner(ctx context.Context, code, password string) (*auth.Token, error) {
	return m.token(m.Called(ctx, code, password))
}

func (m *MockAuthUseCase) RegisterOwner(ctx context.Context, input auth.RegisterOwnerInput) (*domain.FlightOwner, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightOwner), args.Error(1)
}

func (m *MockAuthUseCase) ChangePassword(ctx context.Context, session domain.Session, current, next string) error {
	return m.Called(ctx, session, current, next).Error(0)
}

func (m *MockAuthUseCase) ResetPassword(ctx context.Context, session domain.Session, role domain.Role, id int64) (string, error) {
	args := m.Called(ctx, session, role, id)
	return args.String(0), args.Error(1)
}

func (m *MockAuthUseCase) ParseToken(token string) (domain.Session, error) {
	args := m.Called(token)
	return args.Get(0).(domain.Session), args.Error(1)
}

// MockReportsUseCase is a mock implementation of reports.ReportsUseCase
type MockReportsUseCase struct {
	mock.Mock
}

func (m *MockReportsUseCase) OwnerStats(ctx context.Context, session domain.Session) (*reports.OwnerReport, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.OwnerReport), args.Error(1)
}

func (m *MockReportsUseCase) Summary(ctx context.Context, session domain.Session) (*reports.Summary, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.Summary), args.Error(1)
}
