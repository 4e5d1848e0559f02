package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/repository/memory"
)

func seed(t *testing.T) (*ReportsService, *memory.Store, domain.FlightOwner) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	owner := store.AddOwner(domain.FlightOwner{CompanyName: "Alpha Air", CompanyCode: "AA"})
	other := store.AddOwner(domain.FlightOwner{CompanyName: "Beta Air", CompanyCode: "BB"})
	from := store.AddAirport(domain.Airport{Code: "SVO"})
	to := store.AddAirport(domain.Airport{Code: "LED"})
	require.NoError(t, store.Accounts().CreateUser(ctx, &domain.User{Email: "ann@example.com"}))

	dep := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	newFlight := func(ownerID int64, code string, capacity int) *domain.Flight {
		f := &domain.Flight{
			Code: code, Name: code, OwnerID: ownerID,
			DepartureAirportID: from.ID, DestinationAirportID: to.ID,
			DepartureTime: dep, ArrivalTime: dep.Add(time.Hour),
			Capacity: capacity, PriceCents: 10000,
		}
		require.NoError(t, store.Flights().Create(ctx, f))
		return f
	}
	a := newFlight(owner.ID, "AA1", 4)
	newFlight(owner.ID, "AA2", 2)
	b := newFlight(other.ID, "BB1", 3)

	insert := func(f *domain.Flight, code string, status domain.BookingStatus, payment domain.PaymentStatus) {
		booking := domain.NewBookingFromFlight(1, f, code)
		booking.Status = status
		booking.PaymentStatus = payment
		require.NoError(t, store.Bookings().Insert(ctx, booking))
	}
	insert(a, "AA000001", domain.BookingStatusConfirmed, domain.PaymentStatusCompleted)
	insert(a, "AA000002", domain.BookingStatusConfirmed, domain.PaymentStatusPending)
	insert(a, "AA000003", domain.BookingStatusCancelled, domain.PaymentStatusFailed)
	insert(b, "BB000001", domain.BookingStatusConfirmed, domain.PaymentStatusCompleted)

	return NewReportsService(store.Flights(), store.Bookings(), store.Accounts()), store, owner
}

func TestReportsService_OwnerStats(t *testing.T) {
	service, _, owner := seed(t)

	report, err := service.OwnerStats(context.Background(), domain.OwnerSession(owner.ID))
	require.NoError(t, err)
	require.Len(t, report.Flights, 2)

	aa1 := report.Flights[0]
	assert.Equal(t, "AA1", aa1.Code)
	assert.Equal(t, 2, aa1.Confirmed)
	assert.Equal(t, 2, aa1.Available)
	assert.Equal(t, 50.0, aa1.OccupancyPercent)
	assert.Equal(t, int64(10000), aa1.RevenueCents)

	assert.Equal(t, Totals{Flights: 2, Bookings: 3, Confirmed: 2, Cancelled: 1, RevenueCents: 10000}, report.Totals)
}

func TestReportsService_Summary(t *testing.T) {
	service, _, _ := seed(t)

	summary, err := service.Summary(context.Background(), domain.AdminSession(1))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Users)
	assert.Equal(t, 2, summary.Airlines)
	assert.Equal(t, 3, summary.Flights)
	assert.Equal(t, 4, summary.Bookings)
	assert.Equal(t, 3, summary.Confirmed)
	assert.Equal(t, 1, summary.Cancelled)
	assert.Equal(t, int64(30000), summary.RevenueCents)
}

func TestReportsService_Forbidden(t *testing.T) {
	service, _, owner := seed(t)

	_, err := service.Summary(context.Background(), domain.OwnerSession(owner.ID))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = service.OwnerStats(context.Background(), domain.UserSession(1))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOccupancy(t *testing.T) {
	assert.Equal(t, 33.33, occupancy(1, 3))
	assert.Equal(t, 0.0, occupancy(1, 0))
}
