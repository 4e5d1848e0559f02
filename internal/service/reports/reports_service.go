// Package reports aggregates booking statistics for airlines and admins.
// It only returns numbers; presentation is left to the caller.
package reports

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/repository"
)

type ReportsUseCase interface {
	OwnerStats(ctx context.Context, session domain.Session) (*OwnerReport, error)
	Summary(ctx context.Context, session domain.Session) (*Summary, error)
}

type FlightStats struct {
	FlightID         int64     `json:"flight_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	DepartureTime    time.Time `json:"departure_time"`
	Capacity         int       `json:"capacity"`
	Confirmed        int       `json:"confirmed"`
	Available        int       `json:"available"`
	OccupancyPercent float64   `json:"occupancy_percent"`
	RevenueCents     int64     `json:"revenue_cents"`
}

type Totals struct {
	Flights      int   `json:"flights"`
	Bookings     int   `json:"bookings"`
	Confirmed    int   `json:"confirmed"`
	Pending      int   `json:"pending"`
	Cancelled    int   `json:"cancelled"`
	RevenueCents int64 `json:"revenue_cents"`
}

type OwnerReport struct {
	OwnerID int64         `json:"owner_id"`
	Flights []FlightStats `json:"flights"`
	Totals  Totals        `json:"totals"`
}

type Summary struct {
	Users    int `json:"users"`
	Airlines int `json:"airlines"`
	Totals
}

type ReportsService struct {
	flights  repository.FlightRepository
	bookings repository.BookingRepository
	accounts repository.AccountRepository
}

func NewReportsService(flights repository.FlightRepository, bookings repository.BookingRepository, accounts repository.AccountRepository) *ReportsService {
	return &ReportsService{flights: flights, bookings: bookings, accounts: accounts}
}

// OwnerStats reports per-flight occupancy and revenue for the calling
// airline. Revenue only counts confirmed bookings whose payment completed.
func (s *ReportsService) OwnerStats(ctx context.Context, session domain.Session) (*OwnerReport, error) {
	if session.Role != domain.RoleOwner {
		return nil, fmt.Errorf("owner report: %w", domain.ErrForbidden)
	}

	flights, err := s.flights.ListByOwner(ctx, session.PrincipalID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(flights))
	for _, f := range flights {
		ids = append(ids, f.ID)
	}

	var bookings []domain.Booking
	if len(ids) > 0 {
		bookings, err = s.bookings.ListByFlights(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	byFlight := make(map[int64][]domain.Booking, len(flights))
	for _, b := range bookings {
		byFlight[b.FlightID] = append(byFlight[b.FlightID], b)
	}

	report := &OwnerReport{OwnerID: session.PrincipalID, Flights: make([]FlightStats, 0, len(flights))}
	report.Totals.Flights = len(flights)
	for _, f := range flights {
		stats := FlightStats{
			FlightID:      f.ID,
			Code:          f.Code,
			Name:          f.Name,
			DepartureTime: f.DepartureTime,
			Capacity:      f.Capacity,
		}
		for _, b := range byFlight[f.ID] {
			report.Totals.add(b)
			if b.Status == domain.BookingStatusConfirmed {
				stats.Confirmed++
				if b.PaymentStatus == domain.PaymentStatusCompleted {
					stats.RevenueCents += b.AmountCents
				}
			}
		}
		stats.Available = max(f.Capacity-stats.Confirmed, 0)
		stats.OccupancyPercent = occupancy(stats.Confirmed, f.Capacity)
		report.Totals.RevenueCents += stats.RevenueCents
		report.Flights = append(report.Flights, stats)
	}
	return report, nil
}

// Summary gives admins system-wide counts. Revenue is the amount of all
// confirmed bookings.
func (s *ReportsService) Summary(ctx context.Context, session domain.Session) (*Summary, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("summary report: %w", domain.ErrForbidden)
	}

	users, err := s.accounts.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	airlines, err := s.accounts.CountOwners(ctx)
	if err != nil {
		return nil, err
	}
	flights, err := s.flights.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Users: users, Airlines: airlines}
	summary.Flights = len(flights)
	for _, b := range bookings {
		summary.add(b)
		if b.Status == domain.BookingStatusConfirmed {
			summary.RevenueCents += b.AmountCents
		}
	}
	return summary, nil
}

func (t *Totals) add(b domain.Booking) {
	t.Bookings++
	switch b.Status {
	case domain.BookingStatusConfirmed:
		t.Confirmed++
	case domain.BookingStatusPending:
		t.Pending++
	case domain.BookingStatusCancelled:
		t.Cancelled++
	}
}

// occupancy is the confirmed share of capacity in percent, two decimals.
func occupancy(confirmed, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return math.Round(float64(confirmed)*10000/float64(capacity)) / 100
}

var _ ReportsUseCase = (*ReportsService)(nil)
