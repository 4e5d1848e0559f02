// Package memory is an in-process implementation of the repository
// interfaces. It applies the same uniqueness, referential and capacity rules
// as the PostgreSQL schema.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	flights  map[int64]domain.Flight
	bookings map[int64]domain.Booking
	pnrs     map[string]int64
	users    map[int64]domain.User
	admins   map[int64]domain.Admin
	owners   map[int64]domain.FlightOwner
	airports map[int64]domain.Airport

	nextID     int64
	insertHook func(*domain.Booking) error
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		flights:  make(map[int64]domain.Flight),
		bookings: make(map[int64]domain.Booking),
		pnrs:     make(map[string]int64),
		users:    make(map[int64]domain.User),
		admins:   make(map[int64]domain.Admin),
		owners:   make(map[int64]domain.FlightOwner),
		airports: make(map[int64]domain.Airport),
		now:      time.Now,
	}
}

func (s *Store) Flights() repository.FlightRepository   { return flightRepo{s} }
func (s *Store) Bookings() repository.BookingRepository { return bookingRepo{s} }
func (s *Store) Accounts() repository.AccountRepository { return accountRepo{s} }
func (s *Store) Airports() repository.AirportRepository { return airportRepo{s} }

// SetInsertHook installs a function called before every booking insert. A
// non-nil return aborts the insert with that error.
func (s *Store) SetInsertHook(fn func(*domain.Booking) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertHook = fn
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// assign gives *id the next free id unless the caller chose one.
func (s *Store) assign(id *int64) {
	if *id == 0 {
		*id = s.id()
		return
	}
	if *id > s.nextID {
		s.nextID = *id
	}
}

func (s *Store) AddAirport(a domain.Airport) domain.Airport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assign(&a.ID)
	s.airports[a.ID] = a
	return a
}

func (s *Store) AddOwner(o domain.FlightOwner) domain.FlightOwner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assign(&o.ID)
	o.CompanyCode = strings.ToUpper(o.CompanyCode)
	o.CreatedAt = s.now()
	s.owners[o.ID] = o
	return o
}

func (s *Store) AddAdmin(a domain.Admin) domain.Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assign(&a.ID)
	a.CreatedAt = s.now()
	s.admins[a.ID] = a
	return a
}

// flight returns the stored flight with its derived fields filled in.
// Callers hold s.mu.
func (s *Store) flight(id int64) (domain.Flight, bool) {
	f, ok := s.flights[id]
	if !ok {
		return f, false
	}
	if o, ok := s.owners[f.OwnerID]; ok {
		f.AirlineCode = o.CompanyCode
		f.AirlineName = o.CompanyName
	}
	f.AvailableSeats = f.Capacity - s.confirmed(id)
	if f.AvailableSeats < 0 {
		f.AvailableSeats = 0
	}
	return f, true
}

func (s *Store) confirmed(flightID int64) int {
	n := 0
	for _, b := range s.bookings {
		if b.FlightID == flightID && b.Status.OccupiesSeat() {
			n++
		}
	}
	return n
}

func (s *Store) flightsWhere(match func(domain.Flight) bool) []domain.Flight {
	out := make([]domain.Flight, 0)
	for id := range s.flights {
		f, _ := s.flight(id)
		if match(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].DepartureTime.Before(out[j].DepartureTime)
	})
	return out
}

func (s *Store) bookingsWhere(match func(domain.Booking) bool, newestFirst bool) []domain.Booking {
	out := make([]domain.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type flightRepo struct{ s *Store }

func (r flightRepo) List(_ context.Context) ([]domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.flightsWhere(func(domain.Flight) bool { return true }), nil
}

func (r flightRepo) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.flight(id)
	if !ok {
		return nil, fmt.Errorf("get flight %d: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

func (r flightRepo) Search(_ context.Context, from, to int64, day time.Time) ([]domain.Flight, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.flightsWhere(func(f domain.Flight) bool {
		return f.DepartureAirportID == from && f.DestinationAirportID == to &&
			!f.DepartureTime.Before(start) && f.DepartureTime.Before(end)
	}), nil
}

func (r flightRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.flightsWhere(func(f domain.Flight) bool { return f.OwnerID == ownerID }), nil
}

func (r flightRepo) ExistsCode(_ context.Context, ownerID int64, code string, excludeID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, f := range r.s.flights {
		if f.OwnerID == ownerID && f.Code == code && f.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r flightRepo) Create(_ context.Context, f *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.owners[f.OwnerID]; !ok {
		return fmt.Errorf("create flight: %w: unknown owner %d", domain.ErrConflict, f.OwnerID)
	}
	for _, other := range r.s.flights {
		if other.OwnerID == f.OwnerID && other.Code == f.Code {
			return fmt.Errorf("create flight: %w: flights_owner_code_key", domain.ErrConflict)
		}
	}
	f.ID = r.s.id()
	f.CreatedAt = r.s.now()
	f.UpdatedAt = f.CreatedAt
	r.s.flights[f.ID] = *f
	stored, _ := r.s.flight(f.ID)
	*f = stored
	return nil
}

func (r flightRepo) Update(_ context.Context, f *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.flights[f.ID]
	if !ok {
		return fmt.Errorf("update flight %d: %w", f.ID, domain.ErrNotFound)
	}
	for _, other := range r.s.flights {
		if other.ID != f.ID && other.OwnerID == cur.OwnerID && other.Code == f.Code {
			return fmt.Errorf("update flight %d: %w: flights_owner_code_key", f.ID, domain.ErrConflict)
		}
	}
	f.OwnerID = cur.OwnerID
	f.CreatedAt = cur.CreatedAt
	f.UpdatedAt = r.s.now()
	r.s.flights[f.ID] = *f
	return nil
}

func (r flightRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.flights[id]; !ok {
		return fmt.Errorf("delete flight %d: %w", id, domain.ErrNotFound)
	}
	for _, b := range r.s.bookings {
		if b.FlightID == id {
			return fmt.Errorf("delete flight %d: %w: referenced by bookings", id, domain.ErrConflict)
		}
	}
	delete(r.s.flights, id)
	return nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) Insert(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.insertHook != nil {
		if err := r.s.insertHook(b); err != nil {
			return err
		}
	}
	f, ok := r.s.flights[b.FlightID]
	if !ok {
		return fmt.Errorf("insert booking: flight %d: %w", b.FlightID, domain.ErrNotFound)
	}
	if _, ok := r.s.pnrs[b.PNR]; ok {
		return fmt.Errorf("insert booking: %w", repository.ErrDuplicatePNR)
	}
	if b.Status.OccupiesSeat() && r.s.confirmed(f.ID) >= f.Capacity {
		return fmt.Errorf("insert booking: %w", domain.ErrExhausted)
	}
	b.ID = r.s.id()
	b.CreatedAt = r.s.now()
	b.UpdatedAt = b.CreatedAt
	r.s.bookings[b.ID] = *b
	r.s.pnrs[b.PNR] = b.ID
	return nil
}

func (r bookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("get booking %d: %w", id, domain.ErrNotFound)
	}
	return &b, nil
}

func (r bookingRepo) FindByPNR(_ context.Context, pnr string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.pnrs[pnr]
	if !ok {
		return nil, fmt.Errorf("find booking %s: %w", pnr, domain.ErrNotFound)
	}
	b := r.s.bookings[id]
	return &b, nil
}

func (r bookingRepo) ExistsPNR(_ context.Context, pnr string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.pnrs[pnr]
	return ok, nil
}

func (r bookingRepo) CountConfirmedByFlight(_ context.Context, flightID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.confirmed(flightID), nil
}

func (r bookingRepo) CountByFlight(_ context.Context, flightID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, b := range r.s.bookings {
		if b.FlightID == flightID {
			n++
		}
	}
	return n, nil
}

func (r bookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("update booking %d status: %w", id, domain.ErrNotFound)
	}
	if status.OccupiesSeat() && !b.Status.OccupiesSeat() {
		if f, ok := r.s.flights[b.FlightID]; ok && r.s.confirmed(f.ID) >= f.Capacity {
			return nil, fmt.Errorf("update booking %d status: %w", id, domain.ErrExhausted)
		}
	}
	b.Status = status
	b.UpdatedAt = r.s.now()
	r.s.bookings[id] = b
	return &b, nil
}

func (r bookingRepo) UpdatePaymentStatus(_ context.Context, id int64, from, to domain.PaymentStatus) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("update booking %d payment: %w", id, domain.ErrNotFound)
	}
	if b.PaymentStatus != from {
		return nil, domain.NewPaymentTransitionError(b.PaymentStatus, to)
	}
	b.PaymentStatus = to
	b.UpdatedAt = r.s.now()
	r.s.bookings[id] = b
	return &b, nil
}

func (r bookingRepo) ListByUser(_ context.Context, userID int64) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.bookingsWhere(func(b domain.Booking) bool { return b.UserID == userID }, true), nil
}

func (r bookingRepo) ListByFlights(_ context.Context, flightIDs []int64) ([]domain.Booking, error) {
	ids := make(map[int64]struct{}, len(flightIDs))
	for _, id := range flightIDs {
		ids[id] = struct{}{}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.bookingsWhere(func(b domain.Booking) bool {
		_, ok := ids[b.FlightID]
		return ok
	}, false), nil
}

func (r bookingRepo) ListAll(_ context.Context) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.bookingsWhere(func(domain.Booking) bool { return true }, true), nil
}

func (r bookingRepo) ListPendingPaymentDepartedBefore(_ context.Context, deadline time.Time) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.bookingsWhere(func(b domain.Booking) bool {
		return b.PaymentStatus == domain.PaymentStatusPending && !b.DepartureTime.After(deadline)
	}, false), nil
}

type accountRepo struct{ s *Store }

func (r accountRepo) GetUser(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (r accountRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", domain.ErrNotFound)
}

func (r accountRepo) CreateUser(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("create user: %w: users_email_key", domain.ErrConflict)
		}
	}
	if _, taken := r.s.users[u.ID]; taken && u.ID != 0 {
		return fmt.Errorf("create user: %w: users_pkey", domain.ErrConflict)
	}
	r.s.assign(&u.ID)
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

func (r accountRepo) CountUsers(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

func (r accountRepo) GetAdminByUsername(_ context.Context, username string) (*domain.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("get admin: %w", domain.ErrNotFound)
}

func (r accountRepo) GetOwner(_ context.Context, id int64) (*domain.FlightOwner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.owners[id]
	if !ok {
		return nil, fmt.Errorf("get owner %d: %w", id, domain.ErrNotFound)
	}
	return &o, nil
}

func (r accountRepo) GetOwnerByCode(_ context.Context, code string) (*domain.FlightOwner, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.owners {
		if o.CompanyCode == code {
			return &o, nil
		}
	}
	return nil, fmt.Errorf("get owner by code: %w", domain.ErrNotFound)
}

func (r accountRepo) CreateOwner(_ context.Context, o *domain.FlightOwner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.CompanyCode = strings.ToUpper(o.CompanyCode)
	for _, other := range r.s.owners {
		if other.CompanyCode == o.CompanyCode {
			return fmt.Errorf("create owner: %w: flight_owners_company_code_key", domain.ErrConflict)
		}
	}
	o.ID = 0
	r.s.assign(&o.ID)
	o.CreatedAt = r.s.now()
	r.s.owners[o.ID] = *o
	return nil
}

func (r accountRepo) UpdatePassword(_ context.Context, role domain.Role, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	op := fmt.Sprintf("update %s %d password", role, id)
	switch role {
	case domain.RoleUser:
		u, ok := r.s.users[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		u.PasswordHash = hash
		r.s.users[id] = u
	case domain.RoleOwner:
		o, ok := r.s.owners[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		o.PasswordHash = hash
		r.s.owners[id] = o
	default:
		return fmt.Errorf("update password: %w: role %q", domain.ErrInvalidArgument, role)
	}
	return nil
}

func (r accountRepo) CountOwners(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.owners), nil
}

type airportRepo struct{ s *Store }

func (r airportRepo) List(_ context.Context) ([]domain.Airport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Airport, 0, len(r.s.airports))
	for _, a := range r.s.airports {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r airportRepo) GetByID(_ context.Context, id int64) (*domain.Airport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.airports[id]
	if !ok {
		return nil, fmt.Errorf("get airport %d: %w", id, domain.ErrNotFound)
	}
	return &a, nil
}
