package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/goaero/config"
	"github.com/Domenick1991/goaero/internal/cache"
	"github.com/Domenick1991/goaero/internal/inventory"
	"github.com/Domenick1991/goaero/internal/kafka"
	"github.com/Domenick1991/goaero/internal/metrics"
	"github.com/Domenick1991/goaero/internal/pnr"
	"github.com/Domenick1991/goaero/internal/repository"
	"github.com/Domenick1991/goaero/internal/repository/memory"
	"github.com/Domenick1991/goaero/internal/service/auth"
	"github.com/Domenick1991/goaero/internal/service/booking"
	"github.com/Domenick1991/goaero/internal/service/flights"
	"github.com/Domenick1991/goaero/internal/service/reports"
)

type Repositories struct {
	Flights  repository.FlightRepository
	Bookings repository.BookingRepository
	Accounts repository.AccountRepository
	Airports repository.AirportRepository
}

// App holds the services shared by the API process and the worker.
type App struct {
	Repos    Repositories
	Flights  *flights.FlightService
	Bookings *booking.BookingService
	Auth     *auth.AuthService
	Reports  *reports.ReportsService

	// Cache is nil when Redis is not configured.
	Cache *cache.RedisCache

	closers []func()
}

// NewApp connects the configured storage, cache and event producer and
// builds the services on top of them.
func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	app := &App{}

	repos, err := app.openStorage(ctx, cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Repos = repos

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheTTL, cfg.Booking.LockTTL)
		if err := redisCache.Ping(ctx); err != nil {
			redisCache.Close()
			app.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.Cache = redisCache
		app.closers = append(app.closers, func() { _ = redisCache.Close() })
	}

	var producer booking.EventProducer
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers)
		producer = p
		app.closers = append(app.closers, func() { _ = p.Close() })
	} else {
		log.Warn("kafka brokers not configured, booking events are not published")
	}

	var locker inventory.Locker
	if app.Cache != nil {
		locker = app.Cache
	}
	inv := inventory.New(repos.Flights, repos.Bookings, locker)

	locators := pnr.NewGenerator(repos.Bookings,
		pnr.WithMaxAttempts(cfg.Booking.PNRMaxAttempts),
		pnr.WithAttemptHook(metrics.PNRAttempts.Inc),
	)

	flightOpts := []flights.Option{flights.WithLogger(log)}
	bookingOpts := []booking.BookingServiceOption{
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(log),
	}
	if app.Cache != nil {
		flightOpts = append(flightOpts, flights.WithCache(app.Cache))
		bookingOpts = append(bookingOpts, booking.WithFlightsCache(app.Cache))
	}

	app.Flights = flights.NewFlightService(repos.Flights, repos.Airports, repos.Bookings, inv, flightOpts...)
	app.Bookings = booking.NewBookingService(
		repos.Bookings,
		repos.Flights,
		repos.Accounts,
		inv,
		locators,
		producer,
		cfg.Kafka.BookingTopic,
		bookingOpts...,
	)
	app.Auth = auth.NewAuthService(repos.Accounts, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, auth.WithIssuer(cfg.Auth.Issuer))
	app.Reports = reports.NewReportsService(repos.Flights, repos.Bookings, repos.Accounts)

	return app, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (Repositories, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		store := memory.NewStore()
		if cfg.Storage.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.Storage.SeedFile)
			if err != nil {
				return Repositories{}, err
			}
			if err := store.Apply(seed); err != nil {
				return Repositories{}, fmt.Errorf("apply seed: %w", err)
			}
		}
		log.Info("using in-memory storage")
		return Repositories{
			Flights:  store.Flights(),
			Bookings: store.Bookings(),
			Accounts: store.Accounts(),
			Airports: store.Airports(),
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return Repositories{}, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := pool.Ping(ctx); err != nil {
		return Repositories{}, fmt.Errorf("ping postgres: %w", err)
	}
	if cfg.Storage.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			return Repositories{}, fmt.Errorf("migrate: %w", err)
		}
	}
	return Repositories{
		Flights:  repository.NewFlightRepository(pool),
		Bookings: repository.NewBookingRepository(pool),
		Accounts: repository.NewAccountRepository(pool),
		Airports: repository.NewAirportRepository(pool),
	}, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
