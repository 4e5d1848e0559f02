// Package worker runs the background side of the booking engine: periodic
// payment sweeps, flight-cache warmup and booking notification mail.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Domenick1991/goaero/config"
	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/kafka"
)

type PaymentSweeper interface {
	FailOverduePayments(ctx context.Context) ([]domain.Booking, error)
}

type CacheRefresher interface {
	Refresh(ctx context.Context) error
}

type EventSource interface {
	ConsumeEvents(ctx context.Context, handler func(context.Context, kafka.BookingEvent) error) error
}

type Notifier interface {
	Send(ctx context.Context, event kafka.BookingEvent) error
}

type Worker struct {
	cfg       config.WorkerConfig
	sweeper   PaymentSweeper
	refresher CacheRefresher
	source    EventSource
	notifier  Notifier
	log       *slog.Logger
}

type Option func(*Worker)

func WithCacheRefresher(r CacheRefresher) Option {
	return func(w *Worker) { w.refresher = r }
}

// WithNotifications mails every event read from source through notifier.
func WithNotifications(source EventSource, notifier Notifier) Option {
	return func(w *Worker) {
		w.source = source
		w.notifier = notifier
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

func New(cfg config.WorkerConfig, sweeper PaymentSweeper, opts ...Option) *Worker {
	w := &Worker{
		cfg:     cfg,
		sweeper: sweeper,
		log:     slog.Default().With("component", "worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run schedules the periodic jobs and blocks until ctx is cancelled or the
// notification consumer fails.
func (w *Worker) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if err := w.schedule(ctx, sched); err != nil {
		_ = sched.Shutdown()
		return err
	}
	sched.Start()
	w.log.Info("worker started", "jobs", len(sched.Jobs()))

	defer func() {
		if err := sched.Shutdown(); err != nil {
			w.log.Error("scheduler shutdown", "error", err)
		}
	}()

	if w.source != nil && w.notifier != nil {
		if err := w.source.ConsumeEvents(ctx, w.notify); err != nil {
			return fmt.Errorf("consume notifications: %w", err)
		}
		return nil
	}

	<-ctx.Done()
	return nil
}

func (w *Worker) schedule(ctx context.Context, sched gocron.Scheduler) error {
	if w.sweeper != nil && w.cfg.PaymentSweepInterval > 0 {
		if _, err := sched.NewJob(
			gocron.DurationJob(w.cfg.PaymentSweepInterval),
			gocron.NewTask(func() { w.sweepPayments(ctx) }),
			gocron.WithName("fail-overdue-payments"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return fmt.Errorf("schedule payment sweep: %w", err)
		}
	}
	if w.refresher != nil && w.cfg.CacheWarmupInterval > 0 {
		if _, err := sched.NewJob(
			gocron.DurationJob(w.cfg.CacheWarmupInterval),
			gocron.NewTask(func() { w.refreshCache(ctx) }),
			gocron.WithName("warm-flights-cache"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		); err != nil {
			return fmt.Errorf("schedule cache warmup: %w", err)
		}
	}
	return nil
}

func (w *Worker) sweepPayments(ctx context.Context) {
	start := time.Now()
	failed, err := w.sweeper.FailOverduePayments(ctx)
	if err != nil {
		w.log.Error("payment sweep", "error", err, "failed", len(failed))
		return
	}
	if len(failed) > 0 {
		w.log.Info("failed overdue payments", "count", len(failed), "duration", time.Since(start))
	}
}

func (w *Worker) refreshCache(ctx context.Context) {
	if err := w.refresher.Refresh(ctx); err != nil {
		w.log.Warn("flights cache warmup", "error", err)
	}
}

// notify never fails the consumer: a lost mail is logged and the offset moves on.
func (w *Worker) notify(ctx context.Context, event kafka.BookingEvent) error {
	if err := w.notifier.Send(ctx, event); err != nil {
		w.log.Error("send notification", "event", event.Type, "booking_id", event.BookingID, "error", err)
	}
	return nil
}
