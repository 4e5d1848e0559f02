package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/goaero/config"
	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/kafka"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) FailOverduePayments(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, event kafka.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return nil
}

// sliceSource replays events and then blocks until ctx ends.
type sliceSource struct {
	events []kafka.BookingEvent
}

func (s *sliceSource) ConsumeEvents(ctx context.Context, handler func(context.Context, kafka.BookingEvent) error) error {
	for _, e := range s.events {
		if err := handler(ctx, e); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return nil
}

func TestWorker_sweepPayments(t *testing.T) {
	sweeper := &MockSweeper{}
	sweeper.On("FailOverduePayments", mock.Anything).Return([]domain.Booking{{ID: 1}}, nil).Once()
	sweeper.On("FailOverduePayments", mock.Anything).Return([]domain.Booking(nil), errors.New("db down")).Once()

	w := New(config.WorkerConfig{}, sweeper)
	w.sweepPayments(context.Background())
	w.sweepPayments(context.Background())

	sweeper.AssertNumberOfCalls(t, "FailOverduePayments", 2)
}

func TestWorker_notifySwallowsErrors(t *testing.T) {
	notifier := &MockNotifier{}
	event := kafka.BookingEvent{Type: kafka.EventBookingCreated, BookingID: 7, Email: "a@b.c"}
	notifier.On("Send", mock.Anything, event).Return(errors.New("smtp down"))

	w := New(config.WorkerConfig{}, nil, WithNotifications(&sliceSource{}, notifier))

	assert.NoError(t, w.notify(context.Background(), event))
	notifier.AssertExpectations(t)
}

type countingNotifier struct {
	sent atomic.Int32
}

func (n *countingNotifier) Send(context.Context, kafka.BookingEvent) error {
	n.sent.Add(1)
	return nil
}

type countingSweeper struct {
	runs atomic.Int32
}

func (s *countingSweeper) FailOverduePayments(context.Context) ([]domain.Booking, error) {
	s.runs.Add(1)
	return nil, nil
}

func TestWorker_RunDeliversNotifications(t *testing.T) {
	events := []kafka.BookingEvent{
		{Type: kafka.EventBookingCreated, BookingID: 1, Email: "a@b.c"},
		{Type: kafka.EventBookingCancelled, BookingID: 1, Email: "a@b.c"},
	}
	notifier := &countingNotifier{}

	w := New(config.WorkerConfig{}, nil, WithNotifications(&sliceSource{events: events}, notifier))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return notifier.sent.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_RunSchedulesJobs(t *testing.T) {
	sweeper := &countingSweeper{}
	refresher := &countingRefresher{}

	cfg := config.WorkerConfig{
		PaymentSweepInterval: 20 * time.Millisecond,
		CacheWarmupInterval:  time.Hour,
	}
	w := New(cfg, sweeper, WithCacheRefresher(refresher))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return refresher.calls.Load() >= 1 && sweeper.runs.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
