// Package metrics declares the Prometheus collectors of the booking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goaero_bookings_created_total",
		Help: "The total number of bookings created",
	})
	BookingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goaero_bookings_rejected_total",
		Help: "Booking attempts that did not produce a booking, by reason",
	}, []string{"reason"})
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goaero_bookings_cancelled_total",
		Help: "The total number of bookings moved to CANCELLED",
	})
	PaymentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goaero_payment_transitions_total",
		Help: "Payment status changes, by target status",
	}, []string{"status"})
	PNRAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goaero_pnr_attempts_total",
		Help: "Record locator candidates drawn, including collisions",
	})
	SeatsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goaero_seat_reservations_released_total",
		Help: "Seat reservations rolled back after a failed booking",
	})
	SeatLockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "goaero_seat_lock_wait_seconds",
		Help:    "Time spent waiting for a per-flight seat lock",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goaero_booking_events_published_total",
		Help: "The total number of booking events published to Kafka",
	})
	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goaero_booking_events_publish_errors_total",
		Help: "The total number of failed publish attempts",
	})
)

// Rejection reasons used as label values.
const (
	ReasonNotFound  = "not_found"
	ReasonExhausted = "exhausted"
	ReasonConflict  = "conflict"
	ReasonStorage   = "storage"
	ReasonOther     = "other"
)
