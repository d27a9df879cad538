package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivebook",
			Name:      "slot_fetches_total",
			Help:      "Slot listing requests by outcome.",
		},
		[]string{"outcome"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivebook",
			Name:      "bookings_total",
			Help:      "Booking submissions by outcome.",
		},
		[]string{"outcome"},
	)

	validationRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "drivebook",
			Name:      "draft_validation_rejections_total",
			Help:      "Submissions rejected locally before reaching the backend.",
		},
	)

	receipts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "drivebook",
			Name:      "receipts_generated_total",
			Help:      "Receipt documents generated.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotFetches, bookings, validationRejections, receipts)
	})
}

// IncSlotFetch counts one slot listing attempt ("ok" or "error").
func IncSlotFetch(outcome string) {
	slotFetches.WithLabelValues(outcome).Inc()
}

// IncBooking counts one submission outcome ("succeeded" or "failed").
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

// IncValidationRejection counts a draft stopped by local validation.
func IncValidationRejection() {
	validationRejections.Inc()
}

// IncReceipt counts a generated receipt document.
func IncReceipt() {
	receipts.Inc()
}
