package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolrent_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toolrent_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	rentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolrent_rent_transitions_total",
		Help: "Rent status transitions that were persisted",
	}, []string{"from", "to"})

	bookingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolrent_booking_rejections_total",
		Help: "Rent requests refused before insert, by reason",
	}, []string{"reason"})

	captureOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolrent_payment_captures_total",
		Help: "Payment capture outcomes as seen by the rent bookkeeping",
	}, []string{"outcome"})

	gatewayBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toolrent_payment_gateway_breaker_state",
		Help: "Payment gateway circuit breaker state (0 closed, 1 open, 2 half open)",
	})

	finishedRents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toolrent_rents_finished_total",
		Help: "Rents moved to FINISHED by the scheduled sweep",
	})
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveTransition counts a persisted rent status change. Creation uses from "NONE".
func ObserveTransition(from, to string) {
	rentTransitions.WithLabelValues(from, to).Inc()
}

func ObserveBookingRejection(reason string) {
	bookingRejections.WithLabelValues(reason).Inc()
}

func ObserveCapture(outcome string) {
	captureOutcomes.WithLabelValues(outcome).Inc()
}

func SetGatewayBreakerState(state int) {
	gatewayBreakerState.Set(float64(state))
}

func AddFinishedRents(n int) {
	finishedRents.Add(float64(n))
}
