package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RPCTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "booking_rpc_requests_total", Help: "Total RPC requests"},
		[]string{"method", "code"},
	)
	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_rpc_duration_seconds",
			Help:    "RPC duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	HTTPTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "booking_http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	Bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "booking_appointments_total", Help: "Booking attempts by outcome"},
		[]string{"outcome"},
	)
	CalendarSync = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "booking_calendar_sync_total", Help: "Calendar sync attempts by status"},
		[]string{"status"},
	)
	CalendarLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_calendar_sync_duration_seconds",
			Help:    "Calendar sync duration seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "booking_rate_limited_total", Help: "Requests rejected by the rate limiter"},
		[]string{"surface"},
	)
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(RPCTotal, RPCDuration, HTTPTotal, Bookings, CalendarSync, CalendarLatency, RateLimited)
}
