package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmb_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rmb_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	OTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmb_otp_requests_total",
		Help: "OTP send requests by channel and outcome.",
	}, []string{"channel", "outcome"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rmb_bookings_created_total",
		Help: "Bookings created.",
	})

	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmb_payment_verifications_total",
		Help: "Payment confirmations by outcome.",
	}, []string{"gateway", "outcome"})

	PartOrders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmb_part_orders_total",
		Help: "Spare-part orders by source.",
	}, []string{"source"})
)
