package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "expensetracker",
		Name:      "registrations_total",
		Help:      "Total accounts created.",
	})

	OTPVerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expensetracker",
		Name:      "otp_verifications_total",
		Help:      "Total OTP verification attempts, by result.",
	}, []string{"result"})

	OTPEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expensetracker",
		Name:      "otp_emails_total",
		Help:      "Total OTP emails dispatched, by status.",
	}, []string{"status"})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expensetracker",
		Name:      "logins_total",
		Help:      "Total login attempts, by result.",
	}, []string{"result"})

	// Hygiene sweep

	StaleOTPsClearedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "expensetracker",
		Name:      "stale_otps_cleared_total",
		Help:      "Passcodes nulled out by the hourly sweep.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "expensetracker",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expensetracker",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		RegistrationsTotal,
		OTPVerificationsTotal,
		OTPEmailsTotal,
		LoginsTotal,
		StaleOTPsClearedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string, checker HealthHandler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", checker.LivenessHandler)
	mux.HandleFunc("/readyz", checker.ReadinessHandler)
	return &http.Server{Addr: addr, Handler: mux}
}

// HealthHandler is satisfied by *health.Checker.
type HealthHandler interface {
	LivenessHandler(w http.ResponseWriter, r *http.Request)
	ReadinessHandler(w http.ResponseWriter, r *http.Request)
}
