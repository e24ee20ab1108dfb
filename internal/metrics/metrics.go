package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the collectors the service records into. Collectors are
// registered on the registry passed to New so tests can use a private one.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SubmissionsCreated  prometheus.Counter
	SubmissionsRejected prometheus.Counter
	FieldErrors         *prometheus.CounterVec
	StoreErrors         *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		SubmissionsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "form_submissions_created_total",
				Help: "Total number of submissions accepted and stored",
			},
		),
		SubmissionsRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "form_submissions_rejected_total",
				Help: "Total number of submissions that failed validation",
			},
		),
		FieldErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_field_errors_total",
				Help: "Validation failures per form field",
			},
			[]string{"field"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_store_errors_total",
				Help: "Submission store failures by operation",
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SubmissionsCreated,
		m.SubmissionsRejected,
		m.FieldErrors,
		m.StoreErrors,
	)
	return m
}
