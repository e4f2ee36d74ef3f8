package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscan_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealscan_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	CollaboratorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscan_collaborator_errors_total",
			Help: "Failed calls to external collaborators",
		},
		[]string{"collaborator"},
	)

	VerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscan_verdicts_total",
			Help: "Verdicts returned by scans",
		},
		[]string{"verdict"},
	)

	PricesObservedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscan_prices_observed_total",
			Help: "Retailer quotes found by scrapes",
		},
		[]string{"retailer"},
	)

	PricesSavedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dealscan_prices_saved_total",
			Help: "Price records written to the price store",
		},
	)
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			CollaboratorErrorsTotal,
			VerdictsTotal,
			PricesObservedTotal,
			PricesSavedTotal,
		)
	})
}

// Start exposes /metrics on its own listener.
func Start(port string, log *logrus.Entry) {
	register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics listener stopped")
		}
	}()
}
