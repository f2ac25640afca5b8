package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (O Outcome) String() string {
	return string(O)
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

var (
	once          sync.Once
	metricsRouter *chi.Mux

	// Collectors exist before Init so callers never see nil; Init only
	// registers them with the default registry.
	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)
	redemptionOutcomeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_redemptions_total",
			Help: "Number of redemption attempts by outcome.",
		},
		[]string{"outcome"},
	)
	queueMessageDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_message_processing_seconds",
			Help:    "Histogram of queue message processing durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"queue", "outcome"},
	)
	collateralAlertCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_collateral_alerts_total",
			Help: "Number of collateral alerts raised for issuers.",
		},
	)
)

// Init registers the collectors and serves /metrics on address.
func Init(address string) {
	once.Do(func() {
		initMetricsRouter(address)
		registerMetrics()
	})
}

func initMetricsRouter(metricsAddr string) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	go func() {
		err := http.ListenAndServe(metricsAddr, metricsRouter)
		if err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics registers the Prometheus metrics.
func registerMetrics() {
	prometheus.MustRegister(
		httpRequestDurationHistogram,
		redemptionOutcomeCounter,
		queueMessageDurationHistogram,
		collateralAlertCounter,
	)
}

// StartHttpRequestDurationTimer starts a timer to measure http request
// handling duration. endpoint should be a route pattern, not a raw path, so
// public keys in URLs do not blow up the label cardinality.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Observe(duration)
	}
}

// RecordRedemptionOutcome counts a redemption attempt. outcome is either
// Success or the error code returned to the caller.
func RecordRedemptionOutcome(outcome string) {
	redemptionOutcomeCounter.WithLabelValues(outcome).Inc()
}

func RecordCollateralAlert() {
	collateralAlertCounter.Inc()
}

// StartQueueMessageTimer starts a timer for handling one queue message.
func StartQueueMessageTimer(queueName string) func(outcome Outcome) {
	startTime := time.Now()
	return func(outcome Outcome) {
		duration := time.Since(startTime).Seconds()
		queueMessageDurationHistogram.WithLabelValues(queueName, outcome.String()).Observe(duration)
	}
}
