package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ijo"

// unmatchedPath labels requests that reached the instrumentation without a mux route
const unmatchedPath = "unmatched"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	scans = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "economy",
			Name:      "scans_total",
			Help:      "Total number of trash scans reported.",
		},
	)

	coinsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "economy",
			Name:      "coins_awarded_total",
			Help:      "Total number of coins awarded for scans.",
		},
	)

	ticketsMinted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "economy",
			Name:      "tickets_minted_total",
			Help:      "Total number of tickets produced by coin conversion.",
		},
	)

	gamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "starts_total",
			Help:      "Total number of game start attempts.",
		},
		[]string{"result"},
	)

	scoresReported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "scores_reported_total",
			Help:      "Total number of reported game scores.",
		},
		[]string{"game", "new_record"},
	)

	checkIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "companion",
			Name:      "checkins_total",
			Help:      "Total number of successful daily check-ins.",
		},
		[]string{"level_up"},
	)

	companionsChosen = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "companion",
			Name:      "chosen_total",
			Help:      "Total number of companions chosen.",
		},
		[]string{"type"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Total number of login attempts.",
		},
		[]string{"result"},
	)

	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Total number of self-registrations.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		scans,
		coinsAwarded,
		ticketsMinted,
		gamesStarted,
		scoresReported,
		checkIns,
		companionsChosen,
		logins,
		registrations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// It must run as mux middleware so the path label is the matched route template.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := routeTemplate(r)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordScan records a rewarded scan and whether it minted a ticket.
func RecordScan(coins int, ticketMinted bool) {
	scans.Inc()
	coinsAwarded.Add(float64(coins))
	if ticketMinted {
		ticketsMinted.Inc()
	}
}

// RecordGameStart records a game start attempt.
func RecordGameStart(admitted bool) {
	result := "admitted"
	if !admitted {
		result = "no_ticket"
	}
	gamesStarted.WithLabelValues(result).Inc()
}

// RecordScore records a reported score for a registered game variant.
func RecordScore(game string, newRecord bool) {
	scoresReported.WithLabelValues(game, strconv.FormatBool(newRecord)).Inc()
}

// RecordCheckIn records a successful companion check-in.
func RecordCheckIn(levelUp bool) {
	checkIns.WithLabelValues(strconv.FormatBool(levelUp)).Inc()
}

// RecordCompanionChosen records a newly created companion.
func RecordCompanionChosen(itemType string) {
	companionsChosen.WithLabelValues(itemType).Inc()
}

// RecordLogin records a login attempt outcome ("success", "invalid", "forbidden").
func RecordLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

// RecordRegistration records a new self-registration.
func RecordRegistration() {
	registrations.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// routeTemplate keeps label cardinality bounded by the number of registered routes.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedPath
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedPath
	}
	return tpl
}
