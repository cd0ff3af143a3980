// A simple telemetry package.
// Log lines are structured zerolog JSON, counters are mirrored to prometheus.
package telemetry

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type TelemetryData struct {
	logLock sync.RWMutex
	logger  zerolog.Logger
	trace   bool

	counterLock sync.Mutex
	counters    map[string]int

	registry *prometheus.Registry
	events   *prometheus.CounterVec
}

var data = newData(os.Stdout)

func newData(w io.Writer) *TelemetryData {
	d := &TelemetryData{
		logger:   newLogger(w),
		trace:    true,
		counters: make(map[string]int),
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "activitynode",
			Name:      "events_total",
			Help:      "Count of telemetry events by name.",
		}, []string{"name"}),
	}
	d.registry.MustRegister(d.events)
	return d
}

func newLogger(w io.Writer) zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	return zerolog.New(w).With().Timestamp().Logger()
}

func logger() *zerolog.Logger {
	data.logLock.RLock()
	defer data.logLock.RUnlock()
	l := data.logger
	return &l
}

// SetOutput redirects log output, mostly for tests
func SetOutput(w io.Writer) {
	data.logLock.Lock()
	defer data.logLock.Unlock()
	data.logger = newLogger(w)
}

// SetTrace turns Trace messages on or off
func SetTrace(on bool) {
	data.logLock.Lock()
	defer data.logLock.Unlock()
	data.trace = on
}

func tracing() bool {
	data.logLock.RLock()
	defer data.logLock.RUnlock()
	return data.trace
}

func Log(format string, args ...any) {
	logger().Info().Msgf(format, args...)
}

func Trace(format string, args ...any) {
	if tracing() {
		logger().Debug().Msgf(format, args...)
	}
}

func Error(err error, format string, args ...any) {
	logger().Error().Err(err).Msgf(format, args...)
	Increment("errors", 1)
}

// Warn logs a problem with the input rather than with the server, e.g. a rejected activity.
// Any value that marshals to JSON can be attached as detail.
func Warn(detail any, format string, args ...any) {
	logger().Warn().Interface("detail", detail).Msgf(format, args...)
}

// Request logs essential information about an HTTP request
func Request(r *http.Request, format string, args ...any) {
	logger().Info().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Msgf(format, args...)
}

// Increment increases a count, thread-safe
func Increment(name string, n int) {
	data.counterLock.Lock()
	data.counters[name] += n
	data.counterLock.Unlock()
	data.events.WithLabelValues(name).Add(float64(n))
}

func GetCounter(name string) int {
	data.counterLock.Lock()
	defer data.counterLock.Unlock()
	return data.counters[name]
}

func LogCounters() {
	s := make([]string, 0)
	data.counterLock.Lock()
	for k, v := range data.counters {
		s = append(s, fmt.Sprintf("%s=%d", k, v))
	}
	data.counterLock.Unlock()
	if len(s) == 0 {
		s = append(s, "no counters were recorded")
	}
	Log(strings.Join(s, ", "))
}

// Handler serves the counters in prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(data.registry, promhttp.HandlerOpts{})
}
