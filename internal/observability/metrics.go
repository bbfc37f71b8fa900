package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	registryMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trc",
			Subsystem: "registry",
			Name:      "messages_total",
			Help:      "Messages processed by the registry loop, by type.",
		},
		[]string{"type"},
	)
	registryBroadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trc",
			Subsystem: "registry",
			Name:      "broadcasts_total",
			Help:      "Client fan-out broadcasts, by packet kind.",
		},
		[]string{"kind"},
	)
	routeMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trc",
			Subsystem: "registry",
			Name:      "route_misses_total",
			Help:      "Viewer commands dropped because the target turtle was offline.",
		},
	)
	persistenceFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trc",
			Subsystem: "store",
			Name:      "write_failures_total",
			Help:      "Fire-and-forget persistence writes that failed.",
		},
	)
	onlineTurtles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trc",
			Subsystem: "registry",
			Name:      "online_turtles",
			Help:      "Live turtle sessions.",
		},
	)
	connectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trc",
			Subsystem: "registry",
			Name:      "connected_clients",
			Help:      "Live viewer sessions.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			registryMessages, registryBroadcasts, routeMisses, persistenceFailures,
			onlineTurtles, connectedClients,
			httpRequests, httpDuration,
		)
	})
}

func RecordRegistryMessage(msgType string) {
	RegisterMetrics()
	registryMessages.WithLabelValues(msgType).Inc()
}

func RecordBroadcast(kind string) {
	RegisterMetrics()
	registryBroadcasts.WithLabelValues(kind).Inc()
}

func RecordRouteMiss() {
	RegisterMetrics()
	routeMisses.Inc()
}

func RecordPersistenceFailure() {
	RegisterMetrics()
	persistenceFailures.Inc()
}

func SetOnlineTurtles(n int) {
	RegisterMetrics()
	onlineTurtles.Set(float64(n))
}

func SetConnectedClients(n int) {
	RegisterMetrics()
	connectedClients.Set(float64(n))
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
