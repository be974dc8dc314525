package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotelapp"

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func latency(name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: name, Help: help, Buckets: prometheus.DefBuckets,
	}, labels)
}

var (
	// front-end server
	HTTPRequests = counter("http_requests_total", "Front-end HTTP requests.", "route", "method", "status")
	HTTPLatency  = latency("http_request_duration_seconds", "Front-end HTTP request duration seconds.", "route", "method")

	// backend API and the checkout script host
	ExternalRequests = counter("external_requests_total", "Backend requests.", "service", "endpoint", "status")
	ExternalLatency  = latency("external_request_duration_seconds", "Backend request duration seconds.", "service", "endpoint")

	CacheEvents         = counter("cache_events_total", "Hotel detail cache events.", "cache", "event") // hit|miss|set|del
	CheckoutTransitions = counter("checkout_transitions_total", "Checkout state transitions.", "state")
	SessionEvents       = counter("session_events_total", "Token store writes and remote changes.", "event")

	ActiveWorkspaces = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "active_workspaces", Help: "Browsing contexts held in memory.",
	})
)

// InitRegistry returns a registry holding every series of this package.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		CacheEvents, CheckoutTransitions, SessionEvents, ActiveWorkspaces)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve exposes reg on a separate listener when addr is set.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { CacheEvents.WithLabelValues(cache, event).Inc() }

func ObserveCheckout(state string) { CheckoutTransitions.WithLabelValues(state).Inc() }

func ObserveSession(event string) { SessionEvents.WithLabelValues(event).Inc() }

func SetWorkspaces(n int) { ActiveWorkspaces.Set(float64(n)) }
