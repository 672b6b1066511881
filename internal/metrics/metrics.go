// Package metrics define las métricas Prometheus del servicio. Package
// standalone para evitar ciclos de import entre http y stats.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "baggio_http_requests_total",
		Help: "Requests HTTP por método, path y status",
	}, []string{"method", "path", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "baggio_http_request_duration_ms",
		Help:    "Duración de requests HTTP en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"method", "path"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "baggio_logins_total",
		Help: "Intentos de login por resultado (ok|unauthenticated|error)",
	}, []string{"result"})

	TokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "baggio_tokens_issued_total",
		Help: "Tokens emitidos por flujo (login|refresh|magic|federated)",
	}, []string{"flow"})

	TokensRevoked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "baggio_tokens_revoked_total",
		Help: "Tokens revocados (logout + refresh)",
	})

	CounterFlushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "baggio_counter_flushes_total",
		Help: "Flushes del contador de uso por resultado (ok|error)",
	}, []string{"result"})
)

// Register registra todas las métricas en el registry dado (default si nil).
// Tolera AlreadyRegisteredError para que los tests puedan llamar dos veces.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cs := []prometheus.Collector{
		HTTPRequests, HTTPDuration, Logins, TokensIssued, TokensRevoked, CounterFlushes,
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
