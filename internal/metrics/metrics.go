// Package metrics exposes Prometheus counters for the generation and
// share paths.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DocumentsGenerated counts successfully persisted artifacts.
	DocumentsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgen_documents_generated_total",
		Help: "Total number of documents generated and persisted.",
	})

	// GenerationFailures counts failed generation calls by error kind.
	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgen_generation_failures_total",
		Help: "Total number of failed generation calls by kind.",
	}, []string{"kind"})

	// DocumentsShared counts share-record inserts (idempotent repeats included).
	DocumentsShared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgen_documents_shared_total",
		Help: "Total number of share requests accepted.",
	})
)

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
