// Package metrics counts build events and writes them in the Prometheus text
// format. The counters live on a private registry so tests and repeated
// command runs in one process never collide on registration.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the build counters.
type Metrics struct {
	registry *prometheus.Registry

	// GroupsBuilt counts model rows built, by mode.
	GroupsBuilt *prometheus.CounterVec

	// VariantOverflow counts variants dropped past the slot limit, by mode.
	VariantOverflow *prometheus.CounterVec

	// LookupNotFound counts requested codes that matched no group, by mode.
	LookupNotFound *prometheus.CounterVec

	// DuplicateRejected counts rows refused by the output collection.
	DuplicateRejected prometheus.Counter
}

// New registers the counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		GroupsBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_groups_built_total",
			Help: "Total number of model rows built by mode",
		}, []string{"mode"}),
		VariantOverflow: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_variant_overflow_total",
			Help: "Total number of variants dropped past the slot limit by mode",
		}, []string{"mode"}),
		LookupNotFound: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_lookup_not_found_total",
			Help: "Total number of requested codes with no matching group by mode",
		}, []string{"mode"}),
		DuplicateRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_duplicate_rejected_total",
			Help: "Total number of rows rejected as duplicates of the output collection",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every counter to path in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
