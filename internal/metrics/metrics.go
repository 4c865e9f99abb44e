// Package metrics provides Prometheus metrics for crawl runs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"PolicyCrawler/internal/domain"
	"PolicyCrawler/internal/ports"
)

// Metrics holds the crawl counters and gauges on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	PoliciesFound     *prometheus.CounterVec
	CandidatesSkipped *prometheus.CounterVec
	FetchFailures     *prometheus.CounterVec

	ArchiveRecords prometheus.Gauge
	LastSuccess    prometheus.Gauge
}

var _ ports.RunRecorder = (*Metrics)(nil)

// New creates and registers all crawl metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PoliciesFound: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policycrawler_policies_found_total",
				Help: "Policies accepted from listing pages",
			},
			[]string{"department"},
		),
		CandidatesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policycrawler_candidates_skipped_total",
				Help: "Listing entries rejected by the record rules",
			},
			[]string{"department", "reason"},
		),
		FetchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policycrawler_fetch_failures_total",
				Help: "Listing pages that could not be fetched or parsed",
			},
			[]string{"department"},
		),
		ArchiveRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "policycrawler_archive_records",
			Help: "Records in the archive after the last run",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "policycrawler_last_success_timestamp_seconds",
			Help: "Unix time of the last completed run",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// FetchFailed counts a listing page skipped for the department.
func (m *Metrics) FetchFailed(department string) {
	m.FetchFailures.WithLabelValues(department).Inc()
}

// CandidateSkipped counts a rejected listing entry by reason.
func (m *Metrics) CandidateSkipped(department string, reason domain.SkipReason) {
	m.CandidatesSkipped.WithLabelValues(department, string(reason)).Inc()
}

// PolicyFound counts an accepted policy.
func (m *Metrics) PolicyFound(department string) {
	m.PoliciesFound.WithLabelValues(department).Inc()
}

// RunCompleted records the archive size and the completion time.
func (m *Metrics) RunCompleted(at time.Time, archiveSize int) {
	m.ArchiveRecords.Set(float64(archiveSize))
	m.LastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrWrite, path, err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrWrite, path, err)
	}
	return nil
}
