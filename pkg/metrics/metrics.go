package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects the engine's soft diagnostics. Malformed input never
// aborts a batch, so counters are the only place dirty data surfaces.
type Registry struct {
	reg *prometheus.Registry

	RecordsSkipped prometheus.Counter
	BadAttributes  prometheus.Counter
	EntriesGrouped prometheus.Counter
	GroupSeconds   prometheus.Histogram

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	IngestBatches prometheus.Counter
	IngestErrors  prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	recordsSkipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_records_skipped_total"})
	badAttributes := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_bad_attributes_total"})
	entriesGrouped := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_entries_grouped_total"})
	groupSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_group_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_cache_hits_total"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_cache_misses_total"})
	ingestBatches := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_ingest_batches_total"})
	ingestErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_ingest_errors_total"})

	r.MustRegister(recordsSkipped, badAttributes, entriesGrouped, groupSeconds,
		cacheHits, cacheMisses, ingestBatches, ingestErrors)

	return &Registry{
		reg:            r,
		RecordsSkipped: recordsSkipped,
		BadAttributes:  badAttributes,
		EntriesGrouped: entriesGrouped,
		GroupSeconds:   groupSeconds,
		CacheHits:      cacheHits,
		CacheMisses:    cacheMisses,
		IngestBatches:  ingestBatches,
		IngestErrors:   ingestErrors,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
