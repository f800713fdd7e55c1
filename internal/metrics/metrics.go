// Package metrics exposes Prometheus counters for search and refresh outcomes.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newstrack_searches_total",
			Help: "Keyword search attempts by outcome",
		},
		[]string{"outcome"},
	)
	refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newstrack_refreshes_total",
			Help: "Targeted refresh attempts by outcome",
		},
		[]string{"outcome"},
	)
	batchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newstrack_batch_runs_total",
			Help: "Batch refresh job runs by outcome",
		},
		[]string{"outcome"},
	)
	articlesStoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newstrack_articles_stored_total",
			Help: "Articles persisted, by origin (search, refresh, batch)",
		},
		[]string{"origin"},
	)
)

var initOnce sync.Once

// Init registers the collectors. Must be called once at startup.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			searchesTotal,
			refreshesTotal,
			batchRunsTotal,
			articlesStoredTotal,
		)
	})
}

// RecordSearch counts one search attempt with its outcome.
func RecordSearch(outcome string) {
	searchesTotal.WithLabelValues(outcome).Inc()
}

// RecordRefresh counts one targeted refresh attempt with its outcome.
func RecordRefresh(outcome string) {
	refreshesTotal.WithLabelValues(outcome).Inc()
}

// RecordBatchRun counts one batch refresh run with its outcome.
func RecordBatchRun(outcome string) {
	batchRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordArticlesStored counts persisted articles by origin.
func RecordArticlesStored(origin string, count int) {
	articlesStoredTotal.WithLabelValues(origin).Add(float64(count))
}
