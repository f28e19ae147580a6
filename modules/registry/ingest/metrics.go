package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nppes_rows_processed_total",
		Help: "Update file rows processed, labelled by outcome.",
	}, []string{"outcome"})

	rowDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nppes_row_duration_seconds",
		Help:    "Wall time spent processing a single row.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	runsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nppes_runs_total",
		Help: "Update file runs, labelled by result.",
	}, []string{"result"})
)
