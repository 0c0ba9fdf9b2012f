package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analyzeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicled_analyze_requests_total",
		Help: "Analyze requests by outcome.",
	}, []string{"outcome"})

	analyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chronicled_analyze_duration_seconds",
		Help:    "Wall time of a full analyze request.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	uploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chronicled_upload_bytes",
		Help:    "Size of uploaded transcripts.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicled_result_cache_lookups_total",
		Help: "Result cache lookups by outcome.",
	}, []string{"outcome"})
)
