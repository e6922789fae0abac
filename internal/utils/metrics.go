package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the photo pipeline
type Metrics struct {
	uploadsTotal      *prometheus.CounterVec
	uploadBytes       prometheus.Counter
	thumbnailFailures prometheus.Counter
	presignCacheHits  prometheus.Counter
	presignCacheMiss  prometheus.Counter
	storageLatency    *prometheus.HistogramVec
	consistencyWarns  prometheus.Counter
}

// NewMetrics creates and registers all photo metrics on the default registerer
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all photo metrics on the given registerer
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photo_uploads_total",
				Help: "Total number of photo uploads by outcome",
			},
			[]string{"outcome"},
		),
		uploadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "photo_upload_bytes_total",
				Help: "Total number of original bytes stored",
			},
		),
		thumbnailFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "photo_thumbnail_failures_total",
				Help: "Total number of uploads that ended without a stored thumbnail",
			},
		),
		presignCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "presign_cache_hits_total",
				Help: "Total number of presigned URL cache hits",
			},
		),
		presignCacheMiss: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "presign_cache_misses_total",
				Help: "Total number of presigned URL cache misses",
			},
		),
		storageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "object_storage_latency_ms",
				Help:    "Latency of object storage operations in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			},
			[]string{"operation"},
		),
		consistencyWarns: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "store_consistency_warnings_total",
				Help: "Total number of cross-store consistency warnings needing operator remediation",
			},
		),
	}
}

// RecordUpload counts one upload with the given outcome ("ok", "no_thumbnail", "failed")
func (m *Metrics) RecordUpload(outcome string, sizeBytes int64) {
	m.uploadsTotal.WithLabelValues(outcome).Inc()
	if sizeBytes > 0 {
		m.uploadBytes.Add(float64(sizeBytes))
	}
}

// IncThumbnailFailure counts an upload that degraded to no thumbnail
func (m *Metrics) IncThumbnailFailure() {
	m.thumbnailFailures.Inc()
}

// IncPresignCacheHit counts a presigned URL served from cache
func (m *Metrics) IncPresignCacheHit() {
	m.presignCacheHits.Inc()
}

// IncPresignCacheMiss counts a presigned URL that had to be signed
func (m *Metrics) IncPresignCacheMiss() {
	m.presignCacheMiss.Inc()
}

// ObserveStorageLatency records the latency of one object storage operation
func (m *Metrics) ObserveStorageLatency(operation string, milliseconds int64) {
	m.storageLatency.WithLabelValues(operation).Observe(float64(milliseconds))
}

// IncConsistencyWarning counts a state the operator must reconcile by hand
func (m *Metrics) IncConsistencyWarning() {
	m.consistencyWarns.Inc()
}
