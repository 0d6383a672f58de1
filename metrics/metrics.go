// Package metrics 定义 Prometheus 指标与记录函数，通过 promhttp 在 /metrics 暴露。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 推荐查询
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviekit_recommend_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"cache"}, // hit / miss
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviekit_recommend_errors_total",
			Help: "Total number of failed recommendation queries",
		},
		[]string{"code"},
	)

	ConditionsApplied = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviekit_conditions_applied",
			Help:    "Number of recognized conditions per query",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	UnrecognizedFields = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviekit_unrecognized_fields_total",
			Help: "Total number of dropped query conditions with an unrecognized field",
		},
	)

	EmptyResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviekit_empty_results_total",
			Help: "Total number of queries that returned no recommendations",
		},
	)

	// Pipeline 节点
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviekit_pipeline_node_duration_seconds",
			Help:    "Duration of pipeline node execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node", "kind"},
	)

	// 结果缓存
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviekit_result_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"store"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviekit_result_cache_misses_total",
			Help: "Total number of result cache misses",
		},
		[]string{"store"},
	)

	// 快照
	SnapshotBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviekit_snapshot_builds_total",
			Help: "Total number of snapshot build attempts",
		},
		[]string{"result"}, // built / reused / error
	)

	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviekit_snapshot_build_duration_seconds",
			Help:    "Duration of vector space builds in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviekit_snapshot_version",
			Help: "Version of the snapshot currently serving queries",
		},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviekit_catalog_movies",
			Help: "Number of movies in the serving catalog",
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviekit_vocabulary_terms",
			Help: "Number of terms in the serving vocabulary",
		},
	)

	// HTTP
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviekit_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordRecommend 记录一次推荐查询。
func RecordRecommend(duration time.Duration, cacheHit bool, applied, warnings, results int) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	RecommendDuration.WithLabelValues(label).Observe(duration.Seconds())
	ConditionsApplied.Observe(float64(applied))
	UnrecognizedFields.Add(float64(warnings))
	if results == 0 {
		EmptyResults.Inc()
	}
}

// RecordNode 记录一个 Pipeline 节点的耗时。
func RecordNode(node, kind string, duration time.Duration) {
	NodeDuration.WithLabelValues(node, kind).Observe(duration.Seconds())
}

// RecordCache 记录结果缓存命中情况。
func RecordCache(store string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(store).Inc()
		return
	}
	CacheMisses.WithLabelValues(store).Inc()
}

// RecordSnapshot 记录快照构建结果；result 为 built / reused / error。
func RecordSnapshot(result string, duration time.Duration) {
	SnapshotBuilds.WithLabelValues(result).Inc()
	if result == "built" {
		SnapshotBuildDuration.Observe(duration.Seconds())
	}
}

// SetServing 更新当前服务快照的规模。
func SetServing(version uint64, movies, terms int) {
	SnapshotVersion.Set(float64(version))
	CatalogSize.Set(float64(movies))
	VocabularySize.Set(float64(terms))
}

// RecordAPIRequest 记录一次 HTTP 请求。
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
