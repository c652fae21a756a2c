package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 请求级指标
var (
	ChatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mo7ami_chat_requests_total",
		Help: "Total chat requests by outcome",
	}, []string{"status"})

	QuotaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mo7ami_quota_rejections_total",
		Help: "Requests rejected by the daily quota guard",
	})

	RetrievalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mo7ami_retrieval_duration_seconds",
		Help:    "Vector retrieval latency",
		Buckets: prometheus.DefBuckets,
	})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mo7ami_generation_duration_seconds",
		Help:    "Answer generation latency",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
	})

	RetrievedChunks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mo7ami_retrieved_chunks",
		Help:    "Number of chunks kept per retrieval",
		Buckets: []float64{0, 1, 2, 5, 10},
	})
)

// 语音缓存指标
var (
	SpeechCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mo7ami_speech_cache_hits_total",
		Help: "Speech cache hits",
	})

	SpeechCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mo7ami_speech_cache_misses_total",
		Help: "Speech cache misses",
	})

	SpeechCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mo7ami_speech_cache_entries",
		Help: "Current speech cache entry count",
	})
)
