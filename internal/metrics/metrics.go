// Package metrics 定义服务的 Prometheus 指标，按 HTTP、实时推送、文章发布和索引巡检分组。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "newslive"
)

var (
	// HTTP 请求量与耗时
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// WebSocket 连接数与推送事件
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "clients",
			Help:      "Number of connected WebSocket clients",
		},
	)

	RealtimeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_total",
			Help:      "Total number of events handled by the gateway by event and result",
		},
		[]string{"event", "result"},
	)

	// 文章发布
	ArticlesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "published_total",
			Help:      "Total number of new_article notifications by publish result",
		},
		[]string{"result"},
	)

	// 索引巡检，由周期任务更新
	IndexDanglingEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "dangling_entries",
			Help:      "Index entries whose article document is missing, by index",
		},
		[]string{"index"},
	)

	IndexAuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "audits_total",
			Help:      "Total number of index audits by result",
		},
		[]string{"result"},
	)
)

// ObserveBroadcast 记录一次广播的送达和丢弃数量
func ObserveBroadcast(event string, delivered, dropped int) {
	if delivered > 0 {
		RealtimeEventsTotal.WithLabelValues(event, "delivered").Add(float64(delivered))
	}
	if dropped > 0 {
		RealtimeEventsTotal.WithLabelValues(event, "dropped").Add(float64(dropped))
	}
}

// ObservePublish 记录一次 new_article 发布的结果
func ObservePublish(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ArticlesPublishedTotal.WithLabelValues(result).Inc()
}

// ObserveIndexAudit 记录巡检后每个索引的悬空项数量。
// 巡检失败时只增加失败计数，不改动 gauge。
func ObserveIndexAudit(danglingByIndex map[string]int, err error) {
	if err != nil {
		IndexAuditsTotal.WithLabelValues("failure").Inc()
		return
	}
	IndexAuditsTotal.WithLabelValues("success").Inc()
	for index, count := range danglingByIndex {
		IndexDanglingEntries.WithLabelValues(index).Set(float64(count))
	}
}
