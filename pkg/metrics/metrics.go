// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// Redis 操作计数
	RedisOpsTotal prometheus.Counter

	// 业务指标
	OrdersTotal        prometheus.Counter
	ReservationsTotal  prometheus.Counter
	NotificationsTotal prometheus.Counter
	StockConflicts     prometheus.Counter
	OrdersPending      prometheus.Gauge
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		RedisOpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "redis_ops_total",
			Help:      "Total Redis operations",
		}),

		OrdersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "orders_total",
			Help:      "Total orders placed",
		}),
		ReservationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "reservations_total",
			Help:      "Total reservations submitted",
		}),
		NotificationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "notifications_total",
			Help:      "Total notifications emitted",
		}),
		StockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "stock_conflicts_total",
			Help:      "Confirmations rejected by stock or concurrency checks",
		}),
		OrdersPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "orders_pending",
			Help:      "Orders awaiting confirmation",
		}),
	}
}

// Register 注册全部指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.RedisOpsTotal,
		m.OrdersTotal,
		m.ReservationsTotal,
		m.NotificationsTotal,
		m.StockConflicts,
		m.OrdersPending,
	}

	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return nil
}

// StartHTTPServer 启动 Prometheus 抓取端点
func StartHTTPServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
	}()

	return nil
}
