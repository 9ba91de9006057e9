package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 数据库连接池指标
	dbConnectionsOpen  prometheus.Gauge
	dbConnectionsInUse prometheus.Gauge
	dbConnectionsIdle  prometheus.Gauge
	dbWaitCount        prometheus.Gauge
	dbErrorsTotal      *prometheus.CounterVec

	// 业务指标
	ordersCreatedTotal       prometheus.Counter
	orderTotalMismatchTotal  prometheus.Counter
	paymentStatusUpdateTotal *prometheus.CounterVec
	notificationsTotal       *prometheus.CounterVec
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 进程内唯一的收集器，指标只注册一次
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = newMetricsCollector()
	})
	return globalCollector
}

func newMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		dbConnectionsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		}),
		dbConnectionsInUse: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of database connections in use",
		}),
		dbConnectionsIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		}),
		dbWaitCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_wait_count",
			Help: "Total number of connections waited for",
		}),
		dbErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_errors_total",
				Help: "Total number of database errors",
			},
			[]string{"operation"},
		),

		ordersCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bookstore_orders_created_total",
			Help: "Total number of orders committed",
		}),
		orderTotalMismatchTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bookstore_order_total_mismatch_total",
			Help: "Orders whose client total differed from the computed total",
		}),
		paymentStatusUpdateTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookstore_payment_status_updates_total",
				Help: "Payment status transitions",
			},
			[]string{"status"},
		),
		notificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookstore_notifications_total",
				Help: "Order status notifications by result",
			},
			[]string{"result"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求
func (mc *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	mc.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	mc.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// UpdateDBConnections 更新连接池指标
func (mc *MetricsCollector) UpdateDBConnections(open, inUse, idle int, waitCount int64) {
	mc.dbConnectionsOpen.Set(float64(open))
	mc.dbConnectionsInUse.Set(float64(inUse))
	mc.dbConnectionsIdle.Set(float64(idle))
	mc.dbWaitCount.Set(float64(waitCount))
}

func (mc *MetricsCollector) RecordDBError(operation string) {
	mc.dbErrorsTotal.WithLabelValues(operation).Inc()
}

func (mc *MetricsCollector) RecordOrderCreated() {
	mc.ordersCreatedTotal.Inc()
}

func (mc *MetricsCollector) RecordOrderTotalMismatch() {
	mc.orderTotalMismatchTotal.Inc()
}

func (mc *MetricsCollector) RecordPaymentStatus(status string) {
	mc.paymentStatusUpdateTotal.WithLabelValues(status).Inc()
}

func (mc *MetricsCollector) RecordNotification(result string) {
	mc.notificationsTotal.WithLabelValues(result).Inc()
}
