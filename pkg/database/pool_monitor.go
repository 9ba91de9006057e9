package database

import (
	"context"
	"database/sql"
	"time"

	"bookstore_api/pkg/logger"
	"bookstore_api/pkg/metrics"

	"go.uber.org/zap"
)

// PoolMonitor 连接池监控器，定时导出连接池指标并检查连通性。
// 连接错误只记录日志，不影响正在处理的请求。
type PoolMonitor struct {
	db        *sql.DB
	collector *metrics.MetricsCollector
	interval  time.Duration
	// 连续等待次数告警阈值
	waitThreshold int64
	lastWait      int64
	stopCh        chan struct{}
}

// NewPoolMonitor 创建连接池监控器
func NewPoolMonitor(db *sql.DB, collector *metrics.MetricsCollector, interval time.Duration) *PoolMonitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &PoolMonitor{
		db:            db,
		collector:     collector,
		interval:      interval,
		waitThreshold: 100,
		stopCh:        make(chan struct{}),
	}
}

// Start 启动监控协程
func (pm *PoolMonitor) Start() {
	go pm.run()
}

// Stop 停止监控
func (pm *PoolMonitor) Stop() {
	close(pm.stopCh)
}

func (pm *PoolMonitor) run() {
	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pm.collectStats()
		case <-pm.stopCh:
			return
		}
	}
}

// collectStats 收集统计信息
func (pm *PoolMonitor) collectStats() {
	stats := pm.db.Stats()
	pm.collector.UpdateDBConnections(stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount)

	// 两次采样间等待次数激增说明连接池偏小
	if delta := stats.WaitCount - pm.lastWait; pm.lastWait > 0 && delta > pm.waitThreshold {
		logger.Log.Warn("database pool saturated",
			zap.Int64("wait_delta", delta),
			zap.Duration("wait_duration", stats.WaitDuration),
			zap.Int("in_use", stats.InUse),
		)
	}
	pm.lastWait = stats.WaitCount

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pm.db.PingContext(ctx); err != nil {
		pm.collector.RecordDBError("ping")
		logger.Log.Error("database connection error", zap.Error(err))
	}
}
