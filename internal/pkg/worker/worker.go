package worker

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"bookstore_api/pkg/logger"
	"bookstore_api/pkg/metrics"

	"go.uber.org/zap"
)

// Pusher 推送通道
type Pusher interface {
	PushToAccount(accountID string, title, body string, extParameters map[string]string) error
}

// NotifyTask 订单状态变更通知
type NotifyTask struct {
	UserID  uint
	OrderID uint
	Status  string // 展示状态
	Retry   int    // 重试次数
}

type WorkerPool struct {
	TaskQueue  chan NotifyTask
	RetryQueue chan NotifyTask // 重试队列
	Pusher     Pusher
	WorkerNum  int
	MaxRetry   int // 最大重试次数
	// 重试前等待的基础时长，按重试次数线性增长
	RetryDelay time.Duration

	collector *metrics.MetricsCollector
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewWorkerPool(pusher Pusher, workerNum int, bufferSize int) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize < 2 {
		bufferSize = 2
	}
	return &WorkerPool{
		TaskQueue:  make(chan NotifyTask, bufferSize),
		RetryQueue: make(chan NotifyTask, bufferSize/2),
		Pusher:     pusher,
		WorkerNum:  workerNum,
		MaxRetry:   3,
		RetryDelay: time.Second,
		collector:  metrics.GetGlobalCollector(),
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go p.retryWorker()
	logger.Log.Info("notification worker pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 关闭队列并等待处理中的任务完成，重试队列中的任务会被丢弃
func (p *WorkerPool) Stop() {
	p.closeOnce.Do(func() {
		close(p.TaskQueue)
		p.wg.Wait()
		close(p.RetryQueue)
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for task := range p.TaskQueue {
		err := p.processTask(task)
		if err == nil {
			p.collector.RecordNotification("sent")
			continue
		}

		logger.Log.Warn("notification failed",
			zap.Int("worker", id),
			zap.Uint("user_id", task.UserID),
			zap.Uint("order_id", task.OrderID),
			zap.Error(err),
		)

		if task.Retry >= p.MaxRetry {
			p.logFailedTask(task, err)
			continue
		}
		task.Retry++
		select {
		case p.RetryQueue <- task:
		default:
			p.logFailedTask(task, err)
		}
	}
}

func (p *WorkerPool) retryWorker() {
	for task := range p.RetryQueue {
		time.Sleep(time.Duration(task.Retry) * p.RetryDelay)
		p.enqueue(task)
	}
}

func (p *WorkerPool) processTask(task NotifyTask) error {
	title := "订单状态更新"
	body := fmt.Sprintf("您的订单 #%d 状态已更新为 %s", task.OrderID, task.Status)
	ext := map[string]string{
		"order_id": strconv.FormatUint(uint64(task.OrderID), 10),
		"status":   task.Status,
	}
	return p.Pusher.PushToAccount(strconv.FormatUint(uint64(task.UserID), 10), title, body, ext)
}

func (p *WorkerPool) logFailedTask(task NotifyTask, err error) {
	p.collector.RecordNotification("dropped")
	logger.Log.Error("notification dropped",
		zap.Uint("user_id", task.UserID),
		zap.Uint("order_id", task.OrderID),
		zap.Int("retry", task.Retry),
		zap.Error(err),
	)
}

func (p *WorkerPool) enqueue(task NotifyTask) {
	defer func() {
		// 关闭后入队直接丢弃
		if recover() != nil {
			p.logFailedTask(task, nil)
		}
	}()
	select {
	case p.TaskQueue <- task:
	default:
		p.logFailedTask(task, nil)
	}
}

// AddTask 非阻塞入队，队列满时丢弃并记录日志
func (p *WorkerPool) AddTask(task NotifyTask) {
	p.enqueue(task)
}

// NotifyOrderStatus 供订单服务调用
func (p *WorkerPool) NotifyOrderStatus(userID, orderID uint, status string) {
	p.AddTask(NotifyTask{UserID: userID, OrderID: orderID, Status: status})
}
