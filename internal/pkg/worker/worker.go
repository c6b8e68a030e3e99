package worker

import (
	"context"
	"sync"
	"time"

	"vibelog/internal/pkg/push"

	"go.uber.org/zap"
)

// PushTask 一条待推送的通知
type PushTask struct {
	AccountID string
	Title     string
	Body      string
	Ext       map[string]string
	Retry     int // 重试次数
}

// PushPool 异步推送协程池
// 推送失败按次数延迟重试，超过上限记录日志后丢弃
type PushPool struct {
	taskQueue  chan PushTask
	retryQueue chan PushTask
	pusher     push.Pusher
	log        *zap.Logger
	workerNum  int
	maxRetry   int
	timeout    time.Duration
	backoff    time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.RWMutex
	closed bool
}

func NewPushPool(pusher push.Pusher, log *zap.Logger, workerNum, bufferSize int) *PushPool {
	if log == nil {
		log = zap.NewNop()
	}
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 1 {
		bufferSize = 2
	}
	return &PushPool{
		taskQueue:  make(chan PushTask, bufferSize),
		retryQueue: make(chan PushTask, bufferSize/2),
		pusher:     pusher,
		log:        log,
		workerNum:  workerNum,
		maxRetry:   3, // 最多重试3次
		timeout:    5 * time.Second,
		backoff:    time.Second,
	}
}

func (p *PushPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workerNum; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker(ctx)
	p.log.Info("push pool started", zap.Int("workers", p.workerNum))
}

// Stop 停止接收任务并等待协程退出，队列中未处理的任务丢弃
func (p *PushPool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Submit 投递任务，队列已满或已停止时返回 false
func (p *PushPool) Submit(task PushTask) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.taskQueue <- task:
		return true
	default:
		p.logFailedTask(task, nil, "queue full")
		return false
	}
}

func (p *PushPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.taskQueue:
			p.process(ctx, id, task)
		}
	}
}

func (p *PushPool) process(ctx context.Context, id int, task PushTask) {
	pushCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.pusher.PushToAccount(pushCtx, task.AccountID, task.Title, task.Body, task.Ext)
	cancel()
	if err == nil {
		return
	}

	p.log.Warn("push failed",
		zap.Int("worker", id),
		zap.String("account", task.AccountID),
		zap.Int("attempt", task.Retry),
		zap.Error(err))

	// 如果未达到最大重试次数，加入重试队列
	if task.Retry >= p.maxRetry {
		p.logFailedTask(task, err, "max retries exceeded")
		return
	}
	task.Retry++
	select {
	case p.retryQueue <- task:
	default:
		p.logFailedTask(task, err, "retry queue full")
	}
}

func (p *PushPool) retryWorker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.retryQueue:
			// 延迟重试，避免立即重试
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(task.Retry) * p.backoff):
			}

			select {
			case p.taskQueue <- task:
			default:
				p.logFailedTask(task, nil, "main queue full")
			}
		}
	}
}

func (p *PushPool) logFailedTask(task PushTask, err error, reason string) {
	p.log.Error("push dropped",
		zap.String("account", task.AccountID),
		zap.String("title", task.Title),
		zap.Int("attempt", task.Retry),
		zap.String("reason", reason),
		zap.Error(err))
}
