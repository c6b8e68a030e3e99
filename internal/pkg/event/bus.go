package event

import (
	"context"
	"fmt"
	"sync"

	"vibelog/pkg/metrics"

	"go.uber.org/zap"
)

// Handler 事件处理函数
type Handler func(ctx context.Context, evt Event) error

// Publisher 动作组件依赖的发布接口
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Bus 同步发布/订阅总线
// Publish 在所有处理函数执行完后返回；处理失败只记录日志，不回传给触发方
type Bus struct {
	mu       sync.RWMutex
	handlers map[Tag][]Handler
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewBus 创建事件总线
func NewBus(log *zap.Logger, m *metrics.Metrics) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Bus{
		handlers: make(map[Tag][]Handler),
		log:      log,
		metrics:  m,
	}
}

// Subscribe 为指定标签注册处理函数，按注册顺序调用
func (b *Bus) Subscribe(tag Tag, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[tag] = append(b.handlers[tag], h)
}

// Subscribers 返回某标签的订阅数
func (b *Bus) Subscribers(tag Tag) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[tag])
}

// Publish 发布事件
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if evt == nil {
		return
	}
	tag := evt.Tag()

	// 复制处理函数列表，执行时不持锁，允许处理函数内再发布
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[tag]))
	copy(handlers, b.handlers[tag])
	b.mu.RUnlock()

	b.metrics.EventsPublished.WithLabelValues(string(tag)).Inc()

	for i, h := range handlers {
		if err := b.dispatch(ctx, h, evt); err != nil {
			b.metrics.EventHandlerErrors.WithLabelValues(string(tag)).Inc()
			b.log.Error("event handler failed",
				zap.String("event", string(tag)),
				zap.Int("handler", i),
				zap.Error(err),
			)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, evt)
}
