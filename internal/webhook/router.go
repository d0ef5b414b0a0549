package webhook

import (
	"sync"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/stripe/stripe-go/v74"
)

// Result 事件处理结果
type Result struct {
	Applied bool   // 是否发生了状态转换
	NoOp    string // 非空时为跳过原因
}

// EventProcessor 事件处理器接口
type EventProcessor interface {
	Process(event *stripe.Event) (*Result, error)
	GetEventTypes() []string
}

// Router 事件路由器，按事件类型分发到已注册的处理器
type Router struct {
	mu         sync.RWMutex
	processors map[string]EventProcessor
}

// NewRouter 创建事件路由器
func NewRouter() *Router {
	return &Router{
		processors: make(map[string]EventProcessor),
	}
}

// Register 注册事件处理器
func (r *Router) Register(processor EventProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, eventType := range processor.GetEventTypes() {
		r.processors[eventType] = processor
		logger.Info("Registered processor for event type: %s", eventType)
	}
}

// GetProcessor 获取指定事件类型的处理器
func (r *Router) GetProcessor(eventType string) (EventProcessor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	processor, exists := r.processors[eventType]
	return processor, exists
}

// Process 分发事件，未注册的事件类型按无操作确认
func (r *Router) Process(event *stripe.Event) (*Result, error) {
	processor, exists := r.GetProcessor(event.Type)
	if !exists {
		logger.Debug("No processor registered for event type: %s", event.Type)
		return &Result{NoOp: "unhandled event type"}, nil
	}

	return processor.Process(event)
}

// GetSupportedEventTypes 获取支持的事件类型列表
func (r *Router) GetSupportedEventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eventTypes := make([]string, 0, len(r.processors))
	for eventType := range r.processors {
		eventTypes = append(eventTypes, eventType)
	}
	return eventTypes
}
