package notify

import (
	"context"
	"sync"
)

// Sink 通知的下游
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Collector 收集一次请求内产生的通知，随响应返回给页面，同时转发给下游
type Collector struct {
	mu    sync.Mutex
	items []Notification
	next  Sink
}

// NewCollector next 可以为 nil
func NewCollector(next Sink) *Collector {
	return &Collector{next: next}
}

func (c *Collector) Notify(ctx context.Context, n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	if c.next != nil {
		c.next.Notify(ctx, n)
	}
}

// Items 已收集的通知（副本）
func (c *Collector) Items() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}
