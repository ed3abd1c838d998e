// File: internal/pkg/notify/notify.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/trace"

	"github.com/nats-io/nats.go"
)

// Default subjects
const (
	SubjectNotifications    = "signup.notifications"
	SubjectAccountActivated = "signup.account.activated"
	SubjectSMSOutbound      = "sms.outbound"
)

// Severity 通知级别，和前端 toast 的 variant 对应
type Severity string

const (
	SeverityInfo    Severity = "default"
	SeverityError   Severity = "destructive"
	SeveritySuccess Severity = "success"
)

// Notification 面向用户的一条通知
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	TraceID     string    `json:"trace_id,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

// Publisher NATS 发布器，没有连接时静默降级
// conn 创建后不再变化，重连由 nats.Conn 自己处理
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher 创建发布器，conn 可以为 nil
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Publish 以 JSON 发布任意事件
func (p *Publisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if p.conn == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event failed: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	if traceID := trace.GetTraceID(ctx); traceID != "" {
		msg.Header.Set("X-Trace-Id", traceID)
	}
	return p.conn.PublishMsg(msg)
}

// Notify 发布一条用户通知，失败只记日志
func (p *Publisher) Notify(ctx context.Context, n Notification) {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	if n.TraceID == "" {
		n.TraceID = trace.GetTraceID(ctx)
	}
	if err := p.Publish(ctx, SubjectNotifications, n); err != nil {
		log.WarnContext(ctx, "publish notification failed",
			log.String("subject", SubjectNotifications),
			log.Any("error", err),
		)
	}
}

// Healthy 连接状态检查；未配置 NATS 视为健康
func (p *Publisher) Healthy(context.Context) error {
	if p.conn == nil {
		return nil
	}
	if p.conn.IsClosed() || !p.conn.IsConnected() {
		return fmt.Errorf("nats connection status %s", p.conn.Status())
	}
	return nil
}

// Configured 是否配置了 NATS 连接
func (p *Publisher) Configured() bool {
	return p != nil && p.conn != nil
}
