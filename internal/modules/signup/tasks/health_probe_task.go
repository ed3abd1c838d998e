package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/metrics"
)

// DefaultSpec 默认每 30 秒探测一次
const DefaultSpec = "@every 30s"

const probeTimeout = 5 * time.Second

// Probe 单个依赖的探测函数
type Probe func(ctx context.Context) error

// DependencyStatus 单个依赖的最近一次探测结果
type DependencyStatus struct {
	Name      string    `json:"name"`
	Up        bool      `json:"up"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Snapshot 最近一次探测的汇总
type Snapshot struct {
	Healthy      bool               `json:"healthy"`
	CheckedAt    time.Time          `json:"checked_at,omitempty"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// HealthProbeTask 定时探测 Redis、NATS、Kratos 的可用性
type HealthProbeTask struct {
	spec    string
	probes  map[string]Probe
	logger  log.Logger
	metrics *metrics.ResourceMetrics
	cron    *cron.Cron

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewHealthProbeTask 创建探测任务，spec 为空时使用 DefaultSpec
func NewHealthProbeTask(spec string, probes map[string]Probe, logger log.Logger) *HealthProbeTask {
	if spec == "" {
		spec = DefaultSpec
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &HealthProbeTask{
		spec:    spec,
		probes:  probes,
		logger:  logger,
		metrics: metrics.DefaultResourceMetrics,
	}
}

// Start 启动定时任务，启动前先同步探测一次
func (t *HealthProbeTask) Start() error {
	t.RunOnce(context.Background())

	t.cron = cron.New(cron.WithSeconds())
	// Cron 表达式: 秒 分 时 日 月 周，也支持 @every
	if _, err := t.cron.AddFunc(t.spec, func() {
		t.RunOnce(context.Background())
	}); err != nil {
		t.logger.Error("【定时任务】添加依赖探测任务失败", err, "spec", t.spec)
		return err
	}

	t.cron.Start()
	t.logger.Info("【定时任务】依赖探测已启动", "spec", t.spec)
	return nil
}

// RunOnce 探测所有依赖并更新快照
func (t *HealthProbeTask) RunOnce(ctx context.Context) Snapshot {
	names := make([]string, 0, len(t.probes))
	for name := range t.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	snap := Snapshot{Healthy: true, CheckedAt: time.Now()}
	for _, name := range names {
		status := t.probe(ctx, name, t.probes[name])
		if !status.Up {
			snap.Healthy = false
		}
		snap.Dependencies = append(snap.Dependencies, status)
	}

	t.mu.Lock()
	t.snapshot = snap
	t.mu.Unlock()
	return snap
}

func (t *HealthProbeTask) probe(ctx context.Context, name string, fn Probe) DependencyStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := DependencyStatus{Name: name, Up: true, CheckedAt: time.Now()}
	if err := fn(ctx); err != nil {
		status.Up = false
		status.Error = err.Error()
		t.logger.Warn("【定时任务】依赖不可用", "dependency", name, "error", err.Error())
	}
	if t.metrics != nil {
		t.metrics.SetDependencyUp(name, status.Up)
	}
	return status
}

// Snapshot 返回最近一次探测结果的副本
func (t *HealthProbeTask) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := t.snapshot
	snap.Dependencies = append([]DependencyStatus(nil), t.snapshot.Dependencies...)
	return snap
}

// Stop 停止定时任务（优雅关闭）
func (t *HealthProbeTask) Stop() {
	if t.cron != nil {
		t.logger.Info("【定时任务】正在停止依赖探测...")
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【定时任务】依赖探测已停止")
	}
}
