// File: internal/pkg/metrics/registry.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace 本服务所有指标的前缀
const Namespace = "onboard"

var defaultRegistryManager = &RegistryManager{
	registerer: prometheus.DefaultRegisterer,
	gatherer:   prometheus.DefaultGatherer,
}

// RegistryManager 管理指标注册与采集使用的 Registry，测试中可替换为独立实例。
type RegistryManager struct {
	mu         sync.RWMutex
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// SetRegistry 设置全局 Registry，nil 时恢复默认
func SetRegistry(reg *prometheus.Registry) {
	defaultRegistryManager.mu.Lock()
	defer defaultRegistryManager.mu.Unlock()

	if reg == nil {
		defaultRegistryManager.registerer = prometheus.DefaultRegisterer
		defaultRegistryManager.gatherer = prometheus.DefaultGatherer
		return
	}
	defaultRegistryManager.registerer = reg
	defaultRegistryManager.gatherer = reg
}

// GetRegisterer 返回当前的 Registerer。
func GetRegisterer() prometheus.Registerer {
	defaultRegistryManager.mu.RLock()
	defer defaultRegistryManager.mu.RUnlock()
	return defaultRegistryManager.registerer
}

// GetGatherer 返回 /metrics 使用的 Gatherer。
func GetGatherer() prometheus.Gatherer {
	defaultRegistryManager.mu.RLock()
	defer defaultRegistryManager.mu.RUnlock()
	return defaultRegistryManager.gatherer
}
