package metrics

import "sync/atomic"

var globalServiceName atomic.Value

const defaultServiceName = "signup"

func init() {
	globalServiceName.Store(defaultServiceName)
}

// SetServiceName 配置 service 标签的值
func SetServiceName(name string) {
	if name == "" {
		name = defaultServiceName
	}
	globalServiceName.Store(name)
}

// GetServiceName 返回当前服务名称
func GetServiceName() string {
	if value, ok := globalServiceName.Load().(string); ok && value != "" {
		return value
	}
	return defaultServiceName
}
