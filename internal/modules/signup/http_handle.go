// @title Onboard Pay API
// @version 1.0
// @description 注册 + 支付 + 账号激活
// @BasePath /

package signup

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health 依赖健康状态，取最近一次探测的快照
// @Summary 依赖健康状态
// @Tags 系统
// @Produce json
// @Success 200 {object} tasks.Snapshot "全部依赖可用"
// @Failure 503 {object} tasks.Snapshot "存在不可用的依赖"
// @Router /health [get]
func (m *SignupModule) Health(c echo.Context) error {
	snap := m.healthTask.Snapshot()
	status := http.StatusOK
	if !snap.Healthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, snap)
}
