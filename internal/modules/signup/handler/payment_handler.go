package handler

import (
	"context"

	"onboard-pay/internal/modules/signup/service"
	"onboard-pay/internal/pkg/response"

	"github.com/labstack/echo/v4"
)

// PaymentVerifier 付款校验
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, sessionID string) (*service.VerifiedPayment, error)
}

// PaymentHandler 付款校验接口
type PaymentHandler struct {
	payments   PaymentVerifier
	respWriter response.Writer
}

// NewPaymentHandler 创建付款校验处理器
func NewPaymentHandler(payments PaymentVerifier, respWriter response.Writer) *PaymentHandler {
	return &PaymentHandler{
		payments:   payments,
		respWriter: respWriter,
	}
}

// VerifyPaymentRequest 付款校验请求
type VerifyPaymentRequest struct {
	SessionID string `json:"sessionId" validate:"required" example:"cs_test_a1b2c3"`
}

// VerifyPaymentResponse 付款校验结果，密码不会离开服务端
type VerifyPaymentResponse struct {
	Success bool   `json:"success" example:"true"`
	Email   string `json:"email" example:"jane@example.com"`
}

// VerifyPayment 校验 checkout 会话是否已付款
// @Summary 校验付款
// @Description 查询 Stripe checkout 会话，已付款时返回注册邮箱
// @Tags 支付
// @Accept json
// @Produce json
// @Param request body VerifyPaymentRequest true "checkout 会话 ID"
// @Success 200 {object} response.ResponseResult[VerifyPaymentResponse] "已付款"
// @Failure 400 {object} response.ResponseResult[response.ErrorData] "缺少会话 ID"
// @Failure 402 {object} response.ResponseResult[response.ErrorData] "未付款"
// @Failure 410 {object} response.ResponseResult[response.ErrorData] "注册信息已过期"
// @Router /api/v1/payments/verify [post]
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req VerifyPaymentRequest
	if appErr := bindAndValidate(c, &req); appErr != nil {
		return response.EchoError(c, h.respWriter, appErr)
	}

	payment, err := h.payments.VerifyPayment(c.Request().Context(), req.SessionID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, VerifyPaymentResponse{
		Success: payment.Success,
		Email:   payment.Email,
	})
}
