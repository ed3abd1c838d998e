package handler

import (
	"context"

	"onboard-pay/internal/modules/signup/service"
	"onboard-pay/internal/pkg/response"

	"github.com/labstack/echo/v4"
)

// OTPService 手机验证码
type OTPService interface {
	SendOTP(ctx context.Context, rawPhone string) (*service.OTPTicket, error)
	VerifyOTP(ctx context.Context, rawPhone, code string) (string, error)
}

// CheckoutCreator 下单
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, form service.CheckoutForm) (*service.CheckoutResult, error)
}

// SignupHandler 注册表单相关接口
type SignupHandler struct {
	otp        OTPService
	checkout   CheckoutCreator
	respWriter response.Writer
}

// NewSignupHandler 创建注册处理器
func NewSignupHandler(otp OTPService, checkout CheckoutCreator, respWriter response.Writer) *SignupHandler {
	return &SignupHandler{
		otp:        otp,
		checkout:   checkout,
		respWriter: respWriter,
	}
}

// SendOTPRequest 发送验证码请求
type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164_phone" example:"(555) 123-4567"`
}

// VerifyOTPRequest 校验验证码请求
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164_phone" example:"+15551234567"`
	Code  string `json:"code" validate:"required,len=6,numeric" example:"123456"`
}

// VerifyOTPResponse 校验结果
type VerifyOTPResponse struct {
	Phone    string `json:"phone" example:"+15551234567"`
	Verified bool   `json:"verified" example:"true"`
}

// CheckoutRequest 注册并下单请求
type CheckoutRequest struct {
	Email           string `json:"email" validate:"required,email" example:"jane@example.com"`
	Phone           string `json:"phone" validate:"required,e164_phone" example:"+15551234567"`
	Password        string `json:"password" validate:"required,signup_password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SendOTP 发送手机验证码
// @Summary 发送手机验证码
// @Description 规范化手机号并发送 6 位验证码，60 秒内不能重复发送
// @Tags 注册
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "手机号"
// @Success 200 {object} response.ResponseResult[service.OTPTicket] "发送成功"
// @Failure 400 {object} response.ResponseResult[response.ErrorData] "手机号无效"
// @Failure 429 {object} response.ResponseResult[response.ErrorData] "发送过于频繁"
// @Router /api/v1/signup/otp [post]
func (h *SignupHandler) SendOTP(c echo.Context) error {
	var req SendOTPRequest
	if appErr := bindAndValidate(c, &req); appErr != nil {
		return response.EchoError(c, h.respWriter, appErr)
	}

	ticket, err := h.otp.SendOTP(c.Request().Context(), req.Phone)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, ticket)
}

// VerifyOTP 校验手机验证码
// @Summary 校验手机验证码
// @Tags 注册
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "手机号和验证码"
// @Success 200 {object} response.ResponseResult[VerifyOTPResponse] "验证通过"
// @Failure 400 {object} response.ResponseResult[response.ErrorData] "验证码错误或已过期"
// @Router /api/v1/signup/otp/verify [post]
func (h *SignupHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if appErr := bindAndValidate(c, &req); appErr != nil {
		return response.EchoError(c, h.respWriter, appErr)
	}

	canonical, err := h.otp.VerifyOTP(c.Request().Context(), req.Phone, req.Code)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, VerifyOTPResponse{
		Phone:    canonical,
		Verified: true,
	})
}

// CreateCheckout 校验注册表单并创建支付会话
// @Summary 创建支付会话
// @Description 校验表单，暂存加密后的凭证，返回 Stripe Checkout 跳转地址
// @Tags 注册
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "注册表单"
// @Success 200 {object} response.ResponseResult[service.CheckoutResult] "创建成功"
// @Failure 400 {object} response.ResponseResult[response.ErrorData] "表单校验失败"
// @Failure 403 {object} response.ResponseResult[response.ErrorData] "手机号未验证"
// @Failure 502 {object} response.ResponseResult[response.ErrorData] "支付服务错误"
// @Router /api/v1/signup/checkout [post]
func (h *SignupHandler) CreateCheckout(c echo.Context) error {
	var req CheckoutRequest
	if appErr := bindAndValidate(c, &req); appErr != nil {
		return response.EchoError(c, h.respWriter, appErr)
	}

	result, err := h.checkout.CreateCheckout(c.Request().Context(), service.CheckoutForm{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, result)
}
