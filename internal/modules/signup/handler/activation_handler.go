package handler

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"onboard-pay/internal/modules/signup/service"
	"onboard-pay/internal/pkg/i18n"
	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/notify"
	"onboard-pay/internal/pkg/response"
	"onboard-pay/internal/pkg/trace"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
)

//go:embed templates/activation.html
var templateFS embed.FS

var activationPage = template.Must(template.ParseFS(templateFS, "templates/activation.html"))

// 页面上的固定文案
const (
	hintSuccess  = "Please check your email to verify your account before logging in."
	labelLogin   = "Go to Login"
	labelRetry   = "Try Again"
	retryPageURL = "/"
)

// AccountActivator 付款后激活账号
type AccountActivator interface {
	Activate(ctx context.Context, sessionID string, fb service.Feedback) *service.Outcome
}

// ActivationHandler 支付回跳页
type ActivationHandler struct {
	activator  AccountActivator
	sink       notify.Sink
	respWriter response.Writer
}

// NewActivationHandler sink 为通知下游（NATS），可以为 nil
func NewActivationHandler(activator AccountActivator, sink notify.Sink, respWriter response.Writer) *ActivationHandler {
	return &ActivationHandler{
		activator:  activator,
		sink:       sink,
		respWriter: respWriter,
	}
}

// ActivationView 激活结果
type ActivationView struct {
	State           service.State         `json:"state" example:"success"`
	Title           string                `json:"title" example:"Payment Successful!"`
	Message         string                `json:"message"`
	RedirectURL     string                `json:"redirect_url,omitempty" example:"https://app.cryptotrack.org"`
	RedirectAfterMs int64                 `json:"redirect_after_ms,omitempty" example:"3000"`
	Notifications   []notify.Notification `json:"notifications"`
}

// refreshRedirect 把一次延迟跳转转换成 Refresh 响应头，只接受第一次调度
type refreshRedirect struct {
	url   string
	delay time.Duration
	set   bool
}

func (r *refreshRedirect) ScheduleRedirect(url string, delay time.Duration) {
	if r.set {
		return
	}
	r.url = url
	r.delay = delay
	r.set = true
}

func (r *refreshRedirect) header() string {
	return fmt.Sprintf("%d; url=%s", int(r.delay.Round(time.Second)/time.Second), r.url)
}

// GetActivation 执行激活并返回结果
// @Summary 激活账号
// @Description 校验支付会话、创建账号并安排跳转；Accept: text/html 时返回页面
// @Tags 支付
// @Produce json
// @Produce html
// @Param session_id query string true "checkout 会话 ID"
// @Success 200 {object} response.ResponseResult[ActivationView] "激活成功"
// @Failure 400 {object} response.ResponseResult[ActivationView] "缺少会话 ID"
// @Failure 402 {object} response.ResponseResult[ActivationView] "支付未完成"
// @Failure 409 {object} response.ResponseResult[ActivationView] "会话已使用或邮箱已注册"
// @Router /api/v1/activation [get]
func (h *ActivationHandler) GetActivation(c echo.Context) error {
	if wantsHTML(c.Request()) {
		return h.activate(c, true)
	}
	return h.activate(c, false)
}

// SuccessPage 支付回跳地址，总是返回页面
// @Summary 支付回跳页
// @Tags 支付
// @Produce html
// @Param session_id query string true "checkout 会话 ID"
// @Success 200 {string} string "HTML 页面"
// @Router /success [get]
func (h *ActivationHandler) SuccessPage(c echo.Context) error {
	return h.activate(c, true)
}

func (h *ActivationHandler) activate(c echo.Context, html bool) error {
	ctx := c.Request().Context()
	sessionID := c.QueryParam("session_id")

	collector := notify.NewCollector(h.sink)
	redirect := &refreshRedirect{}
	out := h.activator.Activate(ctx, sessionID, service.Feedback{
		Notifier:   collector,
		Redirector: redirect,
	})

	if redirect.set {
		c.Response().Header().Set("Refresh", redirect.header())
	}
	// 回跳页带一次性的 session_id，不允许缓存
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	view := ActivationView{
		State:         out.State,
		Title:         out.Title,
		Message:       out.Message,
		Notifications: collector.Items(),
	}
	if redirect.set {
		view.RedirectURL = redirect.url
		view.RedirectAfterMs = redirect.delay.Milliseconds()
	}

	status := http.StatusOK
	if out.State == service.StateError && out.Err != nil {
		status = xerrors.GetHTTPStatus(out.Err.Code)
	}

	if html {
		return h.renderPage(c, status, view, redirect)
	}

	code := xerrors.CodeSuccess
	if out.Err != nil {
		code = out.Err.Code
	}
	return response.EchoJSON(c, h.respWriter, response.ResponseResult[ActivationView]{
		Code:      code.ToInt(),
		Message:   out.Message,
		Data:      &view,
		Timestamp: time.Now().Unix(),
		TraceId:   trace.GetTraceID(ctx),
	}, status)
}

// pageData 模板数据
type pageData struct {
	Lang                 string
	State                service.State
	Title                string
	Message              string
	Hint                 string
	ActionURL            string
	ActionLabel          string
	RedirectURL          string
	RedirectAfterSeconds int
}

func (h *ActivationHandler) renderPage(c echo.Context, status int, view ActivationView, redirect *refreshRedirect) error {
	ctx := c.Request().Context()
	lang := i18n.GetLanguage(ctx)

	data := pageData{
		Lang:    i18n.GetLanguageCode(lang),
		State:   view.State,
		Title:   view.Title,
		Message: view.Message,
	}
	switch view.State {
	case service.StateSuccess:
		data.Hint = i18n.T(ctx, hintSuccess)
		data.ActionURL = view.RedirectURL
		data.ActionLabel = i18n.T(ctx, labelLogin)
	case service.StateError:
		data.ActionURL = retryPageURL
		data.ActionLabel = i18n.T(ctx, labelRetry)
	}
	if redirect.set {
		data.RedirectURL = redirect.url
		data.RedirectAfterSeconds = int(redirect.delay.Round(time.Second) / time.Second)
	}

	var sb strings.Builder
	if err := activationPage.Execute(&sb, data); err != nil {
		log.ErrorContext(ctx, "渲染激活页失败", log.Any("error", err))
		return response.EchoError(c, h.respWriter, xerrors.NewWithError(xerrors.CodeInternalError,
			xerrors.CodeInternalError.Message(), err))
	}
	return c.HTML(status, sb.String())
}

// wantsHTML Accept 中 text/html 优先于 JSON 时返回页面
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get(echo.HeaderAccept)
	htmlIdx := strings.Index(accept, echo.MIMETextHTML)
	if htmlIdx < 0 {
		return false
	}
	jsonIdx := strings.Index(accept, echo.MIMEApplicationJSON)
	return jsonIdx < 0 || htmlIdx < jsonIdx
}
