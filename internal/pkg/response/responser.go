// File: internal/pkg/response/responser.go
package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"onboard-pay/internal/pkg/i18n"
	"onboard-pay/internal/pkg/log"
	"onboard-pay/internal/pkg/trace"
	"onboard-pay/internal/pkg/xerrors"
)

// ResponseResult 统一的 API 响应结构
type ResponseResult[T any] struct {
	Code      int    `json:"code"`               // 业务响应码
	Message   string `json:"message"`            // 响应消息
	Data      *T     `json:"data,omitempty"`     // 响应数据
	Error     string `json:"error,omitempty"`    // 错误详情，仅非生产环境返回
	Timestamp int64  `json:"timestamp"`          // Unix时间戳
	TraceId   string `json:"trace_id,omitempty"` // 请求追踪ID
}

// ErrorData 错误响应的附加数据
type ErrorData struct {
	Fields []xerrors.FieldError `json:"fields,omitempty"`
}

// Writer 响应输出接口
type Writer interface {
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error
	WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error
}

// ResponseHandler Writer 的默认实现
type ResponseHandler struct {
	logger      log.Logger
	environment string
}

// NewResponseHandler 创建响应处理器
func NewResponseHandler(logger log.Logger, environment string) *ResponseHandler {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &ResponseHandler{logger: logger, environment: environment}
}

// DefaultResponseHandler 测试用的默认处理器
func DefaultResponseHandler() *ResponseHandler {
	return NewResponseHandler(log.GetLogger(), "development")
}

// WriteSuccess 输出成功响应
func (h *ResponseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error {
	resp := &ResponseResult[any]{
		Code:      xerrors.CodeSuccess.ToInt(),
		Message:   i18n.GetErrorMessage(xerrors.CodeSuccess, i18n.GetLanguage(ctx)),
		Data:      &data,
		Timestamp: time.Now().Unix(),
		TraceId:   trace.GetTraceID(ctx),
	}
	return h.write(ctx, w, http.StatusOK, resp)
}

// WriteError 输出错误响应，非 AppError 一律包装为内部错误
func (h *ResponseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	appErr := xerrors.Wrap(err, xerrors.CodeInternalError, xerrors.CodeInternalError.Message())
	if appErr == nil {
		appErr = xerrors.FromCode(xerrors.CodeInternalError)
	}

	status := xerrors.GetHTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.LogAppError(ctx, "request failed", appErr)
	} else {
		h.logger.InfoContext(ctx, "request rejected",
			log.Int("code", appErr.Code.ToInt()),
			log.String("message", appErr.Message),
		)
	}

	resp := &ResponseResult[ErrorData]{
		Code:      appErr.Code.ToInt(),
		Message:   i18n.LocalizeAppError(appErr, i18n.GetLanguage(ctx)),
		Timestamp: time.Now().Unix(),
		TraceId:   trace.GetTraceID(ctx),
	}
	if fields, ok := appErr.Metadata("fields"); ok {
		if fe, ok := fields.([]xerrors.FieldError); ok {
			resp.Data = &ErrorData{Fields: fe}
		}
	} else if field, ok := appErr.Metadata("field"); ok {
		if name, ok := field.(string); ok {
			resp.Data = &ErrorData{Fields: []xerrors.FieldError{{Field: name, Message: resp.Message}}}
		}
	}
	if h.environment != "production" && appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}

	return h.write(ctx, w, status, resp)
}

// WriteJSON 直接输出 JSON（跳过统一包装）
func (h *ResponseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	return h.write(ctx, w, statusCode, data)
}

func (h *ResponseHandler) write(ctx context.Context, w http.ResponseWriter, statusCode int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	// header 已写出，编码失败只能记录日志
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write json response failed", err)
		return err
	}
	return nil
}

var _ Writer = (*ResponseHandler)(nil)
