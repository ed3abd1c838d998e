// File: internal/pkg/xerrors/errors.go
package xerrors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// ErrorLevel 错误级别
type ErrorLevel int

const (
	LevelInfo ErrorLevel = iota
	LevelWarn
	LevelError
	LevelCritical
)

func (l ErrorLevel) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorContext 错误上下文信息
type ErrorContext struct {
	TraceID   string                 `json:"trace_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Service   string                 `json:"service,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AppError 领域错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`

	Level    ErrorLevel `json:"level,omitempty"`
	Category string     `json:"category,omitempty"`

	Context   *ErrorContext `json:"context,omitempty"`
	Timestamp time.Time     `json:"timestamp,omitempty"`

	// 调试信息，只进日志，不进响应
	File string `json:"-"`
	Line int    `json:"-"`

	Retryable bool `json:"retryable,omitempty"`
}

// Error 实现标准 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *AppError) Unwrap() error {
	return e.Err
}

// LogValue 实现 slog.LogValuer 接口
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("code", int(e.Code)),
		slog.String("message", e.Message),
		slog.String("level", e.Level.String()),
		slog.String("category", e.Category),
		slog.Bool("retryable", e.Retryable),
	}

	if e.Context != nil {
		if e.Context.TraceID != "" {
			attrs = append(attrs, slog.String("trace_id", e.Context.TraceID))
		}
		if e.Context.SessionID != "" {
			attrs = append(attrs, slog.String("session_id", e.Context.SessionID))
		}
		if e.Context.Service != "" {
			attrs = append(attrs, slog.String("service", e.Context.Service))
		}
		if e.Context.Operation != "" {
			attrs = append(attrs, slog.String("operation", e.Context.Operation))
		}
		if len(e.Context.Metadata) > 0 {
			attrs = append(attrs, slog.Any("metadata", e.Context.Metadata))
		}
	}

	if e.File != "" {
		attrs = append(attrs, slog.String("source", fmt.Sprintf("%s:%d", e.File, e.Line)))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.Any("underlying_error", e.Err))
	}

	return slog.GroupValue(attrs...)
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(ctx *ErrorContext) *AppError {
	newErr := *e
	newErr.Context = ctx
	return &newErr
}

// WithTraceID 添加 TraceID
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.ensureContext().TraceID = traceID
	return e
}

// WithSession 添加支付会话 ID
func (e *AppError) WithSession(sessionID string) *AppError {
	e.ensureContext().SessionID = sessionID
	return e
}

// WithService 添加服务和操作信息
func (e *AppError) WithService(service, operation string) *AppError {
	c := e.ensureContext()
	c.Service = service
	c.Operation = operation
	return e
}

// WithMetadata 添加自定义元数据
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	c := e.ensureContext()
	if c.Metadata == nil {
		c.Metadata = make(map[string]interface{})
	}
	c.Metadata[key] = value
	return e
}

// WithMessage 覆盖面向用户的消息
func (e *AppError) WithMessage(message string) *AppError {
	if message != "" {
		e.Message = message
	}
	return e
}

func (e *AppError) ensureContext() *ErrorContext {
	if e.Context == nil {
		e.Context = &ErrorContext{}
	}
	return e.Context
}

// Metadata 读取元数据
func (e *AppError) Metadata(key string) (interface{}, bool) {
	if e.Context == nil || e.Context.Metadata == nil {
		return nil, false
	}
	v, ok := e.Context.Metadata[key]
	return v, ok
}

// IsRetryable 判断是否为可重试错误
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// New 创建新的AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Level:     getLevelByCode(code),
		Category:  getCategoryByCode(code),
		Timestamp: time.Now(),
		Retryable: isRetryableByCode(code),
	}
}

// NewWithError 创建包含原始错误的 AppError
func NewWithError(code ErrorCode, message string, err error) *AppError {
	appErr := New(code, message)
	appErr.Err = err

	if _, file, line, ok := runtime.Caller(1); ok {
		appErr.File = file
		appErr.Line = line
	}

	return appErr
}

// FromCode 根据错误码创建 AppError
func FromCode(code ErrorCode) *AppError {
	return New(code, code.Message())
}

// NewValidationError 字段级校验错误
func NewValidationError(field, message string) *AppError {
	return New(CodeInvalidParams, message).
		WithMetadata("field", field)
}

// NewFieldErrors 多字段校验错误，fields 为 字段 -> 消息
func NewFieldErrors(message string, fields []FieldError) *AppError {
	appErr := New(CodeInvalidParams, message)
	if len(fields) > 0 {
		appErr.WithMetadata("fields", fields)
	}
	return appErr
}

// FieldError 单个字段的校验结果
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

func NewCacheError(operation string, err error) *AppError {
	appErr := FromCode(CodeCacheError).
		WithMetadata("cache_operation", operation)
	appErr.Err = err
	return appErr
}

func NewPaymentProviderError(operation string, err error) *AppError {
	appErr := FromCode(CodePaymentProviderError).
		WithMetadata("payment_operation", operation)
	appErr.Err = err
	return appErr
}

// Wrap 包装标准错误为 AppError，已是 AppError 时原样返回
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return NewWithError(code, message, err)
}

// As 提取错误链中的 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode 判断错误链中是否包含指定错误码
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// ==================== Kratos 认证服务专用错误 ====================

// NewKratosError 创建 Kratos 服务错误
func NewKratosError(operation string, err error) *AppError {
	appErr := FromCode(CodeKratosError).
		WithMetadata("kratos_operation", operation)
	appErr.Err = err
	return appErr
}

// NewKratosAPIError 创建 Kratos API 错误（带状态码）
func NewKratosAPIError(operation string, statusCode int) *AppError {
	return FromCode(CodeKratosError).
		WithMetadata("kratos_operation", operation).
		WithMetadata("status_code", statusCode)
}

// NewKratosErrorFromMessage 从 Kratos 错误消息创建 AppError
func NewKratosErrorFromMessage(operation string, kratosErrorMsg string, originalErr error) *AppError {
	code, message := TranslateKratosErrorText(kratosErrorMsg)

	appErr := New(code, message)
	appErr.Err = originalErr

	return appErr.
		WithMetadata("kratos_operation", operation).
		WithMetadata("kratos_error_text", kratosErrorMsg)
}

// NewKratosErrorFromID 从 Kratos UI 消息 ID 创建 AppError
func NewKratosErrorFromID(operation string, kratosErrorID int, originalErr error) *AppError {
	code, message := TranslateKratosError(kratosErrorID)

	appErr := New(code, message)
	appErr.Err = originalErr
	appErr.Retryable = IsRetryableKratosError(kratosErrorID)

	return appErr.
		WithMetadata("kratos_operation", operation).
		WithMetadata("kratos_error_id", kratosErrorID)
}
