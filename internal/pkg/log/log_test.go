package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"onboard-pay/internal/pkg/ctxkey"
	"onboard-pay/internal/pkg/xerrors"

	"github.com/stretchr/testify/assert"
)

func TestContextHandler_AddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, slog.LevelDebug, "production")
	t.Cleanup(func() { Init(slog.LevelInfo, "development") })

	ctx := ctxkey.WithValue(context.Background(), ctxkey.TraceID, "trace-123")
	InfoContext(ctx, "hello", String("k", "v"))

	out := buf.String()
	assert.Contains(t, out, `"trace_id":"trace-123"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestLogAppError_UsesLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, slog.LevelDebug, "production")
	t.Cleanup(func() { Init(slog.LevelInfo, "development") })

	LogAppError(context.Background(), "otp rejected", xerrors.FromCode(xerrors.CodeOTPInvalid))
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	buf.Reset()
	LogAppError(context.Background(), "kratos down", xerrors.FromCode(xerrors.CodeKratosError))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
