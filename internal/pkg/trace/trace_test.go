package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestExtractFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "X-Trace-Id 优先",
			headers: map[string]string{"X-Trace-Id": "abc", "X-Request-Id": "def"},
			want:    "abc",
		},
		{
			name:    "回退到 X-Request-Id",
			headers: map[string]string{"X-Request-Id": "def"},
			want:    "def",
		},
		{
			name:    "W3C traceparent",
			headers: map[string]string{"Traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
			want:    "4bf92f3577b34da6a3ce929d0e0e4736",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, ExtractFromHeader(h))
		})
	}
}

func TestExtractFromHeader_Generates(t *testing.T) {
	id := ExtractFromHeader(http.Header{"Traceparent": []string{"garbage"}})
	assert.Len(t, id, 32)
}

func TestMiddleware_SetsResponseHeader(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())

	var seen string
	e.GET("/ping", func(c echo.Context) error {
		seen = GetTraceID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-Id", "trace-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "trace-1", seen)
	assert.Equal(t, "trace-1", rec.Header().Get("X-Trace-Id"))
}
