package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/placeshare-backend/internal/platform/ctxutil"
)

func traceRouter(seen **ctxutil.Trace, before ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(before...)
	r.Use(RequestTrace())
	r.GET("/api/places/:pid", func(c *gin.Context) {
		*seen = ctxutil.TraceFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestTraceKeepsClientRequestID(t *testing.T) {
	var seen *ctxutil.Trace
	r := traceRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/api/places/p1", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID == "" {
		t.Fatalf("trace: got=%+v", seen)
	}
	if rec.Header().Get("X-Request-Id") != "req-1" || rec.Header().Get("X-Trace-Id") != seen.TraceID {
		t.Fatalf("headers: got=%v", rec.Header())
	}
}

func TestRequestTraceReplacesUnsafeRequestID(t *testing.T) {
	cases := []string{
		"req 1\" injected=true",
		strings.Repeat("a", maxRequestIDLen+1),
		"ünïcode",
	}
	for _, raw := range cases {
		var seen *ctxutil.Trace
		r := traceRouter(&seen)
		req := httptest.NewRequest(http.MethodGet, "/api/places/p1", nil)
		req.Header.Set("X-Request-Id", raw)
		r.ServeHTTP(httptest.NewRecorder(), req)
		if seen == nil || seen.RequestID == raw || !validRequestID(seen.RequestID) {
			t.Fatalf("request id %q: got=%+v", raw, seen)
		}
	}
}

func TestRequestTracePrefersSpanTraceID(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03},
		SpanID:     trace.SpanID{0x04},
		TraceFlags: trace.FlagsSampled,
	})
	withSpan := func(c *gin.Context) {
		c.Request = c.Request.WithContext(trace.ContextWithSpanContext(context.Background(), sc))
		c.Next()
	}
	var seen *ctxutil.Trace
	r := traceRouter(&seen, withSpan)

	req := httptest.NewRequest(http.MethodGet, "/api/places/p1", nil)
	req.Header.Set("X-Trace-Id", "client-trace")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if seen == nil || seen.TraceID != sc.TraceID().String() {
		t.Fatalf("trace id: want=%s got=%+v", sc.TraceID(), seen)
	}
}
