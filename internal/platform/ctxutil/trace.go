package ctxutil

import "context"

type traceKey struct{}

// Trace ties one API request to its log lines and response headers.
type Trace struct {
	TraceID   string
	RequestID string
}

func WithTrace(ctx context.Context, tr *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, tr)
}

// TraceFrom returns the request trace, or nil outside an API request.
func TraceFrom(ctx context.Context) *Trace {
	if ctx == nil {
		return nil
	}
	tr, _ := ctx.Value(traceKey{}).(*Trace)
	return tr
}

// LogFields renders the trace as logger key/value pairs, skipping blanks.
// A nil trace yields no fields.
func (t *Trace) LogFields() []any {
	if t == nil {
		return nil
	}
	fields := make([]any, 0, 4)
	if t.TraceID != "" {
		fields = append(fields, "trace_id", t.TraceID)
	}
	if t.RequestID != "" {
		fields = append(fields, "request_id", t.RequestID)
	}
	return fields
}
