package context

import "context"

// TraceContext identifies one request across log lines and spans.
// Populated by the HTTP trace middleware from incoming headers.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceKey struct{}

// WithTrace returns a context carrying the trace.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

// GetTrace returns the trace carried by ctx, or nil outside a request.
func GetTrace(ctx context.Context) *TraceContext {
	t, _ := ctx.Value(traceKey{}).(*TraceContext)
	return t
}
