// Package trace identifies a run of httpget and the requests within it, so that log lines from one run can be told apart.
// Nothing here goes on the wire: the client never sends headers beyond Host.
//
// Basic usage:
//
//	ctx = trace.SaveCtx(ctx, trace.New())
//	// ... later, per request:
//	t := trace.FromCtxOrNew(ctx)
//	reqID := t.NewRequestID()
package trace

import (
	"context"

	"github.com/google/uuid"
)

// New makes a new Trace with a freshly-generated TraceID.
func New() *Trace {
	return &Trace{TraceID: uuid.New()}
}

// Trace identifies a run. It holds no per-request state: a run of N requests doesn't grow it.
type Trace struct {
	TraceID  uuid.UUID `json:"trace_id,omitempty"`
	Requests int       `json:"requests,omitempty"` // request IDs handed out so far.
}

// NewRequestID generates an ID for the next request of the run. Only the count is kept on the trace.
func (t *Trace) NewRequestID() uuid.UUID {
	t.Requests++
	return uuid.New()
}

type ctxKey struct{}

// FromCtx retrieves a trace saved with SaveCtx, returning false if none was found. Most of the time, you want FromCtxOrNew.
func FromCtx(ctx context.Context) (*Trace, bool) {
	t, ok := ctx.Value(ctxKey{}).(*Trace)
	if !ok || t == nil {
		return nil, false
	}
	if t.TraceID == (uuid.UUID{}) {
		t.TraceID = uuid.New()
	}
	return t, true
}

// FromCtxOrNew retrieves a trace from the context, creating a new one if none was found.
func FromCtxOrNew(ctx context.Context) *Trace {
	if t, ok := FromCtx(ctx); ok {
		return t
	}
	return New()
}

// SaveCtx returns a new context with the trace, for retrieval with FromCtx.
func SaveCtx(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}
