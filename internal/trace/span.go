package trace

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

var globalSpans uint64

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 {
	return atomic.AddUint64(&globalSpans, 1)
}

// Span tracks one logical operation between Begin and End.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin starts a new span and emits SpanBegin. parent is 0 for root spans.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(KindSpanBegin, scope) {
		return &Span{tracer: Nop, started: time.Now()}
	}

	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// Start begins a span using the tracer and parent span found in ctx,
// and returns a context carrying the new span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx))
	if s.id == 0 {
		return ctx, s
	}
	return WithSpan(ctx, s), s
}

// End emits SpanEnd and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	dur := time.Since(s.started)
	if s.tracer == nil || !s.tracer.Enabled() {
		return dur
	}
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  dur,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under the span found in ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() {
		return
	}
	t.Emit(&Event{Kind: KindPoint, Scope: scope, ParentID: CurrentSpan(ctx), Name: name, Detail: detail})
}

// Logf emits a formatted point event.
func Logf(ctx context.Context, scope Scope, name, format string, args ...any) {
	if !FromContext(ctx).Enabled() {
		return
	}
	Point(ctx, scope, name, fmt.Sprintf(format, args...))
}

// Error emits a failure event; it passes every level except off.
func Error(ctx context.Context, scope Scope, name string, err error) {
	t := FromContext(ctx)
	if !t.Enabled() || err == nil {
		return
	}
	t.Emit(&Event{Kind: KindError, Scope: scope, ParentID: CurrentSpan(ctx), Name: name, Detail: err.Error()})
}
