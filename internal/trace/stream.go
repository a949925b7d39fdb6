package trace

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var globalSeq uint64

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return atomic.AddUint64(&globalSeq, 1)
}

// StreamTracer writes events immediately to an io.Writer.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	start  time.Time
}

// NewStreamTracer creates a new StreamTracer.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format, start: time.Now()}
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	data := FormatEvent(ev, t.format, t.start)

	t.mu.Lock()
	defer t.mu.Unlock()
	// ошибки записи трассы не должны ломать основную работу
	_, _ = t.w.Write(data) //nolint:errcheck
}

// Flush calls Flush on the writer when it has one.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Level returns the current tracing level.
func (t *StreamTracer) Level() Level { return t.level }

// Enabled returns true if tracing is active.
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
