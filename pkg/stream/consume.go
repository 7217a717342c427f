package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrIdleTimeout reports that a stream stalled: the transport delivered no
// bytes within the configured idle window.
var ErrIdleTimeout = errors.New("stream: idle timeout")

// Consume drives a Reader over body until the stream ends, calling fn once
// per event in arrival order. The body is closed on every exit path
// (normal completion, transport error, callback error, context
// cancellation, idle timeout), so the underlying connection is always
// released.
//
// Consume returns nil on completion, the context's cause on cancellation,
// ErrIdleTimeout when the WithIdleTimeout window lapses, the transport
// error on stream failure, or fn's error when the callback aborts the loop.
func Consume(ctx context.Context, body io.ReadCloser, fn func(*Event) error, opts ...Option) error {
	o := newOptions(opts)

	g := newGuard(body, o.idleTimeout)
	defer g.Close()

	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			g.abort(context.Cause(ctx))
		case <-watchDone:
		}
	}()

	r := newReader(g, o)
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// A forced close surfaces as a read error on the body; report
			// the reason the guard closed it instead.
			if cause := g.cause(); cause != nil {
				return cause
			}
			return err
		}

		if err := context.Cause(ctx); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

// guard wraps the response body with the release and abort machinery: it
// owns the idle timer and maps a forced close back to its cause.
type guard struct {
	rc   io.ReadCloser
	idle time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	closed   bool
	abortErr error
}

func newGuard(rc io.ReadCloser, idle time.Duration) *guard {
	return &guard{rc: rc, idle: idle}
}

func (g *guard) Read(p []byte) (int, error) {
	g.touch()
	return g.rc.Read(p)
}

// touch re-arms the idle timer ahead of a blocking read.
func (g *guard) touch() {
	if g.idle <= 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	if g.timer == nil {
		g.timer = time.AfterFunc(g.idle, func() {
			g.abort(ErrIdleTimeout)
		})
		return
	}
	g.timer.Reset(g.idle)
}

// abort force-closes the body so a blocked read unwinds, recording why.
func (g *guard) abort(err error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.abortErr = err
	if g.timer != nil {
		g.timer.Stop()
	}
	g.mu.Unlock()

	g.rc.Close()
}

func (g *guard) cause() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.abortErr
}

func (g *guard) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	if g.timer != nil {
		g.timer.Stop()
	}
	g.mu.Unlock()

	return g.rc.Close()
}
