package stream

import (
	"io"
	"time"
)

// Option configures a Reader or a Consume loop.
type Option func(*options)

type options struct {
	warn         func(line string, err error)
	tee          io.Writer
	maxLineBytes int
	idleTimeout  time.Duration
}

func newOptions(opts []Option) *options {
	o := &options{
		maxLineBytes: maxLineBuffer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithWarningFunc registers fn to run once for each frame whose payload
// fails to parse as JSON. The offending line and the parse error are
// passed through. Warnings are diagnostic only; they never terminate the
// stream.
func WithWarningFunc(fn func(line string, err error)) Option {
	return func(o *options) {
		o.warn = fn
	}
}

// WithTee mirrors every raw line, newline restored, to w as the stream is
// consumed. A tee write failure terminates the stream with that error.
func WithTee(w io.Writer) Option {
	return func(o *options) {
		o.tee = w
	}
}

// WithMaxLineBytes overrides the per-line capacity (default 1MiB). A line
// exceeding it terminates the stream with bufio.ErrTooLong.
func WithMaxLineBytes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineBytes = n
		}
	}
}

// WithIdleTimeout makes a Consume loop abort with ErrIdleTimeout when the
// transport delivers no bytes for d. It guards against a stalled connection
// that never completes or errors. It has no effect on a bare Reader.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.idleTimeout = d
	}
}
