// Package stream implements the consumer side of the platform's streaming
// responses: newline-delimited frames of the form "data: <json>" read
// incrementally from an HTTP response body. The convention is a simplified
// Server-Sent-Events framing: no event types, IDs, or retry fields are
// recognized, only the data prefix.
package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// framePrefix marks the lines that carry event payloads. Only lines with
// this exact prefix (space included) are parsed; every other line is
// passed over silently.
const framePrefix = "data: "

const (
	initialLineBuffer = 64 * 1024
	maxLineBuffer     = 1024 * 1024
)

// Reader consumes a streaming response body incrementally and yields parsed
// Events in arrival order. Partial lines are buffered across reads, so a
// frame split between two transport chunks, even mid-rune, parses the
// same as one delivered whole.
//
// A Reader owns its source exclusively. It is not safe for concurrent use;
// create one Reader per response body and discard it when the stream ends.
type Reader struct {
	scanner  *bufio.Scanner
	tee      io.Writer
	warn     func(line string, err error)
	warnings int
	terminal error
}

// NewReader returns a Reader consuming src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	return newReader(src, newOptions(opts))
}

func newReader(src io.Reader, o *options) *Reader {
	initial := initialLineBuffer
	if o.maxLineBytes < initial {
		initial = o.maxLineBytes
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initial), o.maxLineBytes)

	return &Reader{
		scanner: scanner,
		tee:     o.tee,
		warn:    o.warn,
	}
}

// Next returns the next parsed event. It blocks until a frame is available,
// the stream completes, or the transport fails. This is the loop's only
// suspension point.
//
// On completion Next returns io.EOF; on transport failure it returns the
// underlying error. Both results are terminal: every later call returns
// the same value, and the stream is never retried or resumed. Frames
// received before a transport failure are still delivered, in order,
// before the failure surfaces.
//
// A frame whose payload is not valid JSON is skipped: the warning hook
// fires once for it, the warning counter increments, and consumption
// continues with the next line. A final unterminated frame at end of
// stream is processed before completion is reported.
func (r *Reader) Next() (*Event, error) {
	if r.terminal != nil {
		return nil, r.terminal
	}

	for r.scanner.Scan() {
		raw := r.scanner.Text()

		if r.tee != nil {
			// Scan strips the newline, so reinsert it for the verbatim copy.
			if _, err := io.WriteString(r.tee, raw+"\n"); err != nil {
				r.terminal = err
				return nil, err
			}
		}

		payload, ok := strings.CutPrefix(raw, framePrefix)
		if !ok {
			continue
		}

		var data json.RawMessage
		if err := json.Unmarshal([]byte(payload), &data); err != nil {
			r.warnings++
			if r.warn != nil {
				r.warn(raw, err)
			}
			continue
		}

		return &Event{Data: data}, nil
	}

	if err := r.scanner.Err(); err != nil {
		r.terminal = err
		return nil, err
	}

	r.terminal = io.EOF
	return nil, io.EOF
}

// Warnings reports how many malformed frames have been skipped so far.
func (r *Reader) Warnings() int {
	return r.warnings
}
