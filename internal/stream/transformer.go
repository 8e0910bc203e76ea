// Package stream drives chunked read-transform-write loops between byte
// streams. It moves data through a codec in fixed 1 MiB chunks, reporting
// fractional progress and honoring cooperative cancellation at chunk
// boundaries.
//
// The transform loop performs blocking I/O; callers run each invocation on a
// worker goroutine and keep the progress callbacks non-blocking. One
// Transformer serves one stream pair at a time.
package stream

import (
	"fmt"
	"io"
	"time"

	"filevault/internal/errors"
	"filevault/internal/util"
)

// ChunkSize is the fixed transform chunk size.
const ChunkSize = util.MiB

// Codec transforms a byte stream incrementally. Transform accepts successive
// chunks of arbitrary size; Finalize flushes whatever the codec buffered.
type Codec interface {
	Transform(p []byte) ([]byte, error)
	Finalize() ([]byte, error)
}

// Identity is a pass-through Codec for loops that only need the chunked
// progress/cancellation machinery around an already-transforming stream.
type Identity struct{}

// Transform returns the chunk unchanged.
func (Identity) Transform(p []byte) ([]byte, error) { return p, nil }

// Finalize has nothing buffered to flush.
func (Identity) Finalize() ([]byte, error) { return nil, nil }

// Options configures one transform run.
type Options struct {
	Codec Codec

	// Total is the expected input size in bytes, used for progress
	// fractions. Zero or negative means unknown.
	Total int64

	// Verb names the operation in status text, e.g. "Encrypting".
	Verb string

	Progress func(fraction float64, info string)
	Status   func(text string)
	Cancel   func() bool
}

// Transformer runs chunked transforms with monotonically non-decreasing
// progress reporting.
type Transformer struct {
	opts Options
	last float64
}

// New creates a Transformer for the given options.
func New(opts Options) *Transformer {
	return &Transformer{opts: opts}
}

// report emits a progress fraction, clamped so the sequence observed by the
// callback never decreases within one run.
func (t *Transformer) report(fraction float64, info string) {
	if t.opts.Progress == nil {
		return
	}
	if fraction < t.last {
		fraction = t.last
	}
	t.last = fraction
	t.opts.Progress(fraction, info)
}

func (t *Transformer) status(text string) {
	if t.opts.Status != nil {
		t.opts.Status(text)
	}
}

func (t *Transformer) cancelled() bool {
	return t.opts.Cancel != nil && t.opts.Cancel()
}

// Run pulls chunks from r, pushes each through the codec, and writes the
// transformed bytes to w, finishing with the codec's Finalize output.
// Returns the number of transformed bytes written.
//
// Progress is reported near the start (0.1), after every chunk, and exactly
// once at 1.0 on completion. Cancellation is checked before each chunk's
// write commits; on cancellation the loop stops without writing further
// output and performs no cleanup of the destination - that is the caller's
// responsibility. Read and write failures propagate immediately, without
// retry.
func (t *Transformer) Run(r io.Reader, w io.Writer) (int64, error) {
	t.last = 0
	t.report(0.1, "starting")

	buf := util.GetMiBBuffer()
	defer util.PutMiBBuffer(buf)

	start := time.Now()
	var done, written int64

	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			out, err := t.opts.Codec.Transform(buf[:n])
			if err != nil {
				return written, err
			}

			if t.cancelled() {
				return written, errors.ErrCancelled
			}

			if len(out) > 0 {
				m, err := w.Write(out)
				written += int64(m)
				if err != nil {
					return written, errors.Wrap(err, "write transformed chunk")
				}
			}

			done += int64(n)
			t.reportChunk(done, start)
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, errors.Wrap(readErr, "read input")
		}
	}

	if t.cancelled() {
		return written, errors.ErrCancelled
	}

	final, err := t.opts.Codec.Finalize()
	if err != nil {
		return written, err
	}
	if len(final) > 0 {
		m, err := w.Write(final)
		written += int64(m)
		if err != nil {
			return written, errors.Wrap(err, "write final block")
		}
	}

	t.report(1.0, "100.00%")
	return written, nil
}

// reportChunk converts byte counts into a progress fraction plus speed and
// ETA status text. Mid-stream fractions are held just under 1.0 so that the
// completion report is the only 1.0 the callback ever sees.
func (t *Transformer) reportChunk(done int64, start time.Time) {
	if t.opts.Total <= 0 {
		t.status(fmt.Sprintf("%s %s...", t.verb(), util.Sizeify(done)))
		return
	}

	progress, speed, eta := util.Statify(done, t.opts.Total, start)
	if progress >= 1 {
		progress = 0.999
	}
	t.report(progress, fmt.Sprintf("%.2f%%", progress*100))
	t.status(fmt.Sprintf("%s at %.2f MiB/s (ETA: %s)", t.verb(), speed, eta))
}

func (t *Transformer) verb() string {
	if t.opts.Verb == "" {
		return "Processing"
	}
	return t.opts.Verb
}
