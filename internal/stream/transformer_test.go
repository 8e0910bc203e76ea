package stream

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"filevault/internal/errors"
	"filevault/internal/util"
)

func TestIdentityCopy(t *testing.T) {
	input := make([]byte, 3*util.MiB+123)
	if _, err := rand.Read(input); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	tr := New(Options{Codec: Identity{}, Total: int64(len(input))})
	n, err := tr.Run(bytes.NewReader(input), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != int64(len(input)) {
		t.Errorf("written = %d, want %d", n, len(input))
	}
	if !bytes.Equal(out.Bytes(), input) {
		t.Error("output does not match input")
	}
}

func TestProgressContract(t *testing.T) {
	input := make([]byte, 10*util.MiB)
	if _, err := rand.Read(input); err != nil {
		t.Fatal(err)
	}

	var fractions []float64
	tr := New(Options{
		Codec: Identity{},
		Total: int64(len(input)),
		Progress: func(f float64, _ string) {
			fractions = append(fractions, f)
		},
	})
	if _, err := tr.Run(bytes.NewReader(input), io.Discard); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fractions) < 3 {
		t.Fatalf("expected multiple progress reports, got %d", len(fractions))
	}
	if fractions[0] != 0.1 {
		t.Errorf("first report = %f, want 0.1", fractions[0])
	}
	ones := 0
	for i, f := range fractions {
		if f < 0 || f > 1 {
			t.Errorf("report %d = %f, outside [0, 1]", i, f)
		}
		if i > 0 && f < fractions[i-1] {
			t.Errorf("report %d = %f decreased from %f", i, f, fractions[i-1])
		}
		if f == 1.0 {
			ones++
		}
	}
	if ones != 1 {
		t.Errorf("saw %d reports of exactly 1.0, want 1", ones)
	}
	if fractions[len(fractions)-1] != 1.0 {
		t.Errorf("final report = %f, want 1.0", fractions[len(fractions)-1])
	}
}

func TestCancellation(t *testing.T) {
	input := make([]byte, 5*util.MiB)

	chunks := 0
	var out bytes.Buffer
	tr := New(Options{
		Codec: Identity{},
		Total: int64(len(input)),
		Cancel: func() bool {
			chunks++
			return chunks > 2
		},
	})
	_, err := tr.Run(bytes.NewReader(input), &out)
	if !errors.IsCancelled(err) {
		t.Fatalf("err = %v, want cancelled", err)
	}
	if out.Len() >= len(input) {
		t.Error("cancellation should stop the transform before completion")
	}
}

type failingWriter struct {
	limit int
	n     int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	if w.n > w.limit {
		return 0, io.ErrClosedPipe
	}
	return len(p), nil
}

func TestWriterFailure(t *testing.T) {
	input := make([]byte, 4*util.MiB)
	tr := New(Options{Codec: Identity{}, Total: int64(len(input))})
	_, err := tr.Run(bytes.NewReader(input), &failingWriter{limit: util.MiB})
	if err == nil {
		t.Fatal("expected error from failing writer")
	}
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("err = %v, want wrapped ErrClosedPipe", err)
	}
}

// appendCodec buffers everything and emits it on Finalize, exercising the
// final-flush write path.
type appendCodec struct {
	buf []byte
}

func (c *appendCodec) Transform(p []byte) ([]byte, error) {
	c.buf = append(c.buf, p...)
	return nil, nil
}

func (c *appendCodec) Finalize() ([]byte, error) {
	return c.buf, nil
}

func TestFinalizeOutput(t *testing.T) {
	input := []byte("held back until finalize")
	var out bytes.Buffer
	tr := New(Options{Codec: &appendCodec{}, Total: int64(len(input))})
	n, err := tr.Run(bytes.NewReader(input), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != int64(len(input)) {
		t.Errorf("written = %d, want %d", n, len(input))
	}
	if !bytes.Equal(out.Bytes(), input) {
		t.Error("finalize output does not match input")
	}
}

func TestUnknownTotalStatus(t *testing.T) {
	input := make([]byte, 2*util.MiB)
	var statuses []string
	tr := New(Options{
		Codec: Identity{},
		Verb:  "Copying",
		Status: func(s string) {
			statuses = append(statuses, s)
		},
	})
	if _, err := tr.Run(bytes.NewReader(input), io.Discard); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(statuses) == 0 {
		t.Fatal("expected status updates with unknown total")
	}
}
