package util

import "testing"

func TestBufferPool(t *testing.T) {
	pool := NewBufferPool(1024)

	b := pool.Get()
	if len(b) != 1024 {
		t.Fatalf("buffer length = %d; want 1024", len(b))
	}

	// Write sensitive-looking data, return, and get again
	for i := range b {
		b[i] = 0xAA
	}
	pool.Put(b)

	b2 := pool.Get()
	for i, v := range b2 {
		if v != 0 {
			t.Fatalf("buffer not zeroed at index %d: %#x", i, v)
		}
	}
}

func TestBufferPoolRejectsMismatched(t *testing.T) {
	pool := NewBufferPool(64)
	// Must not panic or pollute the pool
	pool.Put(make([]byte, 32))

	b := pool.Get()
	if len(b) != 64 {
		t.Errorf("buffer length = %d; want 64", len(b))
	}
}

func TestMiBPool(t *testing.T) {
	b := GetMiBBuffer()
	if len(b) != MiB {
		t.Fatalf("buffer length = %d; want %d", len(b), MiB)
	}
	PutMiBBuffer(b)
}
