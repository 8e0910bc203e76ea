package util

import (
	"strings"
	"testing"
	"time"
)

func TestStatify(t *testing.T) {
	start := time.Now().Add(-2 * time.Second)

	progress, speed, eta := Statify(int64(MiB), int64(4*MiB), start)
	if progress < 0.24 || progress > 0.26 {
		t.Errorf("progress = %f; want ~0.25", progress)
	}
	if speed <= 0 {
		t.Errorf("speed = %f; want > 0", speed)
	}
	if len(eta) != 8 {
		t.Errorf("eta = %q; want HH:MM:SS format", eta)
	}
}

func TestStatifyZeroTotal(t *testing.T) {
	progress, speed, eta := Statify(100, 0, time.Now())
	if progress != 0 || speed != 0 || eta != "00:00:00" {
		t.Errorf("Statify(100, 0) = (%f, %f, %q); want zeros", progress, speed, eta)
	}
}

func TestStatifyCapsAtOne(t *testing.T) {
	start := time.Now().Add(-time.Second)
	progress, _, _ := Statify(200, 100, start)
	if progress > 1 {
		t.Errorf("progress = %f; want <= 1", progress)
	}
}

func TestTimeify(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
		{-5, "00:00:00"},
	}

	for _, tt := range tests {
		if got := Timeify(tt.seconds); got != tt.want {
			t.Errorf("Timeify(%d) = %q; want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSizeify(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "0.50 KiB"},
		{int64(MiB), "1.00 MiB"},
		{int64(GiB), "1.00 GiB"},
		{int64(TiB), "1.00 TiB"},
	}

	for _, tt := range tests {
		if got := Sizeify(tt.size); got != tt.want {
			t.Errorf("Sizeify(%d) = %q; want %q", tt.size, got, tt.want)
		}
	}
}

func TestGenPasswordBasic(t *testing.T) {
	pw, err := GenPassword(PassgenOptions{Length: 32, Upper: true, Lower: true, Numbers: true})
	if err != nil {
		t.Fatalf("GenPassword failed: %v", err)
	}
	if len(pw) != 32 {
		t.Errorf("password length = %d; want 32", len(pw))
	}

	// No character sets enabled
	pw, err = GenPassword(PassgenOptions{Length: 16})
	if err != nil || pw != "" {
		t.Errorf("GenPassword with no sets = (%q, %v); want empty", pw, err)
	}

	// Numbers only
	pw, err = GenPassword(PassgenOptions{Length: 10, Numbers: true})
	if err != nil {
		t.Fatalf("GenPassword failed: %v", err)
	}
	for _, c := range pw {
		if !strings.ContainsRune("1234567890", c) {
			t.Errorf("unexpected character %q in numbers-only password", c)
		}
	}
}
