package utils

import (
	"context"
	"testing"
	"time"
)

func TestWaitForZeroDuration(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestWaitForSleeps(t *testing.T) {
	var slept time.Duration
	orig := sleep
	sleep = func(d time.Duration) { slept = d }
	t.Cleanup(func() { sleep = orig })

	if err := WaitFor(context.Background(), 1500*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s sleep, got %s", slept)
	}
}

func TestWaitForCancelled(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	orig := sleep
	sleep = func(time.Duration) {
		close(entered)
		<-release
	}
	t.Cleanup(func() {
		close(release)
		sleep = orig
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-entered
		cancel()
	}()

	if err := WaitFor(ctx, time.Hour); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "b", "c"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "disabled", input: `{"resume_text": "Jane"}`, limit: 0, expect: ""},
		{name: "fits", input: `{"ok": true}`, limit: 20, expect: `{"ok": true}`},
		{name: "cut", input: `{"detail": "Failed to parse resume"}`, limit: 10, expect: `{"detail":...`},
		{name: "counts runes", input: "Привет, мир", limit: 6, expect: "Привет..."},
		{name: "trimmed first", input: "\n  body  \n", limit: 4, expect: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
