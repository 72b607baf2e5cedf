package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "Python developer",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "Skills",
			limit:  10,
			expect: "Skills",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "Requirements: Go",
			limit:  5,
			expect: "Requi...",
		},
		{
			name:   "flattens line breaks",
			input:  "  Built API\n\n- Led team  ",
			limit:  40,
			expect: "Built API - Led team",
		},
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

func TestWaitFor(t *testing.T) {
	orig := sleep
	t.Cleanup(func() { sleep = orig })

	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error for zero wait: %v", err)
	}
	if slept != 0 {
		t.Fatalf("expected no sleep for zero wait, got %s", slept)
	}

	if err := WaitFor(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != time.Second {
		t.Fatalf("expected to sleep 1s, got %s", slept)
	}

	block := make(chan struct{})
	finished := make(chan struct{})
	sleep = func(time.Duration) {
		<-block
		close(finished)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(block)
	<-finished
}
