package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type permanentErr struct{ msg string }

func (e *permanentErr) Error() string   { return e.msg }
func (e *permanentErr) Permanent() bool { return true }

type transientErr struct{ msg string }

func (e *transientErr) Error() string   { return e.msg }
func (e *transientErr) Permanent() bool { return false }

func recording(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Sleep = recording(&delays)

	calls := 0
	err := Do(context.Background(), cfg, nil, func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 || len(delays) != 0 {
		t.Errorf("calls = %d, delays = %v", calls, delays)
	}
}

func TestDoRetriesWithBackoff(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Sleep = recording(&delays)

	calls := 0
	err := Do(context.Background(), cfg, nil, func(context.Context) error {
		calls++
		if calls < 3 {
			return &transientErr{"flaky"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(delays) != 2 || delays[0] != want[0] || delays[1] != want[1] {
		t.Errorf("delays = %v, want %v", delays, want)
	}
}

func TestDoReturnsLastErrorUnchanged(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Sleep = recording(&delays)

	last := &transientErr{"still failing"}
	calls := 0
	err := Do(context.Background(), cfg, nil, func(context.Context) error {
		calls++
		return last
	})
	if err != last {
		t.Errorf("err = %v, want the last attempt's error identity", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// No sleep after the final attempt.
	if len(delays) != 2 {
		t.Errorf("delays = %v, want 2 waits", delays)
	}
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Sleep = recording(&delays)

	perm := &permanentErr{"gone"}
	calls := 0
	err := Do(context.Background(), cfg, nil, func(context.Context) error {
		calls++
		return perm
	})
	if err != perm {
		t.Errorf("err = %v", err)
	}
	if calls != 1 || len(delays) != 0 {
		t.Errorf("calls = %d, delays = %v", calls, delays)
	}
}

func TestDoCustomClassifier(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Sleep = recording(&delays)

	sentinel := errors.New("special")
	calls := 0
	err := Do(context.Background(), cfg, func(err error) bool {
		return !errors.Is(err, sentinel)
	}, func(context.Context) error {
		calls++
		return sentinel
	})
	if err != sentinel || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestDoContextCanceledDuringSleep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	calls := 0
	err := Do(context.Background(), cfg, nil, func(context.Context) error {
		calls++
		return &transientErr{"flaky"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("boom"), true},
		{"transient tagged", &transientErr{"x"}, true},
		{"permanent tagged", &permanentErr{"x"}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable = %v, want %v", got, tt.want)
			}
		})
	}
}
