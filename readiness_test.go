package site2pdf

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestContentSnapshot_Settled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap ContentSnapshot
		want bool
	}{
		{"static page", ContentSnapshot{}, true},
		{"all svgs drawn", ContentSnapshot{SVGs: 3}, true},
		{"empty svg", ContentSnapshot{SVGs: 3, EmptySVGs: 1}, false},
		{"svgs drawn but spinner visible", ContentSnapshot{SVGs: 2, Placeholders: 1}, false},
		{"cells filled", ContentSnapshot{Cells: 4}, true},
		{"empty cell", ContentSnapshot{Cells: 4, EmptyCells: 2}, false},
		{"svgs take precedence over cells", ContentSnapshot{SVGs: 1, Cells: 2, EmptyCells: 2}, true},
		{"placeholder alone does not block static page", ContentSnapshot{Placeholders: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.snap.Settled(); got != tt.want {
				t.Errorf("Settled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadiness_String(t *testing.T) {
	t.Parallel()

	for r, want := range map[Readiness]string{Waiting: "waiting", Ready: "ready", Degraded: "degraded"} {
		if got := r.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", r, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestReadinessGate_Await - Polling and deadlines
// ---------------------------------------------------------------------------

func fastRules() WaitRules {
	return WaitRules{
		WaitForSVGs:  true,
		Timeout:      Duration{150 * time.Millisecond},
		ImageTimeout: Duration{80 * time.Millisecond},
		PollInterval: Duration{5 * time.Millisecond},
	}
}

func TestReadinessGate_Await_ReadyAfterPolling(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	sess := &fakeSession{snapshot: func() (string, error) {
		if calls.Add(1) < 3 {
			return `{"svgs":2,"emptySvgs":1}`, nil
		}
		return settledSnapshot, nil
	}}

	state, err := NewReadinessGate(fastRules(), nil).Await(context.Background(), sess)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if state != Ready {
		t.Errorf("Await() = %v, want ready", state)
	}
	if calls.Load() < 3 {
		t.Errorf("snapshot polled %d times, want at least 3", calls.Load())
	}
}

func TestReadinessGate_Await_NeverSettles(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{snapshot: func() (string, error) {
		return `{"svgs":1,"emptySvgs":1}`, nil
	}}
	rules := fastRules()

	start := time.Now()
	state, err := NewReadinessGate(rules, nil).Await(context.Background(), sess)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Await() error = %v, want nil on deadline", err)
	}
	if state != Degraded {
		t.Errorf("Await() = %v, want degraded", state)
	}
	if elapsed < rules.Timeout.Duration {
		t.Errorf("returned after %v, before the %v deadline", elapsed, rules.Timeout.Duration)
	}
	if elapsed > rules.Timeout.Duration+time.Second {
		t.Errorf("returned after %v, far past the %v deadline", elapsed, rules.Timeout.Duration)
	}
}

func TestReadinessGate_Await_EvalErrorsDegrade(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{evalErr: map[string]error{snapshotJS: errFake}}

	state, err := NewReadinessGate(fastRules(), nil).Await(context.Background(), sess)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if state != Degraded {
		t.Errorf("Await() = %v, want degraded", state)
	}
}

func TestReadinessGate_Await_Cancelled(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{snapshot: func() (string, error) {
		return `{"svgs":1,"emptySvgs":1}`, nil
	}}
	rules := fastRules()
	rules.Timeout = Duration{10 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := NewReadinessGate(rules, nil).Await(ctx, sess)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Await() error = %v, want context deadline", err)
	}
}

func TestReadinessGate_Await_Images(t *testing.T) {
	t.Parallel()

	t.Run("pending images degrade", func(t *testing.T) {
		t.Parallel()

		sess := &fakeSession{snapshot: func() (string, error) {
			return `{"images":2,"pendingImages":1}`, nil
		}}
		rules := fastRules()
		rules.WaitForImages = true

		state, err := NewReadinessGate(rules, nil).Await(context.Background(), sess)
		if err != nil {
			t.Fatal(err)
		}
		if state != Degraded {
			t.Errorf("Await() = %v, want degraded", state)
		}
	})

	t.Run("loaded images ready", func(t *testing.T) {
		t.Parallel()

		rules := fastRules()
		rules.WaitForImages = true

		state, err := NewReadinessGate(rules, nil).Await(context.Background(), &fakeSession{})
		if err != nil {
			t.Fatal(err)
		}
		if state != Ready {
			t.Errorf("Await() = %v, want ready", state)
		}
	})
}

func TestReadinessGate_Await_Disabled(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{}
	state, err := NewReadinessGate(WaitRules{}, nil).Await(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if state != Ready {
		t.Errorf("Await() = %v, want ready", state)
	}
	if sess.evaluated(snapshotJS) {
		t.Error("snapshot should not be evaluated when waiting is disabled")
	}
}

func TestReadinessGate_Await_AdditionalWait(t *testing.T) {
	t.Parallel()

	rules := WaitRules{AdditionalWaitTime: Duration{40 * time.Millisecond}}

	start := time.Now()
	state, err := NewReadinessGate(rules, nil).Await(context.Background(), &fakeSession{})
	if err != nil {
		t.Fatal(err)
	}
	if state != Ready {
		t.Errorf("Await() = %v, want ready", state)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("returned after %v, want at least the additional wait", elapsed)
	}
}

func TestReadinessGate_PassesSelectors(t *testing.T) {
	t.Parallel()

	rules := fastRules()
	rules.PlaceholderSelector = ".busy"
	rules.CellSelector = ".nb-cell"
	sess := &fakeSession{}

	if _, err := NewReadinessGate(rules, nil).Await(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.args) == 0 || len(sess.args[0]) != 2 {
		t.Fatalf("snapshot args = %v", sess.args)
	}
	if sess.args[0][0] != ".busy" || sess.args[0][1] != ".nb-cell" {
		t.Errorf("snapshot args = %v, want selectors", sess.args[0])
	}
}
