package main

// Notes:
// - OS signal delivery is not exercised; watchSignals is driven through a
//   channel and a stubbed exit instead.

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("stop cancels", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background(), log.New(io.Discard))
		select {
		case <-ctx.Done():
			t.Fatal("context cancelled before stop")
		default:
		}
		stop()
		stop()
		if ctx.Err() == nil {
			t.Error("stop should cancel the context")
		}
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent, log.New(io.Discard))
		defer stop()

		cancel()
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("parent cancellation did not reach the child")
		}
	})
}

func TestWatchSignals(t *testing.T) {
	t.Parallel()

	t.Run("first signal cancels, second exits", func(t *testing.T) {
		t.Parallel()

		sigs := make(chan os.Signal, 2)
		done := make(chan struct{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		exited := make(chan int, 1)

		go watchSignals(sigs, done, cancel, log.New(io.Discard), func(code int) { exited <- code })

		sigs <- os.Interrupt
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("first signal did not cancel")
		}
		select {
		case code := <-exited:
			t.Fatalf("exited with %d after one signal", code)
		default:
		}

		sigs <- os.Interrupt
		select {
		case code := <-exited:
			if code != ExitInterrupted {
				t.Errorf("exit code = %d, want %d", code, ExitInterrupted)
			}
		case <-time.After(time.Second):
			t.Fatal("second signal did not exit")
		}
	})

	t.Run("done before any signal", func(t *testing.T) {
		t.Parallel()

		sigs := make(chan os.Signal, 1)
		done := make(chan struct{})
		finished := make(chan struct{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			watchSignals(sigs, done, cancel, log.New(io.Discard), func(int) { t.Error("unexpected exit") })
			close(finished)
		}()
		close(done)

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("watcher did not return after done")
		}
		if ctx.Err() != nil {
			t.Error("done must not be reported as a signal")
		}
	})
}
