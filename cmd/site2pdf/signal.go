package main

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/charmbracelet/log"
)

// exitProcess is replaced in tests.
var exitProcess = os.Exit

// notifyContext returns a context canceled by the first shutdown signal.
// In-flight documents then finish as cancelled; a second signal exits
// immediately with ExitInterrupted. Call stop to release the handler.
func notifyContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, shutdownSignals...)
	done := make(chan struct{})

	go watchSignals(sigs, done, cancel, logger, exitProcess)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(done)
			cancel()
		})
	}
	return ctx, stop
}

func watchSignals(sigs <-chan os.Signal, done <-chan struct{}, cancel context.CancelFunc, logger *log.Logger, exit func(int)) {
	select {
	case sig := <-sigs:
		logger.Warn("stopping, press Ctrl-C again to abort", "signal", sig)
		cancel()
	case <-done:
		return
	}

	select {
	case sig := <-sigs:
		logger.Error("aborted", "signal", sig)
		exit(ExitInterrupted)
	case <-done:
	}
}
