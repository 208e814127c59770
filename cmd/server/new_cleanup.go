package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner abstracts the telemetry providers so tests can verify cleanup
// ordering without real exporters.
type shutdowner interface {
	Shutdown(context.Context) error
}

type shutdownFunc func(context.Context) error

func (f shutdownFunc) Shutdown(ctx context.Context) error { return f(ctx) }

// newCleanup constructs the shutdown hook: close the store, then flush
// telemetry within telemetryFlushTimeout.
func newCleanup(ctx context.Context, telemetry shutdowner, store io.Closer) func() {
	return func() {
		if store != nil {
			if err := store.Close(); err != nil {
				slog.Error("failed to close store", slog.String("error", err.Error()))
			}
		}

		if telemetry != nil {
			flushCtx, cancel := context.WithTimeout(ctx, telemetryFlushTimeout)
			defer cancel()
			if err := telemetry.Shutdown(flushCtx); err != nil {
				slog.Error("failed to shut down telemetry", slog.String("error", err.Error()))
			}
		}
	}
}
