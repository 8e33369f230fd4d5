package sse

import (
	"context"
	"log/slog"
	"time"
)

// Pinger writes one keep-alive comment to an open stream
type Pinger interface {
	WriteKeepAlive() error
}

// KeepAlive pings w every interval until ctx ends or a ping fails.
// The returned channel closes when pinging stops; a failed ping means the
// client is gone.
func KeepAlive(ctx context.Context, w Pinger, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.WriteKeepAlive(); err != nil {
					logger.Debug("keep-alive failed, client gone", "error", err)
					return
				}
			}
		}
	}()

	return stopped
}
