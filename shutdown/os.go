package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vinayprograms/nodekit/logging"
)

// HandleSignals forwards SIGTERM and SIGINT to sc until ctx is done or the
// returned stop function is called. The first signal requests a graceful
// shutdown, every later one an emergency shutdown.
func HandleSignals(ctx context.Context, sc *Context, logger *logging.Logger) (stop func()) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	ctx, cancel := context.WithCancel(ctx)
	go relay(ctx, sc, sigCh, logger)

	return func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// relay turns received OS signals into shutdown requests.
func relay(ctx context.Context, sc *Context, sigCh <-chan os.Signal, logger *logging.Logger) {
	received := 0
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			received++
			kind := KindGraceful
			if received > 1 {
				kind = KindEmergency
			}
			logger.Warn("os_signal", map[string]interface{}{
				"signal": sig.String(),
				"kind":   string(kind),
			})

			// Requests run in the background so a full slot never stops the
			// relay from escalating on the next signal.
			go func(k Kind) {
				if k == KindGraceful {
					_ = sc.RequestShutdown(ctx)
				} else {
					_ = sc.RequestEmergencyShutdown(ctx)
				}
			}(kind)
		}
	}
}
