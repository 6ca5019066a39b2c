package runtime

import (
	"context"
	"os/signal"
	"syscall"
)

// SignalContext is the root context of the process; it ends on SIGINT
// or SIGTERM so every worker shuts down together.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
