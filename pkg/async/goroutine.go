package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/propdocs/propdocs/pkg/observability"
)

// SafeGo runs fn in a goroutine with a timeout, panic recovery and error
// logging. Use it instead of a bare `go func()` for fire-and-forget work
// such as audit writes, where a failure must be logged but never propagate
// to the request.
//
// The child context is detached from the parent's cancellation: the work
// should finish even if the request that spawned it ends first.
func SafeGo(parentCtx context.Context, logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context) error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	requestID := observability.GetRequestID(parentCtx)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if requestID != "" {
			ctx = observability.WithRequestID(ctx, requestID)
		}

		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(map[string]interface{}{
					"task":  taskName,
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("panic in background task")
			}
		}()

		if err := fn(ctx); err != nil {
			logger.WithError(err).WithField("task", taskName).Warn("background task failed")
		}
	}()
}
