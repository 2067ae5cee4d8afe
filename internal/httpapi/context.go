package httpapi

import (
	"context"
	"errors"
)

// serverBaseCtx is canceled when the process starts shutting down.
// Background until SetBaseContext is called.
var serverBaseCtx = context.Background()

// errServerStopping is the cancel cause of request contexts ended by the
// base context.
var errServerStopping = errors.New("server is shutting down")

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context from req that is also canceled, with cause
// errServerStopping, when base is done. Calling the returned cancel detaches
// it from base.
func joinContexts(req, base context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(req)
	stop := context.AfterFunc(base, func() { cancel(errServerStopping) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
