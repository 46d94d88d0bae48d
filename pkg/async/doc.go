// Package async runs functions in the background and exposes their outcome as futures.
//
//	f := async.Exec(context.WithoutCancel(ctx), msg, fanout)
//	if err := f.AwaitWithTimeout(time.Second); err != nil {
//		// ErrTimeout, ErrPanic or the function's own error
//	}
//
// A Tracker counts in-flight futures so a server can drain them before exiting:
//
//	var t async.Tracker
//	async.Go(&t, ctx, msg, fanout)
//	_ = t.Wait(shutdownCtx)
package async
