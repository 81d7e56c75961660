// Package async runs functions in the background and lets callers wait for
// their results through a Future.
//
//	f := async.Exec(ctx, msg, func(ctx context.Context, msg mail.Message) error {
//		return m.Send(ctx, msg)
//	})
//
//	// Later, or never.
//	if err := f.Await(ctx); err != nil {
//		log.Error("send failed", logger.Error(err))
//	}
//
// Exec does not detach fn from ctx. Callers that need the work to outlive a
// request pass context.WithoutCancel(ctx).
package async
