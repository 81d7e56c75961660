// Package server runs an http.Handler with production timeouts and graceful
// shutdown.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	// Blocks until ctx is canceled, then drains in-flight requests
//	// for at most cfg.ShutdownTimeout.
//	if err := srv.Start(ctx, handler); err != nil {
//		return err
//	}
//
// Run adapts Start for errgroup:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//
// Config is loaded from SERVER_* environment variables through the config
// package. Setting SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE serves HTTPS
// with TLS 1.2 or later.
package server
