// Package server wraps http.Server with graceful shutdown, functional options
// and environment-driven configuration.
//
// Defaults suit long-lived streaming responses: the write timeout is zero so
// websocket and server-sent event subscriptions are not cut off mid-stream.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
//
// Run returns a func suitable for errgroup: it serves until ctx is canceled,
// then shuts down gracefully within the configured timeout.
//
// Addr reports the bound address once listening, which makes ":0" usable in tests.
package server
