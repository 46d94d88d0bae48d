// Package server wraps http.Server with graceful shutdown, environment-driven
// configuration and errgroup-friendly lifecycle management.
//
// # Basic Usage
//
//	srv, err := server.NewFromConfig(cfg,
//		server.WithLogger(log),
//		server.WithOnShutdown(registry.CloseAll),
//	)
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
//
// Upgraded connections (WebSocket) are hijacked from the server and are not
// drained by graceful shutdown; register a WithOnShutdown hook that closes them.
//
// # TLS
//
// TLS is enabled when both SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE are set,
// or directly with WithTLS.
package server
