// Package inspect serves a small HTTP inspector for the fx runtime.
//
// Routes:
//
//	GET /healthz     liveness probe
//	GET /metrics     Prometheus exposition
//	GET /api/stats   fx.ReadStats() as JSON
//	GET /api/events  WebSocket stream of queue flush events
//
// Example:
//
//	srv := inspect.New(inspect.Config{Addr: "localhost:7070"})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package inspect
