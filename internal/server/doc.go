// Package server provides the HTTP server of expsum.
//
// The server uses the Gin web framework. It serves the run API under
// /api/v1 and a liveness probe at /health.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                     HTTP Server :8000                         │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  ginzap.Ginzap (request logging, "http" logger)         │  │
//	│  │  ginzap.RecoveryWithZap (panic recovery with stack)     │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│  GET /health                                                  │
//	│  Router (/api/v1) ── handlers registered via callback         │
//	│  NoRoute ── 404 JSON error                                    │
//	└───────────────────────────────────────────────────────────────┘
//
// # Server Modes
//
//   - dev: gin debug mode
//   - prod: gin release mode
//
// # Server Lifecycle
//
//	srv, err := server.NewServer(cfg.Server, func(router *gin.RouterGroup) {
//	    v1.RegisterHandlers(router, handler)
//	})
//
//	go func() {
//	    if err := srv.Start(ctx); err != nil {
//	        zap.S().Errorw("server failed", "error", err)
//	    }
//	}()
//
//	<-ctx.Done()
//	srv.Stop(shutdownCtx)
//
// Stop performs a graceful shutdown, waiting for in-flight requests. Runs
// accepted before Stop keep executing; the caller closes the scheduler
// afterwards to drain them.
package server
