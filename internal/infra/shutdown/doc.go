// Package shutdown provides graceful shutdown for StackKV.
//
// A Handler waits for SIGINT, SIGTERM, an explicit Trigger or context
// cancellation, then runs registered hooks in reverse registration
// order under a shared timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, logger)
//	h.OnShutdown("kv server", kv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
