package secondary

import (
	"context"

	"github.com/surrealdb/surrealdb.go"
)

// Probe returns a reachability check for the configured endpoint. The dial
// runs in its own goroutine so a hung endpoint cannot outlive the caller's
// deadline; on timeout the check reports unavailable.
func Probe(cfg Config) func(ctx context.Context) bool {
	return func(ctx context.Context) bool {
		done := make(chan bool, 1)
		go func() {
			db, err := surrealdb.New(cfg.URL)
			if err != nil {
				done <- false
				return
			}
			_, err = db.Use(cfg.Namespace, cfg.Database)
			db.Close()
			done <- err == nil
		}()

		select {
		case ok := <-done:
			return ok
		case <-ctx.Done():
			return false
		}
	}
}
