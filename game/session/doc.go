// Package session provides session management for the Landmines game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session loop shutdown on delete, expiry and Close
//
// Core Types:
//
// Manager stores service.Session values keyed by lower-cased ID. Each session
// owns a match.GameSession and a loop goroutine that serializes access to it
// and ticks its game clock.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//	defer manager.Close()
//
//	sess, err := manager.Create("", config, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = sess.Do(ctx, func(g *match.GameSession) error {
//		_, err := g.OnCellActivated(2, 1)
//		return err
//	})
//
// Cleanup:
//
// CleanupExpiredSessions removes sessions that have not been accessed within
// the given duration and stops their loops.
package session
