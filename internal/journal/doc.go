// Package journal persists dispatched sync events into the local
// Postgres store.
//
// The Writer is registered as a topic listener on the realtime manager.
// HandleFrame only appends to an in-memory batch; inserts happen on the
// writer's own flush goroutine (size-triggered or on a ticker), so the
// manager's dispatch loop never blocks on the database.
//
// Rows are append-only and keyed by event ID with ON CONFLICT DO
// NOTHING, so frames redelivered after a reconnect are counted as
// conflicts rather than duplicated. When the database falls behind, the
// batch is capped at BufferSize and the newest frames are dropped.
package journal
