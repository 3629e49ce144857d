// Package realtime implements the sync connection core.
//
// The connection Manager:
//   - Maintains a single WebSocket connection to the sync endpoint
//   - Reconnects with exponential backoff, gated on network and
//     foreground signals
//   - Probes liveness with application-level ping/pong frames
//   - Queues outbound messages while offline, evicting oldest on overflow
//   - Routes inbound frames to topic subscribers
//
// A single event loop goroutine owns all connection state; callers talk
// to it through commands, and the transport and timers report back
// through generation-tagged events so input from superseded connection
// attempts is discarded.
package realtime
