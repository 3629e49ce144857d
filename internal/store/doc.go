// Package store provides the connection pool for the agent's local
// PostgreSQL database, which holds the received-event journal.
package store
