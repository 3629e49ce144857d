package journal

import (
	"time"
)

// Config tunes the journal writer's batching.
type Config struct {
	// BatchSize triggers a flush once this many rows have accumulated.
	BatchSize int

	// FlushInterval bounds how long a partial batch may sit unwritten.
	FlushInterval time.Duration

	// BufferSize caps the pending batch while the database is
	// unreachable; frames beyond it are dropped.
	BufferSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     200,
		FlushInterval: 2 * time.Second,
		BufferSize:    1000,
	}
}

// eventRow represents a row to be inserted into the events table.
type eventRow struct {
	EventID    string // Server-assigned frame ID, or a local UUID when absent
	Topic      string
	FrameType  string
	SenderTS   int64  // Milliseconds, as carried on the wire
	ReceivedAt int64  // Microseconds
	Payload    []byte // JSONB
}

// Stats holds metrics for the journal writer.
type Stats struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
	Dropped   int64
}
