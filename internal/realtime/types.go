package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrAlreadyStarted  = errors.New("manager already started")
	ErrManagerClosed   = errors.New("manager closed")
	ErrMaxAttempts     = errors.New("max reconnect attempts exceeded")
	ErrStaleConnection = errors.New("connection stale (no inbound traffic)")
	ErrNetworkDown     = errors.New("network unavailable")
)

// State is the lifecycle state of the realtime connection.
type State int

const (
	// StateDisconnected means no connection exists and none is being attempted.
	StateDisconnected State = iota
	// StateConnecting means a first (or caller-initiated) dial is in flight.
	StateConnecting
	// StateConnected means the connection is established and healthy.
	StateConnected
	// StateReconnecting means the connection dropped and recovery is in
	// progress (waiting for backoff or re-dialing).
	StateReconnecting
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of the connection.
type Status struct {
	State        State
	ConnectionID string // Non-empty only while State == StateConnected
	Attempts     int    // Consecutive failed attempts in the current recovery cycle
	LastError    error  // Error that caused the most recent failure, nil after success
	Since        time.Time
}

// Reserved frame types used by the liveness and subscription protocol.
// Frames with these types are consumed internally and never delivered to
// subscribers.
const (
	FrameTypePing        = "ping"
	FrameTypePong        = "pong"
	FrameTypeSubscribe   = "subscribe"
	FrameTypeUnsubscribe = "unsubscribe"
)

// Frame is the unit of exchange with the sync endpoint. Topic routes the
// frame to subscribers; the reserved ping/pong types carry no topic.
type Frame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	TS      int64           `json:"ts,omitempty"` // Unix milliseconds, sender clock
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OutboundMessage is a queued outgoing frame awaiting delivery.
type OutboundMessage struct {
	ID         string
	Type       string
	Topic      string
	Payload    json.RawMessage
	EnqueuedAt time.Time
}

// Listener receives frames for a subscribed topic.
type Listener func(Frame)

// TokenProvider supplies the access token for each connect attempt.
// A failure is treated as non-retryable: the manager stops and waits for
// the caller to re-authenticate and call Connect again.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Config configures a Manager.
type Config struct {
	URL               string        // WebSocket URL (e.g., wss://sync.example.com/ws)
	Platform          string        // Platform tag sent as a query parameter
	BaseDelay         time.Duration // First reconnect delay
	MaxDelay          time.Duration // Reconnect delay cap
	MaxAttempts       int           // Consecutive failures before giving up (0 = unlimited)
	HeartbeatInterval time.Duration // Ping cadence while connected
	MissedHeartbeats  int           // Silent intervals tolerated before forcing a reconnect
	ConnectTimeout    time.Duration // Deadline for a single dial
	QueueCapacity     int           // Outbound queue capacity (oldest evicted on overflow)
	WriteQueueSize    int           // Transport write buffer (messages)
	WriteTimeout      time.Duration // Write deadline for a single frame
	EventBufferSize   int           // Internal event channel buffer
	Compression       bool          // Gzip payloads above the size threshold
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Platform:          "edge",
		BaseDelay:         5 * time.Second,
		MaxDelay:          30 * time.Second,
		MaxAttempts:       10,
		HeartbeatInterval: 30 * time.Second,
		MissedHeartbeats:  2,
		ConnectTimeout:    10 * time.Second,
		QueueCapacity:     100,
		WriteQueueSize:    64,
		WriteTimeout:      5 * time.Second,
		EventBufferSize:   256,
	}
}

// ManagerStats are cumulative counters for observability.
type ManagerStats struct {
	State          State
	ConnectionID   string
	QueueDepth     int
	QueueDropped   uint64
	FramesSent     uint64
	FramesReceived uint64
	ParseErrors    uint64 // Inbound frames dropped as undecodable
	Delivered      uint64 // Listener invocations for dispatched frames
	Reconnects     uint64
	Topics         int
	Subscriptions  int // Registered listeners across all topics
}
