package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPlatform          = "pos"
	DefaultBaseDelay         = 5 * time.Second
	DefaultMaxDelay          = 30 * time.Second
	DefaultMaxAttempts       = 10
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultMissedHeartbeats  = 2
	DefaultConnectTimeout    = 10 * time.Second
	DefaultQueueCapacity     = 100
	DefaultWriteQueueSize    = 64
	DefaultWriteTimeout      = 5 * time.Second
	DefaultProbeInterval     = 30 * time.Second
	DefaultProbeTimeout      = 5 * time.Second
	DefaultProbeFailures     = 2
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultBatchSize         = 200
	DefaultFlushInterval     = 2 * time.Second
	DefaultBufferSize        = 1000
	DefaultHealthPort        = 8089
)

func (c *AgentConfig) applyDefaults() {
	// Sync defaults
	if c.Sync.Platform == "" {
		c.Sync.Platform = DefaultPlatform
	}
	if c.Sync.BaseDelay == 0 {
		c.Sync.BaseDelay = DefaultBaseDelay
	}
	if c.Sync.MaxDelay == 0 {
		c.Sync.MaxDelay = DefaultMaxDelay
	}
	if c.Sync.MaxAttempts == 0 {
		c.Sync.MaxAttempts = DefaultMaxAttempts
	}
	if c.Sync.HeartbeatInterval == 0 {
		c.Sync.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Sync.MissedHeartbeats == 0 {
		c.Sync.MissedHeartbeats = DefaultMissedHeartbeats
	}
	if c.Sync.ConnectTimeout == 0 {
		c.Sync.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Sync.QueueCapacity == 0 {
		c.Sync.QueueCapacity = DefaultQueueCapacity
	}
	if c.Sync.WriteQueueSize == 0 {
		c.Sync.WriteQueueSize = DefaultWriteQueueSize
	}
	if c.Sync.WriteTimeout == 0 {
		c.Sync.WriteTimeout = DefaultWriteTimeout
	}

	// Network defaults
	if c.Network.ProbeInterval == 0 {
		c.Network.ProbeInterval = DefaultProbeInterval
	}
	if c.Network.ProbeTimeout == 0 {
		c.Network.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Network.ProbeFailures == 0 {
		c.Network.ProbeFailures = DefaultProbeFailures
	}

	// Journal defaults
	applyDBDefaults(&c.Journal.Database)
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultFlushInterval
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = DefaultBufferSize
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
