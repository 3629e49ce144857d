package config

import "time"

// AgentConfig is the root configuration for a sync agent instance.
type AgentConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Sync     SyncConfig     `yaml:"sync"`
	Auth     AuthConfig     `yaml:"auth"`
	Topics   []string       `yaml:"topics"`
	Network  NetworkConfig  `yaml:"network"`
	Journal  JournalConfig  `yaml:"journal"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this agent.
type InstanceConfig struct {
	ID      string `yaml:"id"`
	StoreID string `yaml:"store_id"`
}

// SyncConfig holds the realtime connection settings.
type SyncConfig struct {
	URL               string        `yaml:"url"`
	Platform          string        `yaml:"platform"`
	BaseDelay         time.Duration `yaml:"base_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
	MaxAttempts       int           `yaml:"max_attempts"` // -1 = retry forever
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	MissedHeartbeats  int           `yaml:"missed_heartbeats"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	QueueCapacity     int           `yaml:"queue_capacity"`
	WriteQueueSize    int           `yaml:"write_queue_size"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	Compression       bool          `yaml:"compression"`
}

// AuthConfig holds token settings. Token and TokenFile are mutually
// exclusive; leave both empty for unauthenticated endpoints.
type AuthConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`
}

// NetworkConfig holds reachability prober settings. An empty ProbeAddr
// disables probing (the network signal then stays up).
type NetworkConfig struct {
	ProbeAddr     string        `yaml:"probe_addr"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
	ProbeFailures int           `yaml:"probe_failures"`
}

// JournalConfig holds event journal settings. When disabled, frames are
// not persisted.
type JournalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// HealthConfig holds the local health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
