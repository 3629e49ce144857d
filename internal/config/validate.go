package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *AgentConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Sync.URL == "" {
		return errors.New("sync.url is required")
	}
	if !strings.HasPrefix(c.Sync.URL, "ws://") && !strings.HasPrefix(c.Sync.URL, "wss://") {
		return fmt.Errorf("sync.url must be a ws:// or wss:// URL, got %q", c.Sync.URL)
	}
	if c.Sync.MaxAttempts < -1 {
		return errors.New("sync.max_attempts must be >= -1")
	}
	if c.Sync.MissedHeartbeats < 1 {
		return errors.New("sync.missed_heartbeats must be >= 1")
	}
	if c.Sync.QueueCapacity < 1 {
		return errors.New("sync.queue_capacity must be >= 1")
	}
	if c.Sync.WriteQueueSize < 1 {
		return errors.New("sync.write_queue_size must be >= 1")
	}
	if c.Sync.BaseDelay > c.Sync.MaxDelay {
		return fmt.Errorf("sync.base_delay (%v) cannot exceed max_delay (%v)", c.Sync.BaseDelay, c.Sync.MaxDelay)
	}

	if c.Auth.Token != "" && c.Auth.TokenFile != "" {
		return errors.New("auth.token and auth.token_file are mutually exclusive")
	}

	if c.Journal.Enabled {
		if err := c.Journal.Database.validate("journal.database"); err != nil {
			return err
		}
		if c.Journal.BatchSize < 1 {
			return errors.New("journal.batch_size must be >= 1")
		}
		if c.Journal.BufferSize < 1 {
			return errors.New("journal.buffer_size must be >= 1")
		}
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

// validate reports the first problem with a database block, using prefix
// to name the offending yaml path in the error.
func (db *DBConfig) validate(prefix string) error {
	required := []struct{ key, val string }{
		{"host", db.Host},
		{"name", db.Name},
		{"user", db.User},
		{"password", db.Password},
	}
	for _, f := range required {
		if f.val == "" {
			return fmt.Errorf("%s.%s is required", prefix, f.key)
		}
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
