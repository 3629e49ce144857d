package realtime

import (
	"testing"
	"time"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateReconnecting, "reconnecting"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaseDelay != 5*time.Second {
		t.Errorf("BaseDelay = %v, want 5s", cfg.BaseDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", cfg.MaxDelay)
	}
	if cfg.MaxAttempts != 10 {
		t.Errorf("MaxAttempts = %d, want 10", cfg.MaxAttempts)
	}
	if cfg.MissedHeartbeats != 2 {
		t.Errorf("MissedHeartbeats = %d, want 2", cfg.MissedHeartbeats)
	}
	if cfg.QueueCapacity != 100 {
		t.Errorf("QueueCapacity = %d, want 100", cfg.QueueCapacity)
	}
}

func TestWithDefaultsFillsZeroFields(t *testing.T) {
	cfg := withDefaults(Config{URL: "wss://sync.test/ws", BaseDelay: time.Second})
	if cfg.BaseDelay != time.Second {
		t.Errorf("explicit BaseDelay overwritten: %v", cfg.BaseDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want default 30s", cfg.MaxDelay)
	}
	if cfg.HeartbeatInterval != 30*time.Second {
		t.Errorf("HeartbeatInterval = %v, want default 30s", cfg.HeartbeatInterval)
	}
	// Zero MaxAttempts is meaningful (retry forever), never defaulted.
	if cfg.MaxAttempts != 0 {
		t.Errorf("MaxAttempts = %d, want 0", cfg.MaxAttempts)
	}
}
