package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mugisham37/storesync/internal/config"
	"github.com/mugisham37/storesync/internal/creds"
	"github.com/mugisham37/storesync/internal/env"
	"github.com/mugisham37/storesync/internal/journal"
	"github.com/mugisham37/storesync/internal/realtime"
	"github.com/mugisham37/storesync/internal/store"
	"github.com/mugisham37/storesync/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/agent.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting agent",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"sync_url", cfg.Sync.URL,
		"topics", len(cfg.Topics),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Access token provider
	tokens, err := tokenProvider(cfg.Auth)
	if err != nil {
		logger.Error("failed to configure credentials", "error", err)
		os.Exit(1)
	}

	// Environment signals. Without a probe address the network signal
	// stays up and reconnect pacing comes from backoff alone.
	monitor := env.NewMonitor()

	if cfg.Network.ProbeAddr != "" {
		prober := env.NewProber(env.ProberConfig{
			Addr:     cfg.Network.ProbeAddr,
			Interval: cfg.Network.ProbeInterval,
			Timeout:  cfg.Network.ProbeTimeout,
			Failures: cfg.Network.ProbeFailures,
		}, monitor, logger)
		if err := prober.Start(ctx); err != nil {
			logger.Error("failed to start network prober", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			prober.Stop(stopCtx)
		}()
	}

	// Local event journal
	var pool *pgxpool.Pool
	var writer *journal.Writer
	if cfg.Journal.Enabled {
		logger.Info("connecting to local store",
			"host", cfg.Journal.Database.Host,
			"port", cfg.Journal.Database.Port,
			"database", cfg.Journal.Database.Name,
		)

		pool, err = store.Connect(ctx, cfg.Journal.Database)
		if err != nil {
			logger.Error("failed to connect to local store", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		writer = journal.NewWriter(journal.Config{
			BatchSize:     cfg.Journal.BatchSize,
			FlushInterval: cfg.Journal.FlushInterval,
			BufferSize:    cfg.Journal.BufferSize,
		}, pool, logger)
		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start journal writer", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			writer.Stop(stopCtx)
		}()
	}

	// Realtime sync manager
	mgr := realtime.NewManager(syncConfig(cfg.Sync), tokens, monitor, realtime.WithLogger(logger))
	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to start sync manager", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		mgr.Stop(stopCtx)
	}()

	_ = mgr.OnStatus(func(s realtime.Status) {
		attrs := []any{"state", s.State, "attempts", s.Attempts}
		if s.ConnectionID != "" {
			attrs = append(attrs, "conn_id", s.ConnectionID)
		}
		if s.LastError != nil {
			attrs = append(attrs, "last_error", s.LastError)
		}
		logger.Info("sync status", attrs...)
	})

	// Subscriptions drive the connection: the manager dials once the
	// first topic registers and the environment allows it.
	for _, topic := range cfg.Topics {
		listener := logListener(logger, topic)
		if writer != nil {
			listener = writer.HandleFrame
		}
		if _, err := mgr.Subscribe(topic, listener); err != nil {
			logger.Error("failed to subscribe", "topic", topic, "error", err)
			os.Exit(1)
		}
	}
	if len(cfg.Topics) == 0 {
		logger.Warn("no topics configured, agent stays disconnected until one is added")
	}

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(mgr, monitor, pool, writer),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Periodic stats line
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := mgr.Stats()
				logger.Info("sync stats",
					"state", stats.State,
					"queue_depth", stats.QueueDepth,
					"queue_dropped", stats.QueueDropped,
					"frames_sent", stats.FramesSent,
					"frames_received", stats.FramesReceived,
					"reconnects", stats.Reconnects,
				)
			}
		}
	}()

	logger.Info("agent running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Graceful shutdown of health server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("agent stopped")
}

// tokenProvider selects the credential source from config. Both fields
// empty means an unauthenticated endpoint.
func tokenProvider(cfg config.AuthConfig) (realtime.TokenProvider, error) {
	switch {
	case cfg.Token != "":
		return creds.Static(cfg.Token), nil
	case cfg.TokenFile != "":
		fp, err := creds.NewFileProvider(cfg.TokenFile)
		if err != nil {
			return nil, err
		}
		return fp, nil
	default:
		return nil, nil
	}
}

// syncConfig maps agent configuration onto the realtime manager config.
// The config layer uses -1 for unlimited retries; the manager uses 0.
func syncConfig(cfg config.SyncConfig) realtime.Config {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	return realtime.Config{
		URL:               cfg.URL,
		Platform:          cfg.Platform,
		BaseDelay:         cfg.BaseDelay,
		MaxDelay:          cfg.MaxDelay,
		MaxAttempts:       maxAttempts,
		HeartbeatInterval: cfg.HeartbeatInterval,
		MissedHeartbeats:  cfg.MissedHeartbeats,
		ConnectTimeout:    cfg.ConnectTimeout,
		QueueCapacity:     cfg.QueueCapacity,
		WriteQueueSize:    cfg.WriteQueueSize,
		WriteTimeout:      cfg.WriteTimeout,
		Compression:       cfg.Compression,
	}
}

// logListener logs dispatched frames when the journal is disabled.
func logListener(logger *slog.Logger, topic string) realtime.Listener {
	return func(f realtime.Frame) {
		logger.Debug("event received",
			"topic", topic,
			"type", f.Type,
			"event_id", f.ID,
		)
	}
}

// createHealthHandler serves /health and /debug/status for the agent.
func createHealthHandler(mgr *realtime.Manager, monitor *env.Monitor, pool *pgxpool.Pool, writer *journal.Writer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// An offline agent is expected, not broken
		status := mgr.Status()
		health.Components["sync"] = map[string]interface{}{
			"state":         status.State.String(),
			"connection_id": status.ConnectionID,
			"attempts":      status.Attempts,
		}
		if status.State != realtime.StateConnected {
			health.Status = "degraded"
		}

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["store"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["store"] = "connected"
			}
		}

		// 503 only for hard failures; a degraded (offline) agent still
		// answers 200 so orchestrators don't restart it.
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/status", func(w http.ResponseWriter, r *http.Request) {
		stats := mgr.Stats()
		snap := monitor.Current()

		resp := map[string]interface{}{
			"state":           stats.State.String(),
			"connection_id":   stats.ConnectionID,
			"queue_depth":     stats.QueueDepth,
			"queue_dropped":   stats.QueueDropped,
			"frames_sent":     stats.FramesSent,
			"frames_received": stats.FramesReceived,
			"parse_errors":    stats.ParseErrors,
			"delivered":       stats.Delivered,
			"reconnects":      stats.Reconnects,
			"topics":          stats.Topics,
			"subscriptions":   stats.Subscriptions,
			"environment": map[string]bool{
				"foreground": snap.Foreground,
				"network_up": snap.NetworkUp,
			},
		}
		if writer != nil {
			js := writer.Stats()
			resp["journal"] = map[string]interface{}{
				"inserts":   js.Inserts,
				"conflicts": js.Conflicts,
				"errors":    js.Errors,
				"flushes":   js.Flushes,
				"dropped":   js.Dropped,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	return mux
}
