// synctap connects to a sync endpoint, subscribes to the given topics,
// and prints every dispatched event to the console. Debugging aid for
// store connectivity; not part of the agent proper.
//
// Usage: go run ./cmd/synctap --url wss://sync.example.com/ws --topics orders.store-042,inventory.store-042
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mugisham37/storesync/internal/creds"
	"github.com/mugisham37/storesync/internal/env"
	"github.com/mugisham37/storesync/internal/realtime"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "sync endpoint URL")
	token := flag.String("token", "", "access token")
	topics := flag.String("topics", "", "comma-separated topics to subscribe")
	platform := flag.String("platform", "debug", "platform tag sent on connect")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	topicList := splitTopics(*topics)
	if len(topicList) == 0 {
		logger.Error("at least one topic is required (--topics a,b,c)")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("interrupt received")
		cancel()
	}()

	cfg := realtime.DefaultConfig()
	cfg.URL = *url
	cfg.Platform = *platform
	cfg.MaxAttempts = 0 // retry until interrupted

	var tokens realtime.TokenProvider
	if *token != "" {
		tokens = creds.Static(*token)
	}

	mgr := realtime.NewManager(cfg, tokens, env.NewMonitor(), realtime.WithLogger(logger))
	if err := mgr.Start(ctx); err != nil {
		logger.Error("manager start failed", "error", err)
		os.Exit(1)
	}

	_ = mgr.OnStatus(func(s realtime.Status) {
		if s.LastError != nil {
			fmt.Printf("[STATUS] %s attempts=%d err=%v\n", s.State, s.Attempts, s.LastError)
			return
		}
		fmt.Printf("[STATUS] %s conn_id=%s\n", s.State, s.ConnectionID)
	})

	// Subscribing creates the demand that triggers the dial.
	for _, topic := range topicList {
		if _, err := mgr.Subscribe(topic, tapListener(topic, *verbose)); err != nil {
			logger.Error("subscribe failed", "topic", topic, "error", err)
			os.Exit(1)
		}
	}

	go reportStats(ctx, mgr, logger)

	logger.Info("tap running, Ctrl+C to exit", "topics", len(topicList))
	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	mgr.Stop(stopCtx)
	logger.Info("stopped")
}

func splitTopics(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func tapListener(topic string, verbose bool) realtime.Listener {
	return func(f realtime.Frame) {
		if verbose {
			data, _ := json.MarshalIndent(f, "", "  ")
			fmt.Printf("[EVENT] %s\n", data)
			return
		}
		fmt.Printf("[EVENT] topic=%s type=%s id=%s ts=%d payload_bytes=%d\n",
			topic, f.Type, f.ID, f.TS, len(f.Payload))
	}
}

func reportStats(ctx context.Context, mgr *realtime.Manager, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := mgr.Stats()
			logger.Info("tap stats",
				"state", st.State,
				"frames_received", st.FramesReceived,
				"frames_sent", st.FramesSent,
				"queue_depth", st.QueueDepth,
				"reconnects", st.Reconnects,
			)
		}
	}
}
