package env

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// ProberConfig configures the network reachability prober.
type ProberConfig struct {
	Addr     string        // host:port to dial (e.g., the sync endpoint)
	Interval time.Duration // Time between probes
	Timeout  time.Duration // Dial timeout per probe
	Failures int           // Consecutive failures before reporting network down
}

// DefaultProberConfig returns sensible defaults.
func DefaultProberConfig() ProberConfig {
	return ProberConfig{
		Interval: 30 * time.Second,
		Timeout:  5 * time.Second,
		Failures: 2,
	}
}

// Prober periodically dials an address and feeds the result into a Monitor's
// network signal. It exists for hosts without a native reachability API.
type Prober struct {
	cfg     ProberConfig
	monitor *Monitor
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProber creates a prober that updates the given monitor.
func NewProber(cfg ProberConfig, monitor *Monitor, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		cfg:     cfg,
		monitor: monitor,
		logger:  logger,
	}
}

// Start begins probing in the background.
func (p *Prober) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.probeLoop()

	p.logger.Info("network prober started",
		"addr", p.cfg.Addr,
		"interval", p.cfg.Interval,
	)
	return nil
}

// Stop shuts the prober down.
func (p *Prober) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn("prober stop timed out")
	}
	return nil
}

// probeLoop dials the target on a ticker and flips the network signal after
// enough consecutive failures, restoring it on the first success.
func (p *Prober) probeLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", p.cfg.Addr, p.cfg.Timeout)
			if err != nil {
				failures++
				p.logger.Debug("probe failed", "addr", p.cfg.Addr, "failures", failures, "error", err)
				if failures >= p.cfg.Failures {
					p.monitor.SetNetworkUp(false)
				}
				continue
			}
			conn.Close()
			failures = 0
			p.monitor.SetNetworkUp(true)
		}
	}
}
