package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mugisham37/storesync/internal/realtime"
)

// Writer accumulates dispatched frames and writes them to the events table.
type Writer struct {
	cfg    Config
	logger *slog.Logger

	// Database
	db *pgxpool.Pool

	// Batching
	batch       []eventRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker
	flushCh     chan struct{}

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics Stats
}

// NewWriter creates a journal writer backed by db. Zero or nonsense
// config fields fall back to defaults.
func NewWriter(cfg Config, db *pgxpool.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultConfig().FlushInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.BufferSize < cfg.BatchSize {
		cfg.BufferSize = cfg.BatchSize
	}
	return &Writer{
		cfg:     cfg,
		db:      db,
		logger:  logger,
		batch:   make([]eventRow, 0, cfg.BatchSize),
		flushCh: make(chan struct{}, 1),
	}
}

// Start begins the flush goroutine.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("journal writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop halts the flush loop, waits for it, then flushes what remains.
func (w *Writer) Stop(ctx context.Context) error {
	w.logger.Info("stopping journal writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for the flush goroutine
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("journal writer stopped")
	case <-ctx.Done():
		w.logger.Warn("journal writer stop timed out")
	}

	// Final flush with the caller's context; w.ctx is already cancelled.
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *Writer) Stats() Stats {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// HandleFrame adds a dispatched frame to the batch. It runs on the
// manager's dispatch goroutine and must not block, so a full batch only
// signals the flush goroutine instead of flushing inline.
func (w *Writer) HandleFrame(f realtime.Frame) {
	row := w.transform(f, time.Now())

	w.batchMu.Lock()
	if len(w.batch) >= w.cfg.BufferSize {
		w.metrics.Dropped++
		w.batchMu.Unlock()
		w.logger.Debug("journal buffer full, dropping frame",
			"event_id", row.EventID,
			"topic", row.Topic,
		)
		return
	}
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		select {
		case w.flushCh <- struct{}{}:
		default:
		}
	}
}

// transform converts a Frame to an eventRow.
func (w *Writer) transform(f realtime.Frame, receivedAt time.Time) eventRow {
	id := f.ID
	if id == "" {
		id = uuid.NewString()
	}
	return eventRow{
		EventID:    id,
		Topic:      f.Topic,
		FrameType:  f.Type,
		SenderTS:   f.TS,
		ReceivedAt: receivedAt.UnixMicro(),
		Payload:    f.Payload,
	}
}

// flushLoop flushes the batch on a ticker or when signalled full.
func (w *Writer) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		case <-w.flushCh:
			w.flush(w.ctx)
		}
	}
}

// flush drains the accumulated batch and writes it in one round trip.
func (w *Writer) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Swap the batch out under the lock so HandleFrame never waits on
	// the database.
	batch := w.batch
	w.batch = make([]eventRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("journal insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed events",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert issues the whole batch in a single SendBatch round trip.
// Redelivered event IDs land on ON CONFLICT DO NOTHING and are counted
// as conflicts rather than errors.
func (w *Writer) batchInsert(ctx context.Context, rows []eventRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO events (event_id, topic, frame_type, sender_ts, received_at, payload)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (event_id) DO NOTHING
		`, r.EventID, r.Topic, r.FrameType, r.SenderTS, r.ReceivedAt, r.Payload)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("exec row %d of %d: %w", i, len(rows), err)
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
