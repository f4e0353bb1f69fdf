package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/itch-data/internal/itch"
	"github.com/rickgao/itch-data/internal/router"
	"github.com/rickgao/itch-data/internal/stocks"
)

// TradeWriter consumes trade messages from the router's trade buffer and
// writes them to the trades table.
type TradeWriter struct {
	cfg      WriterConfig
	logger   *slog.Logger
	input    *router.GrowableBuffer[itch.Message]
	registry stocks.Registry
	db       batchSender

	// Batching
	batch       []tradeRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewTradeWriter creates a new TradeWriter.
func NewTradeWriter(
	cfg WriterConfig,
	input *router.GrowableBuffer[itch.Message],
	registry stocks.Registry,
	db batchSender,
	logger *slog.Logger,
) *TradeWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeWriter{
		cfg:      cfg,
		input:    input,
		registry: registry,
		db:       db,
		logger:   logger,
		batch:    make([]tradeRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming messages and writing to the database.
func (w *TradeWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("trade writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *TradeWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping trade writer")

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("trade writer stopped")
	case <-ctx.Done():
		w.logger.Warn("trade writer stop timed out")
	}

	// The consume context is already cancelled; the final sweep runs on
	// the caller's context so the tail still reaches the database.
	w.drain(ctx)
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *TradeWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

func (w *TradeWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			msg, ok := w.input.TryReceive()
			if !ok {
				select {
				case <-w.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}
			w.handleMessage(w.ctx, msg)
		}
	}
}

func (w *TradeWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

func (w *TradeWriter) drain(ctx context.Context) {
	for _, msg := range w.input.DrainTo(0) {
		w.handleMessage(ctx, msg)
	}
}

func (w *TradeWriter) handleMessage(ctx context.Context, msg itch.Message) {
	row := w.transform(msg)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(ctx)
	}
}

// transform converts a trade message to a trades row.
func (w *TradeWriter) transform(msg itch.Message) tradeRow {
	row := tradeRow{
		SessionID:   w.cfg.SessionID,
		TimestampNs: int64(msg.Timestamp),
		StockLocate: int32(msg.StockLocate),
		Tag:         string(msg.Tag),
	}

	switch body := msg.Body.(type) {
	case itch.Trade:
		row.Symbol = sqlSymbol(body.Stock)
		row.Side = string(body.Side)
		row.Shares = int64(body.Shares)
		row.Price = int64(body.Price)
		row.MatchNumber = int64(body.MatchNumber)

	case itch.CrossTrade:
		row.Symbol = sqlSymbol(body.Stock)
		row.Shares = int64(body.Shares)
		row.Price = int64(body.Price)
		row.MatchNumber = int64(body.MatchNumber)
		row.CrossType = string(body.Cross)

	case itch.BrokenTrade:
		row.MatchNumber = int64(body.MatchNumber)
		row.Symbol = w.resolve(msg.StockLocate)
	}

	return row
}

func (w *TradeWriter) resolve(locate uint16) string {
	if w.registry == nil {
		return ""
	}
	s, ok := w.registry.Symbol(locate)
	if !ok {
		return ""
	}
	return sqlSymbol(s)
}

func (w *TradeWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}
	batch := w.batch
	w.batch = make([]tradeRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	inserted, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += inserted
	w.metrics.Conflicts += int64(len(batch)) - inserted
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed trades",
		"count", len(batch),
		"inserted", inserted,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch. Match numbers are unique per
// session and tag, so replayed frames dedupe on conflict.
func (w *TradeWriter) batchInsert(ctx context.Context, rows []tradeRow) (int64, error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO trades (session_id, ts_ns, stock_locate, tag, symbol,
			                    side, shares, price, match_number, cross_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (session_id, match_number, tag) DO NOTHING
		`, r.SessionID, r.TimestampNs, r.StockLocate, r.Tag, r.Symbol,
			r.Side, r.Shares, r.Price, r.MatchNumber, r.CrossType)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += ct.RowsAffected()
	}

	return inserted, nil
}
