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

// OrderWriter consumes book messages from the router's order buffer and
// writes them to the order_events table.
type OrderWriter struct {
	cfg      WriterConfig
	logger   *slog.Logger
	input    *router.GrowableBuffer[itch.Message]
	registry stocks.Registry
	db       batchSender

	// Batching
	batch       []orderEventRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewOrderWriter creates a new OrderWriter. registry resolves locate codes
// to symbols for message types without a symbol on the wire; nil skips
// resolution.
func NewOrderWriter(
	cfg WriterConfig,
	input *router.GrowableBuffer[itch.Message],
	registry stocks.Registry,
	db batchSender,
	logger *slog.Logger,
) *OrderWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderWriter{
		cfg:      cfg,
		input:    input,
		registry: registry,
		db:       db,
		logger:   logger,
		batch:    make([]orderEventRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming messages and writing to the database.
func (w *OrderWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("order writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *OrderWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping order writer")

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
		w.logger.Info("order writer stopped")
	case <-ctx.Done():
		w.logger.Warn("order writer stop timed out")
	}

	// The consume context is already cancelled; the final sweep runs on
	// the caller's context so the tail still reaches the database.
	w.drain(ctx)
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *OrderWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input buffer and accumulates batches.
func (w *OrderWriter) consumeLoop() {
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

// flushLoop periodically flushes the batch.
func (w *OrderWriter) flushLoop() {
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

// drain pulls any messages still buffered after the loops stopped.
func (w *OrderWriter) drain(ctx context.Context) {
	for _, msg := range w.input.DrainTo(0) {
		w.handleMessage(ctx, msg)
	}
}

// handleMessage transforms and adds a message to the batch.
func (w *OrderWriter) handleMessage(ctx context.Context, msg itch.Message) {
	row := w.transform(msg)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(ctx)
	}
}

// transform converts a book message to an order_events row.
func (w *OrderWriter) transform(msg itch.Message) orderEventRow {
	row := orderEventRow{
		SessionID:   w.cfg.SessionID,
		TimestampNs: int64(msg.Timestamp),
		StockLocate: int32(msg.StockLocate),
		Tag:         string(msg.Tag),
	}

	switch body := msg.Body.(type) {
	case itch.AddOrder:
		row.Reference = int64(body.Reference)
		row.Side = string(body.Side)
		row.Shares = int64(body.Shares)
		row.Symbol = sqlSymbol(body.Stock)
		row.Price = int64(body.Price)

	case itch.AddOrderAttributed:
		row.Reference = int64(body.Reference)
		row.Side = string(body.Side)
		row.Shares = int64(body.Shares)
		row.Symbol = sqlSymbol(body.Stock)
		row.Price = int64(body.Price)
		row.MPID = sqlMPID(body.Attribution)

	case itch.OrderExecuted:
		row.Reference = int64(body.Reference)
		row.Shares = int64(body.Executed)
		row.MatchNumber = int64(body.MatchNumber)
		row.Symbol = w.resolve(msg.StockLocate)

	case itch.OrderExecutedWithPrice:
		row.Reference = int64(body.Reference)
		row.Shares = int64(body.Executed)
		row.MatchNumber = int64(body.MatchNumber)
		row.Printable = body.Printable
		row.Price = int64(body.Price)
		row.Symbol = w.resolve(msg.StockLocate)

	case itch.OrderCancelled:
		row.Reference = int64(body.Reference)
		row.Shares = int64(body.Cancelled)
		row.Symbol = w.resolve(msg.StockLocate)

	case itch.OrderDeleted:
		row.Reference = int64(body.Reference)
		row.Symbol = w.resolve(msg.StockLocate)

	case itch.OrderReplaced:
		row.Reference = int64(body.OldReference)
		row.NewReference = int64(body.NewReference)
		row.Shares = int64(body.Shares)
		row.Price = int64(body.Price)
		row.Symbol = w.resolve(msg.StockLocate)
	}

	return row
}

// resolve maps a locate code to its symbol via the registry.
func (w *OrderWriter) resolve(locate uint16) string {
	if w.registry == nil {
		return ""
	}
	s, ok := w.registry.Symbol(locate)
	if !ok {
		return ""
	}
	return sqlSymbol(s)
}

// flush writes the current batch to the database.
func (w *OrderWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}
	batch := w.batch
	w.batch = make([]orderEventRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	if err := w.batchInsert(ctx, batch); err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch))
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed order events",
		"count", len(batch),
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch. The table is append-only with
// no natural key: every wire message is its own event.
func (w *OrderWriter) batchInsert(ctx context.Context, rows []orderEventRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO order_events (session_id, ts_ns, stock_locate, tag, reference,
			                          side, shares, symbol, price, match_number,
			                          new_reference, printable, mpid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, r.SessionID, r.TimestampNs, r.StockLocate, r.Tag, r.Reference,
			r.Side, r.Shares, r.Symbol, r.Price, r.MatchNumber,
			r.NewReference, r.Printable, r.MPID)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}
