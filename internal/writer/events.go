package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/itch-data/internal/itch"
	"github.com/rickgao/itch-data/internal/router"
)

// EventWriter consumes status and auction messages from the router's event
// buffer. Directory messages land in stock_directory; everything else lands
// in market_events with a rendered detail string.
type EventWriter struct {
	cfg    WriterConfig
	logger *slog.Logger
	input  *router.GrowableBuffer[itch.Message]
	db     batchSender

	// Batching
	directory   []directoryRow
	events      []marketEventRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewEventWriter creates a new EventWriter.
func NewEventWriter(
	cfg WriterConfig,
	input *router.GrowableBuffer[itch.Message],
	db batchSender,
	logger *slog.Logger,
) *EventWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventWriter{
		cfg:       cfg,
		input:     input,
		db:        db,
		logger:    logger,
		directory: make([]directoryRow, 0, cfg.BatchSize),
		events:    make([]marketEventRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming messages and writing to the database.
func (w *EventWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("event writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *EventWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping event writer")

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
		w.logger.Info("event writer stopped")
	case <-ctx.Done():
		w.logger.Warn("event writer stop timed out")
	}

	// The consume context is already cancelled; the final sweep runs on
	// the caller's context so the tail still reaches the database.
	w.drain(ctx)
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *EventWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

func (w *EventWriter) consumeLoop() {
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

func (w *EventWriter) flushLoop() {
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

func (w *EventWriter) drain(ctx context.Context) {
	for _, msg := range w.input.DrainTo(0) {
		w.handleMessage(ctx, msg)
	}
}

func (w *EventWriter) handleMessage(ctx context.Context, msg itch.Message) {
	w.batchMu.Lock()
	if dir, ok := msg.Body.(itch.StockDirectory); ok {
		w.directory = append(w.directory, w.transformDirectory(msg, dir))
	} else {
		w.events = append(w.events, w.transformEvent(msg))
	}
	shouldFlush := len(w.directory)+len(w.events) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(ctx)
	}
}

// transformDirectory converts a directory message to a stock_directory row.
func (w *EventWriter) transformDirectory(msg itch.Message, dir itch.StockDirectory) directoryRow {
	row := directoryRow{
		SessionID:       w.cfg.SessionID,
		TimestampNs:     int64(msg.Timestamp),
		StockLocate:     int32(msg.StockLocate),
		Symbol:          sqlSymbol(dir.Stock),
		Category:        dir.Category.String(),
		FinancialStatus: dir.FinancialStatus.String(),
		RoundLotSize:    int64(dir.RoundLotSize),
		RoundLotsOnly:   dir.RoundLotsOnly,
		Classification:  dir.Classification.String(),
		SubType:         dir.SubType.String(),
		Authenticity:    dir.Authenticity.String(),
		LuldTier:        dir.LuldTier.String(),
		ETPLeverage:     int64(dir.ETPLeverageFactor),
		Inverse:         dir.InverseIndicator,
	}
	return row
}

// transformEvent converts a status or auction message to a market_events
// row. Detail carries a one-line rendering of the body; the full wire data
// is recoverable from the source capture if ever needed.
func (w *EventWriter) transformEvent(msg itch.Message) marketEventRow {
	row := marketEventRow{
		SessionID:   w.cfg.SessionID,
		TimestampNs: int64(msg.Timestamp),
		StockLocate: int32(msg.StockLocate),
		Tag:         string(msg.Tag),
	}

	switch body := msg.Body.(type) {
	case itch.SystemEvent:
		row.Detail = body.Event.String()

	case itch.TradingAction:
		row.Symbol = sqlSymbol(body.Stock)
		row.Detail = fmt.Sprintf("state=%s reason=%s",
			body.State, string(body.Reason[:]))

	case itch.RegShoRestriction:
		row.Symbol = sqlSymbol(body.Stock)
		row.Detail = fmt.Sprintf("action=%s", body.Action)

	case itch.MarketParticipantPosition:
		row.Symbol = sqlSymbol(body.Stock)
		row.Detail = fmt.Sprintf("mpid=%s primary=%t mode=%s state=%s",
			sqlMPID(body.MPID), body.Primary, body.Mode, body.State)

	case itch.MwcbDeclineLevel:
		row.Detail = fmt.Sprintf("level1=%s level2=%s level3=%s",
			body.Level1, body.Level2, body.Level3)

	case itch.MwcbStatus:
		row.Detail = fmt.Sprintf("breached=%s", body.Breached)

	case itch.IPOQuotingPeriod:
		row.Symbol = sqlSymbol(body.Stock)
		row.Detail = fmt.Sprintf("release=%d qualifier=%s price=%s",
			body.ReleaseTime, body.Qualifier, body.Price)

	case itch.LuldAuctionCollar:
		row.Symbol = sqlSymbol(body.Stock)
		row.Detail = fmt.Sprintf("reference=%s upper=%s lower=%s extension=%d",
			body.Reference, body.Upper, body.Lower, body.Extension)

	case itch.RetailPriceImprovement:
		row.Symbol = sqlSymbol(body.Stock)
		row.Detail = fmt.Sprintf("interest=%s", body.Interest)

	case itch.Imbalance:
		row.Symbol = sqlSymbol(body.Stock)
		row.Detail = fmt.Sprintf("paired=%d imbalance=%d direction=%s near=%s far=%s reference=%s cross=%s variation=%c",
			body.Paired, body.Shares, body.Direction,
			body.NearPrice, body.FarPrice, body.ReferencePrice,
			body.Cross, body.PriceVariation)
	}

	return row
}

func (w *EventWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.directory) == 0 && len(w.events) == 0 {
		w.batchMu.Unlock()
		return
	}
	directory := w.directory
	events := w.events
	w.directory = make([]directoryRow, 0, w.cfg.BatchSize)
	w.events = make([]marketEventRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()
	total := len(directory) + len(events)

	inserted, err := w.batchInsert(ctx, directory, events)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", total)
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += inserted
	w.metrics.Conflicts += int64(total) - inserted
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed market events",
		"directory", len(directory),
		"events", len(events),
		"duration", time.Since(start),
	)
}

// batchInsert writes both tables in one batch round trip. Directory rows
// dedupe per session and symbol; repeated daily directory replays are
// expected and harmless.
func (w *EventWriter) batchInsert(ctx context.Context, directory []directoryRow, events []marketEventRow) (int64, error) {
	batch := &pgx.Batch{}
	for _, r := range directory {
		batch.Queue(`
			INSERT INTO stock_directory (session_id, ts_ns, stock_locate, symbol,
			                             market_category, financial_status, round_lot_size,
			                             round_lots_only, classification, sub_type,
			                             authenticity, luld_tier, etp_leverage, inverse)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (session_id, symbol) DO NOTHING
		`, r.SessionID, r.TimestampNs, r.StockLocate, r.Symbol,
			r.Category, r.FinancialStatus, r.RoundLotSize,
			r.RoundLotsOnly, r.Classification, r.SubType,
			r.Authenticity, r.LuldTier, r.ETPLeverage, r.Inverse)
	}
	for _, r := range events {
		batch.Queue(`
			INSERT INTO market_events (session_id, ts_ns, stock_locate, tag, symbol, detail)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.SessionID, r.TimestampNs, r.StockLocate, r.Tag, r.Symbol, r.Detail)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for i := 0; i < len(directory)+len(events); i++ {
		ct, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += ct.RowsAffected()
	}

	return inserted, nil
}
