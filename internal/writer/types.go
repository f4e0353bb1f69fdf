package writer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rickgao/itch-data/internal/itch"
)

// batchSender is the part of pgxpool.Pool the writers use. Narrowed to an
// interface so flush paths can be tested without a live database.
type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// SessionID identifies this ingest run; stamped on every row.
	SessionID uuid.UUID
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: time.Second,
		SessionID:     uuid.New(),
	}
}

// WriterMetrics holds per-writer counters.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}

// orderEventRow is a row for the order_events table. One row per book
// message; fields that don't apply to a given tag stay zero.
type orderEventRow struct {
	SessionID    uuid.UUID
	TimestampNs  int64
	StockLocate  int32
	Tag          string
	Reference    int64
	Side         string // "B", "S", or ""
	Shares       int64
	Symbol       string
	Price        int64 // raw fixed-point (1/10000 dollars)
	MatchNumber  int64
	NewReference int64 // replace only
	Printable    bool
	MPID         string
}

// tradeRow is a row for the trades table.
type tradeRow struct {
	SessionID   uuid.UUID
	TimestampNs int64
	StockLocate int32
	Tag         string
	Symbol      string
	Side        string
	Shares      int64
	Price       int64 // raw fixed-point (1/10000 dollars)
	MatchNumber int64
	CrossType   string // cross trades only
}

// directoryRow is a row for the stock_directory table.
type directoryRow struct {
	SessionID       uuid.UUID
	TimestampNs     int64
	StockLocate     int32
	Symbol          string
	Category        string
	FinancialStatus string
	RoundLotSize    int64
	RoundLotsOnly   bool
	Classification  string
	SubType         string
	Authenticity    string
	LuldTier        string
	ETPLeverage     int64
	Inverse         bool
}

// marketEventRow is a row for the market_events table, covering the
// lower-volume status and auction messages.
type marketEventRow struct {
	SessionID   uuid.UUID
	TimestampNs int64
	StockLocate int32
	Tag         string
	Symbol      string
	Detail      string
}

// sqlSymbol renders a symbol for storage, dropping the wire padding.
func sqlSymbol(s itch.Symbol) string {
	return strings.TrimRight(s.String(), " ")
}

// sqlMPID renders an MPID for storage.
func sqlMPID(m itch.MPID) string {
	return strings.TrimRight(m.String(), " ")
}
