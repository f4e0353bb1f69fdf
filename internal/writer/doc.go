// Package writer implements batch writers persisting the decoded feed.
//
// Writers:
//   - Order writer: add/execute/cancel/delete/replace → order_events
//   - Trade writer: non-cross, cross and broken trades → trades
//   - Event writer: stock directory → stock_directory, everything else → market_events
//
// All writers use append-only semantics (never update, only insert) and batch
// inserts via pgx.Batch with a flush ticker. Every row carries the ingest
// session UUID so multiple captures of the same trading day stay separable.
// Symbols are stored with trailing pad spaces trimmed; the verbatim padded
// form only matters for in-memory equality, not for SQL.
package writer
