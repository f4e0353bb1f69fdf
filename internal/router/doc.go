// Package router fans decoded feed messages out to per-category buffers.
//
// Categories:
//   - Orders: add/execute/cancel/delete/replace (book changes)
//   - Trades: non-cross trades, cross trades, broken trades
//   - Events: system events, directory, status and auction messages
//
// The router drains the decode iterator on one goroutine, applies each
// message to the stock registry, and hands buffers to the batch writers.
// GrowableBuffer absorbs bursts (the feed peaks far above the writers'
// steady-state throughput) by doubling capacity under pressure.
package router
