// Package stocks maintains the day's in-memory stock directory.
//
// The Registry is fed directly from the decoded feed: Stock Directory ('R')
// messages create entries keyed by stock locate, and Trading Action ('H') /
// Reg SHO ('Y') messages update per-stock state. Downstream writers use it to
// resolve locate codes to symbols for message types that carry no symbol on
// the wire (executions, cancels, deletes, replaces).
package stocks
