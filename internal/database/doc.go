// Package database provides connection pool management for TimescaleDB.
//
// Each gatherer writes to a single TimescaleDB instance: order events,
// trades and market events as hypertables, plus the daily stock directory.
package database
