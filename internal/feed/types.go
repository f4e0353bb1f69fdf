package feed

import (
	"errors"
	"time"
)

// Errors
var (
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// ClientConfig configures a relay client.
type ClientConfig struct {
	URL              string        // relay URL (e.g. wss://relay.internal/itch/v5)
	HandshakeTimeout time.Duration // WebSocket dial timeout
	PingTimeout      time.Duration // max time without ping before the connection is stale
	WriteTimeout     time.Duration // deadline for control frame writes
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}
