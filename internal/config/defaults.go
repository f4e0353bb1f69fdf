package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultSourceMode       = "file"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultPingTimeout      = 30 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultOrderBufferSize  = 50000
	DefaultTradeBufferSize  = 10000
	DefaultEventBufferSize  = 10000
	DefaultBatchSize        = 1000
	DefaultFlushInterval    = 1 * time.Second
	DefaultHealthPort       = 9090
	DefaultHealthPath       = "/healthz"
)

func (c *GathererConfig) applyDefaults() {
	// Source defaults
	if c.Source.Mode == "" {
		c.Source.Mode = DefaultSourceMode
	}
	if c.Source.HandshakeTimeout == 0 {
		c.Source.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Source.PingTimeout == 0 {
		c.Source.PingTimeout = DefaultPingTimeout
	}
	if c.Source.WriteTimeout == 0 {
		c.Source.WriteTimeout = DefaultWriteTimeout
	}

	// Database defaults
	applyDBDefaults(&c.Database.Timescale)

	// Router defaults
	if c.Router.OrderBufferSize == 0 {
		c.Router.OrderBufferSize = DefaultOrderBufferSize
	}
	if c.Router.TradeBufferSize == 0 {
		c.Router.TradeBufferSize = DefaultTradeBufferSize
	}
	if c.Router.EventBufferSize == 0 {
		c.Router.EventBufferSize = DefaultEventBufferSize
	}

	// Writers defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultBatchSize
	}
	if c.Writers.FlushInterval == 0 {
		c.Writers.FlushInterval = DefaultFlushInterval
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
