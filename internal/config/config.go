package config

import "time"

// GathererConfig is the root configuration for a gatherer instance.
type GathererConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Router   RouterConfig   `yaml:"router"`
	Writers  WritersConfig  `yaml:"writers"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this gatherer.
type InstanceConfig struct {
	ID string `yaml:"id"`
	AZ string `yaml:"az"`
}

// SourceConfig selects where the raw feed comes from: a capture file
// (optionally gzip-compressed) or a websocket relay carrying the same wire
// format in binary frames.
type SourceConfig struct {
	// Mode is "file" or "ws".
	Mode string `yaml:"mode"`

	// Path is the capture file for file mode.
	Path string `yaml:"path"`

	// URL is the relay endpoint for ws mode.
	URL string `yaml:"url"`

	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PingTimeout      time.Duration `yaml:"ping_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds the TimescaleDB connection for time-series data.
type DatabaseConfig struct {
	Timescale DBConfig `yaml:"timescale"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RouterConfig holds per-category buffer sizes.
type RouterConfig struct {
	OrderBufferSize int `yaml:"order_buffer_size"`
	TradeBufferSize int `yaml:"trade_buffer_size"`
	EventBufferSize int `yaml:"event_buffer_size"`
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
