package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *GathererConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	switch c.Source.Mode {
	case "file":
		if c.Source.Path == "" {
			return errors.New("source.path is required in file mode")
		}
	case "ws":
		if c.Source.URL == "" {
			return errors.New("source.url is required in ws mode")
		}
	default:
		return fmt.Errorf("source.mode must be \"file\" or \"ws\", got %q", c.Source.Mode)
	}

	if err := c.Database.Timescale.validate("database.timescale"); err != nil {
		return err
	}

	if c.Router.OrderBufferSize < 1 {
		return errors.New("router.order_buffer_size must be >= 1")
	}
	if c.Router.TradeBufferSize < 1 {
		return errors.New("router.trade_buffer_size must be >= 1")
	}
	if c.Router.EventBufferSize < 1 {
		return errors.New("router.event_buffer_size must be >= 1")
	}

	if c.Writers.BatchSize < 1 {
		return errors.New("writers.batch_size must be >= 1")
	}
	if c.Writers.FlushInterval <= 0 {
		return errors.New("writers.flush_interval must be positive")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return errors.New("health.port must be between 1 and 65535")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns must not exceed max_conns", prefix)
	}
	return nil
}
