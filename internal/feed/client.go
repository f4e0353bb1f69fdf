package feed

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a WebSocket connection to an ITCH feed relay. The relay serves
// the raw feed as binary frames cut at arbitrary boundaries; Reader stitches
// them back into one continuous byte stream for the decoder.
type Client interface {
	// Connect establishes the WebSocket connection and starts streaming.
	Connect(ctx context.Context) error

	// Reader returns the continuous byte stream. A relay or transport
	// failure surfaces as a read error on this stream; a normal close
	// surfaces as io.EOF.
	Reader() io.Reader

	// Close gracefully closes the connection.
	Close() error

	// IsConnected returns current connection state.
	IsConnected() bool
}

// client implements the Client interface.
type client struct {
	cfg    ClientConfig
	logger *slog.Logger

	conn *websocket.Conn

	// Frame bytes flow through the pipe; the decoder reads the far end.
	pr *io.PipeReader
	pw *io.PipeWriter

	done chan struct{}

	// State
	mu         sync.RWMutex
	connected  bool
	lastPingAt time.Time
	closed     bool
}

// NewClient creates a relay client.
func NewClient(cfg ClientConfig, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultClientConfig().HandshakeTimeout
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = DefaultClientConfig().PingTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultClientConfig().WriteTimeout
	}

	pr, pw := io.Pipe()
	return &client{
		cfg:    cfg,
		logger: logger,
		pr:     pr,
		pw:     pw,
		done:   make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.lastPingAt = time.Now()
	c.mu.Unlock()

	// The relay pings; respond with pong and refresh staleness tracking.
	conn.SetPingHandler(func(data string) error {
		c.mu.Lock()
		c.lastPingAt = time.Now()
		c.mu.Unlock()

		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(c.cfg.WriteTimeout),
		)
	})

	conn.SetPongHandler(func(string) error {
		c.mu.Lock()
		c.lastPingAt = time.Now()
		c.mu.Unlock()
		return nil
	})

	go c.readLoop()
	go c.heartbeatLoop()

	c.logger.Debug("relay connected", "url", c.cfg.URL)

	return nil
}

// Reader returns the byte stream end of the connection.
func (c *client) Reader() io.Reader {
	return c.pr
}

// Close gracefully closes the connection.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	close(c.done)
	c.pw.CloseWithError(io.EOF)

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return conn.Close()
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// readLoop moves binary frames from the WebSocket into the pipe. Text and
// control frames are not part of the feed and are dropped.
func (c *client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// Close() already shut the pipe down cleanly.
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					c.pw.CloseWithError(io.EOF)
				} else {
					c.pw.CloseWithError(err)
				}
			}
			return
		}

		if msgType != websocket.BinaryMessage {
			c.logger.Warn("dropping non-binary frame", "type", msgType)
			continue
		}

		if _, err := c.pw.Write(data); err != nil {
			// Reader side gone; nothing left to stream to.
			return
		}
	}
}

// heartbeatLoop monitors for stale connections.
func (c *client) heartbeatLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			lastPing := c.lastPingAt
			c.mu.RUnlock()

			if conn != nil {
				deadline := time.Now().Add(c.cfg.WriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
					c.logger.Debug("failed to send ping", "error", err)
				}
			}

			if time.Since(lastPing) > c.cfg.PingTimeout {
				c.logger.Warn("no ping received, connection stale",
					"last_ping", lastPing,
					"timeout", c.cfg.PingTimeout,
				)
				c.pw.CloseWithError(ErrStaleConnection)
				return
			}
		}
	}
}
