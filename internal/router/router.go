package router

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/rickgao/itch-data/internal/itch"
	"github.com/rickgao/itch-data/internal/stocks"
)

// MessageSource is the decode iterator the router drains. Next blocks on the
// byte source and returns io.EOF when the stream ends cleanly; a malformed
// stream returns exactly one error and then io.EOF.
type MessageSource interface {
	Next() (itch.Message, error)
}

// Router drains decoded messages from a source and fans them out to
// per-category buffers for the writers, updating the stock registry on the
// way through.
type Router interface {
	// Start begins routing in the background.
	Start(ctx context.Context) error

	// Stop waits for routing to finish and closes the output buffers.
	Stop(ctx context.Context) error

	// Done is closed when the source is exhausted or fails.
	Done() <-chan struct{}

	// Err returns the decode or source failure that ended routing, nil on
	// a clean end of stream.
	Err() error

	// Buffers returns output buffers for writers to consume.
	Buffers() RouterBuffers

	// Stats returns current router statistics.
	Stats() RouterStats
}

// router is the internal implementation.
type router struct {
	cfg      RouterConfig
	logger   *slog.Logger
	source   MessageSource
	registry stocks.Registry

	orderBuf *GrowableBuffer[itch.Message]
	tradeBuf *GrowableBuffer[itch.Message]
	eventBuf *GrowableBuffer[itch.Message]

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}

	mu       sync.RWMutex
	received int64
	routed   int64
	dropped  int64
	err      error
}

// NewRouter creates a message router. registry may be nil when no directory
// tracking is wanted (e.g. throughput tests).
func NewRouter(cfg RouterConfig, source MessageSource, registry stocks.Registry, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &router{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		registry: registry,
		orderBuf: NewGrowableBuffer[itch.Message](cfg.OrderBufferSize),
		tradeBuf: NewGrowableBuffer[itch.Message](cfg.TradeBufferSize),
		eventBuf: NewGrowableBuffer[itch.Message](cfg.EventBufferSize),
		done:     make(chan struct{}),
	}
}

// Start begins routing messages.
func (r *router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("message router started",
		"order_buffer", r.cfg.OrderBufferSize,
		"trade_buffer", r.cfg.TradeBufferSize,
		"event_buffer", r.cfg.EventBufferSize,
	)

	return nil
}

// Stop waits for the route loop and closes the output buffers.
func (r *router) Stop(ctx context.Context) error {
	r.logger.Info("stopping message router")

	if r.cancel != nil {
		r.cancel()
	}

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		r.logger.Info("message router stopped")
	case <-ctx.Done():
		r.logger.Warn("message router stop timed out")
	}

	r.orderBuf.Close()
	r.tradeBuf.Close()
	r.eventBuf.Close()

	return nil
}

// Done is closed when routing finishes.
func (r *router) Done() <-chan struct{} { return r.done }

// Err returns the failure that ended routing, if any.
func (r *router) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Buffers returns output buffers for writers.
func (r *router) Buffers() RouterBuffers {
	return RouterBuffers{
		Orders: r.orderBuf,
		Trades: r.tradeBuf,
		Events: r.eventBuf,
	}
}

// Stats returns current statistics.
func (r *router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RouterStats{
		MessagesReceived: r.received,
		MessagesRouted:   r.routed,
		Dropped:          r.dropped,
		OrderBuffer:      r.orderBuf.Stats(),
		TradeBuffer:      r.tradeBuf.Stats(),
		EventBuffer:      r.eventBuf.Stats(),
	}
}

// routeLoop pulls from the decoder until exhaustion, failure, or cancel.
func (r *router) routeLoop() {
	defer r.wg.Done()
	defer close(r.done)

	for {
		if r.ctx.Err() != nil {
			return
		}

		msg, err := r.source.Next()
		if err == io.EOF {
			r.logger.Info("source exhausted", "routed", r.routedCount())
			return
		}
		if err != nil {
			// The decoder latches: this is the stream's single failure.
			r.logger.Error("decode failed, stopping", "error", err)
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
			return
		}

		r.route(msg)
	}
}

// route fans one message out to its category buffer.
func (r *router) route(msg itch.Message) {
	r.mu.Lock()
	r.received++
	r.mu.Unlock()

	if r.registry != nil {
		r.registry.Apply(msg)
	}

	category, ok := Categorize(msg.Tag)
	if !ok {
		// Unreachable with a latching decoder; counted rather than dropped
		// silently in case the catalog and this table ever drift.
		r.logger.Warn("message with unrouted tag", "tag", string(msg.Tag))
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		return
	}

	var sent bool
	switch category {
	case CategoryOrder:
		sent = r.orderBuf.Send(msg)
	case CategoryTrade:
		sent = r.tradeBuf.Send(msg)
	case CategoryEvent:
		sent = r.eventBuf.Send(msg)
	}

	r.mu.Lock()
	if sent {
		r.routed++
	} else {
		r.dropped++
	}
	r.mu.Unlock()
}

func (r *router) routedCount() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routed
}
