package stocks

import (
	"log/slog"
	"sync"

	"github.com/rickgao/itch-data/internal/itch"
)

// Entry is the tracked state for one instrument.
type Entry struct {
	Locate    uint16
	Directory itch.StockDirectory
	State     itch.TradingState
	RegSho    itch.RegShoAction
}

// Registry tracks the day's stock directory, keyed by stock locate.
type Registry interface {
	// Apply folds one decoded message into the registry. Directory,
	// trading action and Reg SHO messages update state; every other type
	// is ignored.
	Apply(msg itch.Message)

	// Lookup returns the entry for a locate code.
	Lookup(locate uint16) (Entry, bool)

	// Symbol resolves a locate code to its symbol.
	Symbol(locate uint16) (itch.Symbol, bool)

	// ByStock returns the entry for a symbol.
	ByStock(stock itch.Symbol) (Entry, bool)

	// Len returns the number of known instruments.
	Len() int

	// Entries returns a snapshot of all entries.
	Entries() []Entry
}

// registry is the internal implementation.
type registry struct {
	logger *slog.Logger

	mu       sync.RWMutex
	byLocate map[uint16]Entry
	byStock  map[itch.Symbol]uint16
}

// NewRegistry creates an empty stock registry.
func NewRegistry(logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &registry{
		logger:   logger,
		byLocate: make(map[uint16]Entry),
		byStock:  make(map[itch.Symbol]uint16),
	}
}

// Apply folds one decoded message into the registry.
func (r *registry) Apply(msg itch.Message) {
	switch body := msg.Body.(type) {
	case itch.StockDirectory:
		r.mu.Lock()
		r.byLocate[msg.StockLocate] = Entry{
			Locate:    msg.StockLocate,
			Directory: body,
			// Directory messages arrive pre-open; stocks start tradeable
			// until a trading action says otherwise.
			State:  itch.StateTrading,
			RegSho: itch.RegShoNone,
		}
		r.byStock[body.Stock] = msg.StockLocate
		r.mu.Unlock()

	case itch.TradingAction:
		r.mu.Lock()
		entry, ok := r.byLocate[msg.StockLocate]
		if ok {
			entry.State = body.State
			r.byLocate[msg.StockLocate] = entry
		}
		r.mu.Unlock()
		if !ok {
			r.logger.Debug("trading action for unknown locate",
				"locate", msg.StockLocate,
				"stock", body.Stock.String(),
			)
		}

	case itch.RegShoRestriction:
		r.mu.Lock()
		entry, ok := r.byLocate[msg.StockLocate]
		if ok {
			entry.RegSho = body.Action
			r.byLocate[msg.StockLocate] = entry
		}
		r.mu.Unlock()
		if !ok {
			r.logger.Debug("Reg SHO restriction for unknown locate",
				"locate", msg.StockLocate,
				"stock", body.Stock.String(),
			)
		}
	}
}

// Lookup returns the entry for a locate code.
func (r *registry) Lookup(locate uint16) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byLocate[locate]
	return entry, ok
}

// Symbol resolves a locate code to its symbol.
func (r *registry) Symbol(locate uint16) (itch.Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byLocate[locate]
	if !ok {
		return itch.Symbol{}, false
	}
	return entry.Directory.Stock, true
}

// ByStock returns the entry for a symbol.
func (r *registry) ByStock(stock itch.Symbol) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	locate, ok := r.byStock[stock]
	if !ok {
		return Entry{}, false
	}
	entry, ok := r.byLocate[locate]
	return entry, ok
}

// Len returns the number of known instruments.
func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byLocate)
}

// Entries returns a snapshot of all entries.
func (r *registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.byLocate))
	for _, entry := range r.byLocate {
		out = append(out, entry)
	}
	return out
}
