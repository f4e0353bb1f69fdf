package router

import "github.com/rickgao/itch-data/internal/itch"

// Category groups message types by which writer consumes them.
type Category int

const (
	CategoryOrder Category = iota // book changes: A F E C X D U
	CategoryTrade                 // executions off the book: P Q B
	CategoryEvent                 // directory, status and auction messages
)

// categories maps every catalog tag to its output buffer. The table mirrors
// the decoder's catalog; a decoded message always has an entry here.
var categories = map[byte]Category{
	'A': CategoryOrder,
	'F': CategoryOrder,
	'E': CategoryOrder,
	'C': CategoryOrder,
	'X': CategoryOrder,
	'D': CategoryOrder,
	'U': CategoryOrder,

	'P': CategoryTrade,
	'Q': CategoryTrade,
	'B': CategoryTrade,

	'S': CategoryEvent,
	'R': CategoryEvent,
	'H': CategoryEvent,
	'Y': CategoryEvent,
	'L': CategoryEvent,
	'V': CategoryEvent,
	'W': CategoryEvent,
	'K': CategoryEvent,
	'J': CategoryEvent,
	'I': CategoryEvent,
	'N': CategoryEvent,
}

// Categorize returns the output category for a tag. ok is false for tags
// outside the catalog (which the decoder rejects before they reach routing).
func Categorize(tag byte) (Category, bool) {
	c, ok := categories[tag]
	return c, ok
}

// RouterConfig holds configuration for the message router.
type RouterConfig struct {
	// Output buffer initial capacities
	OrderBufferSize int // Default: 50000
	TradeBufferSize int // Default: 10000
	EventBufferSize int // Default: 10000
}

// DefaultRouterConfig returns default configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		OrderBufferSize: 50000,
		TradeBufferSize: 10000,
		EventBufferSize: 10000,
	}
}

// RouterBuffers provides access to output buffers for writers.
type RouterBuffers struct {
	Orders *GrowableBuffer[itch.Message]
	Trades *GrowableBuffer[itch.Message]
	Events *GrowableBuffer[itch.Message]
}

// RouterStats contains runtime statistics.
type RouterStats struct {
	MessagesReceived int64
	MessagesRouted   int64
	Dropped          int64 // messages rejected by a closed buffer
	OrderBuffer      BufferStats
	TradeBuffer      BufferStats
	EventBuffer      BufferStats
}
