package itch

// Message is one decoded ITCH message: the common header shared by every
// type plus one typed body. Messages are immutable once returned by the
// decoder and owned by the caller.
type Message struct {
	Tag            byte   // ASCII message type, e.g. 'A'
	StockLocate    uint16 // per-session instrument locate code
	TrackingNumber uint16 // Nasdaq internal tracking number
	Timestamp      uint64 // nanoseconds since midnight (48 bits on the wire)
	Body           Body
}

// Body is the closed set of message bodies. Exactly one concrete type exists
// per catalog tag; the interface is sealed by the unexported marker method.
type Body interface {
	body()
}

// -----------------------------------------------------------------------------
// System & stock status messages
// -----------------------------------------------------------------------------

// SystemEvent (tag 'S') signals a feed-wide session event.
type SystemEvent struct {
	Event EventCode
}

// StockDirectory (tag 'R') describes one issue; emitted for every tradeable
// instrument at the start of each day.
type StockDirectory struct {
	Stock              Symbol
	Category           MarketCategory
	FinancialStatus    FinancialStatus
	RoundLotSize       uint32
	RoundLotsOnly      bool
	Classification     IssueClassification
	SubType            IssueSubType
	Authenticity       Authenticity
	ShortSaleThreshold TriState
	IPOFlag            TriState
	LuldTier           LuldRefPriceTier
	ETPFlag            TriState
	ETPLeverageFactor  uint32
	InverseIndicator   bool
}

// TradingAction (tag 'H') reports a trading state change for a stock.
type TradingAction struct {
	Stock  Symbol
	State  TradingState
	Reason [4]byte // Nasdaq action reason code, space-padded
}

// RegShoRestriction (tag 'Y') reports the Reg SHO price test state.
type RegShoRestriction struct {
	Stock  Symbol
	Action RegShoAction
}

// MarketParticipantPosition (tag 'L') reports a participant's registration
// in a stock.
type MarketParticipantPosition struct {
	MPID    MPID
	Stock   Symbol
	Primary bool // primary market maker
	Mode    MarketMakerMode
	State   MarketParticipantState
}

// MwcbDeclineLevel (tag 'V') carries the three market-wide circuit breaker
// decline thresholds for the day.
type MwcbDeclineLevel struct {
	Level1 Price8
	Level2 Price8
	Level3 Price8
}

// MwcbStatus (tag 'W') reports that a circuit breaker level was breached.
type MwcbStatus struct {
	Breached BreachedLevel
}

// IPOQuotingPeriod (tag 'K') anticipates or cancels an IPO quotation release.
type IPOQuotingPeriod struct {
	Stock       Symbol
	ReleaseTime uint32 // seconds since midnight
	Qualifier   IPOReleaseQualifier
	Price       Price4
}

// LuldAuctionCollar (tag 'J') carries the auction collar prices for a stock
// in a LULD trading pause.
type LuldAuctionCollar struct {
	Stock     Symbol
	Reference Price4
	Upper     Price4
	Lower     Price4
	Extension uint32
}

// RetailPriceImprovement (tag 'N') flags retail interest on a stock.
type RetailPriceImprovement struct {
	Stock    Symbol
	Interest InterestFlag
}

// -----------------------------------------------------------------------------
// Order book messages
// -----------------------------------------------------------------------------

// AddOrder (tag 'A') adds an unattributed order to the book.
type AddOrder struct {
	Reference uint64
	Side      Side
	Shares    uint32
	Stock     Symbol
	Price     Price4
}

// AddOrderAttributed (tag 'F') adds an order with market participant
// attribution.
type AddOrderAttributed struct {
	Reference   uint64
	Side        Side
	Shares      uint32
	Stock       Symbol
	Price       Price4
	Attribution MPID
}

// OrderExecuted (tag 'E') executes shares against a resting order at its
// original display price.
type OrderExecuted struct {
	Reference   uint64
	Executed    uint32
	MatchNumber uint64
}

// OrderExecutedWithPrice (tag 'C') executes shares at a price different from
// the display price.
type OrderExecutedWithPrice struct {
	Reference   uint64
	Executed    uint32
	MatchNumber uint64
	Printable   bool
	Price       Price4
}

// OrderCancelled (tag 'X') removes shares from a resting order.
type OrderCancelled struct {
	Reference uint64
	Cancelled uint32
}

// OrderDeleted (tag 'D') removes a resting order entirely.
type OrderDeleted struct {
	Reference uint64
}

// OrderReplaced (tag 'U') cancels an order and adds a replacement under a
// new reference.
type OrderReplaced struct {
	OldReference uint64
	NewReference uint64
	Shares       uint32
	Price        Price4
}

// -----------------------------------------------------------------------------
// Trade messages
// -----------------------------------------------------------------------------

// Trade (tag 'P') reports a match involving a non-displayable order.
type Trade struct {
	Reference   uint64
	Side        Side
	Shares      uint32
	Stock       Symbol
	Price       Price4
	MatchNumber uint64
}

// CrossTrade (tag 'Q') reports a bulk cross execution.
type CrossTrade struct {
	Shares      uint64
	Stock       Symbol
	Price       Price4
	MatchNumber uint64
	Cross       CrossType
}

// BrokenTrade (tag 'B') voids a previously reported execution.
type BrokenTrade struct {
	MatchNumber uint64
}

// Imbalance (tag 'I') is the Net Order Imbalance Indicator disseminated
// before crosses.
type Imbalance struct {
	Paired         uint64
	Shares         uint64
	Direction      ImbalanceDirection
	Stock          Symbol
	FarPrice       Price4
	NearPrice      Price4
	ReferencePrice Price4
	Cross          CrossType
	PriceVariation byte // raw indicator byte, not an enumeration
}

func (SystemEvent) body()               {}
func (StockDirectory) body()            {}
func (TradingAction) body()             {}
func (RegShoRestriction) body()         {}
func (MarketParticipantPosition) body() {}
func (MwcbDeclineLevel) body()          {}
func (MwcbStatus) body()                {}
func (IPOQuotingPeriod) body()          {}
func (LuldAuctionCollar) body()         {}
func (RetailPriceImprovement) body()    {}
func (AddOrder) body()                  {}
func (AddOrderAttributed) body()        {}
func (OrderExecuted) body()             {}
func (OrderExecutedWithPrice) body()    {}
func (OrderCancelled) body()            {}
func (OrderDeleted) body()              {}
func (OrderReplaced) body()             {}
func (Trade) body()                     {}
func (CrossTrade) body()                {}
func (BrokenTrade) body()               {}
func (Imbalance) body()                 {}
