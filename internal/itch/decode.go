package itch

import "fmt"

// bodyLengths is the exact body byte count (after the 11-byte common header)
// for every tag in the ITCH 5.0 catalog. The table doubles as the set of
// known tags: a tag outside it is a protocol violation, and a frame whose
// declared length disagrees with it is ErrBadLength. Kept as a table rather
// than per-decoder checks so it can be audited line by line against the
// protocol document.
var bodyLengths = map[byte]int{
	'S': 1,  // System Event
	'R': 28, // Stock Directory
	'H': 14, // Stock Trading Action
	'Y': 9,  // Reg SHO Restriction
	'L': 15, // Market Participant Position
	'V': 24, // MWCB Decline Level
	'W': 1,  // MWCB Status
	'K': 17, // IPO Quoting Period Update
	'J': 24, // LULD Auction Collar
	'A': 25, // Add Order
	'F': 29, // Add Order with MPID
	'E': 20, // Order Executed
	'C': 25, // Order Executed with Price
	'X': 12, // Order Cancel
	'D': 8,  // Order Delete
	'U': 24, // Order Replace
	'P': 33, // Trade (non-cross)
	'Q': 29, // Cross Trade
	'B': 8,  // Broken Trade
	'I': 39, // Net Order Imbalance Indicator
	'N': 9,  // Retail Price Improvement Indicator
}

// decodeBody dispatches on the tag byte and decodes the body bytes into the
// matching typed variant. body must be exactly the frame's post-header bytes.
func decodeBody(tag byte, body []byte) (Body, error) {
	want, ok := bodyLengths[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	if len(body) != want {
		return nil, fmt.Errorf("%w: tag %q has %d body bytes, want %d",
			ErrBadLength, tag, len(body), want)
	}

	r := &reader{buf: body}

	switch tag {
	case 'S':
		return decodeSystemEvent(r)
	case 'R':
		return decodeStockDirectory(r)
	case 'H':
		return decodeTradingAction(r)
	case 'Y':
		return decodeRegSho(r)
	case 'L':
		return decodeParticipantPosition(r)
	case 'V':
		return decodeMwcbDeclineLevel(r)
	case 'W':
		return decodeMwcbStatus(r)
	case 'K':
		return decodeIPOQuotingPeriod(r)
	case 'J':
		return decodeLuldAuctionCollar(r)
	case 'A':
		return decodeAddOrder(r)
	case 'F':
		return decodeAddOrderAttributed(r)
	case 'E':
		return decodeOrderExecuted(r)
	case 'C':
		return decodeOrderExecutedWithPrice(r)
	case 'X':
		return decodeOrderCancelled(r)
	case 'D':
		return decodeOrderDeleted(r)
	case 'U':
		return decodeOrderReplaced(r)
	case 'P':
		return decodeTrade(r)
	case 'Q':
		return decodeCrossTrade(r)
	case 'B':
		return decodeBrokenTrade(r)
	case 'I':
		return decodeImbalance(r)
	case 'N':
		return decodeRetailPriceImprovement(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
}

func decodeSystemEvent(r *reader) (Body, error) {
	ev, err := readEnum(r, eventCodeNames, "event code")
	if err != nil {
		return nil, err
	}
	return SystemEvent{Event: ev}, nil
}

func decodeStockDirectory(r *reader) (Body, error) {
	var (
		d   StockDirectory
		err error
	)
	if d.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if d.Category, err = readEnum(r, marketCategoryNames, "market category"); err != nil {
		return nil, err
	}
	if d.FinancialStatus, err = readEnum(r, financialStatusNames, "financial status"); err != nil {
		return nil, err
	}
	if d.RoundLotSize, err = r.u32(); err != nil {
		return nil, err
	}
	if d.RoundLotsOnly, err = r.yesNo(); err != nil {
		return nil, err
	}
	if d.Classification, err = readEnum(r, issueClassificationNames, "issue classification"); err != nil {
		return nil, err
	}
	sub, err := r.alpha(2)
	if err != nil {
		return nil, err
	}
	if d.SubType, err = decodeIssueSubType(sub[0], sub[1]); err != nil {
		return nil, err
	}
	if d.Authenticity, err = readEnum(r, authenticityNames, "authenticity"); err != nil {
		return nil, err
	}
	if d.ShortSaleThreshold, err = r.triState(); err != nil {
		return nil, err
	}
	if d.IPOFlag, err = r.triState(); err != nil {
		return nil, err
	}
	if d.LuldTier, err = readEnum(r, luldTierNames, "LULD tier"); err != nil {
		return nil, err
	}
	if d.ETPFlag, err = r.etpFlag(); err != nil {
		return nil, err
	}
	if d.ETPLeverageFactor, err = r.u32(); err != nil {
		return nil, err
	}
	if d.InverseIndicator, err = r.yesNo(); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeTradingAction(r *reader) (Body, error) {
	var (
		a   TradingAction
		err error
	)
	if a.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if a.State, err = readEnum(r, tradingStateNames, "trading state"); err != nil {
		return nil, err
	}
	// Reserved byte.
	if err = r.skip(1); err != nil {
		return nil, err
	}
	reason, err := r.alpha(4)
	if err != nil {
		return nil, err
	}
	copy(a.Reason[:], reason)
	return a, nil
}

func decodeRegSho(r *reader) (Body, error) {
	var (
		y   RegShoRestriction
		err error
	)
	if y.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if y.Action, err = readEnum(r, regShoActionNames, "Reg SHO action"); err != nil {
		return nil, err
	}
	return y, nil
}

func decodeParticipantPosition(r *reader) (Body, error) {
	var (
		p   MarketParticipantPosition
		err error
	)
	if p.MPID, err = r.mpid(); err != nil {
		return nil, err
	}
	if p.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if p.Primary, err = r.yesNo(); err != nil {
		return nil, err
	}
	if p.Mode, err = readEnum(r, marketMakerModeNames, "market maker mode"); err != nil {
		return nil, err
	}
	if p.State, err = readEnum(r, participantStateNames, "participant state"); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeMwcbDeclineLevel(r *reader) (Body, error) {
	var (
		v   MwcbDeclineLevel
		err error
	)
	if v.Level1, err = r.price8(); err != nil {
		return nil, err
	}
	if v.Level2, err = r.price8(); err != nil {
		return nil, err
	}
	if v.Level3, err = r.price8(); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeMwcbStatus(r *reader) (Body, error) {
	lvl, err := readEnum(r, breachedLevelNames, "breached level")
	if err != nil {
		return nil, err
	}
	return MwcbStatus{Breached: lvl}, nil
}

func decodeIPOQuotingPeriod(r *reader) (Body, error) {
	var (
		k   IPOQuotingPeriod
		err error
	)
	if k.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if k.ReleaseTime, err = r.u32(); err != nil {
		return nil, err
	}
	if k.Qualifier, err = readEnum(r, ipoReleaseQualifierNames, "IPO release qualifier"); err != nil {
		return nil, err
	}
	if k.Price, err = r.price4(); err != nil {
		return nil, err
	}
	return k, nil
}

func decodeLuldAuctionCollar(r *reader) (Body, error) {
	var (
		j   LuldAuctionCollar
		err error
	)
	if j.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if j.Reference, err = r.price4(); err != nil {
		return nil, err
	}
	if j.Upper, err = r.price4(); err != nil {
		return nil, err
	}
	if j.Lower, err = r.price4(); err != nil {
		return nil, err
	}
	if j.Extension, err = r.u32(); err != nil {
		return nil, err
	}
	return j, nil
}

func decodeAddOrder(r *reader) (Body, error) {
	var (
		a   AddOrder
		err error
	)
	if a.Reference, err = r.u64(); err != nil {
		return nil, err
	}
	if a.Side, err = readEnum(r, sideNames, "side"); err != nil {
		return nil, err
	}
	if a.Shares, err = r.u32(); err != nil {
		return nil, err
	}
	if a.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if a.Price, err = r.price4(); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeAddOrderAttributed(r *reader) (Body, error) {
	var (
		f   AddOrderAttributed
		err error
	)
	if f.Reference, err = r.u64(); err != nil {
		return nil, err
	}
	if f.Side, err = readEnum(r, sideNames, "side"); err != nil {
		return nil, err
	}
	if f.Shares, err = r.u32(); err != nil {
		return nil, err
	}
	if f.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if f.Price, err = r.price4(); err != nil {
		return nil, err
	}
	if f.Attribution, err = r.mpid(); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeOrderExecuted(r *reader) (Body, error) {
	var (
		e   OrderExecuted
		err error
	)
	if e.Reference, err = r.u64(); err != nil {
		return nil, err
	}
	if e.Executed, err = r.u32(); err != nil {
		return nil, err
	}
	if e.MatchNumber, err = r.u64(); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeOrderExecutedWithPrice(r *reader) (Body, error) {
	var (
		c   OrderExecutedWithPrice
		err error
	)
	if c.Reference, err = r.u64(); err != nil {
		return nil, err
	}
	if c.Executed, err = r.u32(); err != nil {
		return nil, err
	}
	if c.MatchNumber, err = r.u64(); err != nil {
		return nil, err
	}
	if c.Printable, err = r.yesNo(); err != nil {
		return nil, err
	}
	if c.Price, err = r.price4(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeOrderCancelled(r *reader) (Body, error) {
	var (
		x   OrderCancelled
		err error
	)
	if x.Reference, err = r.u64(); err != nil {
		return nil, err
	}
	if x.Cancelled, err = r.u32(); err != nil {
		return nil, err
	}
	return x, nil
}

func decodeOrderDeleted(r *reader) (Body, error) {
	ref, err := r.u64()
	if err != nil {
		return nil, err
	}
	return OrderDeleted{Reference: ref}, nil
}

func decodeOrderReplaced(r *reader) (Body, error) {
	var (
		u   OrderReplaced
		err error
	)
	if u.OldReference, err = r.u64(); err != nil {
		return nil, err
	}
	if u.NewReference, err = r.u64(); err != nil {
		return nil, err
	}
	if u.Shares, err = r.u32(); err != nil {
		return nil, err
	}
	if u.Price, err = r.price4(); err != nil {
		return nil, err
	}
	return u, nil
}

func decodeTrade(r *reader) (Body, error) {
	var (
		p   Trade
		err error
	)
	if p.Reference, err = r.u64(); err != nil {
		return nil, err
	}
	if p.Side, err = readEnum(r, sideNames, "side"); err != nil {
		return nil, err
	}
	if p.Shares, err = r.u32(); err != nil {
		return nil, err
	}
	if p.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if p.Price, err = r.price4(); err != nil {
		return nil, err
	}
	if p.MatchNumber, err = r.u64(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeCrossTrade(r *reader) (Body, error) {
	var (
		q   CrossTrade
		err error
	)
	if q.Shares, err = r.u64(); err != nil {
		return nil, err
	}
	if q.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if q.Price, err = r.price4(); err != nil {
		return nil, err
	}
	if q.MatchNumber, err = r.u64(); err != nil {
		return nil, err
	}
	if q.Cross, err = readEnum(r, crossTypeNames, "cross type"); err != nil {
		return nil, err
	}
	return q, nil
}

func decodeBrokenTrade(r *reader) (Body, error) {
	match, err := r.u64()
	if err != nil {
		return nil, err
	}
	return BrokenTrade{MatchNumber: match}, nil
}

func decodeImbalance(r *reader) (Body, error) {
	var (
		i   Imbalance
		err error
	)
	if i.Paired, err = r.u64(); err != nil {
		return nil, err
	}
	if i.Shares, err = r.u64(); err != nil {
		return nil, err
	}
	if i.Direction, err = readEnum(r, imbalanceDirectionNames, "imbalance direction"); err != nil {
		return nil, err
	}
	if i.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if i.FarPrice, err = r.price4(); err != nil {
		return nil, err
	}
	if i.NearPrice, err = r.price4(); err != nil {
		return nil, err
	}
	if i.ReferencePrice, err = r.price4(); err != nil {
		return nil, err
	}
	if i.Cross, err = readEnum(r, crossTypeNames, "cross type"); err != nil {
		return nil, err
	}
	if i.PriceVariation, err = r.byteVal(); err != nil {
		return nil, err
	}
	return i, nil
}

func decodeRetailPriceImprovement(r *reader) (Body, error) {
	var (
		n   RetailPriceImprovement
		err error
	)
	if n.Stock, err = r.symbol(); err != nil {
		return nil, err
	}
	if n.Interest, err = readEnum(r, interestFlagNames, "interest flag"); err != nil {
		return nil, err
	}
	return n, nil
}
