package itch

import "strconv"

// Price4 is a fixed-point price with 4 decimal places (value = n / 10,000).
// Used by every equity message type except the MWCB decline levels.
type Price4 uint32

// Price8 is a fixed-point price with 8 decimal places (value = n / 100,000,000).
// Used only by the MWCB Decline Level message.
type Price8 uint64

// Float64 converts to a decimal number. Conversion is always explicit; Price4
// and Price8 never participate in arithmetic with each other.
func (p Price4) Float64() float64 {
	return float64(p) / 1e4
}

// Raw returns the wire integer.
func (p Price4) Raw() uint32 { return uint32(p) }

// String formats the price with all 4 decimal places (e.g. "1234.0001").
func (p Price4) String() string {
	return formatFixed(uint64(p), 4)
}

// Float64 converts to a decimal number.
func (p Price8) Float64() float64 {
	return float64(p) / 1e8
}

// Raw returns the wire integer.
func (p Price8) Raw() uint64 { return uint64(p) }

// String formats the price with all 8 decimal places (e.g. "1234.00010002").
func (p Price8) String() string {
	return formatFixed(uint64(p), 8)
}

// formatFixed renders n with the given number of decimal places, without
// going through floating point.
func formatFixed(n uint64, places int) string {
	div := uint64(1)
	for i := 0; i < places; i++ {
		div *= 10
	}
	whole := n / div
	frac := n % div

	buf := make([]byte, 0, 24)
	buf = strconv.AppendUint(buf, whole, 10)
	buf = append(buf, '.')

	// Left-pad the fractional part to the full width.
	fracStr := strconv.FormatUint(frac, 10)
	for i := len(fracStr); i < places; i++ {
		buf = append(buf, '0')
	}
	buf = append(buf, fracStr...)
	return string(buf)
}
