// Package itch implements a streaming decoder for the NASDAQ TotalView-ITCH 5.0
// binary market-data protocol.
//
// The decoder turns any io.Reader producing the raw feed into a pull-based
// sequence of typed Message values:
//
//	dec := itch.NewDecoder(r)
//	for {
//		msg, err := dec.Next()
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			// exactly one error per malformed stream, then io.EOF
//		}
//		// msg.Body is one of the concrete body types
//	}
//
// Conventions:
//   - All wire integers are big-endian; timestamps are nanoseconds since midnight
//     (48 bits on the wire, widened to uint64).
//   - Prices are fixed-point integers (Price4 = n/10^4, Price8 = n/10^8); conversion
//     to a float is always an explicit call.
//   - Fixed-width ASCII fields (symbols, MPIDs) are byte arrays preserved verbatim,
//     trailing spaces included. Equality on padded fields is array equality.
//   - Enumeration codes are validated against exhaustive tables; an out-of-table
//     code is a decode failure, never a silent default.
package itch
