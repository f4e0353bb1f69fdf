// Package feed acquires the raw ITCH byte stream and hands it to the decoder
// as an io.Reader.
//
// Sources:
//   - Capture files via Open, with transparent gzip decompression
//   - A feed relay over WebSocket via Client, which concatenates binary
//     frames into a continuous stream
//
// The decoder core is agnostic to where its bytes come from; this package
// owns all acquisition concerns (files, compression, sockets, staleness).
package feed
