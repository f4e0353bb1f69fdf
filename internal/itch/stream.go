package itch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DefaultBufferSize is the decoder's read buffer capacity. The largest ITCH
// 5.0 frame is 52 bytes, so the unread remainder left before a compaction is
// always a small fraction of the buffer; refill checks this defensively.
const DefaultBufferSize = 8192

// headerLen is tag + stock locate + tracking number + timestamp.
const headerLen = 11

// errIncomplete is the internal "need more bytes" signal. It never escapes
// Next: the decoder resolves it by refilling and retrying.
var errIncomplete = errors.New("incomplete frame")

type decoderState int

const (
	stateStreaming decoderState = iota
	stateErrorLatched
	stateExhausted
)

// Decoder turns a byte source into a pull-based sequence of Messages. It owns
// a fixed-capacity buffer with start/end cursors; the unread window is
// buf[start:end]. Refill appends at end, and when end reaches capacity the
// unread remainder is compacted to the front.
//
// A Decoder is not safe for concurrent use; one goroutine pulls at a time.
type Decoder struct {
	src io.Reader

	buf   []byte
	start int
	end   int

	offset int64 // stream offset of buf[start]
	count  int64 // messages decoded so far

	state decoderState
	err   error // latched failure, nil on a clean stream
}

// NewDecoder creates a Decoder with the default buffer size.
func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderSize(r, DefaultBufferSize)
}

// NewDecoderSize creates a Decoder with an explicit buffer capacity. The
// capacity must hold at least one full frame; sizes below 64 are raised to 64.
func NewDecoderSize(r io.Reader, size int) *Decoder {
	if size < 64 {
		size = 64
	}
	return &Decoder{src: r, buf: make([]byte, size)}
}

// Next returns the next decoded message, blocking on the source as needed.
//
// A source exhausted exactly on a frame boundary ends the sequence with
// io.EOF and no error. A decode failure or mid-frame truncation is returned
// exactly once; every call after that returns io.EOF, so a caller that drops
// the error cannot spin. Err reports the latched failure afterwards.
func (d *Decoder) Next() (Message, error) {
	if d.state != stateStreaming {
		d.state = stateExhausted
		return Message{}, io.EOF
	}

	for {
		msg, consumed, err := d.tryDecode()
		switch {
		case err == nil:
			d.start += consumed
			d.offset += int64(consumed)
			d.count++
			return msg, nil

		case errors.Is(err, errIncomplete):
			n, rerr := d.refill()
			if rerr != nil {
				return Message{}, d.latch(rerr)
			}
			if n == 0 {
				if d.start == d.end {
					// Clean boundary.
					d.state = stateExhausted
					return Message{}, io.EOF
				}
				return Message{}, d.latch(&DecodeError{
					Offset: d.offset,
					Err:    fmt.Errorf("%w: %d bytes of a partial frame buffered", ErrTruncated, d.end-d.start),
				})
			}

		default:
			return Message{}, d.latch(err)
		}
	}
}

// Err returns the failure that ended the stream, or nil if the stream is
// still live or ended cleanly.
func (d *Decoder) Err() error { return d.err }

// Decoded returns the number of messages decoded so far.
func (d *Decoder) Decoded() int64 { return d.count }

// Offset returns the stream offset of the next unread byte's frame.
func (d *Decoder) Offset() int64 { return d.offset }

// latch records the first failure and moves to the latched state.
func (d *Decoder) latch(err error) error {
	d.state = stateErrorLatched
	d.err = err
	return err
}

// tryDecode attempts to decode one complete message from the unread window.
// It returns errIncomplete when the window is too short for the length
// prefix, the tag, or the declared frame; any other error is a decode
// failure that latches the stream.
func (d *Decoder) tryDecode() (Message, int, error) {
	window := d.buf[d.start:d.end]

	// Length prefix (2 bytes) plus tag. The prefix counts tag + header +
	// body, excluding itself.
	if len(window) < 3 {
		return Message{}, 0, errIncomplete
	}
	n := int(binary.BigEndian.Uint16(window))
	tag := window[2]

	// Validate the tag and its declared length before buffering the body,
	// so a corrupt prefix cannot demand more bytes than any real frame.
	want, ok := bodyLengths[tag]
	if !ok {
		return Message{}, 0, &DecodeError{
			Tag:    tag,
			Offset: d.offset,
			Err:    fmt.Errorf("%w: %q", ErrUnknownTag, tag),
		}
	}
	if n != headerLen+want {
		return Message{}, 0, &DecodeError{
			Tag:    tag,
			Offset: d.offset,
			Err:    fmt.Errorf("%w: prefix declares %d bytes, tag %q takes %d", ErrBadLength, n, tag, headerLen+want),
		}
	}

	frameLen := 2 + n
	if len(window) < frameLen {
		return Message{}, 0, errIncomplete
	}

	msg := Message{
		Tag:            tag,
		StockLocate:    binary.BigEndian.Uint16(window[3:5]),
		TrackingNumber: binary.BigEndian.Uint16(window[5:7]),
		Timestamp: uint64(window[7])<<40 | uint64(window[8])<<32 |
			uint64(window[9])<<24 | uint64(window[10])<<16 |
			uint64(window[11])<<8 | uint64(window[12]),
	}

	body, err := decodeBody(tag, window[2+headerLen:frameLen])
	if err != nil {
		return Message{}, 0, &DecodeError{Tag: tag, Offset: d.offset, Err: err}
	}
	msg.Body = body

	return msg, frameLen, nil
}

// refill reads more bytes into the free tail of the buffer, compacting the
// unread remainder to the front first if the tail is exhausted. Returns 0
// when the source is done.
func (d *Decoder) refill() (int, error) {
	if d.end == len(d.buf) {
		if d.start == 0 {
			// A full buffer with no decodable frame violates the sizing
			// precondition (one partial frame is far smaller than the
			// buffer); tryDecode's length validation should make this
			// unreachable.
			return 0, &DecodeError{
				Offset: d.offset,
				Err:    fmt.Errorf("%w: partial frame exceeds %d-byte buffer", ErrBadLength, len(d.buf)),
			}
		}
		copy(d.buf, d.buf[d.start:d.end])
		d.end -= d.start
		d.start = 0
	}

	for {
		n, err := d.src.Read(d.buf[d.end:])
		if n > 0 {
			d.end += n
			return n, nil
		}
		if err == io.EOF {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("itch: read source: %w", err)
		}
		// A Reader may legally return 0, nil; retry.
	}
}
