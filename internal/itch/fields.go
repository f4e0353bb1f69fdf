package itch

import (
	"encoding/binary"
	"fmt"
)

// Symbol is a fixed-width 8-character stock symbol, space-padded on the wire.
// Padding is preserved verbatim: equality on symbols is array equality over
// the full 8 bytes.
type Symbol [8]byte

func (s Symbol) String() string { return string(s[:]) }

// MPID is a fixed-width 4-character market participant identifier.
type MPID [4]byte

func (m MPID) String() string { return string(m[:]) }

// TriState is a Y/N flag that the feed may leave unspecified (space).
type TriState byte

const (
	FlagYes   TriState = 'Y'
	FlagNo    TriState = 'N'
	FlagUnset TriState = ' '
)

// Bool reports the flag value; ok is false when the flag is unset.
func (t TriState) Bool() (value, ok bool) {
	return t == FlagYes, t != FlagUnset
}

func (t TriState) String() string {
	switch t {
	case FlagYes:
		return "Yes"
	case FlagNo:
		return "No"
	case FlagUnset:
		return "Unset"
	}
	return fmt.Sprintf("TriState(%q)", byte(t))
}

// reader walks a fully buffered message frame. The dispatcher checks frame
// completeness against the length prefix before any field decode runs, so
// running past the end here means the declared length disagrees with the
// fixed layout for the tag.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

// take consumes exactly n bytes.
func (r *reader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, ErrBadLength
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// u48 decodes the 6-byte big-endian timestamp width, which has no stdlib
// counterpart, by composing the bytes directly.
func (r *reader) u48() (uint64, error) {
	b, err := r.take(6)
	if err != nil {
		return 0, err
	}
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5]), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) byteVal() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// skip discards n bytes (reserved fields).
func (r *reader) skip(n int) error {
	_, err := r.take(n)
	return err
}

func (r *reader) price4() (Price4, error) {
	v, err := r.u32()
	return Price4(v), err
}

func (r *reader) price8() (Price8, error) {
	v, err := r.u64()
	return Price8(v), err
}

// yesNo decodes a strict single-byte boolean.
func (r *reader) yesNo() (bool, error) {
	b, err := r.byteVal()
	if err != nil {
		return false, err
	}
	switch b {
	case 'Y':
		return true, nil
	case 'N':
		return false, nil
	}
	return false, fmt.Errorf("%w: boolean flag %q", ErrUnknownCode, b)
}

// triState decodes a Y/N/space flag.
func (r *reader) triState() (TriState, error) {
	b, err := r.byteVal()
	if err != nil {
		return 0, err
	}
	switch TriState(b) {
	case FlagYes, FlagNo, FlagUnset:
		return TriState(b), nil
	}
	return 0, fmt.Errorf("%w: optional flag %q", ErrUnknownCode, b)
}

// etpFlag decodes the ETP flag of the Stock Directory message. As of the 5.0
// revision this field additionally allows 'M', which reads as Yes. The
// exception applies to this one field only.
func (r *reader) etpFlag() (TriState, error) {
	b, err := r.byteVal()
	if err != nil {
		return 0, err
	}
	switch TriState(b) {
	case FlagYes, FlagNo, FlagUnset:
		return TriState(b), nil
	}
	if b == 'M' {
		return FlagYes, nil
	}
	return 0, fmt.Errorf("%w: ETP flag %q", ErrUnknownCode, b)
}

// alpha consumes exactly n bytes of printable ASCII.
func (r *reader) alpha(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return nil, fmt.Errorf("%w: byte 0x%02x", ErrInvalidText, c)
		}
	}
	return b, nil
}

// symbol decodes an 8-character stock field.
func (r *reader) symbol() (Symbol, error) {
	var s Symbol
	b, err := r.alpha(8)
	if err != nil {
		return s, err
	}
	copy(s[:], b)
	return s, nil
}

// mpid decodes a 4-character participant field.
func (r *reader) mpid() (MPID, error) {
	var m MPID
	b, err := r.alpha(4)
	if err != nil {
		return m, err
	}
	copy(m[:], b)
	return m, nil
}

// readEnum decodes a single-byte enumeration against its name table.
func readEnum[T ~byte](r *reader, names map[T]string, kind string) (T, error) {
	b, err := r.byteVal()
	if err != nil {
		return 0, err
	}
	return decodeEnum(names, b, kind)
}
