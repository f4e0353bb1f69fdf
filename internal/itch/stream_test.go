package itch

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// chunkReader returns at most n bytes per Read, forcing messages to arrive
// split across arbitrary read boundaries.
type chunkReader struct {
	data []byte
	n    int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.n
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

// errReader fails after serving its data.
type errReader struct {
	data []byte
	err  error
}

func (e *errReader) Read(p []byte) (int, error) {
	if len(e.data) == 0 {
		return 0, e.err
	}
	n := copy(p, e.data)
	e.data = e.data[n:]
	return n, nil
}

// sampleStream is a short well-formed feed covering several message sizes.
func sampleStream() []byte {
	var data []byte
	data = append(data, frame('S', wire{}.b('O'))...)
	data = append(data, frame('R', wire{}.str("AAPL    ").b('Q', 'N').u32(100).b('N', 'C').str("C ").
		b('P', ' ', 'N', '1', 'Y').u32(0).b('N'))...)
	data = append(data, frame('A', wire{}.u64(1).b('B').u32(100).str("AAPL    ").u32(1850000))...)
	data = append(data, frame('E', wire{}.u64(1).u32(40).u64(9001))...)
	data = append(data, frame('U', wire{}.u64(1).u64(2).u32(60).u32(1851000))...)
	data = append(data, frame('P', wire{}.u64(0).b('S').u32(300).str("AAPL    ").u32(1850000).u64(9002))...)
	data = append(data, frame('D', wire{}.u64(2))...)
	data = append(data, frame('S', wire{}.b('C'))...)
	return data
}

func drain(t *testing.T, dec *Decoder) []Message {
	t.Helper()
	var msgs []Message
	for {
		msg, err := dec.Next()
		if err == io.EOF {
			return msgs
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func TestChunkedReadsMatchWholeRead(t *testing.T) {
	data := sampleStream()
	whole := drain(t, NewDecoder(bytes.NewReader(data)))

	for _, chunk := range []int{1, 2, 3, 7, 13, 64} {
		dec := NewDecoder(&chunkReader{data: data, n: chunk})
		split := drain(t, dec)

		if len(split) != len(whole) {
			t.Fatalf("chunk %d: decoded %d messages, want %d", chunk, len(split), len(whole))
		}
		for i := range whole {
			if split[i] != whole[i] {
				t.Errorf("chunk %d: message %d = %+v, want %+v", chunk, i, split[i], whole[i])
			}
		}
		if dec.Err() != nil {
			t.Errorf("chunk %d: Err() = %v, want nil", chunk, dec.Err())
		}
	}
}

func TestCompactionWithSmallBuffer(t *testing.T) {
	// A buffer barely larger than one frame forces a compaction on nearly
	// every message; results must be identical.
	data := sampleStream()
	whole := drain(t, NewDecoder(bytes.NewReader(data)))

	dec := NewDecoderSize(bytes.NewReader(data), 64)
	small := drain(t, dec)

	if len(small) != len(whole) {
		t.Fatalf("decoded %d messages, want %d", len(small), len(whole))
	}
	for i := range whole {
		if small[i] != whole[i] {
			t.Errorf("message %d = %+v, want %+v", i, small[i], whole[i])
		}
	}
}

func TestEmptySource(t *testing.T) {
	dec := NewDecoder(bytes.NewReader(nil))

	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("Next() error = %v, want io.EOF", err)
	}
	if dec.Err() != nil {
		t.Errorf("Err() = %v, want nil", dec.Err())
	}
	if dec.Decoded() != 0 {
		t.Errorf("Decoded() = %d, want 0", dec.Decoded())
	}
}

func TestSingleMessageThenCleanEOF(t *testing.T) {
	data := frame('S', wire{}.b('O'))
	dec := NewDecoder(bytes.NewReader(data))

	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if _, ok := msg.Body.(SystemEvent); !ok {
		t.Fatalf("Body type = %T, want SystemEvent", msg.Body)
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("second Next() error = %v, want io.EOF", err)
	}
	if dec.Err() != nil {
		t.Errorf("Err() = %v, want nil", dec.Err())
	}
}

func TestTruncatedFrameLatchesOnce(t *testing.T) {
	// The first 8 bytes of a valid System Event message.
	data := frame('S', wire{}.b('O'))[:8]
	dec := NewDecoder(bytes.NewReader(data))

	_, err := dec.Next()
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Next() error = %v, want ErrTruncated", err)
	}

	// The error surfaces exactly once; the iterator then terminates.
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("second Next() error = %v, want io.EOF", err)
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("third Next() error = %v, want io.EOF", err)
	}
	if !errors.Is(dec.Err(), ErrTruncated) {
		t.Errorf("Err() = %v, want ErrTruncated", dec.Err())
	}
}

func TestUnknownTagLatches(t *testing.T) {
	data := frame('S', wire{}.b('O'))
	data = append(data, frame('z', wire{}.u64(1))...)
	data = append(data, frame('S', wire{}.b('C'))...) // never reached
	dec := NewDecoder(bytes.NewReader(data))

	if _, err := dec.Next(); err != nil {
		t.Fatalf("first Next() error = %v", err)
	}

	_, err := dec.Next()
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("Next() error = %v, want ErrUnknownTag", err)
	}

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
	if decErr.Tag != 'z' {
		t.Errorf("DecodeError.Tag = %q, want 'z'", decErr.Tag)
	}
	if want := int64(len(frame('S', wire{}.b('O')))); decErr.Offset != want {
		t.Errorf("DecodeError.Offset = %d, want %d", decErr.Offset, want)
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("Next() after latch error = %v, want io.EOF", err)
	}
}

func TestBadEnumLatches(t *testing.T) {
	// Trading state 'Z' is outside the table; it must fail, not default.
	data := frame('H', wire{}.str("AAPL    ").b('Z', ' ').str("T1  "))
	dec := NewDecoder(bytes.NewReader(data))

	_, err := dec.Next()
	if !errors.Is(err, ErrUnknownCode) {
		t.Fatalf("Next() error = %v, want ErrUnknownCode", err)
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("second Next() error = %v, want io.EOF", err)
	}
}

func TestLengthPrefixMismatchLatches(t *testing.T) {
	// Valid tag, corrupt length prefix.
	data := frame('D', wire{}.u64(1))
	data[0], data[1] = 0xff, 0xff
	dec := NewDecoder(bytes.NewReader(data))

	_, err := dec.Next()
	if !errors.Is(err, ErrBadLength) {
		t.Fatalf("Next() error = %v, want ErrBadLength", err)
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("second Next() error = %v, want io.EOF", err)
	}
}

func TestSourceErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	data := frame('S', wire{}.b('O'))
	dec := NewDecoder(&errReader{data: data, err: boom})

	if _, err := dec.Next(); err != nil {
		t.Fatalf("first Next() error = %v", err)
	}

	_, err := dec.Next()
	if !errors.Is(err, boom) {
		t.Fatalf("Next() error = %v, want wrapped %v", err, boom)
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("Next() after source failure error = %v, want io.EOF", err)
	}
}

func TestDecodedAndOffset(t *testing.T) {
	data := sampleStream()
	dec := NewDecoder(bytes.NewReader(data))
	msgs := drain(t, dec)

	if dec.Decoded() != int64(len(msgs)) {
		t.Errorf("Decoded() = %d, want %d", dec.Decoded(), len(msgs))
	}
	if dec.Offset() != int64(len(data)) {
		t.Errorf("Offset() = %d, want %d", dec.Offset(), len(data))
	}
}
