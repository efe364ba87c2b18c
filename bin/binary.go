package bin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Simple binary parsing/serialization library for account and command data.
//
// Integers are little endian and sequences carry a uint32 length prefix, so
// the layout matches Borsh for the types used here.

// ErrShortBuffer is reported once a decoder runs out of input.
var ErrShortBuffer = errors.New("unexpected end of data")

// Decoder streams binary data from a byte buffer.
//
// The first failure is sticky: later reads return zero values and Err
// reports the original problem.
type Decoder struct {
	buf []byte
	err error
}

// NewDecoder creates a decoder that parses data from buffer b.
//
// Retains b, which the caller should not modify while decoding.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Err returns the first decoding failure.
func (r Decoder) Err() error {
	return r.err
}

// Finish returns an error if decoding failed or left bytes unconsumed.
func (r Decoder) Finish() error {
	if r.err != nil {
		return r.err
	}
	if len(r.buf) > 0 {
		return fmt.Errorf("%d trailing bytes", len(r.buf))
	}
	return nil
}

// Bytes is a primitive decoder that reads a fixed number of bytes.
func (r *Decoder) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > len(r.buf) {
		r.err = fmt.Errorf("reading %d bytes with %d left: %w", n, len(r.buf), ErrShortBuffer)
		r.buf = nil
		return nil
	}
	d := r.buf[:n]
	r.buf = r.buf[n:]
	return d
}

// Fixed fills dst with the next len(dst) bytes.
func (r *Decoder) Fixed(dst []byte) {
	copy(dst, r.Bytes(len(dst)))
}

// Uint64 decodes a uint64 (in little endian format).
func (r *Decoder) Uint64() uint64 {
	b := r.Bytes(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Uint32 decodes a uint32 (in little endian format).
func (r *Decoder) Uint32() uint32 {
	b := r.Bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Uint8 decodes a uint8
func (r *Decoder) Uint8() uint8 {
	b := r.Bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// SeqLen decodes a sequence length for elements of elemSize bytes.
//
// Lengths that could not possibly fit in the remaining input fail here,
// before the caller allocates anything.
func (r *Decoder) SeqLen(elemSize int) int {
	n := r.Uint32()
	if r.err != nil {
		return 0
	}
	if uint64(n)*uint64(elemSize) > uint64(len(r.buf)) {
		r.err = fmt.Errorf("sequence of %d elements with %d bytes left: %w", n, len(r.buf), ErrShortBuffer)
		r.buf = nil
		return 0
	}
	return int(n)
}

// Encoder encodes values to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder that writes data to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Bytes is a primitive encoder that copies bytes.
func (w *Encoder) Bytes(b []byte) {
	for len(b) > 0 {
		n, err := w.w.Write(b)
		if err != nil {
			panic(err)
		}
		b = b[n:]
	}
}

// Uint64 encodes a uint64 (in little endian format).
func (w *Encoder) Uint64(v uint64) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	w.Bytes(b)
}

// Uint32 encodes a uint32 (in little endian format).
func (w *Encoder) Uint32(v uint32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	w.Bytes(b)
}

// Uint8 encodes a uint8
func (w *Encoder) Uint8(b uint8) {
	w.Bytes([]byte{b})
}

// SeqLen encodes the length prefix of a sequence.
func (w *Encoder) SeqLen(n int) {
	if uint64(n) >= 1<<32 {
		panic("sequence too large to write 32-bit length")
	}
	w.Uint32(uint32(n))
}
