package core

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"strings"

	"golang.org/x/exp/constraints"
)

type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// ParseEndianness accepts "little" or "big", case-insensitively.
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little":
		return LittleEndian, nil
	case "big":
		return BigEndian, nil
	}
	return LittleEndian, fmt.Errorf("%w: unknown endianness %q", ErrInvalidConfig, s)
}

// NativeEndianness reports the byte order of the host.
func NativeEndianness() Endianness {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 0x0102)
	if buf[0] == 0x01 {
		return BigEndian
	}
	return LittleEndian
}

// BinaryWriter appends integers and raw spans to a stream in call order.
// The first failed write is sticky: later calls return the same error.
type BinaryWriter struct {
	w       io.Writer
	native  Endianness
	written int64
	err     error
	buf     [8]byte
}

func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w, native: NativeEndianness()}
}

// WriteUint writes v using exactly sizeof(T) bytes in the requested order.
// The value is byte-swapped only when order differs from the host order.
func WriteUint[T constraints.Unsigned](bw *BinaryWriter, v T, order Endianness) error {
	var n int
	switch x := any(v).(type) {
	case uint8:
		bw.buf[0] = x
		n = 1
	case uint16:
		if order != bw.native {
			x = bits.ReverseBytes16(x)
		}
		binary.NativeEndian.PutUint16(bw.buf[:], x)
		n = 2
	case uint32:
		if order != bw.native {
			x = bits.ReverseBytes32(x)
		}
		binary.NativeEndian.PutUint32(bw.buf[:], x)
		n = 4
	case uint64:
		if order != bw.native {
			x = bits.ReverseBytes64(x)
		}
		binary.NativeEndian.PutUint64(bw.buf[:], x)
		n = 8
	default:
		// uint and uintptr have no fixed width on disk
		return fmt.Errorf("binary writer: unsupported integer type %T", v)
	}
	return bw.WriteBytes(bw.buf[:n])
}

func (bw *BinaryWriter) WriteUint8(v uint8) error {
	return WriteUint(bw, v, bw.native)
}

func (bw *BinaryWriter) WriteUint16(v uint16, order Endianness) error {
	return WriteUint(bw, v, order)
}

func (bw *BinaryWriter) WriteUint32(v uint32, order Endianness) error {
	return WriteUint(bw, v, order)
}

func (bw *BinaryWriter) WriteUint64(v uint64, order Endianness) error {
	return WriteUint(bw, v, order)
}

// WriteBytes copies p verbatim; byte order does not apply to raw spans.
func (bw *BinaryWriter) WriteBytes(p []byte) error {
	if bw.err != nil {
		return bw.err
	}
	n, err := bw.w.Write(p)
	bw.written += int64(n)
	if err != nil {
		bw.err = err
	}
	return err
}

// Written returns the number of bytes accepted by the underlying stream.
func (bw *BinaryWriter) Written() int64 {
	return bw.written
}

// Err returns the first write error, if any.
func (bw *BinaryWriter) Err() error {
	return bw.err
}
