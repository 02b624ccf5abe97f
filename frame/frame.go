// Package frame implements the native API envelope:
//
//	0x00 length:varint type:varint payload:byte[length]
//
// It knows nothing about what the payload means.
package frame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

const Marker byte = 0x00

var (
	ErrInvalidMarker  = errors.New("invalid frame marker")
	ErrVarintOverflow = errors.New("varint does not fit in 32 bits")
)

type Header struct {
	Length uint32
	Type   uint32
}

func (h Header) String() string {
	return fmt.Sprintf("type=%d len=%d", h.Type, h.Length)
}

// Append encodes a whole frame onto dst.
func Append(dst []byte, msgType uint32, payload []byte) []byte {
	dst = append(dst, Marker)
	dst = protowire.AppendVarint(dst, uint64(len(payload)))
	dst = protowire.AppendVarint(dst, uint64(msgType))
	return append(dst, payload...)
}

type flusher interface {
	Flush() error
}

type Writer struct {
	w   io.Writer
	buf []byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes the frame with a single Write call. On error the peer may
// have seen part of the frame and the stream must be abandoned.
func (w *Writer) WriteFrame(msgType uint32, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("payload of %d bytes: %w", len(payload), ErrVarintOverflow)
	}
	w.buf = Append(w.buf[:0], msgType, payload)
	if _, err := w.w.Write(w.buf); err != nil {
		return err
	}
	if f, ok := w.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// ReadHeader consumes marker, length and type, leaving the payload in the stream.
// A clean close before the marker is reported as io.EOF.
func (r *Reader) ReadHeader() (Header, error) {
	m, err := r.r.ReadByte()
	if err != nil {
		return Header{}, err
	}
	if m != Marker {
		return Header{}, fmt.Errorf("got 0x%02x: %w", m, ErrInvalidMarker)
	}
	length, err := r.readVarint32()
	if err != nil {
		return Header{}, fmt.Errorf("reading length: %w", err)
	}
	msgType, err := r.readVarint32()
	if err != nil {
		return Header{}, fmt.Errorf("reading type: %w", err)
	}
	return Header{Length: length, Type: msgType}, nil
}

func (r *Reader) readVarint32() (uint32, error) {
	v, err := binary.ReadUvarint(r.r)
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrVarintOverflow
	}
	return uint32(v), nil
}

// ReadBody returns exactly length bytes in a buffer of exactly that size.
func (r *Reader) ReadBody(length uint32) ([]byte, error) {
	body := make([]byte, length)
	if _, err := io.ReadFull(r.r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

func (r *Reader) SkipBody(length uint32) error {
	n, err := io.CopyN(io.Discard, r.r, int64(length))
	if err == io.EOF && n < int64(length) {
		return io.ErrUnexpectedEOF
	}
	return err
}
