package api

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is a typed payload that knows its own wire tag and protobuf encoding.
type Message interface {
	MessageType() MessageType
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendUint32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendFixed32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, v)
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	bits := math.Float32bits(v)
	if bits == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, bits)
}

// decoder walks the fields of one payload. The first error sticks and stops iteration.
type decoder struct {
	b   []byte
	num protowire.Number
	typ protowire.Type
	err error
}

func newDecoder(b []byte) *decoder {
	return &decoder{b: b}
}

func (d *decoder) next() bool {
	if d.err != nil || len(d.b) == 0 {
		return false
	}
	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return false
	}
	d.num, d.typ = num, typ
	d.b = d.b[n:]
	return true
}

func (d *decoder) consumed(n int) bool {
	if n < 0 {
		d.err = fmt.Errorf("field %d: %w", d.num, protowire.ParseError(n))
		return false
	}
	d.b = d.b[n:]
	return true
}

func (d *decoder) expect(typ protowire.Type) bool {
	if d.typ != typ {
		d.err = fmt.Errorf("field %d: wire type %d, expected %d", d.num, d.typ, typ)
		return false
	}
	return true
}

func (d *decoder) skip() {
	d.consumed(protowire.ConsumeFieldValue(d.num, d.typ, d.b))
}

func (d *decoder) string() string {
	if !d.expect(protowire.BytesType) {
		return ""
	}
	v, n := protowire.ConsumeString(d.b)
	if !d.consumed(n) {
		return ""
	}
	return v
}

func (d *decoder) varint() uint64 {
	if !d.expect(protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(d.b)
	if !d.consumed(n) {
		return 0
	}
	return v
}

func (d *decoder) bool() bool {
	return protowire.DecodeBool(d.varint())
}

func (d *decoder) uint32() uint32 {
	return uint32(d.varint())
}

func (d *decoder) int32() int32 {
	return int32(d.varint())
}

func (d *decoder) fixed32() uint32 {
	if !d.expect(protowire.Fixed32Type) {
		return 0
	}
	v, n := protowire.ConsumeFixed32(d.b)
	if !d.consumed(n) {
		return 0
	}
	return v
}

func (d *decoder) float() float32 {
	return math.Float32frombits(d.fixed32())
}

// empty implements the codec for messages without fields.
type empty struct{}

func (empty) Marshal() ([]byte, error) { return nil, nil }

func (empty) Unmarshal(b []byte) error {
	d := newDecoder(b)
	for d.next() {
		d.skip()
	}
	return d.err
}
