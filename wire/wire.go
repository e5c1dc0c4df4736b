// Package wire implements the binary record framing and primitive
// encode/decode helpers shared by every layer that touches the log
// stream: the producer side writing into a channel's queue, the
// session consumer copying records to a sink, and the event-stream
// reader decoding them back.
//
// Every record on the wire has the shape:
//
//	size:u32 LE | tag:u64 LE | payload[size-8]
//
// size counts the bytes from tag (inclusive) to the end of payload,
// so the total bytes occupied by a record, including its own 4-byte
// size prefix, is 4+size.
package wire

import "encoding/binary"

// SpecialBit is set in a record's tag when the record carries stream
// metadata (ClockSync, EventSource, WriterProp, or padding) rather
// than a logged event. Event tags are event-source ids and must never
// set this bit.
const SpecialBit uint64 = 1 << 63

// Reserved special tags. Values above these are free for future use;
// a reader that does not recognize a special tag must skip it rather
// than error, which is what makes TagPadding invisible downstream.
const (
	TagPadding     uint64 = SpecialBit | 0
	TagClockSync   uint64 = SpecialBit | 1
	TagEventSource uint64 = SpecialBit | 2
	TagWriterProp  uint64 = SpecialBit | 3
)

// SizeFieldLen and TagFieldLen are the fixed-width header fields that
// precede every record's payload.
const (
	SizeFieldLen = 4
	TagFieldLen  = 8
	HeaderLen    = SizeFieldLen + TagFieldLen
)

// MinPaddingSize is the smallest number of bytes that can hold a
// valid padding record (header only, zero-length payload).
const MinPaddingSize = HeaderLen

// IsSpecial reports whether tag identifies a metadata record.
func IsSpecial(tag uint64) bool { return tag&SpecialBit != 0 }

// IsValidEventSourceID reports whether id is usable as an event tag:
// nonzero (0 is reserved so a zeroed buffer never looks like a valid
// tag) and below the special bit.
func IsValidEventSourceID(id uint64) bool { return id != 0 && id < SpecialBit }

// FillPadding writes a self-describing, zero-payload padding record
// spanning the whole of buf. Readers that do not recognize TagPadding
// skip it by construction, which lets the ring queue waste unusable
// tail bytes without corrupting the stream. len(buf) must be >=
// MinPaddingSize.
func FillPadding(buf []byte) {
	size := uint32(len(buf) - SizeFieldLen)
	binary.LittleEndian.PutUint32(buf[0:4], size)
	binary.LittleEndian.PutUint64(buf[4:12], TagPadding)
	for i := HeaderLen; i < len(buf); i++ {
		buf[i] = 0
	}
}

// RecordLen returns the total wire length (including the size prefix)
// of a record whose payload is payloadLen bytes.
func RecordLen(payloadLen int) int { return SizeFieldLen + TagFieldLen + payloadLen }

// EventRecordLen returns the total wire length of an event record
// carrying argsLen bytes of argument data.
func EventRecordLen(argsLen int) int { return RecordLen(8 + argsLen) }

// EncodeEventRecord writes a full event record — size, tag (the
// source id), clock value, and argument bytes — to the front of b and
// returns the number of bytes written. sourceID must satisfy
// IsValidEventSourceID. len(b) must be >= EventRecordLen(len(args)).
func EncodeEventRecord(b []byte, sourceID, clockValue uint64, args []byte) int {
	size := uint32(TagFieldLen + 8 + len(args))
	PutUint32(b, size)
	PutUint64(b[4:], sourceID)
	PutUint64(b[12:], clockValue)
	copy(b[20:], args)
	return int(size) + SizeFieldLen
}

// SpecialEntry is implemented by every metadata record type
// (EventSource, WriterProp, ClockSync): it knows its own special tag
// and how to measure and serialize its payload.
type SpecialEntry interface {
	Tag() uint64
	Size() int
	Encode(b []byte) int
}

// EncodeSpecialRecord writes a full special record (size, tag,
// payload) for e to the front of b and returns the number of bytes
// written. len(b) must be >= RecordLen(e.Size()).
func EncodeSpecialRecord(b []byte, e SpecialEntry) int {
	payloadLen := e.Size()
	size := uint32(TagFieldLen + payloadLen)
	PutUint32(b, size)
	PutUint64(b[4:], e.Tag())
	e.Encode(b[12:])
	return int(size) + SizeFieldLen
}

// PutUint32 writes v at b[0:4].
func PutUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// Uint32 reads a uint32 from b[0:4].
func Uint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// PutUint64 writes v at b[0:8].
func PutUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

// Uint64 reads a uint64 from b[0:8].
func Uint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// PutInt32 writes v at b[0:4].
func PutInt32(b []byte, v int32) { binary.LittleEndian.PutUint32(b, uint32(v)) }

// Int32 reads an int32 from b[0:4].
func Int32(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) }

// StringSize returns the number of bytes PutString(s) occupies.
func StringSize(s string) int { return 4 + len(s) }

// PutString writes a length-prefixed string at b[0:StringSize(s)] and
// returns the number of bytes written.
func PutString(b []byte, s string) int {
	PutUint32(b, uint32(len(s)))
	copy(b[4:], s)
	return 4 + len(s)
}

// ReadString reads a length-prefixed string from the front of b and
// returns the decoded string plus the number of bytes consumed. It
// reports ErrShortRead if b does not hold a complete string.
func ReadString(b []byte) (string, int, error) {
	if len(b) < 4 {
		return "", 0, ErrShortRead
	}
	n := int(Uint32(b))
	if n < 0 || len(b) < 4+n {
		return "", 0, ErrShortRead
	}
	return string(b[4 : 4+n]), 4 + n, nil
}

// ErrShortRead is returned by decoders when a buffer ends before a
// complete field could be read from it.
var ErrShortRead = shortReadError{}

type shortReadError struct{}

func (shortReadError) Error() string { return "wire: short read" }
