package logsource

import "github.com/coffersTech/nanolog/wire"

// EventSource is the immutable metadata describing one logging site:
// its severity, source location, format string, and the compact
// argument-tag grammar a reader's visitor uses to decode each event's
// argument bytes. A Session assigns Id when the source is registered
// and never mutates it again.
type EventSource struct {
	ID           uint64
	Severity     Severity
	Category     string
	Function     string
	File         string
	Line         uint64
	FormatString string
	ArgumentTags string
}

// Tag returns the special tag this EventSource serializes under.
func (EventSource) Tag() uint64 { return wire.TagEventSource }

// Size returns the number of payload bytes Encode writes.
func (e *EventSource) Size() int {
	return 8 + 2 +
		wire.StringSize(e.Category) +
		wire.StringSize(e.Function) +
		wire.StringSize(e.File) +
		8 +
		wire.StringSize(e.FormatString) +
		wire.StringSize(e.ArgumentTags)
}

// Encode writes e's fields, in wire order, to the front of b and
// returns the number of bytes written. len(b) must be >= e.Size().
func (e *EventSource) Encode(b []byte) int {
	n := 0
	wire.PutUint64(b[n:], e.ID)
	n += 8
	b[n], b[n+1] = byte(e.Severity), byte(e.Severity>>8)
	n += 2
	n += wire.PutString(b[n:], e.Category)
	n += wire.PutString(b[n:], e.Function)
	n += wire.PutString(b[n:], e.File)
	wire.PutUint64(b[n:], e.Line)
	n += 8
	n += wire.PutString(b[n:], e.FormatString)
	n += wire.PutString(b[n:], e.ArgumentTags)
	return n
}

// Decode populates e from b and returns the number of bytes consumed.
// It returns wire.ErrShortRead if b ends before a complete EventSource
// could be read.
func (e *EventSource) Decode(b []byte) (int, error) {
	n := 0
	if len(b) < n+10 {
		return 0, wire.ErrShortRead
	}
	e.ID = wire.Uint64(b[n:])
	n += 8
	e.Severity = Severity(uint16(b[n]) | uint16(b[n+1])<<8)
	n += 2

	category, used, err := wire.ReadString(b[n:])
	if err != nil {
		return 0, err
	}
	e.Category = category
	n += used

	function, used, err := wire.ReadString(b[n:])
	if err != nil {
		return 0, err
	}
	e.Function = function
	n += used

	file, used, err := wire.ReadString(b[n:])
	if err != nil {
		return 0, err
	}
	e.File = file
	n += used

	if len(b) < n+8 {
		return 0, wire.ErrShortRead
	}
	e.Line = wire.Uint64(b[n:])
	n += 8

	format, used, err := wire.ReadString(b[n:])
	if err != nil {
		return 0, err
	}
	e.FormatString = format
	n += used

	tags, used, err := wire.ReadString(b[n:])
	if err != nil {
		return 0, err
	}
	e.ArgumentTags = tags
	n += used

	return n, nil
}
