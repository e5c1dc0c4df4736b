package logsource

import "github.com/coffersTech/nanolog/wire"

// WriterProp is the mutable descriptor of a producer: its identity
// (Id, Name) and, as stamped by the session during a drain,
// BatchSize — the number of event bytes immediately following the
// WriterProp record that belong to this writer.
type WriterProp struct {
	ID        uint64
	Name      string
	BatchSize uint64
}

// Tag returns the special tag this WriterProp serializes under.
func (WriterProp) Tag() uint64 { return wire.TagWriterProp }

// Size returns the number of payload bytes Encode writes.
func (p *WriterProp) Size() int {
	return 8 + wire.StringSize(p.Name) + 8
}

// Encode writes p's fields, in wire order, to the front of b and
// returns the number of bytes written.
func (p *WriterProp) Encode(b []byte) int {
	n := 0
	wire.PutUint64(b[n:], p.ID)
	n += 8
	n += wire.PutString(b[n:], p.Name)
	wire.PutUint64(b[n:], p.BatchSize)
	n += 8
	return n
}

// Decode populates p from b and returns the number of bytes consumed.
func (p *WriterProp) Decode(b []byte) (int, error) {
	n := 0
	if len(b) < n+8 {
		return 0, wire.ErrShortRead
	}
	p.ID = wire.Uint64(b[n:])
	n += 8

	name, used, err := wire.ReadString(b[n:])
	if err != nil {
		return 0, err
	}
	p.Name = name
	n += used

	if len(b) < n+8 {
		return 0, wire.ErrShortRead
	}
	p.BatchSize = wire.Uint64(b[n:])
	n += 8
	return n, nil
}

// Clone returns a copy of p, safe to retain beyond the lifetime of
// any buffer p was decoded from.
func (p WriterProp) Clone() WriterProp { return p }
