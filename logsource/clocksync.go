package logsource

import "github.com/coffersTech/nanolog/wire"

// ClockSync correlates a producer's monotonic clock with wall-clock
// time, letting a reader translate any event's ClockValue into a
// calendar time. It is emitted once at stream start and again on
// every metadata replay (e.g. after log rotation).
type ClockSync struct {
	ClockValue     uint64
	ClockFrequency uint64
	NsSinceEpoch   uint64
	TzOffset       int32
	TzName         string
}

// Tag returns the special tag this ClockSync serializes under.
func (ClockSync) Tag() uint64 { return wire.TagClockSync }

// Size returns the number of payload bytes Encode writes.
func (c *ClockSync) Size() int {
	return 8 + 8 + 8 + 4 + wire.StringSize(c.TzName)
}

// Encode writes c's fields, in wire order, to the front of b and
// returns the number of bytes written.
func (c *ClockSync) Encode(b []byte) int {
	n := 0
	wire.PutUint64(b[n:], c.ClockValue)
	n += 8
	wire.PutUint64(b[n:], c.ClockFrequency)
	n += 8
	wire.PutUint64(b[n:], c.NsSinceEpoch)
	n += 8
	wire.PutInt32(b[n:], c.TzOffset)
	n += 4
	n += wire.PutString(b[n:], c.TzName)
	return n
}

// Decode populates c from b and returns the number of bytes consumed.
func (c *ClockSync) Decode(b []byte) (int, error) {
	if len(b) < 28 {
		return 0, wire.ErrShortRead
	}
	n := 0
	c.ClockValue = wire.Uint64(b[n:])
	n += 8
	c.ClockFrequency = wire.Uint64(b[n:])
	n += 8
	c.NsSinceEpoch = wire.Uint64(b[n:])
	n += 8
	c.TzOffset = wire.Int32(b[n:])
	n += 4

	name, used, err := wire.ReadString(b[n:])
	if err != nil {
		return 0, err
	}
	c.TzName = name
	n += used
	return n, nil
}
