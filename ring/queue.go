// Package ring implements a bounded, lock-free, single-producer
// single-consumer byte queue. One goroutine may call BeginWrite/EndWrite,
// and a (possibly different) single goroutine may call
// BeginRead/EndRead, concurrently and without any mutex: the two sides
// only ever communicate through a pair of atomic cursors.
package ring

import (
	"math/bits"
	"sync/atomic"

	"github.com/coffersTech/nanolog/wire"
)

// Queue is a fixed-capacity ring buffer of bytes. Capacity is rounded
// up to the next power of two so indices can be masked instead of
// divided. The zero Queue is not usable; construct one with New.
type Queue struct {
	buf      []byte
	capacity uint64
	mask     uint64

	// Producer-owned; touched only by the goroutine calling
	// BeginWrite/EndWrite.
	writeLocal uint64
	reservedAt uint64

	// Consumer-owned; touched only by the goroutine calling
	// BeginRead/EndRead.
	readLocal   uint64
	readPending uint64

	// Shared cursors. writeIdx is published (Store) by the producer
	// and observed (Load) by the consumer; readIdx the reverse. Both
	// are monotonically increasing total byte counts, never wrapped;
	// a physical buffer offset is always (count & mask).
	writeIdx atomic.Uint64
	readIdx  atomic.Uint64
}

// New returns a Queue with capacity at least size bytes, rounded up
// to the next power of two. size must be positive.
func New(size int) *Queue {
	if size <= 0 {
		panic("ring: size must be positive")
	}
	cap := nextPow2(uint64(size))
	return &Queue{
		buf:      make([]byte, cap),
		capacity: cap,
		mask:     cap - 1,
	}
}

func nextPow2(n uint64) uint64 {
	if n&(n-1) == 0 {
		return n
	}
	return uint64(1) << bits.Len64(n)
}

// Capacity returns the queue's usable capacity in bytes.
func (q *Queue) Capacity() int { return int(q.capacity) }

// BeginWrite reserves a single contiguous region of exactly n bytes
// for the caller to fill in, returning ok=false if there is not
// currently enough room. If the record does not fit in the remaining
// contiguous tail of the buffer but does fit after wrapping, BeginWrite
// transparently publishes a padding record to cover the unused tail
// (see wire.FillPadding) and reserves the requested region starting at
// offset zero instead. The caller must follow a successful BeginWrite
// with exactly one call to EndWrite before reserving again.
func (q *Queue) BeginWrite(n int) ([]byte, bool) {
	if n <= 0 {
		return nil, false
	}
	size := uint64(n)
	readPos := q.readIdx.Load()
	free := q.capacity - (q.writeLocal - readPos)
	offset := q.writeLocal & q.mask
	tailAvail := q.capacity - offset

	if size <= tailAvail {
		if size > free {
			return nil, false
		}
		q.reservedAt = q.writeLocal
		return q.buf[offset : offset+size], true
	}

	// Doesn't fit before the end of the backing array; only way to
	// hand back a single contiguous slice is to wrap to offset zero,
	// wasting the tail. That waste must itself be a well-formed,
	// skippable record or the consumer has no way to know how far to
	// skip.
	if tailAvail < wire.MinPaddingSize || tailAvail+size > free {
		return nil, false
	}
	wire.FillPadding(q.buf[offset : offset+tailAvail])
	q.writeLocal += tailAvail
	q.writeIdx.Store(q.writeLocal)

	q.reservedAt = q.writeLocal
	return q.buf[0:size], true
}

// EndWrite publishes n bytes (n must be <= the length of the slice
// returned by the preceding BeginWrite) as now readable.
func (q *Queue) EndWrite(n int) {
	q.writeLocal = q.reservedAt + uint64(n)
	q.writeIdx.Store(q.writeLocal)
}

// BeginRead returns up to two contiguous slices covering all bytes
// published since the last EndRead. buf2 is non-empty only when the
// readable region wraps the end of the backing array; in that case
// buf1 immediately precedes buf2 in the logical stream. Both slices
// are empty when the queue has nothing new to read.
func (q *Queue) BeginRead() (buf1, buf2 []byte) {
	writePos := q.writeIdx.Load()
	readable := writePos - q.readLocal
	if readable == 0 {
		q.readPending = 0
		return nil, nil
	}
	offset := q.readLocal & q.mask
	avail := q.capacity - offset
	if readable <= avail {
		q.readPending = readable
		return q.buf[offset : offset+readable], nil
	}
	q.readPending = readable
	return q.buf[offset : offset+avail], q.buf[0 : readable-avail]
}

// EndRead releases all bytes returned by the most recent BeginRead,
// making their space available for new writes.
func (q *Queue) EndRead() {
	q.readLocal += q.readPending
	q.readIdx.Store(q.readLocal)
	q.readPending = 0
}

// Readable returns the number of bytes currently available to read,
// without reserving them. Safe to call from the consumer goroutine.
func (q *Queue) Readable() int {
	return int(q.writeIdx.Load() - q.readLocal)
}
