package session

import (
	"sync/atomic"

	"github.com/coffersTech/nanolog/logsource"
	"github.com/coffersTech/nanolog/ring"
)

// Channel is the conduit between one writer and the session: a
// lock-free byte queue, a closed flag the writer flips when it
// abandons the channel, and a WriterProp describing the writer.
// WriterProp fields are mutated only while the owning Session's mutex
// is held (by SetChannelWriterID/SetChannelWriterName on the producer
// side, by Consume on the session side), so Channel itself carries no
// lock of its own.
//
// Channel is a value object in the sense that callers never construct
// one directly; Session.CreateChannel returns a stable pointer that
// remains valid for the channel's entire lifetime.
type Channel struct {
	queue  *ring.Queue
	closed atomic.Bool
	prop   logsource.WriterProp
}

// Queue returns the channel's underlying byte queue. The single
// producer writing to this channel uses BeginWrite/EndWrite on it
// directly; only the owning Session's Consume calls BeginRead/EndRead.
func (c *Channel) Queue() *ring.Queue { return c.queue }

// Close flips the channel's closed flag. A producer calls this once
// it will never write to the channel again (e.g. on writer shutdown,
// or after giving up following a non-recoverable queue-full). It does
// not itself remove the channel; the next Consume pass observes the
// flag and destroys the channel once its queue has drained.
func (c *Channel) Close() { c.closed.Store(true) }

// Closed reports whether the channel's producer has abandoned it.
func (c *Channel) Closed() bool { return c.closed.Load() }
