// Package logger provides the producer-facing facade over a
// session.Session and session.Channel: the thing application code
// actually calls to emit an event. It owns the one logical producer
// a Channel requires, serializing concurrent callers behind a mutex,
// and implements the library's default backpressure policy: when a
// channel's queue is full, the event is dropped, counted, and the
// channel is replaced with a fresh one so future writes are not
// permanently stuck behind a saturated or abandoned queue.
package logger

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/coffersTech/nanolog/clock"
	"github.com/coffersTech/nanolog/logsource"
	"github.com/coffersTech/nanolog/session"
	"github.com/coffersTech/nanolog/wire"
)

// Logger is safe for concurrent use by any number of goroutines; it
// presents itself to the underlying Channel as a single producer.
type Logger struct {
	sess    *session.Session
	sampler *clock.Sampler

	queueCapacity int

	mu        sync.Mutex
	channel   *session.Channel
	writerID  uint64
	writerName string

	dropped atomic.Uint64
}

// New creates a Logger backed by a new Channel on sess with the given
// queue capacity (bytes) and initial writer identity.
func New(sess *session.Session, sampler *clock.Sampler, queueCapacity int, writerID uint64, writerName string) *Logger {
	prop := logsource.WriterProp{ID: writerID, Name: writerName}
	l := &Logger{
		sess:          sess,
		sampler:       sampler,
		queueCapacity: queueCapacity,
		writerID:      writerID,
		writerName:    writerName,
	}
	l.channel = sess.CreateChannel(queueCapacity, prop)
	return l
}

// RegisterSource registers src with the session, stamping its Id.
// Call this once per logging call site, not once per log call.
func (l *Logger) RegisterSource(src *logsource.EventSource) uint64 {
	return l.sess.AddEventSource(src)
}

// Enabled reports whether an event of the given severity would
// actually be written. Callers that do nontrivial work to build an
// event's arguments should check this first and skip that work
// entirely when it returns false.
func (l *Logger) Enabled(sev logsource.Severity) bool {
	return sev >= l.sess.MinSeverity()
}

// DroppedEvents returns the number of events discarded so far because
// a channel's queue was full at the time of a Log call.
func (l *Logger) DroppedEvents() uint64 { return l.dropped.Load() }

// Close abandons the logger's current channel. The session reclaims
// it on its next Consume pass once the queue has drained.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.channel.Close()
}

// SetWriterName updates the writer identity attached to future
// batches.
func (l *Logger) SetWriterName(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writerName = name
	l.sess.SetChannelWriterName(l.channel, name)
}

// SetWriterID updates the writer identity attached to future batches.
func (l *Logger) SetWriterID(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writerID = id
	l.sess.SetChannelWriterID(l.channel, id)
}

// Log encodes one event for src and enqueues it, stamping it with the
// logger's clock sampler. It returns false if src's severity is below
// the session's current minimum (args is never touched in that case)
// or if the event had to be dropped for lack of queue space.
func (l *Logger) Log(src *logsource.EventSource, args []byte) bool {
	if !l.Enabled(src.Severity) {
		return false
	}
	return l.write(src.ID, l.sampler.Ticks(), args)
}

// LogAt is Log with an explicit clock value, for callers (notably
// tests) that need deterministic timestamps.
func (l *Logger) LogAt(src *logsource.EventSource, clockValue uint64, args []byte) bool {
	if !l.Enabled(src.Severity) {
		return false
	}
	return l.write(src.ID, clockValue, args)
}

func (l *Logger) write(sourceID, clockValue uint64, args []byte) bool {
	n := wire.EventRecordLen(len(args))

	l.mu.Lock()
	defer l.mu.Unlock()

	buf, ok := l.channel.Queue().BeginWrite(n)
	if !ok {
		l.dropped.Add(1)
		fmt.Fprintf(os.Stderr, "nanolog: queue full, dropping event (writer=%q)\n", l.writerName)
		l.channel.Close()
		l.channel = l.sess.CreateChannel(l.queueCapacity, logsource.WriterProp{ID: l.writerID, Name: l.writerName})
		return false
	}
	wire.EncodeEventRecord(buf, sourceID, clockValue, args)
	l.channel.Queue().EndWrite(n)
	return true
}
