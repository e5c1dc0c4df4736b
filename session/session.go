// Package session implements the broker between producers and
// consumers: a Session owns a set of Channels, the append-only
// sequence of registered EventSources, and the logic that drains
// channels into an output sink while preserving the ordering
// invariants a reader depends on (metadata before the events that
// reference it, closed-before-empty-check on channel teardown).
package session

import (
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/coffersTech/nanolog/clock"
	"github.com/coffersTech/nanolog/logsource"
	"github.com/coffersTech/nanolog/ring"
	"github.com/coffersTech/nanolog/wire"
)

// ConsumeResult summarizes one Consume or ReconsumeMetadata pass.
type ConsumeResult struct {
	BytesConsumed      uint64
	TotalBytesConsumed uint64
	ChannelsPolled     int
	ChannelsRemoved    int
}

// Session is the single point of coordination between any number of
// producer threads and one consumer thread. All Session methods are
// safe to call from multiple goroutines; Consume and ReconsumeMetadata
// additionally guarantee mutual exclusion with each other and with
// every method below that takes the session mutex. MinSeverity and
// SetMinSeverity do not take it; they use an atomic value.
type Session struct {
	mu sync.Mutex

	channels  []*Channel
	freeSlots []int

	sources            []*logsource.EventSource
	numConsumedSources int
	nextSourceID       uint64

	everEmitted       bool
	totalBytesEmitted uint64
	scratch           []byte

	minSeverity atomic.Uint32

	sampler *clock.Sampler
	logger  *log.Logger
}

// New returns an empty Session. sampler provides the ClockSync
// records emitted at stream start and on every metadata replay.
func New(sampler *clock.Sampler) *Session {
	return &Session{
		nextSourceID: 1,
		sampler:      sampler,
		logger:       log.Default(),
	}
}

// SetLogger overrides the *log.Logger the session uses for its own
// operational diagnostics (currently: channel reclamation). Passing
// nil restores log.Default().
func (s *Session) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.Default()
	}
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// CreateChannel appends a new channel with the given queue capacity
// (in bytes) and initial writer descriptor, returning a pointer that
// stays valid for the channel's entire lifetime.
func (s *Session) CreateChannel(queueCapacity int, prop logsource.WriterProp) *Channel {
	ch := &Channel{prop: prop}
	ch.queue = ring.New(queueCapacity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.freeSlots); n > 0 {
		idx := s.freeSlots[n-1]
		s.freeSlots = s.freeSlots[:n-1]
		s.channels[idx] = ch
	} else {
		s.channels = append(s.channels, ch)
	}
	return ch
}

// SetChannelWriterID updates a channel's WriterProp.ID under the
// session mutex, safe to call concurrently with Consume.
func (s *Session) SetChannelWriterID(ch *Channel, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch.prop.ID = id
}

// SetChannelWriterName updates a channel's WriterProp.Name under the
// session mutex, safe to call concurrently with Consume.
func (s *Session) SetChannelWriterName(ch *Channel, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch.prop.Name = name
}

// AddEventSource registers source, stamping its Id with the next
// available id (starting at 1, never reused) and returning that id.
func (s *Session) AddEventSource(source *logsource.EventSource) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	source.ID = s.nextSourceID
	s.nextSourceID++
	s.sources = append(s.sources, source)
	return source.ID
}

// MinSeverity returns the session's current advisory minimum
// severity. Producers check this before doing any work to format an
// event's arguments.
func (s *Session) MinSeverity() logsource.Severity {
	return logsource.Severity(s.minSeverity.Load())
}

// SetMinSeverity sets the session's advisory minimum severity.
func (s *Session) SetMinSeverity(sev logsource.Severity) {
	s.minSeverity.Store(uint32(sev))
}

// Consume drains every channel once, in slot order (a channel created
// after a removal reuses the most recently freed slot, so slot order
// can differ from creation order), and
// writes a self-describing record stream to sink: a ClockSync on the
// very first call, any EventSources registered since the last call,
// then for each channel with readable bytes a WriterProp followed by
// that channel's event bytes. Channels observed closed with an empty
// queue are removed.
//
// Consume takes the session mutex for its entire duration. This is
// what makes the ordering invariants hold: no producer can register a
// new source or create a channel mid-pass, and closed is sampled
// before the queue is inspected so a channel can never be dropped
// with unread bytes still arriving.
func (s *Session) Consume(sink io.Writer) (ConsumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result ConsumeResult
	var n uint64
	var err error

	if !s.everEmitted {
		snap := s.sampler.Sample()
		if n, err = s.writeSpecial(sink, &snap); err != nil {
			return result, err
		}
		result.BytesConsumed += n
		s.everEmitted = true
	}

	for i := s.numConsumedSources; i < len(s.sources); i++ {
		if n, err = s.writeSpecial(sink, s.sources[i]); err != nil {
			return result, err
		}
		result.BytesConsumed += n
	}
	s.numConsumedSources = len(s.sources)

	for i, ch := range s.channels {
		if ch == nil {
			continue
		}
		result.ChannelsPolled++

		closedSnapshot := ch.closed.Load()

		buf1, buf2 := ch.queue.BeginRead()
		total := len(buf1) + len(buf2)
		if total > 0 {
			// total may include TagPadding bytes left by a wrapped
			// write; harmless, since readers skip padding by tag.
			ch.prop.BatchSize = uint64(total)
			if n, err = s.writeSpecial(sink, &ch.prop); err != nil {
				return result, err
			}
			result.BytesConsumed += n

			if w, werr := sink.Write(buf1); werr != nil {
				return result, werr
			} else {
				result.BytesConsumed += uint64(w)
			}
			if len(buf2) > 0 {
				if w, werr := sink.Write(buf2); werr != nil {
					return result, werr
				} else {
					result.BytesConsumed += uint64(w)
				}
			}
		}
		ch.queue.EndRead()

		if closedSnapshot {
			s.channels[i] = nil
			s.freeSlots = append(s.freeSlots, i)
			result.ChannelsRemoved++
			s.logger.Printf("nanolog: channel removed after drain (writer_id=%d writer_name=%q)", ch.prop.ID, ch.prop.Name)
		}
	}

	s.totalBytesEmitted += result.BytesConsumed
	result.TotalBytesConsumed = s.totalBytesEmitted
	return result, nil
}

// ReconsumeMetadata emits a fresh ClockSync followed by every
// previously-consumed EventSource in id order, without touching
// channels or emitting sources Consume has not yet reached. It exists
// so a reader attaching mid-stream (e.g. after log rotation) can
// rebuild its source table without replaying event data.
func (s *Session) ReconsumeMetadata(sink io.Writer) (ConsumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result ConsumeResult
	snap := s.sampler.Sample()
	n, err := s.writeSpecial(sink, &snap)
	if err != nil {
		return result, err
	}
	result.BytesConsumed += n
	s.everEmitted = true

	for i := 0; i < s.numConsumedSources; i++ {
		n, err = s.writeSpecial(sink, s.sources[i])
		if err != nil {
			return result, err
		}
		result.BytesConsumed += n
	}

	s.totalBytesEmitted += result.BytesConsumed
	result.TotalBytesConsumed = s.totalBytesEmitted
	return result, nil
}

func (s *Session) writeSpecial(sink io.Writer, e wire.SpecialEntry) (uint64, error) {
	need := wire.RecordLen(e.Size())
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	} else {
		s.scratch = s.scratch[:need]
	}
	wire.EncodeSpecialRecord(s.scratch, e)
	n, err := sink.Write(s.scratch)
	return uint64(n), err
}
