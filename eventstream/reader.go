// Package eventstream decodes the binary record stream a session
// writes, one event at a time, transparently absorbing ClockSync,
// EventSource, and WriterProp metadata records along the way.
package eventstream

import (
	"fmt"
	"io"

	"github.com/coffersTech/nanolog/logsource"
	"github.com/coffersTech/nanolog/wire"
)

// Reader decodes events from an io.Reader. It keeps the decoding
// state (registered sources, current writer, current clock sync) a
// single event needs, so callers just loop on Next.
//
// A Reader is not safe for concurrent use; it is meant to be driven
// by a single goroutine, the same way one file has one reader.
type Reader struct {
	r io.Reader

	sources map[uint64]*logsource.EventSource
	prop    logsource.WriterProp
	sync    logsource.ClockSync

	sizeBuf [4]byte
	scratch []byte
	event   logsource.Event
}

// New returns a Reader decoding records from r.
func New(r io.Reader) *Reader {
	return &Reader{
		r:       r,
		sources: make(map[uint64]*logsource.EventSource),
	}
}

// WriterProp returns the most recently decoded WriterProp; the event
// returned by the most recent successful Next belongs to this writer.
func (rd *Reader) WriterProp() logsource.WriterProp { return rd.prop }

// ClockSync returns the most recently decoded ClockSync, for
// translating an event's ClockValue into wall-clock time.
func (rd *Reader) ClockSync() logsource.ClockSync { return rd.sync }

// Source looks up, by id, an EventSource that an earlier call to Next
// has absorbed from the stream.
func (rd *Reader) Source(id uint64) (*logsource.EventSource, bool) {
	src, ok := rd.sources[id]
	return src, ok
}

// Next decodes and returns the next event in the stream, silently
// absorbing any metadata records in between. It returns io.EOF once
// the input is cleanly exhausted at a record boundary.
//
// A single malformed record never poisons the reader: on
// ErrDeserializeFailure or ErrUnknownSource the reader's existing
// state is untouched and the next call to Next resumes at the
// following record.
func (rd *Reader) Next() (*logsource.Event, error) {
	for {
		if _, err := io.ReadFull(rd.r, rd.sizeBuf[:]); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: reading size prefix: %v", ErrShortRead, err)
		}

		size := wire.Uint32(rd.sizeBuf[:])

		if cap(rd.scratch) < int(size) {
			rd.scratch = make([]byte, size)
		} else {
			rd.scratch = rd.scratch[:size]
		}
		if _, err := io.ReadFull(rd.r, rd.scratch); err != nil {
			return nil, fmt.Errorf("%w: reading %d-byte record body: %v", ErrShortRead, size, err)
		}
		if int(size) < wire.TagFieldLen {
			return nil, fmt.Errorf("%w: record size %d smaller than tag field", ErrDeserializeFailure, size)
		}

		tag := wire.Uint64(rd.scratch[0:8])
		payload := rd.scratch[8:]

		if wire.IsSpecial(tag) {
			if err := rd.absorbSpecial(tag, payload); err != nil {
				return nil, err
			}
			continue
		}

		src, ok := rd.sources[tag]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSource, tag)
		}
		if len(payload) < 8 {
			return nil, fmt.Errorf("%w: event payload too short for clock value", ErrDeserializeFailure)
		}
		rd.event.Source = src
		rd.event.ClockValue = wire.Uint64(payload[0:8])
		rd.event.Arguments = payload[8:]
		return &rd.event, nil
	}
}

// absorbSpecial decodes a special record into a temporary value and
// commits it to the reader's state only on success, so a malformed
// special record leaves the previous value intact.
func (rd *Reader) absorbSpecial(tag uint64, payload []byte) error {
	switch tag {
	case wire.TagClockSync:
		var tmp logsource.ClockSync
		if _, err := tmp.Decode(payload); err != nil {
			return fmt.Errorf("%w: ClockSync: %v", ErrDeserializeFailure, err)
		}
		rd.sync = tmp
		return nil
	case wire.TagEventSource:
		var tmp logsource.EventSource
		if _, err := tmp.Decode(payload); err != nil {
			return fmt.Errorf("%w: EventSource: %v", ErrDeserializeFailure, err)
		}
		stored := tmp
		rd.sources[stored.ID] = &stored
		return nil
	case wire.TagWriterProp:
		var tmp logsource.WriterProp
		if _, err := tmp.Decode(payload); err != nil {
			return fmt.Errorf("%w: WriterProp: %v", ErrDeserializeFailure, err)
		}
		rd.prop = tmp
		return nil
	default:
		// Unknown special tag: forward-compatible readers skip it.
		return nil
	}
}
