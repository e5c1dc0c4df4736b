package eventstream

import "errors"

// Sentinel errors returned by Reader.Next. Use errors.Is to test for
// them; Next always wraps them with extra context.
var (
	// ErrShortRead means the input ended before a declared record
	// could be fully read.
	ErrShortRead = errors.New("eventstream: short read")

	// ErrUnknownSource means an event record referenced a source id
	// that has not been (or was never) registered via an EventSource
	// record earlier in the stream.
	ErrUnknownSource = errors.New("eventstream: unknown source id")

	// ErrDeserializeFailure means a special record's payload could
	// not be decoded. The reader's existing state (source table,
	// current WriterProp, current ClockSync) is left untouched.
	ErrDeserializeFailure = errors.New("eventstream: deserialize failure")
)
