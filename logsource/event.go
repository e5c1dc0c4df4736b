package logsource

// Event is the reader-side view of one decoded log event: the
// EventSource it was logged against and the raw argument bytes to be
// visited per the source's ArgumentTags grammar. Arguments aliases the
// reader's internal buffer and is only valid until the next call that
// advances the reader.
type Event struct {
	Source     *EventSource
	ClockValue uint64
	Arguments  []byte
}
