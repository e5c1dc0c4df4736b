package clock

import (
	"time"

	"github.com/coffersTech/nanolog/logsource"
)

// Sampler turns a Clock into a source of monotonic tick values and
// ClockSync snapshots. Every event a producer logs should be stamped
// with the same Sampler's Ticks(), so a reader can translate a
// ClockValue into wall time using the most recent ClockSync.
type Sampler struct {
	clock Clock
	start time.Time
}

// NewSampler returns a Sampler whose tick 0 is "now" on c.
func NewSampler(c Clock) *Sampler {
	return &Sampler{clock: c, start: c.Now()}
}

// Ticks returns the number of nanoseconds elapsed since the Sampler
// was created. Nanoseconds are used as the tick unit so
// ClockFrequency is always 1e9 and no platform-specific tick rate
// needs to be discovered.
func (s *Sampler) Ticks() uint64 {
	return uint64(s.clock.Since(s.start))
}

// Sample produces a ClockSync correlating the current tick value with
// wall-clock time and the local time zone.
func (s *Sampler) Sample() logsource.ClockSync {
	now := s.clock.Now()
	_, offset := now.Zone()
	return logsource.ClockSync{
		ClockValue:     s.Ticks(),
		ClockFrequency: uint64(time.Second),
		NsSinceEpoch:   uint64(now.UnixNano()),
		TzOffset:       int32(offset),
		TzName:         zoneName(now),
	}
}

func zoneName(t time.Time) string {
	name, _ := t.Zone()
	return name
}
