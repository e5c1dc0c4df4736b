package clock

import (
	"testing"
	"time"
)

func TestSamplerTicksAdvanceWithFakeClock(t *testing.T) {
	f := NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewSampler(f)
	if got := s.Ticks(); got != 0 {
		t.Fatalf("Ticks() = %d, want 0 at creation", got)
	}
	f.Advance(5 * time.Second)
	if got := s.Ticks(); got != uint64(5*time.Second) {
		t.Fatalf("Ticks() = %d, want %d", got, uint64(5*time.Second))
	}
}

func TestSampleReflectsWallClock(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(base)
	s := NewSampler(f)
	f.Advance(2 * time.Second)
	snap := s.Sample()
	if snap.ClockValue != uint64(2*time.Second) {
		t.Fatalf("ClockValue = %d", snap.ClockValue)
	}
	if snap.ClockFrequency != uint64(time.Second) {
		t.Fatalf("ClockFrequency = %d, want %d", snap.ClockFrequency, uint64(time.Second))
	}
	wantNs := uint64(base.Add(2 * time.Second).UnixNano())
	if snap.NsSinceEpoch != wantNs {
		t.Fatalf("NsSinceEpoch = %d, want %d", snap.NsSinceEpoch, wantNs)
	}
}
