package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/coffersTech/nanolog/clock"
	"github.com/coffersTech/nanolog/eventstream"
	"github.com/coffersTech/nanolog/logsource"
	"github.com/coffersTech/nanolog/session"
)

func newTestLogger(t *testing.T) (*Logger, *session.Session) {
	t.Helper()
	f := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	sess := session.New(clock.NewSampler(f))
	l := New(sess, clock.NewSampler(f), 4096, 1, "test-writer")
	return l, sess
}

func sourceOf(sev logsource.Severity) *logsource.EventSource {
	return &logsource.EventSource{Severity: sev, Category: "c", Function: "f", File: "f.go", FormatString: "x", ArgumentTags: ""}
}

// TestSeverityFilter is scenario S1: log one event of every severity
// at four different minimum-severity settings and check the exact
// sequence of severities that survive.
func TestSeverityFilter(t *testing.T) {
	l, sess := newTestLogger(t)

	severities := []logsource.Severity{
		logsource.Trace, logsource.Debug, logsource.Info,
		logsource.Warning, logsource.Error, logsource.Critical,
	}
	sources := make([]*logsource.EventSource, len(severities))
	for i, sev := range severities {
		sources[i] = sourceOf(sev)
		l.RegisterSource(sources[i])
	}

	argsEvaluated := 0
	logAll := func() {
		for _, src := range sources {
			if !l.Enabled(src.Severity) {
				continue
			}
			argsEvaluated++
			l.LogAt(src, 0, nil)
		}
	}

	sess.SetMinSeverity(logsource.Trace)
	logAll()
	sess.SetMinSeverity(logsource.Warning)
	logAll()
	sess.SetMinSeverity(logsource.NoLogs)
	logAll()
	sess.SetMinSeverity(logsource.Error)
	logAll()
	sess.SetMinSeverity(logsource.Trace)
	logAll()

	if argsEvaluated != 17 {
		t.Fatalf("argsEvaluated = %d, want 17 (filtered events must never reach write)", argsEvaluated)
	}

	var out bytes.Buffer
	if _, err := sess.Consume(&out); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	r := eventstream.New(&out)
	var got []logsource.Severity
	for {
		ev, err := r.Next()
		if err != nil {
			break
		}
		got = append(got, ev.Source.Severity)
	}

	want := []logsource.Severity{
		logsource.Trace, logsource.Debug, logsource.Info, logsource.Warning, logsource.Error, logsource.Critical,
		logsource.Warning, logsource.Error, logsource.Critical,
		logsource.Error, logsource.Critical,
		logsource.Trace, logsource.Debug, logsource.Info, logsource.Warning, logsource.Error, logsource.Critical,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d severity = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestDropAndReopenOnFullQueue(t *testing.T) {
	f := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	sess := session.New(clock.NewSampler(f))
	l := New(sess, clock.NewSampler(f), 64, 1, "w")

	src := sourceOf(logsource.Info)
	l.RegisterSource(src)

	wrote, dropped := 0, 0
	for i := 0; i < 50; i++ {
		if l.LogAt(src, uint64(i), []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
			wrote++
		} else {
			dropped++
		}
	}
	if dropped == 0 {
		t.Fatalf("expected at least one dropped event on a tiny queue")
	}
	if l.DroppedEvents() != uint64(dropped) {
		t.Fatalf("DroppedEvents() = %d, want %d", l.DroppedEvents(), dropped)
	}

	var out bytes.Buffer
	if _, err := sess.Consume(&out); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	r := eventstream.New(&out)
	got := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		got++
	}
	if got != wrote {
		t.Fatalf("decoded %d events, want %d (matching successful writes)", got, wrote)
	}
}
