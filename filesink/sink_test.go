package filesink

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/coffersTech/nanolog/clock"
)

func TestWriteRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s, err := Open(Options{Dir: dir, MaxSegmentBytes: 10, Clock: fc})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	s.Write([]byte("0123456789")) // exactly fills first segment
	fc.Advance(time.Second)
	s.Write([]byte("more"))       // must rotate first
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d segment files, want 2: %v", len(entries), entries)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".nanolog" {
			t.Fatalf("unexpected segment name %s", e.Name())
		}
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{Dir: dir, Compress: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	payload := bytes.Repeat([]byte("hello nanolog "), 100)
	if _, err := s.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("want 1 segment, got %d", len(entries))
	}
	path := filepath.Join(dir, entries[0].Name())

	rc, err := OpenSegment(path)
	if err != nil {
		t.Fatalf("OpenSegment: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	key := bytes.Repeat([]byte{0x42}, 32)
	s, err := Open(Options{Dir: dir, EncryptionKey: key})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	records := [][]byte{[]byte("record one"), []byte("record two, a bit longer")}
	for _, r := range records {
		if _, err := s.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	path := filepath.Join(dir, entries[0].Name())
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	dr, err := DecryptReader(f, key)
	if err != nil {
		t.Fatalf("DecryptReader: %v", err)
	}
	got, err := io.ReadAll(dr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := append(append([]byte{}, records[0]...), records[1]...)
	if !bytes.Equal(got, want) {
		t.Fatalf("decrypted = %q, want %q", got, want)
	}
}

func TestPurgeRemovesOldClosedSegments(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	old := filepath.Join(dir, "nanolog_1000_2000.nanolog")
	fresh := filepath.Join(dir, "nanolog_1000_"+strconv.FormatInt(now.UnixNano(), 10)+".nanolog")
	stillOpen := filepath.Join(dir, "nanolog_3000.open")
	for _, p := range []string{old, fresh, stillOpen} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	removed, err := Purge(dir, time.Hour, now)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if len(removed) != 1 || removed[0] != filepath.Base(old) {
		t.Fatalf("removed = %v, want only %s", removed, filepath.Base(old))
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh segment should survive: %v", err)
	}
	if _, err := os.Stat(stillOpen); err != nil {
		t.Fatalf("open segment should never be purged: %v", err)
	}
}
