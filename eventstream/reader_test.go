package eventstream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/coffersTech/nanolog/logsource"
	"github.com/coffersTech/nanolog/wire"
)

func appendSpecial(buf *bytes.Buffer, e wire.SpecialEntry) {
	b := make([]byte, wire.RecordLen(e.Size()))
	wire.EncodeSpecialRecord(b, e)
	buf.Write(b)
}

func appendEvent(buf *bytes.Buffer, sourceID, clockValue uint64, args []byte) {
	b := make([]byte, wire.EventRecordLen(len(args)))
	wire.EncodeEventRecord(b, sourceID, clockValue, args)
	buf.Write(b)
}

func appendRaw(buf *bytes.Buffer, size uint32, tag uint64, payload []byte) {
	var hdr [12]byte
	wire.PutUint32(hdr[0:], size)
	wire.PutUint64(hdr[4:], tag)
	buf.Write(hdr[:])
	buf.Write(payload)
}

func TestUnknownSourceThenRecovery(t *testing.T) {
	var buf bytes.Buffer
	src := &logsource.EventSource{ID: 123, Category: "c", Function: "f", File: "f.go", FormatString: "x", ArgumentTags: "y"}
	appendSpecial(&buf, src)
	appendEvent(&buf, 124, 1, nil) // references a source never registered
	appendEvent(&buf, 123, 2, nil)

	r := New(&buf)
	_, err := r.Next()
	if !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("err = %v, want ErrUnknownSource", err)
	}

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("second Next: %v", err)
	}
	if ev.Source.ID != 123 || ev.ClockValue != 2 {
		t.Fatalf("got source %d clock %d, want 123/2", ev.Source.ID, ev.ClockValue)
	}
}

func TestCorruptWriterPropIsolatesError(t *testing.T) {
	var buf bytes.Buffer
	src123 := &logsource.EventSource{ID: 123, Category: "c", Function: "f", File: "f.go", FormatString: "x", ArgumentTags: "y"}
	src124 := &logsource.EventSource{ID: 124, Category: "c", Function: "f", File: "f.go", FormatString: "x", ArgumentTags: "y"}
	appendSpecial(&buf, src123)
	appendSpecial(&buf, src124)

	goodProp := &logsource.WriterProp{ID: 1, Name: "foo", BatchSize: 0}
	appendSpecial(&buf, goodProp)
	appendEvent(&buf, 123, 10, nil)

	// A WriterProp record whose declared size claims more bytes than
	// are actually supplied for the Name string: the size prefix says
	// there's a complete record, but the embedded string length field
	// inside the payload points past the end of payload, so Decode
	// fails and the writer prop from above must remain in effect.
	badPayload := make([]byte, 8+4) // id(8) + name-length-prefix(4) claiming a name that isn't there
	wire.PutUint32(badPayload[8:], 50)
	appendRaw(&buf, uint32(wire.TagFieldLen+len(badPayload)), wire.TagWriterProp, badPayload)

	appendEvent(&buf, 124, 11, nil)

	r := New(&buf)

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if ev.Source.ID != 123 || r.WriterProp() != *goodProp {
		t.Fatalf("unexpected state after first event: source=%d prop=%+v", ev.Source.ID, r.WriterProp())
	}

	_, err = r.Next()
	if !errors.Is(err, ErrDeserializeFailure) {
		t.Fatalf("err = %v, want ErrDeserializeFailure", err)
	}
	if r.WriterProp() != *goodProp {
		t.Fatalf("WriterProp mutated by failed decode: %+v", r.WriterProp())
	}

	ev, err = r.Next()
	if err != nil {
		t.Fatalf("third Next: %v", err)
	}
	if ev.Source.ID != 124 || r.WriterProp() != *goodProp {
		t.Fatalf("unexpected state after recovery: source=%d prop=%+v", ev.Source.ID, r.WriterProp())
	}
}

func TestUnknownSpecialIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	src := &logsource.EventSource{ID: 1, Category: "c", Function: "f", File: "f.go", FormatString: "x", ArgumentTags: "y"}
	appendSpecial(&buf, src)
	appendRaw(&buf, uint32(wire.TagFieldLen+4), wire.SpecialBit|0x4242, []byte{1, 2, 3, 4})
	appendEvent(&buf, 1, 5, []byte{9})

	r := New(&buf)
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.Source.ID != 1 || ev.ClockValue != 5 || !bytes.Equal(ev.Arguments, []byte{9}) {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestCleanEOF(t *testing.T) {
	r := New(&bytes.Buffer{})
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}
