// Command nanolog-cat decodes one or more rotated segment files and
// prints minimal diagnostic information per event: its source site,
// clock value, and argument byte length. It deliberately does not
// format or render events into human-readable lines; that is a
// separate, out-of-scope concern left to downstream tooling that
// understands each source's format string and argument tags.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/coffersTech/nanolog/eventstream"
	"github.com/coffersTech/nanolog/filesink"
)

func main() {
	keyHex := flag.String("key-hex", "", "32-byte AES-GCM key, hex-encoded, if segments are encrypted")
	flag.Parse()

	var key []byte
	if *keyHex != "" {
		k, err := hex.DecodeString(*keyHex)
		if err != nil {
			log.Fatalf("bad -key-hex: %v", err)
		}
		key = k
	}

	args := flag.Args()
	if len(args) == 0 {
		log.Fatalf("usage: nanolog-cat [-key-hex HEX] segment [segment...]")
	}

	var total int
	for _, path := range args {
		n, err := catOne(path, key)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		total += n
	}
	log.Printf("decoded %d events from %d segment(s)", total, len(args))
}

func catOne(path string, key []byte) (int, error) {
	rc, err := filesink.OpenSegment(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if key != nil {
		dr, err := filesink.DecryptReader(rc, key)
		if err != nil {
			return 0, err
		}
		r = dr
	}

	rd := eventstream.New(r)
	count := 0
	for {
		ev, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		fmt.Printf("%s\t%s:%d\tsev=%d\tclock=%d\targs=%dB\n",
			ev.Source.Function, ev.Source.File, ev.Source.Line,
			ev.Source.Severity, ev.ClockValue, len(ev.Arguments))
		count++
	}
	return count, nil
}
