// Command nanolog-gen is a demo producer: it logs synthetic events at
// a fixed rate for a fixed duration and periodically drains the
// session to a rotating filesink segment directory, exercising the
// same path a real instrumented service would use.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coffersTech/nanolog/clock"
	"github.com/coffersTech/nanolog/filesink"
	"github.com/coffersTech/nanolog/instanceid"
	"github.com/coffersTech/nanolog/logger"
	"github.com/coffersTech/nanolog/logsource"
	"github.com/coffersTech/nanolog/session"
)

func main() {
	dataDir := flag.String("data", "./nanolog-data", "directory to write rotated segments into")
	ratePerSec := flag.Int("rate", 1000, "synthetic events logged per second")
	duration := flag.Duration("duration", 10*time.Second, "how long to run before exiting; 0 runs until signaled")
	queueCapacity := flag.Int("queue", 1<<20, "per-writer queue capacity in bytes")
	consumeInterval := flag.Duration("consume-interval", 200*time.Millisecond, "how often the session is drained to disk")
	compress := flag.Bool("compress", false, "zstd-compress rotated segments")
	maxSegmentBytes := flag.Int64("max-segment-bytes", 16<<20, "rotate to a new segment past this many bytes")
	flag.Parse()

	log.Printf("nanolog-gen starting: rate=%d/s duration=%v data=%s", *ratePerSec, *duration, *dataDir)

	sink, err := filesink.Open(filesink.Options{
		Dir:             *dataDir,
		MaxSegmentBytes: *maxSegmentBytes,
		Compress:        *compress,
	})
	if err != nil {
		log.Fatalf("failed to open filesink: %v", err)
	}
	defer sink.Close()

	sampler := clock.NewSampler(clock.Real{})
	sess := session.New(sampler)

	writerName := instanceid.Ensure()
	lg := logger.New(sess, sampler, *queueCapacity, 0, writerName)

	src := &logsource.EventSource{
		Severity:     logsource.Info,
		Category:     "demo",
		Function:     "tick",
		File:         "cmd/nanolog-gen/main.go",
		Line:         0,
		FormatString: "tick {}",
		ArgumentTags: "i",
	}
	lg.RegisterSource(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		log.Printf("received signal: %v, shutting down", s)
		cancel()
	}()

	stopProducer := runProducer(ctx, lg, src, *ratePerSec)

	ticker := time.NewTicker(*consumeInterval)
	defer ticker.Stop()

	var totalBytes uint64
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			res, err := sess.Consume(sink)
			if err != nil {
				log.Printf("consume error: %v", err)
				continue
			}
			totalBytes = res.TotalBytesConsumed
		}
	}

	<-stopProducer
	// Final drain so nothing logged right before shutdown is lost.
	if res, err := sess.Consume(sink); err != nil {
		log.Printf("final consume error: %v", err)
	} else {
		totalBytes = res.TotalBytesConsumed
	}

	log.Printf("nanolog-gen exiting: total_bytes=%d dropped_events=%d", totalBytes, lg.DroppedEvents())
}

func runProducer(ctx context.Context, lg *logger.Logger, src *logsource.EventSource, ratePerSec int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if ratePerSec <= 0 {
			return
		}
		interval := time.Second / time.Duration(ratePerSec)
		if interval <= 0 {
			interval = time.Nanosecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var i uint32
		for {
			select {
			case <-ctx.Done():
				lg.Close()
				return
			case <-ticker.C:
				args := make([]byte, 4)
				args[0] = byte(i)
				args[1] = byte(i >> 8)
				args[2] = byte(i >> 16)
				args[3] = byte(i >> 24)
				lg.Log(src, args)
				i++
			}
		}
	}()
	return done
}
