// Package filesink adapts the raw record stream a session.Consume
// writes into rotating on-disk segments, optionally zstd-compressed
// and/or AES-GCM-encrypted at rest. It implements io.Writer so it can
// be passed directly to Session.Consume or Session.ReconsumeMetadata.
package filesink

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/coffersTech/nanolog/clock"
	"github.com/coffersTech/nanolog/wire"
)

// Options configures a Sink.
type Options struct {
	// Dir is the directory segments are written into. Created if it
	// does not exist.
	Dir string

	// MaxSegmentBytes rotates to a new segment before any write that
	// would take the current one past this many logical bytes. Zero
	// means never rotate (one segment for the sink's whole lifetime).
	MaxSegmentBytes int64

	// Compress, when true, wraps each segment in a streaming zstd
	// encoder.
	Compress bool

	// EncryptionKey, when non-nil, must be exactly 32 bytes; every
	// Write is sealed as an independent AES-256-GCM block. nil
	// disables encryption.
	EncryptionKey []byte

	// Clock supplies segment start/end timestamps used in filenames.
	// Defaults to clock.Real{}.
	Clock clock.Clock
}

// Sink is a rotating, optionally compressed and/or encrypted io.Writer
// over a directory of segment files. Safe for concurrent use.
type Sink struct {
	dir             string
	maxSegmentBytes int64
	compress        bool
	aead            cipher.AEAD
	clk             clock.Clock

	mu        sync.Mutex
	file      *os.File
	zw        *zstd.Encoder
	openPath  string
	startNs   int64
	curBytes  int64
}

// Open creates (if necessary) opts.Dir and returns a Sink ready to
// receive writes.
func Open(opts Options) (*Sink, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("filesink: %w", err)
	}

	s := &Sink{
		dir:             opts.Dir,
		maxSegmentBytes: opts.MaxSegmentBytes,
		compress:        opts.Compress,
		clk:             opts.Clock,
	}

	if opts.EncryptionKey != nil {
		if len(opts.EncryptionKey) != 32 {
			return nil, fmt.Errorf("filesink: encryption key must be 32 bytes, got %d", len(opts.EncryptionKey))
		}
		block, err := aes.NewCipher(opts.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("filesink: %w", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("filesink: %w", err)
		}
		s.aead = gcm
	}

	if err := s.openSegment(); err != nil {
		return nil, err
	}
	return s, nil
}

// Write implements io.Writer. Unencrypted bytes are written straight
// through (optionally via the segment's zstd encoder); encrypted
// writes are sealed as one self-contained, length-prefixed AES-GCM
// block per call, so record boundaries survive decryption on readback.
func (s *Sink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rotateIfNeeded(len(p)); err != nil {
		return 0, err
	}

	if s.aead == nil {
		if _, err := s.writeThrough(p); err != nil {
			return 0, err
		}
		s.curBytes += int64(len(p))
		return len(p), nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return 0, fmt.Errorf("filesink: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, p, nil)

	var hdr [4]byte
	wire.PutUint32(hdr[:], uint32(len(sealed)))
	if _, err := s.writeThrough(hdr[:]); err != nil {
		return 0, err
	}
	if _, err := s.writeThrough(sealed); err != nil {
		return 0, err
	}
	s.curBytes += int64(len(p))
	return len(p), nil
}

func (s *Sink) writeThrough(b []byte) (int, error) {
	if s.zw != nil {
		return s.zw.Write(b)
	}
	return s.file.Write(b)
}

// Close finalizes the current segment, flushing any pending
// compressed data and renaming it to its final, timestamped name.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeSegment()
}

func (s *Sink) rotateIfNeeded(additional int) error {
	if s.file == nil {
		return s.openSegment()
	}
	if s.maxSegmentBytes > 0 && s.curBytes+int64(additional) > s.maxSegmentBytes {
		if err := s.closeSegment(); err != nil {
			return err
		}
		return s.openSegment()
	}
	return nil
}

func (s *Sink) openSegment() error {
	s.startNs = s.clk.Now().UnixNano()
	s.openPath = filepath.Join(s.dir, fmt.Sprintf("nanolog_%d.open", s.startNs))

	f, err := os.OpenFile(s.openPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("filesink: %w", err)
	}
	s.file = f
	s.curBytes = 0

	if s.compress {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("filesink: %w", err)
		}
		s.zw = zw
	}
	return nil
}

func (s *Sink) closeSegment() error {
	if s.file == nil {
		return nil
	}
	if s.zw != nil {
		if err := s.zw.Close(); err != nil {
			return fmt.Errorf("filesink: %w", err)
		}
		s.zw = nil
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("filesink: %w", err)
	}

	endNs := s.clk.Now().UnixNano()
	ext := ".nanolog"
	if s.compress {
		ext += ".zst"
	}
	final := filepath.Join(s.dir, fmt.Sprintf("nanolog_%d_%d%s", s.startNs, endNs, ext))
	if err := os.Rename(s.openPath, final); err != nil {
		return fmt.Errorf("filesink: %w", err)
	}
	s.file = nil
	return nil
}
