package filesink

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/coffersTech/nanolog/wire"
)

// OpenSegment opens a segment file for reading, transparently
// decompressing it if its name ends in ".zst". The returned Close
// also releases the zstd decoder, if any.
func OpenSegment(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("filesink: %w", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("filesink: %w", err)
	}
	return &zstdReadCloser{zr: zr, f: f}, nil
}

type zstdReadCloser struct {
	zr *zstd.Decoder
	f  *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.zr.Read(p) }
func (z *zstdReadCloser) Close() error {
	z.zr.Close()
	return z.f.Close()
}

// DecryptReader wraps r, undoing the length-prefixed AES-GCM framing
// Sink.Write applies when an EncryptionKey is configured, and
// presenting the decrypted record stream to the caller. key must be
// the same 32-byte key the Sink was opened with.
func DecryptReader(r io.Reader, key []byte) (io.Reader, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("filesink: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("filesink: %w", err)
	}
	return &decryptReader{r: r, aead: gcm}, nil
}

type decryptReader struct {
	r    io.Reader
	aead cipher.AEAD
	buf  []byte
	pos  int
}

func (d *decryptReader) Read(p []byte) (int, error) {
	if d.pos >= len(d.buf) {
		if err := d.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, d.buf[d.pos:])
	d.pos += n
	return n, nil
}

func (d *decryptReader) fill() error {
	var hdr [4]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		return err
	}
	size := int(wire.Uint32(hdr[:]))
	sealed := make([]byte, size)
	if _, err := io.ReadFull(d.r, sealed); err != nil {
		return fmt.Errorf("filesink: truncated encrypted block: %w", err)
	}

	nonceSize := d.aead.NonceSize()
	if len(sealed) < nonceSize {
		return fmt.Errorf("filesink: encrypted block shorter than nonce")
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plain, err := d.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("filesink: decrypt: %w", err)
	}
	d.buf = plain
	d.pos = 0
	return nil
}
