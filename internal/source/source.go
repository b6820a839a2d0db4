// Package source opens waveform files as plain byte streams, transparently
// decompressing gzip and zstd containers.
package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Opener opens a file reference for reading
type Opener interface {
	Open(path string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(path string) (io.ReadCloser, error)

// Open calls f(path)
func (f OpenerFunc) Open(path string) (io.ReadCloser, error) {
	return f(path)
}

// Default opens files from disk with Open
var Default Opener = OpenerFunc(Open)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Open opens path and returns a reader over its decompressed content
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rc, err := Wrap(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return rc, nil
}

// Wrap sniffs the first bytes of r, which must be positioned at its start,
// and layers a decompressor on it if needed.
// Closing the result closes r when r is an io.Closer.
func Wrap(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	closer, _ := r.(io.Closer)

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &stream{Reader: zr, close: func() error {
			zr.Close()
			return closeIf(closer)
		}}, nil

	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return &stream{Reader: zr, close: func() error {
			zr.Close()
			return closeIf(closer)
		}}, nil
	}

	// Plain seekable input is handed back rewound so SkipTo can seek
	if f, ok := r.(io.ReadSeekCloser); ok {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind: %w", err)
		}
		return f, nil
	}
	return &stream{Reader: br, close: func() error { return closeIf(closer) }}, nil
}

type stream struct {
	io.Reader
	close func() error
}

func (s *stream) Close() error {
	return s.close()
}

func closeIf(c io.Closer) error {
	if c == nil {
		return nil
	}
	return c.Close()
}

// SkipTo positions r at offset bytes from the start of the decompressed
// stream. Seekable plain files seek; everything else discards bytes.
func SkipTo(r io.Reader, offset int64) error {
	if sk, ok := r.(io.Seeker); ok {
		if _, err := sk.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to %d: %w", offset, err)
		}
		return nil
	}

	n, err := io.CopyN(io.Discard, r, offset)
	if err != nil {
		return fmt.Errorf("failed to skip to %d (reached %d): %w", offset, n, err)
	}
	return nil
}
