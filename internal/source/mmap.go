package source

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Mapped opens plain files as read-only memory maps so that repeated payload
// reads seek without copying the file. Compressed or empty files fall back to
// the streaming path of Open.
var Mapped Opener = OpenerFunc(OpenMapped)

// OpenMapped is the Opener behind Mapped
func OpenMapped(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		return Wrap(f)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}

	if bytes.HasPrefix(data, gzipMagic) || bytes.HasPrefix(data, zstdMagic) {
		if err := data.Unmap(); err != nil {
			f.Close()
			return nil, err
		}
		rc, err := Wrap(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return rc, nil
	}

	return &mapped{Reader: bytes.NewReader(data), data: data, file: f}, nil
}

// mapped reads and seeks over a memory map
type mapped struct {
	*bytes.Reader
	data mmap.MMap
	file *os.File
}

func (m *mapped) Close() error {
	err := m.data.Unmap()
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}
