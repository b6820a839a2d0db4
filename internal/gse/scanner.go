// Package gse reads GSE1.0 and GSE2.0 waveform messages: a header-only
// catalog scan that records payload offsets, and a reader that later seeks
// back to one payload and decodes it.
package gse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/linuxmatters/temblor/internal/source"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// Catalog is the result of scanning one file
type Catalog struct {
	File        string
	Descriptors []*waveform.Descriptor

	// Problems holds per-trace failures and warnings; the traces concerned
	// are skipped or flagged but never stop the scan
	Problems []error
}

// Scanner streams trace headers without decoding payloads
type Scanner struct {
	Opener source.Opener
}

// NewScanner returns a Scanner reading from disk
func NewScanner() *Scanner {
	return &Scanner{Opener: source.Default}
}

// ScanFile opens path, scans it and closes it
func (s *Scanner) ScanFile(path string) (*Catalog, error) {
	opener := s.Opener
	if opener == nil {
		opener = source.Default
	}

	f, err := opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", waveform.ErrIO, err)
	}
	defer f.Close()

	return s.Scan(f, path)
}

// lineReader reads lines while tracking the byte offset of the stream
type lineReader struct {
	br  *bufio.Reader
	off int64
}

// next returns the next line without its line ending and the offset it
// started at. It returns io.EOF only when no bytes remain.
func (l *lineReader) next() (string, int64, error) {
	start := l.off
	line, err := l.br.ReadString('\n')
	l.off += int64(len(line))
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), start, err
}

func tagOf(line string) string {
	if len(line) < 4 {
		return line
	}
	return line[:4]
}

// Scan reads every trace header in r. file is recorded in the descriptors as
// the reference later used to re-open the data.
func (s *Scanner) Scan(r io.Reader, file string) (*Catalog, error) {
	cat := &Catalog{File: file}
	lr := &lineReader{br: bufio.NewReaderSize(r, 64*1024)}

	var (
		cur   *waveform.Descriptor
		trace int
	)
	problem := func(off int64, err error) {
		cat.Problems = append(cat.Problems, fmt.Errorf("%s: trace %d at byte %d: %w", file, trace, off, err))
	}

	for {
		line, off, err := lr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return cat, fmt.Errorf("%w: %s: %w", waveform.ErrIO, file, err)
		}

		switch tagOf(line) {
		case tagWID2:
			if cur != nil {
				problem(off, fmt.Errorf("%w: trace has no data section", waveform.ErrMalformedHeader))
			}
			trace++
			cur, err = ParseWID2(line)
			if err != nil {
				problem(off, err)
			}

		case tagWID1:
			if cur != nil {
				problem(off, fmt.Errorf("%w: trace has no data section", waveform.ErrMalformedHeader))
			}
			trace++
			second, _, err := lr.next()
			if err != nil && err != io.EOF {
				return cat, fmt.Errorf("%w: %s: %w", waveform.ErrIO, file, err)
			}
			cur, err = ParseWID1(line, second)
			if err != nil {
				problem(off, err)
			}

		case tagSTA2:
			if cur != nil {
				if err := parseSTA2(line, cur); err != nil {
					problem(off, err)
				}
			}

		case tagDAT2, tagDAT1:
			if cur != nil {
				cur.File = file
				cur.Offset = lr.off
			}
			sum, found, err := skipPayload(lr)
			if err != nil {
				return cat, fmt.Errorf("%w: %s: %w", waveform.ErrIO, file, err)
			}
			if cur == nil {
				continue
			}
			if !found {
				problem(off, fmt.Errorf("%w: data section has no checksum line", waveform.ErrMalformedHeader))
				cur = nil
				continue
			}
			if sum.err != nil {
				problem(off, fmt.Errorf("%w: checksum: %v", waveform.ErrMalformedHeader, sum.err))
			} else {
				cur.DeclaredChecksum, cur.HasChecksum = sum.value, true
			}
			cat.Descriptors = append(cat.Descriptors, cur)
			cur = nil

		case tagSTOP:
			if cur != nil {
				problem(off, fmt.Errorf("%w: trace has no data section", waveform.ErrMalformedHeader))
			}
			return cat, nil
		}
	}

	if cur != nil {
		problem(lr.off, fmt.Errorf("%w: trace has no data section", waveform.ErrMalformedHeader))
	}
	return cat, nil
}

type checksum struct {
	value int64
	err   error
}

// skipPayload advances past a data section. found is false when the stream
// ended before a checksum line.
func skipPayload(lr *lineReader) (sum checksum, found bool, err error) {
	for {
		line, _, err := lr.next()
		if err == io.EOF {
			return sum, false, nil
		}
		if err != nil {
			return sum, false, err
		}
		if isChecksumLine(line) {
			return parseChecksum(line), true, nil
		}
	}
}

func isChecksumLine(line string) bool {
	tag := tagOf(line)
	return tag == tagCHK2 || tag == tagCHK1
}

func parseChecksum(line string) checksum {
	v := strings.TrimSpace(line[len(tagCHK2):])
	if v == "" {
		return checksum{err: errors.New("missing value")}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return checksum{err: err}
	}
	return checksum{value: n}
}
