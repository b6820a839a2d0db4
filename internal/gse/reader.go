package gse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/linuxmatters/temblor/internal/codec"
	"github.com/linuxmatters/temblor/internal/source"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// Reader decodes the payload of one trace at a time. Each call opens,
// seeks, reads and closes the file.
type Reader struct {
	Opener  source.Opener
	Decoder codec.Decoder
}

// NewReader returns a Reader reading from disk
func NewReader() *Reader {
	return &Reader{Opener: source.Default}
}

// ReadSegment decodes the trace described by d. Checksum and sample count
// mismatches are returned as segment warnings, not errors.
func (r *Reader) ReadSegment(d *waveform.Descriptor) (*waveform.Segment, error) {
	if d.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %g", waveform.ErrMalformedHeader, d.SampleRate)
	}

	opener := r.Opener
	if opener == nil {
		opener = source.Default
	}
	f, err := opener.Open(d.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", waveform.ErrIO, err)
	}
	defer f.Close()

	if err := source.SkipTo(f, d.Offset); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", waveform.ErrIO, d.File, err)
	}

	payload, sum, err := readPayload(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", waveform.ErrIO, d.File, err)
	}

	counts, err := r.decode(d.Compression, payload)
	if err != nil {
		return nil, fmt.Errorf("%s/%s at %s:%d: %w", d.Station, d.Channel, d.File, d.Offset, err)
	}
	codec.RemoveDifferences(counts, d.NDiff)
	codec.FixFirstSample(counts)

	seg := &waveform.Segment{
		Start:      d.Start,
		Interval:   1 / d.SampleRate,
		Calib:      d.Calib,
		Calper:     d.Calper,
		Provenance: waveform.Provenance{File: d.File, Offset: d.Offset, Decimation: 1},
		ChecksumOK: true,
	}

	declared, hasDeclared := d.DeclaredChecksum, d.HasChecksum
	if sum.err == nil {
		declared, hasDeclared = sum.value, true
	}
	if hasDeclared {
		if got := codec.Checksum(counts); got != declared {
			seg.ChecksumOK = false
			seg.Warnings = append(seg.Warnings,
				fmt.Errorf("%w: computed %d, declared %d", waveform.ErrChecksumMismatch, got, declared))
		}
	}
	if len(counts) != d.NSamples {
		seg.Warnings = append(seg.Warnings,
			fmt.Errorf("%w: decoded %d, header %d", waveform.ErrSampleCountMismatch, len(counts), d.NSamples))
	}

	scale := d.Calib
	if scale == 0 {
		scale = 1
	}
	seg.Samples = make([]float64, len(counts))
	for i, c := range counts {
		seg.Samples[i] = float64(c) * scale
	}
	return seg, nil
}

func (r *Reader) decode(tag string, payload []byte) ([]int32, error) {
	if strings.EqualFold(tag, PlainTag) {
		return parseIntegers(payload)
	}
	scheme, ok := SchemeForTag(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", waveform.ErrUnsupportedCompression, tag)
	}
	counts, err := r.Decoder.Decode(scheme, payload)
	if errors.Is(err, codec.ErrAllocation) {
		return nil, fmt.Errorf("%w: %w", waveform.ErrAllocation, err)
	}
	return counts, err
}

// readPayload collects the data section up to the checksum line
func readPayload(br *bufio.Reader) ([]byte, checksum, error) {
	var buf bytes.Buffer
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 && isChecksumLine(string(bytes.TrimRight(line, "\r\n"))) {
			return buf.Bytes(), parseChecksum(strings.TrimRight(string(line), "\r\n")), nil
		}
		buf.Write(line)
		if err == io.EOF {
			return buf.Bytes(), checksum{err: errors.New("missing checksum line")}, nil
		}
		if err != nil {
			return nil, checksum{}, err
		}
	}
}

func parseIntegers(payload []byte) ([]int32, error) {
	fields := bytes.Fields(payload)
	out := make([]int32, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseInt(string(f), 10, 32)
		if err != nil {
			return nil, &codec.DecodeError{Kind: codec.ErrInvalidCode, Offset: bytes.Index(payload, f)}
		}
		out = append(out, int32(n))
	}
	return out, nil
}
