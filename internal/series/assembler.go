// Package series executes read requests, producing one time series per
// request from the traces it names.
package series

import (
	"context"
	"errors"
	"fmt"

	"github.com/linuxmatters/temblor/internal/logger"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// SegmentReader decodes the trace a descriptor points at
type SegmentReader interface {
	ReadSegment(d *waveform.Descriptor) (*waveform.Segment, error)
}

// Assembler executes read requests one at a time
type Assembler struct {
	Reader     SegmentReader
	Decimation int // keep every n-th sample; values below 2 keep all
	Log        logger.Logger
}

// NewAssembler returns an assembler over r that keeps every sample
func NewAssembler(r SegmentReader) *Assembler {
	return &Assembler{Reader: r, Decimation: 1, Log: logger.Nop()}
}

// Assemble reads every descriptor of req, truncates the segments to the
// request window and collects them into a series. A trace that fails to read
// is recorded as a series warning and skipped; the call fails only when
// the request itself is unusable or nothing could be read.
func (a *Assembler) Assemble(ctx context.Context, req *waveform.ReadRequest) (*waveform.TimeSeries, error) {
	if req == nil || !(req.Start < req.End) {
		return nil, fmt.Errorf("window has no length: %w", waveform.ErrEmptyResult)
	}
	if len(req.Descriptors) == 0 {
		return nil, fmt.Errorf("no traces requested: %w", waveform.ErrEmptyResult)
	}
	for _, d := range req.Descriptors {
		if d.SampleRate <= 0 {
			return nil, fmt.Errorf("%s: sample rate %g: %w", d, d.SampleRate, waveform.ErrMalformedHeader)
		}
	}

	first := req.Descriptors[0]
	ts := &waveform.TimeSeries{
		Station: first.Station,
		Channel: first.Channel,
		Network: first.Network,
	}

	var lastErr error
	for _, d := range req.Descriptors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.End < req.Start || d.Start > req.End {
			continue
		}

		seg, err := a.Reader.ReadSegment(d)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", d, err)
			ts.Warnings = append(ts.Warnings, lastErr)
			a.log().Warnf("skipping trace: %v", lastErr)
			continue
		}
		for _, w := range seg.Warnings {
			a.log().Warnf("%s: %v", d, w)
		}

		if !seg.Truncate(req.Start, req.End) {
			continue
		}
		seg.Decimate(a.Decimation)
		ts.Add(seg)
	}

	if len(ts.Segments) == 0 {
		if lastErr != nil {
			return nil, errors.Join(waveform.ErrEmptyResult, lastErr)
		}
		return nil, fmt.Errorf("no samples in window: %w", waveform.ErrEmptyResult)
	}

	a.log().Debugf("%s/%s: %d segments, %d samples", ts.Station, ts.Channel, len(ts.Segments), ts.Len())
	return ts, nil
}

// AssembleAll runs every request in order. Requests that yield nothing are
// reported through skip, when set, and left out of the result.
func (a *Assembler) AssembleAll(ctx context.Context, reqs []*waveform.ReadRequest, skip func(*waveform.ReadRequest, error)) ([]*waveform.TimeSeries, error) {
	var out []*waveform.TimeSeries
	for _, req := range reqs {
		ts, err := a.Assemble(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			if skip != nil {
				skip(req, err)
			}
			continue
		}
		out = append(out, ts)
	}
	return out, nil
}

func (a *Assembler) log() logger.Logger {
	if a.Log == nil {
		return logger.Nop()
	}
	return a.Log
}
