package series

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/temblor/internal/waveform"
)

var errRead = errors.New("payload unreadable")

// fakeReader synthesises a ramp for each descriptor, or fails for those
// listed in failing
type fakeReader struct {
	failing map[*waveform.Descriptor]bool
	reads   int
}

func (f *fakeReader) ReadSegment(d *waveform.Descriptor) (*waveform.Segment, error) {
	f.reads++
	if f.failing[d] {
		return nil, errRead
	}
	samples := make([]float64, d.NSamples)
	for i := range samples {
		samples[i] = float64(i)
	}
	return &waveform.Segment{
		Samples:    samples,
		Start:      d.Start,
		Interval:   1 / d.SampleRate,
		Calib:      1,
		Provenance: waveform.Provenance{File: d.File, Offset: d.Offset, Decimation: 1},
		ChecksumOK: true,
	}, nil
}

func trace(start float64, n int, rate float64) *waveform.Descriptor {
	return &waveform.Descriptor{
		Station:    "ABC",
		Channel:    "BHZ",
		Network:    "XX",
		Start:      start,
		End:        waveform.EndTime(start, n, rate),
		NSamples:   n,
		SampleRate: rate,
		File:       "abc.gse",
		Offset:     int64(start),
		Selected:   true,
	}
}

func request(start, end float64, descs ...*waveform.Descriptor) *waveform.ReadRequest {
	return &waveform.ReadRequest{Start: start, End: end, Alignment: start, Descriptors: descs}
}

func TestAssembleTruncatesToWindow(t *testing.T) {
	a, b := trace(0, 100, 1), trace(100, 100, 1)
	asm := NewAssembler(&fakeReader{})

	ts, err := asm.Assemble(context.Background(), request(50, 149, b, a))

	require.NoError(t, err)
	assert.Equal(t, "ABC", ts.Station)
	assert.Equal(t, "XX", ts.Network)
	require.Len(t, ts.Segments, 2)
	assert.Equal(t, 50.0, ts.Segments[0].Start)
	assert.Equal(t, 50, ts.Segments[0].Len())
	assert.Equal(t, 50.0, ts.Segments[0].Samples[0])
	assert.Equal(t, 100.0, ts.Segments[1].Start)
	assert.Equal(t, 50, ts.Segments[1].Len())
	assert.Equal(t, 149.0, ts.End())
	assert.Equal(t, int64(100), ts.Segments[1].Provenance.Offset)
	assert.Zero(t, ts.Gaps())
}

func TestAssembleDecimates(t *testing.T) {
	asm := NewAssembler(&fakeReader{})
	asm.Decimation = 4

	ts, err := asm.Assemble(context.Background(), request(0, 100, trace(0, 100, 10)))

	require.NoError(t, err)
	seg := ts.Segments[0]
	assert.Equal(t, 25, seg.Len())
	assert.InDelta(t, 0.4, seg.Interval, 1e-12)
	assert.Equal(t, 4, seg.Provenance.Decimation)
	assert.Equal(t, []float64{0, 4, 8}, seg.Samples[:3])
}

func TestAssembleSkipsTracesOutsideWindow(t *testing.T) {
	inside, outside := trace(0, 100, 1), trace(500, 100, 1)
	r := &fakeReader{}

	ts, err := NewAssembler(r).Assemble(context.Background(), request(0, 200, inside, outside))

	require.NoError(t, err)
	assert.Len(t, ts.Segments, 1)
	assert.Equal(t, 1, r.reads)
}

func TestAssembleRecordsReadFailures(t *testing.T) {
	good, bad := trace(0, 100, 1), trace(100, 100, 1)
	r := &fakeReader{failing: map[*waveform.Descriptor]bool{bad: true}}

	ts, err := NewAssembler(r).Assemble(context.Background(), request(0, 200, good, bad))

	require.NoError(t, err)
	assert.Len(t, ts.Segments, 1)
	require.Len(t, ts.Warnings, 1)
	assert.ErrorIs(t, ts.Warnings[0], errRead)
}

func TestAssembleFailures(t *testing.T) {
	bad := trace(0, 100, 1)
	zeroRate := trace(0, 100, 1)
	zeroRate.SampleRate = 0

	tests := []struct {
		name    string
		req     *waveform.ReadRequest
		failing *waveform.Descriptor
		want    error
	}{
		{"empty window", request(10, 10, trace(0, 100, 1)), nil, waveform.ErrEmptyResult},
		{"inverted window", request(10, 5, trace(0, 100, 1)), nil, waveform.ErrEmptyResult},
		{"no descriptors", request(0, 10), nil, waveform.ErrEmptyResult},
		{"zero sample rate", request(0, 10, zeroRate), nil, waveform.ErrMalformedHeader},
		{"every read fails", request(0, 10, bad), bad, errRead},
		{"nothing in window", request(1000, 2000, trace(0, 100, 1)), nil, waveform.ErrEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeReader{failing: map[*waveform.Descriptor]bool{tt.failing: true}}

			ts, err := NewAssembler(r).Assemble(context.Background(), tt.req)

			assert.Nil(t, ts)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("every read fails is also empty", func(t *testing.T) {
		r := &fakeReader{failing: map[*waveform.Descriptor]bool{bad: true}}
		_, err := NewAssembler(r).Assemble(context.Background(), request(0, 10, bad))
		assert.ErrorIs(t, err, waveform.ErrEmptyResult)
	})
}

func TestAssembleHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeReader{}

	_, err := NewAssembler(r).Assemble(ctx, request(0, 10, trace(0, 100, 1)))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r.reads)
}

func TestAssembleAll(t *testing.T) {
	var skipped []*waveform.ReadRequest
	empty := request(500, 600, trace(0, 10, 1))

	out, err := NewAssembler(&fakeReader{}).AssembleAll(context.Background(),
		[]*waveform.ReadRequest{request(0, 5, trace(0, 10, 1)), empty},
		func(r *waveform.ReadRequest, err error) {
			assert.ErrorIs(t, err, waveform.ErrEmptyResult)
			skipped = append(skipped, r)
		})

	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, []*waveform.ReadRequest{empty}, skipped)
}
