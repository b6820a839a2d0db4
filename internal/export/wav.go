// Package export writes assembled series to audio files for listening.
package export

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/temblor/internal/config"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// wavPCM is the WAVE format tag for integer PCM
const wavPCM = 1

// WAVOptions controls audification of a series
type WAVOptions struct {
	// Speedup multiplies the playback rate; seismic rates are far below
	// hearing so values in the hundreds are typical. 0 or 1 plays at the
	// recorded rate.
	Speedup  float64
	BitDepth int
}

// DefaultWAVOptions plays at the recorded rate
func DefaultWAVOptions() WAVOptions {
	return WAVOptions{Speedup: 1, BitDepth: config.WAVBitDepth}
}

// WAVRate is the header sample rate used for a series
func WAVRate(ts *waveform.TimeSeries, speedup float64) int {
	if len(ts.Segments) == 0 {
		return config.WAVSampleRate
	}
	if speedup <= 0 {
		speedup = 1
	}
	rate := ts.Segments[0].SampleRate() * speedup
	if r := math.Round(rate); r >= 1 && math.Abs(rate-r) < 1e-6 {
		return int(r)
	}
	return config.WAVSampleRate
}

// Samples flattens a series into one evenly spaced sample stream, filling
// gaps between segments with zeros and dropping overlapped samples
func Samples(ts *waveform.TimeSeries) []float64 {
	if len(ts.Segments) == 0 {
		return nil
	}
	interval := ts.Segments[0].Interval
	start := ts.Segments[0].Start

	var out []float64
	for _, seg := range ts.Segments {
		at := int(math.Round((seg.Start - start) / interval))
		skip := 0
		switch {
		case at > len(out):
			out = append(out, make([]float64, at-len(out))...)
		case at < len(out):
			skip = len(out) - at
		}
		if skip < len(seg.Samples) {
			out = append(out, seg.Samples[skip:]...)
		}
	}
	return out
}

// WriteWAV writes ts as a mono PCM WAV file normalised to full scale
func WriteWAV(path string, ts *waveform.TimeSeries, opts WAVOptions) error {
	samples := Samples(ts)
	if len(samples) == 0 {
		return fmt.Errorf("no samples to write: %w", waveform.ErrEmptyResult)
	}
	bitDepth := opts.BitDepth
	if bitDepth == 0 {
		bitDepth = config.WAVBitDepth
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	rate := WAVRate(ts, opts.Speedup)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}

	enc := wav.NewEncoder(f, rate, bitDepth, 1, wavPCM)
	buf := &audio.IntBuffer{
		Data: quantize(samples, bitDepth),
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  rate,
		},
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write PCM data: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalise WAV file: %w", err)
	}
	return f.Close()
}

// quantize scales samples so the largest magnitude maps to full scale
func quantize(samples []float64, bitDepth int) []int {
	var peak float64
	for _, s := range samples {
		peak = max(peak, math.Abs(s))
	}

	maxVal := float64(audio.IntMaxSignedValue(bitDepth))
	scale := 0.0
	if peak > 0 {
		scale = maxVal / peak
	}

	// 8-bit WAV is unsigned
	var offset float64
	if bitDepth == 8 {
		offset = 128
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(s*scale + offset))
	}
	return data
}
