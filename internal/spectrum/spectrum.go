// Package spectrum summarises the frequency content of decoded segments.
package spectrum

import (
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/argusdusty/gofft"

	"github.com/linuxmatters/temblor/internal/config"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// Spectrum is a one-sided amplitude spectrum averaged over FFT windows
type Spectrum struct {
	Resolution float64   // Hz per bin
	Amplitudes []float64 // bins 0..size/2
	Windows    int
}

// Peak is a local maximum of the spectrum
type Peak struct {
	Frequency float64
	Amplitude float64
}

// ApplyHanning applies a Hanning window to the input data
func ApplyHanning(data []float64) []float64 {
	windowed := make([]float64, len(data))
	n := len(data)
	if n == 1 {
		copy(windowed, data)
		return windowed
	}
	for i := range data {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = data[i] * window
	}
	return windowed
}

// Analyze averages the amplitude spectra of consecutive windows of size
// samples. size is rounded up to a power of two; short input is zero padded.
func Analyze(samples []float64, rate float64, size int) (*Spectrum, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("sample rate %g: %w", rate, waveform.ErrMalformedHeader)
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("%d samples: %w", len(samples), waveform.ErrEmptyResult)
	}
	if size <= 0 {
		size = config.FFTSize
	}
	size = nextPow2(min(size, nextPow2(len(samples))))

	sp := &Spectrum{
		Resolution: rate / float64(size),
		Amplitudes: make([]float64, size/2+1),
	}

	chunk := make([]float64, size)
	for off := 0; off < len(samples); off += size {
		clear(chunk)
		n := copy(chunk, samples[off:])
		if n < size && sp.Windows > 0 {
			break
		}
		demean(chunk[:n])

		coeffs := gofft.Float64ToComplex128Array(ApplyHanning(chunk))
		if err := gofft.FFT(coeffs); err != nil {
			return nil, fmt.Errorf("FFT computation failed: %w", err)
		}
		for i := range sp.Amplitudes {
			re, im := real(coeffs[i]), imag(coeffs[i])
			sp.Amplitudes[i] += math.Sqrt(re*re+im*im) * 2 / float64(size)
		}
		sp.Windows++
	}

	for i := range sp.Amplitudes {
		sp.Amplitudes[i] /= float64(sp.Windows)
	}
	return sp, nil
}

// Series analyses the longest segment of ts
func Series(ts *waveform.TimeSeries, size int) (*Spectrum, error) {
	var longest *waveform.Segment
	for _, s := range ts.Segments {
		if longest == nil || s.Len() > longest.Len() {
			longest = s
		}
	}
	if longest == nil {
		return nil, fmt.Errorf("no segments: %w", waveform.ErrEmptyResult)
	}
	return Analyze(longest.Samples, longest.SampleRate(), size)
}

// Frequency of bin i
func (s *Spectrum) Frequency(i int) float64 {
	return float64(i) * s.Resolution
}

// Peaks returns up to n local maxima, largest first. The DC bin is never a peak.
func (s *Spectrum) Peaks(n int) []Peak {
	var peaks []Peak
	a := s.Amplitudes
	for i := 1; i < len(a); i++ {
		if a[i] <= 0 || a[i] < a[i-1] || (i+1 < len(a) && a[i] <= a[i+1]) {
			continue
		}
		peaks = append(peaks, Peak{Frequency: s.Frequency(i), Amplitude: a[i]})
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Amplitude > peaks[j].Amplitude
	})
	if len(peaks) > n {
		peaks = peaks[:n]
	}
	return peaks
}

func demean(x []float64) {
	if len(x) == 0 {
		return
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	for i := range x {
		x[i] -= mean
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
