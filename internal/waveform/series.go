package waveform

import (
	"math"
	"sort"
)

// Provenance locates the trace a segment was decoded from
type Provenance struct {
	File       string
	Offset     int64
	Decimation int
}

// Segment is one decoded, uniformly sampled run of data
type Segment struct {
	Samples  []float64
	Start    float64
	Interval float64 // seconds between samples
	Calib    float64
	Calper   float64

	Provenance Provenance

	ChecksumOK bool
	Warnings   []error
}

// Len returns the number of samples
func (s *Segment) Len() int {
	return len(s.Samples)
}

// End is the time of the last sample
func (s *Segment) End() float64 {
	if len(s.Samples) == 0 {
		return s.Start
	}
	return s.Start + float64(len(s.Samples)-1)*s.Interval
}

// SampleRate is the reciprocal of the interval
func (s *Segment) SampleRate() float64 {
	if s.Interval <= 0 {
		return 0
	}
	return 1 / s.Interval
}

// Truncate keeps only samples inside [start, end] and reports whether any remain
func (s *Segment) Truncate(start, end float64) bool {
	if s.Interval <= 0 || len(s.Samples) == 0 {
		return false
	}
	const eps = 1e-6

	first := 0
	if start > s.Start {
		first = int(math.Ceil((start-s.Start)/s.Interval - eps))
	}
	last := len(s.Samples) - 1
	if end < s.End() {
		last = int(math.Floor((end-s.Start)/s.Interval + eps))
	}
	if first > last || first >= len(s.Samples) || last < 0 {
		s.Samples = s.Samples[:0]
		return false
	}

	s.Start += float64(first) * s.Interval
	s.Samples = s.Samples[first : last+1]
	return true
}

// Decimate keeps every n-th sample
func (s *Segment) Decimate(n int) {
	if n <= 1 {
		return
	}
	out := s.Samples[:0]
	for i := 0; i < len(s.Samples); i += n {
		out = append(out, s.Samples[i])
	}
	s.Samples = out
	s.Interval *= float64(n)
	s.Provenance.Decimation = n
}

// TimeSeries is the time ordered set of segments for one channel. Segments
// need not be contiguous.
type TimeSeries struct {
	Station string
	Channel string
	Network string

	Segments []*Segment
	Warnings []error
}

// Add inserts seg keeping segments ordered by start time
func (ts *TimeSeries) Add(seg *Segment) {
	i := sort.Search(len(ts.Segments), func(i int) bool {
		return ts.Segments[i].Start > seg.Start
	})
	ts.Segments = append(ts.Segments, nil)
	copy(ts.Segments[i+1:], ts.Segments[i:])
	ts.Segments[i] = seg
}

// Start is the time of the first sample
func (ts *TimeSeries) Start() float64 {
	if len(ts.Segments) == 0 {
		return 0
	}
	return ts.Segments[0].Start
}

// End is the latest sample time across all segments
func (ts *TimeSeries) End() float64 {
	var end float64
	for i, s := range ts.Segments {
		if e := s.End(); i == 0 || e > end {
			end = e
		}
	}
	return end
}

// Duration is End minus Start
func (ts *TimeSeries) Duration() float64 {
	return ts.End() - ts.Start()
}

// Len is the total number of samples
func (ts *TimeSeries) Len() int {
	n := 0
	for _, s := range ts.Segments {
		n += len(s.Samples)
	}
	return n
}

// Gaps counts the discontinuities between consecutive segments, where the
// next segment starts more than one and a half intervals after the last.
func (ts *TimeSeries) Gaps() int {
	n := 0
	for i := 1; i < len(ts.Segments); i++ {
		prev := ts.Segments[i-1]
		if ts.Segments[i].Start-prev.End() > 1.5*prev.Interval {
			n++
		}
	}
	return n
}

// ReadRequest is a time window to read and the traces that contribute to it
type ReadRequest struct {
	Start       float64
	End         float64
	Alignment   float64
	Descriptors []*Descriptor
}

// Duration of the requested window
func (r *ReadRequest) Duration() float64 {
	return r.End - r.Start
}
