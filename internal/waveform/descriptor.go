// Package waveform holds the format independent data model: descriptors
// produced by header scans, decoded segments, assembled time series and the
// read requests that connect them.
//
// Times are float64 seconds since the Unix epoch, the convention of the
// archives being read.
package waveform

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Origin is an event associated with a trace
type Origin struct {
	Time     float64 // epoch seconds
	Distance float64 // degrees, negative when unknown
	Azimuth  float64 // degrees clockwise from north, event to station
	Depth    float64 // km
}

// Descriptor describes one on-disk trace without its samples
type Descriptor struct {
	Station string
	Channel string
	Network string
	AuxID   string

	Start      float64
	End        float64
	NSamples   int
	SampleRate float64

	// Container details needed to re-read the payload
	Format      string // container format, e.g. "gse2"
	Compression string // payload tag, e.g. "CM6"
	NDiff       int
	Calib       float64
	Calper      float64
	InstType    string
	HAng        float64
	VAng        float64

	// Station coordinates, when the container carries them
	HasLocation bool
	Lat         float64
	Lon         float64
	Elev        float64

	File             string
	Offset           int64 // byte offset of the payload
	DeclaredChecksum int64
	HasChecksum      bool

	Origin *Origin

	Selected bool
}

// EndTime computes the time of the last sample from a start, count and rate
func EndTime(start float64, nsamples int, rate float64) float64 {
	if nsamples <= 1 || rate <= 0 {
		return start
	}
	return start + float64(nsamples-1)/rate
}

// Duration is the span covered by the descriptor in seconds
func (d *Descriptor) Duration() float64 {
	return d.End - d.Start
}

// SameChannel reports whether d and o belong to the same station/channel
func (d *Descriptor) SameChannel(o *Descriptor) bool {
	return strings.EqualFold(d.Station, o.Station) && strings.EqualFold(d.Channel, o.Channel)
}

// SetOrigin attaches an event, deriving distance and azimuth from the
// station location when the descriptor has one
func (d *Descriptor) SetOrigin(t, lat, lon, depth float64) {
	o := &Origin{Time: t, Distance: -1, Azimuth: math.NaN(), Depth: depth}
	if d.HasLocation {
		o.Distance, o.Azimuth = DistAz(lat, lon, d.Lat, d.Lon)
	}
	d.Origin = o
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s/%s %s +%.3fs %d@%gHz %s:%d",
		d.Station, d.Channel, FormatTime(d.Start), d.Duration(), d.NSamples, d.SampleRate, d.File, d.Offset)
}

// FormatTime renders an epoch time as UTC with millisecond precision
func FormatTime(t float64) string {
	sec, frac := math.Modf(t)
	nsec := int64(math.Round(frac*1e3)) * int64(time.Millisecond)
	return time.Unix(int64(sec), nsec).UTC().Format("2006-01-02T15:04:05.000")
}

// Epoch converts a time.Time to epoch seconds
func Epoch(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}
