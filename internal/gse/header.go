package gse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linuxmatters/temblor/internal/codec"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// Line tags recognised by the scanner
const (
	tagWID2 = "WID2"
	tagWID1 = "WID1"
	tagSTA2 = "STA2"
	tagDAT2 = "DAT2"
	tagDAT1 = "DAT1"
	tagCHK2 = "CHK2"
	tagCHK1 = "CHK1"
	tagSTOP = "STOP"
)

// Container format names stored in descriptors
const (
	FormatGSE2 = "gse2"
	FormatGSE1 = "gse1"
)

// PlainTag marks payloads written as decimal text
const PlainTag = "INT"

var compressionTags = map[string]codec.Scheme{
	"CM6":  codec.Scheme6,
	"CMP6": codec.Scheme6,
	"CM7":  codec.Scheme7,
	"CMP7": codec.Scheme7,
	"CM8":  codec.Scheme8,
	"CMP8": codec.Scheme8,
}

// SchemeForTag returns the codec scheme for a compression tag. ok is false
// for the plain tag and for unknown tags.
func SchemeForTag(tag string) (scheme codec.Scheme, ok bool) {
	scheme, ok = compressionTags[strings.ToUpper(tag)]
	return scheme, ok
}

// Supported reports whether tag names a payload encoding this package reads
func Supported(tag string) bool {
	_, ok := SchemeForTag(tag)
	return ok || strings.EqualFold(tag, PlainTag)
}

// column is a half-open, zero-based byte range of a header line
type column struct{ from, to int }

// WID2 columns
var (
	wid2Date     = column{5, 15}
	wid2Time     = column{16, 28}
	wid2Station  = column{29, 34}
	wid2Channel  = column{35, 38}
	wid2Aux      = column{39, 43}
	wid2Format   = column{44, 47}
	wid2NSamp    = column{48, 56}
	wid2SampRate = column{57, 68}
	wid2Calib    = column{69, 79}
	wid2Calper   = column{80, 87}
	wid2InsType  = column{88, 94}
	wid2HAng     = column{95, 100}
	wid2VAng     = column{101, 105}
)

// STA2 columns
var (
	sta2Network = column{5, 14}
	sta2Lat     = column{15, 24}
	sta2Lon     = column{25, 35}
	sta2Elev    = column{49, 54}
)

// WID1 columns, first and second line
var (
	wid1Date     = column{5, 12}
	wid1Time     = column{13, 23}
	wid1NSamp    = column{24, 32}
	wid1Station  = column{33, 39}
	wid1Aux      = column{40, 48}
	wid1Channel  = column{49, 51}
	wid1SampRate = column{52, 63}
	wid1InsType  = column{64, 70}
	wid1Format   = column{71, 75}
	wid1NDiff    = column{76, 77}

	wid1Calib  = column{0, 15}
	wid1Calper = column{16, 23}
	wid1Lat    = column{24, 33}
	wid1Lon    = column{34, 44}
	wid1HAng   = column{45, 51}
	wid1VAng   = column{52, 58}
)

// get returns the trimmed text of c, or "" where the line is too short
func (c column) get(line string) string {
	if c.from >= len(line) {
		return ""
	}
	to := min(c.to, len(line))
	return strings.TrimSpace(line[c.from:to])
}

// fieldParser collects the first parse failure of a header line
type fieldParser struct {
	line string
	err  error
}

func (p *fieldParser) fail(name, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: field %s %q: %v", waveform.ErrMalformedHeader, name, value, err)
	}
}

func (p *fieldParser) text(name string, c column, required bool) string {
	v := c.get(p.line)
	if v == "" && required {
		p.fail(name, v, fmt.Errorf("missing"))
	}
	return v
}

func (p *fieldParser) integer(name string, c column, def int) int {
	v := c.get(p.line)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v, err)
	}
	return n
}

func (p *fieldParser) number(name string, c column, def float64) float64 {
	v := c.get(p.line)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(name, v, err)
	}
	return f
}

// ParseWID2 parses a GSE2 waveform identification line
func ParseWID2(line string) (*waveform.Descriptor, error) {
	if !strings.HasPrefix(line, tagWID2) {
		return nil, fmt.Errorf("%w: not a %s line", waveform.ErrMalformedHeader, tagWID2)
	}

	p := &fieldParser{line: line}
	d := &waveform.Descriptor{
		Format:      FormatGSE2,
		Station:     p.text("station", wid2Station, true),
		Channel:     p.text("channel", wid2Channel, true),
		AuxID:       p.text("auxid", wid2Aux, false),
		Compression: strings.ToUpper(p.text("datatype", wid2Format, true)),
		NSamples:    p.integer("samps", wid2NSamp, -1),
		SampleRate:  p.number("samprate", wid2SampRate, 0),
		Calib:       p.number("calib", wid2Calib, 1),
		Calper:      p.number("calper", wid2Calper, 0),
		InstType:    p.text("instype", wid2InsType, false),
		HAng:        p.number("hang", wid2HAng, -1),
		VAng:        p.number("vang", wid2VAng, -1),
		Selected:    true,
	}

	date, clock := p.text("date", wid2Date, true), p.text("time", wid2Time, true)
	if p.err != nil {
		return nil, p.err
	}
	start, err := parseWID2Time(date, clock)
	if err != nil {
		return nil, fmt.Errorf("%w: time %q %q: %v", waveform.ErrMalformedHeader, date, clock, err)
	}
	if err := finish(d, start); err != nil {
		return nil, err
	}
	if _, compressed := SchemeForTag(d.Compression); compressed {
		d.NDiff = 2
	}
	return d, nil
}

// ParseWID1 parses the two line GSE1 waveform identification record. The
// differencing order is taken from the header rather than implied.
func ParseWID1(line1, line2 string) (*waveform.Descriptor, error) {
	if !strings.HasPrefix(line1, tagWID1) {
		return nil, fmt.Errorf("%w: not a %s line", waveform.ErrMalformedHeader, tagWID1)
	}

	p := &fieldParser{line: line1}
	d := &waveform.Descriptor{
		Format:      FormatGSE1,
		NSamples:    p.integer("samps", wid1NSamp, -1),
		Station:     p.text("station", wid1Station, true),
		AuxID:       p.text("chanid", wid1Aux, false),
		Channel:     p.text("channel", wid1Channel, true),
		SampleRate:  p.number("samprate", wid1SampRate, 0),
		InstType:    p.text("systype", wid1InsType, false),
		Compression: strings.ToUpper(p.text("datatype", wid1Format, true)),
		NDiff:       p.integer("diff", wid1NDiff, 0),
		Selected:    true,
	}
	date, clock := p.text("date", wid1Date, true), p.text("time", wid1Time, true)
	if p.err != nil {
		return nil, p.err
	}

	p = &fieldParser{line: line2}
	d.Calib = p.number("calib", wid1Calib, 1)
	d.Calper = p.number("calper", wid1Calper, 0)
	lat := p.number("lat", wid1Lat, -999)
	lon := p.number("lon", wid1Lon, -999)
	d.HAng = p.number("hang", wid1HAng, -1)
	d.VAng = p.number("vang", wid1VAng, -1)
	if p.err != nil {
		return nil, p.err
	}
	if lat >= -90 && lat <= 90 && lon >= -180 && lon <= 360 {
		d.HasLocation, d.Lat, d.Lon = true, lat, lon
	}
	if d.NDiff < 0 || d.NDiff > 2 {
		return nil, fmt.Errorf("%w: differencing order %d", waveform.ErrMalformedHeader, d.NDiff)
	}

	start, err := parseWID1Time(date, clock)
	if err != nil {
		return nil, fmt.Errorf("%w: time %q %q: %v", waveform.ErrMalformedHeader, date, clock, err)
	}
	if err := finish(d, start); err != nil {
		return nil, err
	}
	return d, nil
}

func finish(d *waveform.Descriptor, start float64) error {
	if d.NSamples < 0 {
		return fmt.Errorf("%w: sample count %d", waveform.ErrMalformedHeader, d.NSamples)
	}
	if !Supported(d.Compression) {
		return fmt.Errorf("%w: %q", waveform.ErrUnsupportedCompression, d.Compression)
	}
	if strings.EqualFold(d.Compression, PlainTag) {
		d.NDiff = 0
	}
	d.Start = start
	d.End = waveform.EndTime(start, d.NSamples, d.SampleRate)
	return nil
}

// parseSTA2 fills network and location from a station record
func parseSTA2(line string, d *waveform.Descriptor) error {
	p := &fieldParser{line: line}
	network := p.text("network", sta2Network, false)
	lat := p.number("lat", sta2Lat, 0)
	lon := p.number("lon", sta2Lon, 0)
	elev := p.number("elev", sta2Elev, 0)
	if p.err != nil {
		return p.err
	}
	d.Network = network
	if sta2Lat.get(line) != "" && sta2Lon.get(line) != "" {
		d.HasLocation, d.Lat, d.Lon, d.Elev = true, lat, lon, elev
	}
	return nil
}

// parseWID2Time parses "yyyy/mm/dd" and "hh:mm:ss.sss"
func parseWID2Time(date, clock string) (float64, error) {
	dp := strings.Split(date, "/")
	cp := strings.Split(clock, ":")
	if len(dp) != 3 || len(cp) != 3 {
		return 0, fmt.Errorf("expected yyyy/mm/dd hh:mm:ss.sss")
	}
	ymd, err := atoi(dp...)
	if err != nil {
		return 0, err
	}
	day := time.Date(ymd[0], time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.UTC)
	return timeOfDay(day, cp[0], cp[1], cp[2])
}

// parseWID1Time parses "yyyyjjj" and "hhmmss.sss"
func parseWID1Time(date, clock string) (float64, error) {
	if len(date) != 7 || len(clock) < 6 {
		return 0, fmt.Errorf("expected yyyyjjj hhmmss.sss")
	}
	yj, err := atoi(date[:4], date[4:])
	if err != nil {
		return 0, err
	}
	day := time.Date(yj[0], time.January, yj[1], 0, 0, 0, 0, time.UTC)
	return timeOfDay(day, clock[:2], clock[2:4], clock[4:])
}

func timeOfDay(day time.Time, hour, minute, second string) (float64, error) {
	hm, err := atoi(hour, minute)
	if err != nil {
		return 0, err
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(second), 64)
	if err != nil {
		return 0, err
	}
	if hm[0] < 0 || hm[0] > 23 || hm[1] < 0 || hm[1] > 59 || sec < 0 || sec >= 61 {
		return 0, fmt.Errorf("time of day out of range")
	}
	return float64(day.Unix()) + float64(hm[0]*3600+hm[1]*60) + sec, nil
}

func atoi(fields ...string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
