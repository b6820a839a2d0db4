package gse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/temblor/internal/codec"
	"github.com/linuxmatters/temblor/internal/waveform"
)

func TestParseWID2_Columns(t *testing.T) {
	tr := newTrace("ARA0", "sz", "CM6", linear(1201, 1))
	tr.calib = 0.25

	line := wid2Line(tr)
	require.Equal(t, "CM6", line[44:47])
	require.Equal(t, "ARA0", line[29:33])

	d, err := ParseWID2(line)
	require.NoError(t, err)

	assert.Equal(t, "ARA0", d.Station)
	assert.Equal(t, "sz", d.Channel)
	assert.Equal(t, "CM6", d.Compression)
	assert.Equal(t, FormatGSE2, d.Format)
	assert.Equal(t, 1201, d.NSamples)
	assert.Equal(t, 40.0, d.SampleRate)
	assert.Equal(t, 0.25, d.Calib)
	assert.Equal(t, 1.0, d.Calper)
	assert.Equal(t, "HS-10", d.InstType)
	assert.Equal(t, -1.0, d.HAng)
	assert.Equal(t, 0.0, d.VAng)
	assert.Equal(t, 2, d.NDiff)
	assert.True(t, d.Selected)
	assert.InDelta(t, waveform.Epoch(fixtureStart), d.Start, 1e-6)
	assert.InDelta(t, d.Start+30, d.End, 1e-9)
}

func TestParseWID2_ShortLineDefaults(t *testing.T) {
	line := wid2Line(newTrace("ARA0", "BHZ", "INT", linear(5, 1)))[:68]

	d, err := ParseWID2(line)
	require.NoError(t, err)
	assert.Equal(t, 1.0, d.Calib)
	assert.Equal(t, 0.0, d.Calper)
	assert.Equal(t, -1.0, d.HAng)
	assert.Equal(t, -1.0, d.VAng)
	assert.Equal(t, 0, d.NDiff)
}

func TestParseWID2_Errors(t *testing.T) {
	good := wid2Line(newTrace("ARA0", "sz", "CM6", linear(10, 1)))

	testCases := []struct {
		name string
		line string
		want error
	}{
		{"unknown tag", good[:44] + "XYZ" + good[47:], waveform.ErrUnsupportedCompression},
		{"bad sample count", good[:48] + "   12x45" + good[56:], waveform.ErrMalformedHeader},
		{"bad rate", good[:57] + "   forty.00" + good[68:], waveform.ErrMalformedHeader},
		{"missing station", good[:29] + "     " + good[34:], waveform.ErrMalformedHeader},
		{"bad date", "WID2 1996-10-15" + good[15:], waveform.ErrMalformedHeader},
		{"bad clock", good[:16] + "25:61:10.680" + good[28:], waveform.ErrMalformedHeader},
		{"wrong record", "STA2" + good[4:], waveform.ErrMalformedHeader},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseWID2(tc.line)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseWID1(t *testing.T) {
	line1 := "WID1 2024061 120000.500     1200 ARA0   ARA0_sz  sz   40.000000 HS-10  CMP6 1"
	line2 := "   2.500000e-01   1.000   69.5349    25.5058   -1.0   90.0"

	require.Equal(t, "CMP6", line1[71:75])
	d, err := ParseWID1(line1, line2)
	require.NoError(t, err)

	assert.Equal(t, FormatGSE1, d.Format)
	assert.Equal(t, "ARA0", d.Station)
	assert.Equal(t, "ARA0_sz", d.AuxID)
	assert.Equal(t, "sz", d.Channel)
	assert.Equal(t, 1200, d.NSamples)
	assert.Equal(t, 40.0, d.SampleRate)
	assert.Equal(t, "CMP6", d.Compression)
	assert.Equal(t, 1, d.NDiff)
	assert.Equal(t, 0.25, d.Calib)
	assert.Equal(t, 90.0, d.VAng)
	assert.True(t, d.HasLocation)
	assert.InDelta(t, 69.5349, d.Lat, 1e-9)

	// day 061 of 2024 is 1 March
	assert.InDelta(t, waveform.Epoch(fixtureStart), d.Start, 1e-6)
}

func TestParseWID1_BadDiffOrder(t *testing.T) {
	line1 := "WID1 2024061 120000.500     1200 ARA0   ARA0_sz  sz   40.000000 HS-10  CMP6 3"
	_, err := ParseWID1(line1, "")
	assert.ErrorIs(t, err, waveform.ErrMalformedHeader)
}

func TestSchemeForTag(t *testing.T) {
	testCases := []struct {
		tag    string
		scheme codec.Scheme
		ok     bool
	}{
		{"CM6", codec.Scheme6, true},
		{"CMP6", codec.Scheme6, true},
		{"CM7", codec.Scheme7, true},
		{"CMP7", codec.Scheme7, true},
		{"cm8", codec.Scheme8, true},
		{"CMP8", codec.Scheme8, true},
		{"INT", 0, false},
		{"AUT", 0, false},
	}
	for _, tc := range testCases {
		scheme, ok := SchemeForTag(tc.tag)
		assert.Equal(t, tc.ok, ok, tc.tag)
		assert.Equal(t, tc.scheme, scheme, tc.tag)
	}
	assert.True(t, Supported("INT"))
	assert.False(t, Supported("AUT"))
}
