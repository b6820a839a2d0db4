package gse

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/temblor/internal/waveform"
)

func TestScan_RecordsPayloadOffsets(t *testing.T) {
	a := newTrace("ARA0", "sz", "CM6", wave(400))
	b := newTrace("ARA1", "sz", "INT", linear(25, 3))
	content := message(
		gse2Trace(a),
		"OUT2 2024/03/01 12:00:00.000 ARA2  sz      CM6 \n",
		"EID2 ev-1 example\n",
		gse2Trace(b),
	)

	cat, err := NewScanner().Scan(strings.NewReader(content), "mem.gse")
	require.NoError(t, err)
	assert.Empty(t, cat.Problems)
	require.Len(t, cat.Descriptors, 2)

	first := cat.Descriptors[0]
	assert.Equal(t, "ARA0", first.Station)
	assert.Equal(t, "IMS", first.Network)
	assert.True(t, first.HasLocation)
	assert.InDelta(t, 69.5349, first.Lat, 1e-9)
	assert.Equal(t, "mem.gse", first.File)
	assert.True(t, first.HasChecksum)
	assert.True(t, strings.HasPrefix(content[first.Offset:], payload(a, 2)))

	second := cat.Descriptors[1]
	assert.Equal(t, "INT", second.Compression)
	assert.Equal(t, 0, second.NDiff)
	assert.True(t, strings.HasPrefix(content[second.Offset:], "0 3 6 9"))
}

func TestScan_SkipsBadTraces(t *testing.T) {
	bad := newTrace("BAD0", "sz", "CM6", linear(10, 1))
	badLine := wid2Line(bad)
	badLine = badLine[:44] + "XYZ" + badLine[47:]
	badTrace := badLine + "\nDAT2\n-VF2+\nCHK2 20\n"

	broken := newTrace("BAD1", "sz", "CM6", linear(10, 1))
	brokenLine := wid2Line(broken)
	brokenLine = brokenLine[:48] + "    ten!" + brokenLine[56:]
	brokenTrace := brokenLine + "\nDAT2\n++++\nCHK2 0\n"

	good := newTrace("ARA0", "sz", "CM6", wave(100))
	content := message(badTrace, brokenTrace, gse2Trace(good))

	cat, err := NewScanner().Scan(strings.NewReader(content), "mixed.gse")
	require.NoError(t, err)
	require.Len(t, cat.Descriptors, 1)
	assert.Equal(t, "ARA0", cat.Descriptors[0].Station)

	require.Len(t, cat.Problems, 2)
	assert.ErrorIs(t, cat.Problems[0], waveform.ErrUnsupportedCompression)
	assert.ErrorIs(t, cat.Problems[1], waveform.ErrMalformedHeader)
}

func TestScan_MissingChecksumLine(t *testing.T) {
	tr := newTrace("ARA0", "sz", "CM6", wave(10))
	content := wid2Line(tr) + "\nDAT2\n" + payload(tr, 2)

	cat, err := NewScanner().Scan(strings.NewReader(content), "cut.gse")
	require.NoError(t, err)
	assert.Empty(t, cat.Descriptors)
	require.Len(t, cat.Problems, 1)
	assert.ErrorIs(t, cat.Problems[0], waveform.ErrMalformedHeader)
}

func TestScan_StopsAtStop(t *testing.T) {
	a := newTrace("ARA0", "sz", "CM6", wave(10))
	content := message(gse2Trace(a)) + gse2Trace(newTrace("LATE", "sz", "CM6", wave(10)))

	cat, err := NewScanner().Scan(strings.NewReader(content), "stop.gse")
	require.NoError(t, err)
	require.Len(t, cat.Descriptors, 1)
	assert.Equal(t, "ARA0", cat.Descriptors[0].Station)
}

func TestScan_EmptyCatalog(t *testing.T) {
	for name, content := range map[string]string{
		"empty":     "",
		"no traces": message(),
		"text only": "just some text\nwithout records",
	} {
		t.Run(name, func(t *testing.T) {
			cat, err := NewScanner().Scan(strings.NewReader(content), name)
			require.NoError(t, err)
			assert.Empty(t, cat.Descriptors)
			assert.Empty(t, cat.Problems)
		})
	}
}

func TestScan_CRLF(t *testing.T) {
	tr := newTrace("ARA0", "sz", "CM6", wave(50))
	content := strings.ReplaceAll(message(gse2Trace(tr)), "\n", "\r\n")

	cat, err := NewScanner().Scan(strings.NewReader(content), "crlf.gse")
	require.NoError(t, err)
	require.Len(t, cat.Descriptors, 1)
	assert.Equal(t, "CM6", cat.Descriptors[0].Compression)
	assert.True(t, cat.Descriptors[0].HasChecksum)
}

func TestScan_GSE1(t *testing.T) {
	tr := newTrace("ARA0", "sz", "CMP6", linear(40, 2))
	line1 := "WID1 2024061 120000.500       40 ARA0   ARA0_sz  sz   40.000000 HS-10  CMP6 1"
	line2 := "   1.000000e+00   1.000   69.5349    25.5058   -1.0   90.0"
	content := line1 + "\n" + line2 + "\nDAT1\n" + payload(tr, 1) + "CHK1 1560\nSTOP\n"

	cat, err := NewScanner().Scan(strings.NewReader(content), "gse1.msg")
	require.NoError(t, err)
	require.Empty(t, cat.Problems)
	require.Len(t, cat.Descriptors, 1)

	d := cat.Descriptors[0]
	assert.Equal(t, FormatGSE1, d.Format)
	assert.Equal(t, 1, d.NDiff)
	assert.Equal(t, int64(1560), d.DeclaredChecksum)
}

func TestScanFiles(t *testing.T) {
	one := writeFile(t, "one.gse", message(gse2Trace(newTrace("ARA0", "sz", "CM6", wave(20)))))
	two := writeFile(t, "two.gse", message(
		gse2Trace(newTrace("ARA1", "sz", "CM6", wave(20))),
		gse2Trace(newTrace("ARA2", "sz", "INT", wave(20))),
	))
	missing := filepath.Join(t.TempDir(), "missing.gse")

	var calls int
	catalogs, err := NewScanner().ScanFiles(context.Background(), []string{one, missing, two}, 2,
		func(done, total int, last *Catalog) {
			calls++
			assert.Equal(t, 3, total)
		})
	require.NoError(t, err)
	require.Len(t, catalogs, 3)
	assert.Equal(t, 3, calls)

	assert.Len(t, catalogs[0].Descriptors, 1)
	require.Len(t, catalogs[1].Problems, 1)
	assert.ErrorIs(t, catalogs[1].Problems[0], waveform.ErrIO)
	assert.Len(t, catalogs[2].Descriptors, 2)

	all := Descriptors(catalogs)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"ARA0", "ARA1", "ARA2"}, []string{all[0].Station, all[1].Station, all[2].Station})
}

func TestScanFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeFile(t, "one.gse", message())
	_, err := NewScanner().ScanFiles(ctx, []string{path}, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLineReaderOffsets(t *testing.T) {
	lr := &lineReader{br: bufio.NewReader(strings.NewReader("ab\ncde\r\n\nlast"))}
	var got []int64
	for {
		_, off, err := lr.next()
		if err != nil {
			break
		}
		got = append(got, off)
	}
	assert.Equal(t, []int64{0, 3, 8, 9}, got)
}
