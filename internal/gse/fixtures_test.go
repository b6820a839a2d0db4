package gse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/temblor/internal/codec"
)

// trace is a synthetic GSE trace with known plaintext samples
type trace struct {
	station string
	channel string
	tag     string
	start   time.Time
	rate    float64
	calib   float64
	samples []int32
	network string
	lat     float64
	lon     float64
}

var fixtureStart = time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC)

func newTrace(station, channel, tag string, samples []int32) trace {
	return trace{
		station: station,
		channel: channel,
		tag:     tag,
		start:   fixtureStart,
		rate:    40,
		calib:   1,
		samples: samples,
		network: "IMS",
		lat:     69.5349,
		lon:     25.5058,
	}
}

func wid2Line(tr trace) string {
	return fmt.Sprintf("WID2 %s %s %-5s %-3s %-4s %-3s %8d %11.6f %10.2e %7.3f %-6s %5.1f %4.1f",
		tr.start.Format("2006/01/02"), tr.start.Format("15:04:05.000"),
		tr.station, tr.channel, "", tr.tag, len(tr.samples), tr.rate, tr.calib, 1.0, "HS-10", -1.0, 0.0)
}

func sta2Line(tr trace) string {
	return fmt.Sprintf("STA2 %-9s %9.5f %10.5f %-12s %5.3f %5.3f",
		tr.network, tr.lat, tr.lon, "WGS-84", 0.403, 0.0)
}

func differences(samples []int32, ndiff int) []int32 {
	out := append([]int32(nil), samples...)
	for k := 0; k < ndiff; k++ {
		for i := len(out) - 1; i > 0; i-- {
			out[i] -= out[i-1]
		}
	}
	return out
}

func payload(tr trace, ndiff int) string {
	switch tr.tag {
	case "CM6", "CMP6":
		return string(codec.Encode6(differences(tr.samples, ndiff)))
	case "INT":
		var b strings.Builder
		for i, s := range tr.samples {
			if i > 0 && i%10 == 0 {
				b.WriteString("\n")
			} else if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%d", s)
		}
		b.WriteString("\n")
		return b.String()
	}
	panic("no fixture encoder for " + tr.tag)
}

func gse2Trace(tr trace) string {
	var b strings.Builder
	b.WriteString(wid2Line(tr) + "\n")
	b.WriteString(sta2Line(tr) + "\n")
	b.WriteString("DAT2\n")
	b.WriteString(payload(tr, 2))
	fmt.Fprintf(&b, "CHK2 %d\n", codec.Checksum(tr.samples))
	return b.String()
}

func message(parts ...string) string {
	var b strings.Builder
	b.WriteString("BEGIN IMS1.0\nMSG_TYPE DATA\nMSG_ID 1234 ANY_NDC\nDATA_TYPE WAVEFORM GSE2.0\n")
	for _, p := range parts {
		b.WriteString(p)
	}
	b.WriteString("STOP\n")
	return b.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func linear(n int, step int32) []int32 {
	s := make([]int32, n)
	for i := range s {
		s[i] = int32(i) * step
	}
	return s
}

func wave(n int) []int32 {
	s := make([]int32, n)
	for i := range s {
		s[i] = int32((i*37)%200 - 100)
	}
	return s
}
