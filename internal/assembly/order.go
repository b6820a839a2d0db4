package assembly

import (
	"cmp"
	"strings"

	"github.com/linuxmatters/temblor/internal/waveform"
)

// ChannelOrder ranks channel codes letter by letter. Each string lists
// letters in preferred order, e.g. Orientation "ZNE".
type ChannelOrder struct {
	Band        string
	Instrument  string
	Orientation string
}

// Compare orders channel codes by band letter, instrument letter (codes of
// three or more characters), then orientation letter, falling back to a
// case-insensitive comparison of whole codes.
func (o ChannelOrder) Compare(a, b string) int {
	if c := compareLetter(o.Band, letterAt(a, 0), letterAt(b, 0)); c != 0 {
		return c
	}
	if c := compareLetter(o.Instrument, instrumentOf(a), instrumentOf(b)); c != 0 {
		return c
	}
	if c := compareLetter(o.Orientation, orientationOf(a), orientationOf(b)); c != 0 {
		return c
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// letter is a lower-cased channel letter; 0 means absent
type letter byte

func letterAt(code string, i int) letter {
	if i < 0 || i >= len(code) {
		return 0
	}
	c := code[i]
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	return letter(c)
}

func instrumentOf(code string) letter {
	if len(code) < 3 {
		return 0
	}
	return letterAt(code, 1)
}

func orientationOf(code string) letter {
	if len(code) < 2 {
		return 0
	}
	return letterAt(code, len(code)-1)
}

func compareLetter(order string, a, b letter) int {
	switch {
	case a == b:
		return 0
	case a == 0:
		return -1
	case b == 0:
		return 1
	}
	if order == "" {
		return cmp.Compare(a, b)
	}
	lower := strings.ToLower(order)
	if c := cmp.Compare(rank(lower, a), rank(lower, b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// rank is the position of l in order, with absent letters after all others
func rank(order string, l letter) int {
	if i := strings.IndexByte(order, byte(l)); i >= 0 {
		return i
	}
	return len(order)
}

// compareDescriptors is the group sort: start time, station, channel order,
// then end, file and offset so that every tie resolves the same way.
func (o ChannelOrder) compareDescriptors(a, b *waveform.Descriptor) int {
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToLower(a.Station), strings.ToLower(b.Station)); c != 0 {
		return c
	}
	if c := o.Compare(a.Channel, b.Channel); c != 0 {
		return c
	}
	if c := cmp.Compare(a.End, b.End); c != 0 {
		return c
	}
	if c := strings.Compare(a.File, b.File); c != 0 {
		return c
	}
	return cmp.Compare(a.Offset, b.Offset)
}
