// Package codec decodes the variable-width compressed integer streams found
// in GSE waveform payloads.
//
// All three schemes share one shape. A sample starts with a unit whose top
// bit is the sign and whose next bit says another unit follows; every unit
// contributes its low width-2 bits, most significant first. The 7 and 8-bit
// schemes close the stream with a pair of terminator units.
package codec

import "fmt"

// Scheme is the unit width of a compressed stream
type Scheme int

const (
	Scheme6 Scheme = 6 // ASCII armoured, table mapped
	Scheme7 Scheme = 7
	Scheme8 Scheme = 8
)

// Valid reports whether s is one of the supported widths
func (s Scheme) Valid() bool {
	return s == Scheme6 || s == Scheme7 || s == Scheme8
}

func (s Scheme) String() string {
	if !s.Valid() {
		return fmt.Sprintf("scheme(%d)", int(s))
	}
	return fmt.Sprintf("%d-bit", int(s))
}

// DefaultMaxSamples caps the output of a single Decode call
const DefaultMaxSamples = 1 << 27

// correctionOffset is removed from the previous sample by a correction
// directive (terminator followed by a unit below correctionLimit).
const (
	correctionOffset = 32
	correctionLimit  = 16
)

// Decoder decodes compressed sample streams. The zero value is ready to use.
type Decoder struct {
	// MaxSamples bounds the decoded output; <= 0 means DefaultMaxSamples
	MaxSamples int
}

// Decode decodes buf with a zero-value Decoder
func Decode(scheme Scheme, buf []byte) ([]int32, error) {
	return Decoder{}.Decode(scheme, buf)
}

// Decode returns every sample in buf. The count is whatever the stream
// holds; callers compare it with their own expectation.
func (d Decoder) Decode(scheme Scheme, buf []byte) ([]int32, error) {
	if !scheme.Valid() {
		return nil, decodeErr(ErrInvalidCode, 0)
	}
	limit := d.MaxSamples
	if limit <= 0 {
		limit = DefaultMaxSamples
	}

	width := uint(scheme)
	term := terminator(width)
	out := make([]int32, 0, len(buf)/2+1)

	i := 0
	for {
		i = skipFill(scheme, buf, i)
		if i >= len(buf) {
			if scheme == Scheme6 {
				return out, nil
			}
			return nil, decodeErr(ErrUnterminatedStream, i)
		}

		start := i
		u, ok := unitAt(scheme, buf[i])
		if !ok {
			return nil, decodeErr(ErrInvalidCode, i)
		}
		i++

		if scheme != Scheme6 && u == term {
			j := skipFill(scheme, buf, i)
			if j >= len(buf) {
				return nil, decodeErr(ErrUnterminatedStream, j)
			}
			next, _ := unitAt(scheme, buf[j])
			switch {
			case next == term:
				return out, nil
			case next < correctionLimit:
				if len(out) == 0 {
					return nil, decodeErr(ErrInvalidCode, start)
				}
				correct(&out[len(out)-1])
				i = j + 1
				continue
			default:
				return nil, decodeErr(ErrInvalidCode, j)
			}
		}

		neg, cont, v := unitFlags(u, width)
		for cont {
			i = skipFill(scheme, buf, i)
			if i >= len(buf) {
				return nil, decodeErr(ErrUnterminatedStream, start)
			}
			u, ok = unitAt(scheme, buf[i])
			if !ok {
				return nil, decodeErr(ErrInvalidCode, i)
			}
			i++
			var data int32
			_, cont, data = unitFlags(u, width)
			v = v<<(width-2) + data
		}
		if neg {
			v = -v
		}

		if len(out) >= limit {
			return nil, decodeErr(ErrAllocation, start)
		}
		out = append(out, v)
	}
}

// correct applies the correction directive. It is applied whenever the byte
// pattern occurs, whatever the magnitude of the sample, to stay bit-compatible
// with archives written by the original encoder.
func correct(v *int32) {
	if *v < 0 {
		*v += correctionOffset
	} else {
		*v -= correctionOffset
	}
}

func unitAt(scheme Scheme, b byte) (int32, bool) {
	switch scheme {
	case Scheme6:
		return Symbol6(b)
	case Scheme7:
		return int32(b & 0x7f), true
	default:
		return int32(b), true
	}
}

// skipFill advances past line endings, and blanks in the ASCII scheme.
func skipFill(scheme Scheme, buf []byte, i int) int {
	for i < len(buf) {
		switch buf[i] {
		case '\n', '\r':
			i++
		case ' ', '\t':
			if scheme != Scheme6 {
				return i
			}
			i++
		default:
			return i
		}
	}
	return i
}
