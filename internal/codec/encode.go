package codec

import "bytes"

// LineWidth is the number of symbols per line written by Encode6
const LineWidth = 80

// Encode6 writes samples as 6-bit compressed text, wrapped at LineWidth
// symbols and terminated by a newline.
func Encode6(samples []int32) []byte {
	var buf bytes.Buffer
	col := 0
	emit := func(u int) {
		if col == LineWidth {
			buf.WriteByte('\n')
			col = 0
		}
		buf.WriteByte(alphabet6[u])
		col++
	}

	var digits [8]int
	for _, s := range samples {
		mag := uint32(s)
		if s < 0 {
			mag = uint32(-int64(s))
		}

		n := 0
		for {
			digits[n] = int(mag & 0xf)
			n++
			mag >>= 4
			if mag == 0 {
				break
			}
		}

		for k := n - 1; k >= 0; k-- {
			u := digits[k]
			if k > 0 {
				u |= 0x10
			}
			if k == n-1 && s < 0 {
				u |= 0x20
			}
			emit(u)
		}
	}
	if col > 0 {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
