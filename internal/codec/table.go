package codec

// alphabet6 is the ASCII armour of the 6-bit scheme: symbol i encodes value i.
const alphabet6 = "+-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var symbols6 = func() [128]int8 {
	var t [128]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(alphabet6); i++ {
		t[alphabet6[i]] = int8(i)
	}
	return t
}()

// Symbol6 maps one byte of a 6-bit stream to its unit value.
// The high bit is ignored; ok is false for bytes outside the alphabet.
func Symbol6(b byte) (value int32, ok bool) {
	v := symbols6[b&0x7f]
	if v < 0 {
		return 0, false
	}
	return int32(v), true
}

// unitFlags splits a unit of the given width into its sign flag,
// continuation flag and data bits.
func unitFlags(u int32, width uint) (sign, cont bool, data int32) {
	signBit := int32(1) << (width - 1)
	contBit := int32(1) << (width - 2)
	return u&signBit != 0, u&contBit != 0, u & (contBit - 1)
}

// terminator is the reserved all-flags-set unit of the 7 and 8-bit schemes.
func terminator(width uint) int32 {
	return int32(1)<<(width-1) | int32(1)<<(width-2)
}
