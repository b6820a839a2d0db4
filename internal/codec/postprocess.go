package codec

// FirstSampleLimit is the magnitude above which the first integrated sample
// is considered an encoder artifact
const FirstSampleLimit = 16000000

const checksumModulus = 100000000

// RemoveDifferences integrates samples in place ndiff times
func RemoveDifferences(samples []int32, ndiff int) {
	for k := 0; k < ndiff; k++ {
		for i := 1; i < len(samples); i++ {
			samples[i] += samples[i-1]
		}
	}
}

// FixFirstSample replaces an implausibly large first sample with the second.
// It reports whether the substitution happened.
func FixFirstSample(samples []int32) bool {
	if len(samples) < 2 {
		return false
	}
	v := int64(samples[0])
	if v > FirstSampleLimit || v < -FirstSampleLimit {
		samples[0] = samples[1]
		return true
	}
	return false
}

// Checksum is the archive checksum: the absolute value of the sum of every
// sample reduced modulo 10^8, itself reduced modulo 10^8.
func Checksum(samples []int32) int64 {
	var sum int64
	for _, s := range samples {
		sum += int64(s) % checksumModulus
	}
	sum %= checksumModulus
	if sum < 0 {
		sum = -sum
	}
	return sum
}
