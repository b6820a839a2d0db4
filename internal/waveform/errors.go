package waveform

import "errors"

// Error taxonomy shared by every container format. Readers wrap these with
// fmt.Errorf so callers can test with errors.Is.
var (
	ErrMalformedHeader        = errors.New("malformed header")
	ErrUnsupportedCompression = errors.New("unsupported compression tag")
	ErrChecksumMismatch       = errors.New("checksum mismatch")
	ErrSampleCountMismatch    = errors.New("sample count mismatch")
	ErrAllocation             = errors.New("allocation failure")
	ErrIO                     = errors.New("i/o error")
	ErrEmptyResult            = errors.New("empty result")
)
