package config

// Assembly defaults
const (
	OverlapTolerance = 30.0   // seconds of overlap allowed before a run breaks
	JoinGapTolerance = 7200.0 // seconds of gap allowed before a run breaks
	EdgePadding      = 0.0    // seconds added around phase windows
)

// Reading defaults
const (
	ScanWorkers = 4 // files scanned in parallel
	Decimation  = 1
)

// Travel-time defaults used when windowing on phases without a full
// travel-time table (apparent velocities in km/s)
const (
	VelocityP = 8.0
	VelocityS = 4.5
	KmPerDeg  = 111.195
)

// Export settings
const (
	// WAVSampleRate is used when a series has a non-integral sample rate
	WAVSampleRate = 100
	WAVBitDepth   = 24
)

// Spectrum settings
const (
	FFTSize  = 4096
	NumPeaks = 3 // dominant frequencies reported per series
)

// Environment and file locations
const (
	EnvPrefix  = "TEMBLOR_"
	DotEnvFile = ".env"
)
