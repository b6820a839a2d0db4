package assembly

import "github.com/linuxmatters/temblor/internal/config"

// Config controls how descriptors are merged into runs and cut into windows.
// Pointer fields are optional; nil leaves the bound unset.
type Config struct {
	// A candidate joins the current run when its start minus the run end
	// lies strictly inside (-OverlapTolerance, JoinGapTolerance)
	OverlapTolerance float64
	JoinGapTolerance float64

	// Global clip bounds, epoch seconds
	Start *float64
	End   *float64

	// SubWindow cuts each run into windows of this many seconds; 0 gives one
	// window per run
	SubWindow float64

	// MaxWindow limits the duration of a run's envelope; 0 is unlimited
	MaxWindow float64

	// Azimuth band; each side may be unset on its own. A band with
	// AzimuthMin > AzimuthMax wraps through north.
	AzimuthMin *float64
	AzimuthMax *float64

	// Phase windowing, used only when both phases are named
	StartPhase  string
	EndPhase    string
	EdgePadding float64
	TravelTimes TravelTimer

	// MaxRequests stops planning once reached; 0 is unlimited
	MaxRequests int

	ChannelOrder ChannelOrder
}

// DefaultConfig returns the standard tolerances with nothing else configured
func DefaultConfig() Config {
	return Config{
		OverlapTolerance: config.OverlapTolerance,
		JoinGapTolerance: config.JoinGapTolerance,
		EdgePadding:      config.EdgePadding,
		TravelTimes:      DefaultVelocities(),
	}
}
