package assembly

import (
	"fmt"
	"math"
	"strings"

	"github.com/linuxmatters/temblor/internal/config"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// Sentinel phase names resolved from the data instead of travel times
const (
	PhaseFirst = "FIRST" // first observed sample of the run
	PhaseLast  = "LAST"  // last observed sample of the run
)

// TravelTimer predicts the travel time in seconds of a phase to a station at
// distance degrees from an event at depth km
type TravelTimer interface {
	TravelTime(phase string, distance, depth float64) (float64, error)
}

// ConstantVelocity is a travel-time table assuming straight rays at a
// constant apparent velocity (km/s) per phase. It is only a stand-in for
// real tables.
type ConstantVelocity map[string]float64

// DefaultVelocities covers P and S
func DefaultVelocities() ConstantVelocity {
	return ConstantVelocity{"P": config.VelocityP, "S": config.VelocityS}
}

// TravelTime implements TravelTimer
func (cv ConstantVelocity) TravelTime(phase string, distance, depth float64) (float64, error) {
	v, ok := cv[strings.ToUpper(phase)]
	if !ok || v <= 0 {
		return 0, fmt.Errorf("no velocity for phase %q", phase)
	}
	if distance < 0 {
		return 0, fmt.Errorf("unknown distance")
	}
	km := distance * config.KmPerDeg
	return math.Hypot(km, depth) / v, nil
}

// resolvePhase returns the predicted time of a phase for a run
func resolvePhase(name string, r *run, o *waveform.Origin, tt TravelTimer) (float64, bool) {
	switch strings.ToUpper(name) {
	case PhaseFirst:
		return r.start, true
	case PhaseLast:
		return r.end, true
	}
	if tt == nil {
		return 0, false
	}
	t, err := tt.TravelTime(name, o.Distance, o.Depth)
	if err != nil {
		return 0, false
	}
	return o.Time + t, true
}
