package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/linuxmatters/temblor/internal/assembly"
	"github.com/linuxmatters/temblor/internal/config"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// SelectFlags choose which scanned traces take part
type SelectFlags struct {
	Station string `help:"Station glob, e.g. 'AR*'" env:"TEMBLOR_STATION" placeholder:"GLOB"`
	Channel string `help:"Channel glob, e.g. 'BH?'" env:"TEMBLOR_CHANNEL" placeholder:"GLOB"`
}

// apply marks descriptors not matching the globs as unselected
func (f *SelectFlags) apply(descs []*waveform.Descriptor) error {
	for _, d := range descs {
		ok, err := matchGlob(f.Station, d.Station)
		if err != nil {
			return fmt.Errorf("invalid station glob: %w", err)
		}
		okChan, err := matchGlob(f.Channel, d.Channel)
		if err != nil {
			return fmt.Errorf("invalid channel glob: %w", err)
		}
		d.Selected = ok && okChan
	}
	return nil
}

func matchGlob(pattern, name string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	return path.Match(strings.ToUpper(pattern), strings.ToUpper(name))
}

// OriginFlags associate one event with every trace
type OriginFlags struct {
	OriginTime  string  `help:"Event origin time (epoch seconds or ISO 8601)" env:"TEMBLOR_ORIGIN_TIME" placeholder:"TIME"`
	OriginLat   float64 `help:"Event latitude in degrees" env:"TEMBLOR_ORIGIN_LAT"`
	OriginLon   float64 `help:"Event longitude in degrees" env:"TEMBLOR_ORIGIN_LON"`
	OriginDepth float64 `help:"Event depth in km" env:"TEMBLOR_ORIGIN_DEPTH"`
}

// apply attaches the event to every descriptor when an origin time is given
func (f *OriginFlags) apply(descs []*waveform.Descriptor) error {
	if f.OriginTime == "" {
		return nil
	}
	t, err := config.ParseTime(f.OriginTime)
	if err != nil {
		return fmt.Errorf("invalid origin time: %w", err)
	}
	for _, d := range descs {
		d.SetOrigin(t, f.OriginLat, f.OriginLon, f.OriginDepth)
	}
	return nil
}

// AssemblyFlags map onto assembly.Config
type AssemblyFlags struct {
	Overlap      float64 `help:"Seconds of overlap tolerated before a run breaks" default:"${overlap}" env:"TEMBLOR_OVERLAP"`
	JoinGap      float64 `help:"Seconds of gap tolerated before a run breaks" default:"${joingap}" env:"TEMBLOR_JOIN_GAP"`
	Start        string  `help:"Clip windows to start no earlier than this time" env:"TEMBLOR_START" placeholder:"TIME"`
	End          string  `help:"Clip windows to end no later than this time" env:"TEMBLOR_END" placeholder:"TIME"`
	SubWindow    float64 `help:"Cut runs into windows of this many seconds (0 for one per run)" env:"TEMBLOR_SUB_WINDOW"`
	MaxWindow    float64 `help:"Longest window in seconds (0 for no limit)" env:"TEMBLOR_MAX_WINDOW"`
	Azimuth      string  `help:"Azimuth band lo:hi in degrees; either side may be empty" env:"TEMBLOR_AZIMUTH" placeholder:"LO:HI"`
	StartPhase   string  `help:"Phase opening each window (FIRST, LAST or a velocity phase)" env:"TEMBLOR_START_PHASE"`
	EndPhase     string  `help:"Phase closing each window" env:"TEMBLOR_END_PHASE"`
	Padding      float64 `help:"Seconds added around phase windows" default:"${padding}" env:"TEMBLOR_PADDING"`
	VelocityP    float64 `help:"P velocity in km/s for phase windows" default:"${vp}" env:"TEMBLOR_VELOCITY_P"`
	VelocityS    float64 `help:"S velocity in km/s for phase windows" default:"${vs}" env:"TEMBLOR_VELOCITY_S"`
	MaxRequests  int     `help:"Stop after this many read requests (0 for no limit)" env:"TEMBLOR_MAX_REQUESTS"`
	ChannelOrder string  `help:"Channel letter ordering band,instrument,orientation e.g. 'BHS,H,ZNE'" env:"TEMBLOR_CHANNEL_ORDER"`
}

// Config builds the assembly configuration
func (f *AssemblyFlags) Config() (assembly.Config, error) {
	cfg := assembly.DefaultConfig()
	cfg.OverlapTolerance = f.Overlap
	cfg.JoinGapTolerance = f.JoinGap
	cfg.SubWindow = f.SubWindow
	cfg.MaxWindow = f.MaxWindow
	cfg.StartPhase = f.StartPhase
	cfg.EndPhase = f.EndPhase
	cfg.EdgePadding = f.Padding
	cfg.MaxRequests = f.MaxRequests
	cfg.TravelTimes = assembly.ConstantVelocity{"P": f.VelocityP, "S": f.VelocityS}

	var err error
	if cfg.Start, err = config.OptionalTime(f.Start); err != nil {
		return cfg, fmt.Errorf("invalid start: %w", err)
	}
	if cfg.End, err = config.OptionalTime(f.End); err != nil {
		return cfg, fmt.Errorf("invalid end: %w", err)
	}
	if cfg.Start != nil && cfg.End != nil && !(*cfg.Start < *cfg.End) {
		return cfg, fmt.Errorf("start must be before end")
	}
	if cfg.AzimuthMin, cfg.AzimuthMax, err = config.ParseBand(f.Azimuth); err != nil {
		return cfg, err
	}

	band, instrument, orientation, err := config.ParseChannelOrder(f.ChannelOrder)
	if err != nil {
		return cfg, err
	}
	cfg.ChannelOrder = assembly.ChannelOrder{Band: band, Instrument: instrument, Orientation: orientation}

	if f.SubWindow < 0 || f.MaxWindow < 0 || f.MaxRequests < 0 {
		return cfg, fmt.Errorf("window lengths and request limits must not be negative")
	}
	return cfg, nil
}
