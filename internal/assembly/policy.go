// Package assembly turns scanned segment descriptors into read requests.
//
// Planning is a pure function of its inputs. Descriptors of the same
// station and channel are merged into runs while consecutive gaps and
// overlaps stay within tolerance; each run is clipped and cut into
// windows, and every window becomes a read request naming the run's
// descriptors.
package assembly

import (
	"math"
	"slices"
	"strings"

	"github.com/linuxmatters/temblor/internal/waveform"
)

// windowEpsilon absorbs floating point drift when cutting sub-windows
const windowEpsilon = 1e-9

// run is a maximal group of same-channel descriptors
type run struct {
	descs []*waveform.Descriptor
	start float64
	end   float64
}

// origin returns the first usable associated origin of the run
func (r *run) origin() *waveform.Origin {
	for _, d := range r.descs {
		if d.Origin != nil && d.Origin.Distance >= 0 {
			return d.Origin
		}
	}
	return nil
}

// Plan groups, merges and windows descs. Only selected descriptors that
// pass the azimuth band take part. The input is not modified, and an empty
// result is a valid outcome.
func Plan(descs []*waveform.Descriptor, cfg Config) []*waveform.ReadRequest {
	visited := make([]bool, len(descs))
	for i, d := range descs {
		if d == nil || !d.Selected || !cfg.inBand(d) {
			visited[i] = true
		}
	}

	var out []*waveform.ReadRequest
	for i, d := range descs {
		if visited[i] {
			continue
		}

		group := []*waveform.Descriptor{d}
		visited[i] = true
		for j := i + 1; j < len(descs); j++ {
			if !visited[j] && d.SameChannel(descs[j]) {
				group = append(group, descs[j])
				visited[j] = true
			}
		}
		slices.SortStableFunc(group, cfg.ChannelOrder.compareDescriptors)

		for _, r := range cfg.runs(group) {
			for _, req := range cfg.windows(r) {
				out = append(out, req)
				if cfg.MaxRequests > 0 && len(out) >= cfg.MaxRequests {
					return out
				}
			}
		}
	}
	return out
}

// inBand applies the azimuth filter
func (cfg Config) inBand(d *waveform.Descriptor) bool {
	lo, hi := cfg.AzimuthMin, cfg.AzimuthMax
	if lo == nil && hi == nil {
		return true
	}
	if d.Origin == nil || math.IsNaN(d.Origin.Azimuth) {
		return false
	}
	az := d.Origin.Azimuth

	if lo != nil && hi != nil && *lo > *hi {
		return az >= *lo || az <= *hi
	}
	if lo != nil && az < *lo {
		return false
	}
	if hi != nil && az > *hi {
		return false
	}
	return true
}

// runs splits a sorted group wherever the gap or overlap leaves tolerance
func (cfg Config) runs(group []*waveform.Descriptor) []*run {
	var (
		out []*run
		cur *run
	)
	for _, d := range group {
		if cur != nil {
			gap := d.Start - cur.end
			if gap > -cfg.OverlapTolerance && gap < cfg.JoinGapTolerance {
				cur.descs = append(cur.descs, d)
				cur.end = max(cur.end, d.End)
				continue
			}
		}
		cur = &run{descs: []*waveform.Descriptor{d}, start: d.Start, end: d.End}
		out = append(out, cur)
	}
	return out
}

// windows computes a run's envelope and cuts it into read requests
func (cfg Config) windows(r *run) []*waveform.ReadRequest {
	start, end := r.start, r.end

	// Snap to the sub-window grid anchored at the global start so repeated
	// plans share boundaries
	if cfg.SubWindow > 0 && cfg.Start != nil {
		start = *cfg.Start + math.Floor((start-*cfg.Start)/cfg.SubWindow)*cfg.SubWindow
	}

	origin := r.origin()
	phased := false
	if cfg.StartPhase != "" && cfg.EndPhase != "" && origin != nil {
		ts, okStart := resolvePhase(cfg.StartPhase, r, origin, cfg.TravelTimes)
		te, okEnd := resolvePhase(cfg.EndPhase, r, origin, cfg.TravelTimes)
		if okStart && okEnd {
			start, end = ts-cfg.EdgePadding, te+cfg.EdgePadding
			phased = true
		}
	}

	if !phased {
		if cfg.Start != nil && start < *cfg.Start {
			start = *cfg.Start
		}
		if cfg.End != nil && end > *cfg.End {
			end = *cfg.End
		}
		if cfg.MaxWindow > 0 && end-start > cfg.MaxWindow {
			end = start + cfg.MaxWindow
		}
	}

	if !(start < end) {
		return nil
	}

	alignment := start
	if origin != nil {
		alignment = origin.Time
	}

	newRequest := func(ws, we float64) *waveform.ReadRequest {
		return &waveform.ReadRequest{
			Start:       ws,
			End:         we,
			Alignment:   alignment,
			Descriptors: slices.Clone(r.descs),
		}
	}

	if cfg.SubWindow <= 0 {
		return []*waveform.ReadRequest{newRequest(start, end)}
	}

	var out []*waveform.ReadRequest
	for n := 0; ; n++ {
		ws := start + float64(n)*cfg.SubWindow
		if ws >= end-windowEpsilon {
			break
		}
		out = append(out, newRequest(ws, min(ws+cfg.SubWindow, end)))
	}
	return out
}

// Descriptors returns the distinct descriptors referenced by reqs in first
// seen order
func Descriptors(reqs []*waveform.ReadRequest) []*waveform.Descriptor {
	seen := make(map[*waveform.Descriptor]bool)
	var out []*waveform.Descriptor
	for _, r := range reqs {
		for _, d := range r.Descriptors {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// PlanSummary counts what a plan will read
type PlanSummary struct {
	Channels    int
	Requests    int
	Descriptors int
	Seconds     float64
}

// Summary tallies reqs for reporting
func Summary(reqs []*waveform.ReadRequest) PlanSummary {
	channels := make(map[string]bool)
	s := PlanSummary{Requests: len(reqs), Descriptors: len(Descriptors(reqs))}
	for _, r := range reqs {
		s.Seconds += r.Duration()
		if len(r.Descriptors) > 0 {
			d := r.Descriptors[0]
			channels[strings.ToLower(d.Station+"/"+d.Channel)] = true
		}
	}
	s.Channels = len(channels)
	return s
}
