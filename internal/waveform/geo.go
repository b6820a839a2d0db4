package waveform

import "math"

// DistAz returns the great-circle distance in degrees and the azimuth in
// degrees clockwise from north, from point 1 (event) to point 2 (station).
// A spherical earth is assumed.
func DistAz(lat1, lon1, lat2, lon2 float64) (delta, azimuth float64) {
	const rad = math.Pi / 180

	phi1, phi2 := lat1*rad, lat2*rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLon)
	a = math.Max(-1, math.Min(1, a))
	delta = math.Acos(a) / rad

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	azimuth = math.Atan2(y, x) / rad
	if azimuth < 0 {
		azimuth += 360
	}
	return delta, azimuth
}
