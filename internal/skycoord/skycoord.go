// Package skycoord converts equatorial J2000 positions to galactic
// coordinates. Inputs and outputs are in degrees.
package skycoord

import "math"

// IAU definition of the galactic frame relative to J2000 equatorial:
// north galactic pole and the position angle of the galactic center.
const (
	ngpRA  = 192.859508 // deg
	ngpDec = 27.128336  // deg
	lonNCP = 122.932    // deg, galactic longitude of the north celestial pole
)

const degToRad = math.Pi / 180.0

// GalacticFromEquatorial converts one RA/Dec pair (J2000, degrees) to
// galactic longitude and latitude in degrees. Longitude is in [0, 360).
func GalacticFromEquatorial(raDeg, decDeg float64) (lDeg, bDeg float64) {
	ra := raDeg * degToRad
	dec := decDeg * degToRad
	poleRA := ngpRA * degToRad
	poleDec := ngpDec * degToRad

	sinB := math.Sin(dec)*math.Sin(poleDec) +
		math.Cos(dec)*math.Cos(poleDec)*math.Cos(ra-poleRA)
	b := math.Asin(sinB)

	y := math.Cos(dec) * math.Sin(ra-poleRA)
	x := math.Sin(dec)*math.Cos(poleDec) -
		math.Cos(dec)*math.Sin(poleDec)*math.Cos(ra-poleRA)
	l := lonNCP*degToRad - math.Atan2(y, x)

	lDeg = l / degToRad
	for lDeg < 0 {
		lDeg += 360
	}
	for lDeg >= 360 {
		lDeg -= 360
	}
	return lDeg, b / degToRad
}

// Convert maps an N×2 array of RA/Dec pairs to an N×2 array of galactic
// longitude/latitude pairs.
func Convert(radec [][2]float64) [][2]float64 {
	out := make([][2]float64, len(radec))
	for i, rd := range radec {
		l, b := GalacticFromEquatorial(rd[0], rd[1])
		out[i] = [2]float64{l, b}
	}
	return out
}
