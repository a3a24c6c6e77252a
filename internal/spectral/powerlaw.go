package spectral

import "math"

// PowerLawNorm returns the prefactor N0 of a power law
//
//	dN/dE = N0 * (E/scale)^index
//
// whose integral flux over [emin, emax] equals flux. The index is the
// exponent as it enters the model (catalog spectral indices must be negated
// before calling). The index = -1 case integrates to a logarithm.
func PowerLawNorm(scale, index, emin, emax, flux float64) float64 {
	var integral float64
	if index == -1 {
		integral = scale * math.Log(emax/emin)
	} else {
		g := index + 1
		integral = scale / g * (math.Pow(emax/scale, g) - math.Pow(emin/scale, g))
	}
	return flux / integral
}
