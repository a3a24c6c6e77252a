// Package spectral holds the canonical parameterization of the spectral
// model families that appear in LAT catalogs.
package spectral

// Spectral model family names as they appear in the SpectrumType column of
// normalized catalogs.
const (
	PowerLaw          = "PowerLaw"
	LogParabola       = "LogParabola"
	PLSuperExpCutoff  = "PLSuperExpCutoff"
	PLSuperExpCutoff2 = "PLSuperExpCutoff2"
	PLSuperExpCutoff4 = "PLSuperExpCutoff4"
)

// paramNames maps each family to its canonical ordered parameter list. The
// order fixes the slot index of each parameter inside a row's parameter
// vector, so it must never change between releases of this module.
var paramNames = map[string][]string{
	PowerLaw:          {"Prefactor", "Index", "Scale"},
	LogParabola:       {"norm", "alpha", "beta", "Eb"},
	PLSuperExpCutoff:  {"Prefactor", "Index1", "Scale", "Cutoff", "Index2"},
	PLSuperExpCutoff2: {"Prefactor", "Index1", "Scale", "Expfactor", "Index2"},
	PLSuperExpCutoff4: {"Prefactor", "IndexS", "Scale", "ExpfactorS", "Index2"},
}

// ParamNames returns the canonical ordered parameter names for a spectral
// model family. The returned slice must not be modified.
func ParamNames(family string) ([]string, bool) {
	names, ok := paramNames[family]
	return names, ok
}

// ParamIndex returns a name-to-slot mapping for a family's parameters.
func ParamIndex(family string) (map[string]int, bool) {
	names, ok := paramNames[family]
	if !ok {
		return nil, false
	}
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx, true
}
