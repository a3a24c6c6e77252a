package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamNamesOrdering(t *testing.T) {
	cases := map[string][]string{
		PowerLaw:          {"Prefactor", "Index", "Scale"},
		LogParabola:       {"norm", "alpha", "beta", "Eb"},
		PLSuperExpCutoff:  {"Prefactor", "Index1", "Scale", "Cutoff", "Index2"},
		PLSuperExpCutoff2: {"Prefactor", "Index1", "Scale", "Expfactor", "Index2"},
		PLSuperExpCutoff4: {"Prefactor", "IndexS", "Scale", "ExpfactorS", "Index2"},
	}
	for family, want := range cases {
		got, ok := ParamNames(family)
		require.True(t, ok, family)
		assert.Equal(t, want, got, family)
	}
}

func TestParamNamesStable(t *testing.T) {
	a, _ := ParamNames(PowerLaw)
	b, _ := ParamNames(PowerLaw)
	assert.Equal(t, a, b)
}

func TestParamNamesUnknownFamily(t *testing.T) {
	_, ok := ParamNames("BrokenPowerLaw")
	assert.False(t, ok)
}

func TestParamIndex(t *testing.T) {
	idx, ok := ParamIndex(PLSuperExpCutoff2)
	require.True(t, ok)
	assert.Equal(t, 0, idx["Prefactor"])
	assert.Equal(t, 1, idx["Index1"])
	assert.Equal(t, 2, idx["Scale"])
	assert.Equal(t, 3, idx["Expfactor"])
	assert.Equal(t, 4, idx["Index2"])
}

func TestPowerLawNormRecoversFlux(t *testing.T) {
	// Pick a norm, integrate analytically, and invert.
	scale, index := 50e3, -2.0
	emin, emax := 50e3, 2000e3
	norm := 3.2e-13

	g := index + 1
	flux := norm * scale / g * (math.Pow(emax/scale, g) - math.Pow(emin/scale, g))

	got := PowerLawNorm(scale, index, emin, emax, flux)
	assert.InEpsilon(t, norm, got, 1e-12)
}

func TestPowerLawNormLogBranch(t *testing.T) {
	scale := 1000.0
	emin, emax := 100.0, 10000.0
	norm := 2.5e-11

	flux := norm * scale * math.Log(emax/emin)
	got := PowerLawNorm(scale, -1, emin, emax, flux)
	assert.InEpsilon(t, norm, got, 1e-12)
}
