package catalog

import (
	"math"

	"github.com/astroseek/latcat/internal/spectral"
	"github.com/astroseek/latcat/internal/table"
)

// fillParams populates the per-row parameter vector from the release's
// spectral columns. Each family fill applies only to the rows whose
// SpectrumType matches, writing every parameter into the slot the family
// registry assigns it. A fill whose source columns are absent from the table
// is skipped: smaller catalogs simply do not carry every family.
func fillParams(tab *table.Table, fills []familyFill) error {
	if !tab.Has(colParamValues) {
		col := table.NewEmptyColumn(colParamValues, table.FloatVec, tab.NumRows(), paramVectorSize)
		if err := tab.SetColumn(col); err != nil {
			return err
		}
	}
	specType, ok := stringColumn(tab, colSpectrumType)
	if !ok {
		logger().Debug("no SpectrumType column, parameter vectors left empty")
		return nil
	}
	pcol, _ := tab.Column(colParamValues)
	vecs := pcol.Vecs()

	for _, fill := range fills {
		slots, ok := spectral.ParamIndex(fill.family)
		if !ok {
			continue
		}
		cols, ok := resolveFillColumns(tab, fill)
		if !ok {
			logger().Debug("spectral columns absent, skipping family",
				"family", fill.family)
			continue
		}
		mask := make([]bool, len(specType))
		for i, st := range specType {
			mask[i] = st == fill.family
		}
		assignParams(vecs, mask, slots, fill, cols)
	}
	return nil
}

// fillColumns holds the resolved source columns of one family fill. Optional
// slices are nil when the form does not use them.
type fillColumns struct {
	flux      []float64
	index     []float64
	pivot     []float64
	beta      []float64
	cutoff    []float64
	expIndex  []float64
	expfactor []float64
}

func resolveFillColumns(tab *table.Table, fill familyFill) (fillColumns, bool) {
	var c fillColumns
	var ok bool
	if c.flux, ok = floatColumn(tab, fill.flux); !ok {
		return c, false
	}
	if c.index, ok = floatColumn(tab, fill.index); !ok {
		return c, false
	}
	if c.pivot, ok = floatColumn(tab, fill.pivot); !ok {
		return c, false
	}
	switch fill.form {
	case formLogParabola:
		if c.beta, ok = floatColumn(tab, fill.beta); !ok {
			return c, false
		}
	case formCutoff:
		if c.cutoff, ok = floatColumn(tab, fill.cutoff); !ok {
			return c, false
		}
		if c.expIndex, ok = floatColumn(tab, fill.expIndex); !ok {
			return c, false
		}
	case formExpfactor, formScaledExpfactor:
		if c.expfactor, ok = floatColumn(tab, fill.expfactor); !ok {
			return c, false
		}
		if c.expIndex, ok = floatColumn(tab, fill.expIndex); !ok {
			return c, false
		}
	}
	return c, true
}

// assignParams writes the family's parameters into the masked rows. Slots the
// family does not define keep their NaN filler.
func assignParams(vecs [][]float64, mask []bool, slots map[string]int, fill familyFill, c fillColumns) {
	set := func(i int, name string, v float64) {
		if slot, ok := slots[name]; ok {
			vecs[i][slot] = v
		}
	}
	for i := range mask {
		if !mask[i] {
			continue
		}
		switch fill.form {
		case formPowerLaw:
			set(i, "Prefactor", c.flux[i])
			set(i, "Index", -c.index[i])
			set(i, "Scale", c.pivot[i])
		case formLogParabola:
			set(i, "norm", c.flux[i])
			set(i, "alpha", c.index[i])
			set(i, "beta", c.beta[i])
			set(i, "Eb", c.pivot[i])
		case formCutoff:
			set(i, "Prefactor", c.flux[i]*math.Exp(math.Pow(c.pivot[i]/c.cutoff[i], c.expIndex[i])))
			set(i, "Index1", -c.index[i])
			set(i, "Scale", c.pivot[i])
			set(i, "Cutoff", c.cutoff[i])
			set(i, "Index2", c.expIndex[i])
		case formExpfactor:
			set(i, "Prefactor", c.flux[i]*math.Exp(c.expfactor[i]*math.Pow(c.pivot[i], c.expIndex[i])))
			set(i, "Index1", -c.index[i])
			set(i, "Scale", c.pivot[i])
			set(i, "Expfactor", c.expfactor[i])
			set(i, "Index2", c.expIndex[i])
		case formScaledExpfactor:
			set(i, "Prefactor", c.flux[i])
			set(i, "IndexS", -c.index[i])
			set(i, "Scale", c.pivot[i])
			set(i, "ExpfactorS", c.expfactor[i])
			set(i, "Index2", c.expIndex[i])
		}
	}
}
