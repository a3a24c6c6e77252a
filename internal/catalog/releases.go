package catalog

import (
	"fmt"
	"strings"

	"github.com/astroseek/latcat/internal/conf"
	"github.com/astroseek/latcat/internal/errors"
	"github.com/astroseek/latcat/internal/fits"
	"github.com/astroseek/latcat/internal/spectral"
	"github.com/astroseek/latcat/internal/table"
)

// Release identifies one catalog release generation. The set is closed: each
// release carries its column mapping and join keys as data, and one generic
// routine performs the normalization.
type Release int

const (
	// FPY is the generic user-catalog normalizer used when no release is
	// recognized.
	FPY Release = iota
	TwoFHL
	ThreeFGL
	// FourFGLP covers preliminary 4FGL releases, identified by their
	// NickName column. They reuse the 3FGL extended-source archive.
	FourFGLP
	FL8Y
	FourFGL
	FourFGLDR2
	FourFGLDR3
	FourFGLDR4
)

func (r Release) String() string {
	switch r {
	case FPY:
		return "FPY"
	case TwoFHL:
		return "2FHL"
	case ThreeFGL:
		return "3FGL"
	case FourFGLP:
		return "4FGLP"
	case FL8Y:
		return "FL8Y"
	case FourFGL:
		return "4FGL"
	case FourFGLDR2:
		return "4FGL-DR2"
	case FourFGLDR3:
		return "4FGL-DR3"
	case FourFGLDR4:
		return "4FGL-DR4"
	default:
		return fmt.Sprintf("Release(%d)", int(r))
	}
}

// tsRule selects how the TS column is derived during post-processing.
type tsRule int

const (
	tsNone tsRule = iota
	tsFromSignif    // TS = Signif_Avg^2
	tsFromSqrtBands // TS = sum of squared per-band sqrt-TS columns
	tsCopyColumn    // TS copied from a release-specific column
)

// spectralForm selects the prefactor formula of a parameter fill.
type spectralForm int

const (
	formPowerLaw spectralForm = iota
	formLogParabola
	formCutoff          // legacy: Prefactor = flux * exp((pivot/cutoff)^expIndex)
	formExpfactor       // Prefactor = flux * exp(expfactor * pivot^expIndex)
	formScaledExpfactor // Prefactor = flux, no exponential pre-multiplication
)

// familyFill maps one spectral-model family's release-specific columns onto
// the fixed parameter-vector layout.
type familyFill struct {
	family string
	form   spectralForm

	flux  string
	index string
	pivot string

	beta      string // LogParabola only
	cutoff    string // formCutoff only
	expIndex  string // cutoff forms
	expfactor string // expfactor forms
}

// releaseSpec is the per-release normalization recipe. Differences between
// releases are data here, not logic.
type releaseSpec struct {
	defaultFile string
	extdir      string // stored verbatim, $LATCAT_DATA_DIR expanded by consumers
	srcHDU      string // "" means HDU index 1
	extHDU      string // "" means no extended-source join
	joinLeft    string
	joinRight   string
	dropCols    []string
	sortByName  bool

	extendedFromXRef bool
	spectrumRelabel  map[string]string
	spatialRelabel   map[string]string
	ts               tsRule
	tsColumn         string // tsCopyColumn source

	fills []familyFill

	// pre runs on the joined, stripped table before base construction;
	// post runs on the builder after base construction and before the
	// parameter fill.
	pre  func(tab *table.Table) error
	post func(b *builder) error
}

// extJoinColumns is the fixed allow-list appended from extended-source tables.
var extJoinColumns = []string{
	"Model_Form", "Model_SemiMajor", "Model_SemiMinor", "Model_PosAng",
	colSpatialFilename, colSpatialFunction,
}

// spatialMapDefault is the model tag synthesized when an extended-source
// table predates the Spatial_Function column.
const spatialMapDefault = "SpatialMap"

var gaussRelabel = map[string]string{"RadialGauss": "RadialGaussian"}

var releaseSpecs = map[Release]releaseSpec{
	FPY: {
		extdir: "$LATCAT_DATA_DIR/catalogs/Extended_archive_v18",
		pre:    fpyCleanSpatialFilename,
	},
	TwoFHL: {
		defaultFile: "gll_psch_v08.fit",
		extdir:      "$LATCAT_DATA_DIR/catalogs/Extended_archive_2fhl_v00",
		srcHDU:      "2FHL Source Catalog",
		extHDU:      "Extended Sources",
		joinLeft:    colSourceName,
		joinRight:   colSourceName,
		sortByName:  true,
		post:        twoFHLDeriveSpectrum,
		fills: []familyFill{
			{family: spectral.PowerLaw, form: formPowerLaw,
				flux: "Flux_Density", index: "Spectral_Index", pivot: "Pivot_Energy"},
		},
	},
	ThreeFGL: {
		defaultFile: "gll_psc_v16.fit",
		extdir:      "$LATCAT_DATA_DIR/catalogs/Extended_archive_v15",
		srcHDU:      "LAT_Point_Source_Catalog",
		extHDU:      "ExtendedSources",
		joinLeft:    "Extended_Source_Name",
		joinRight:   colSourceName,
		dropCols:    []string{"Flux_History", "Unc_Flux_History"},
		sortByName:  true,
		spectrumRelabel: map[string]string{
			"PLExpCutoff": spectral.PLSuperExpCutoff,
		},
		spatialRelabel: gaussRelabel,
		ts:             tsFromSqrtBands,
		fills: []familyFill{
			{family: spectral.PowerLaw, form: formPowerLaw,
				flux: "Flux_Density", index: "Spectral_Index", pivot: "Pivot_Energy"},
			{family: spectral.PLSuperExpCutoff, form: formCutoff,
				flux: "Flux_Density", index: "Spectral_Index", pivot: "Pivot_Energy",
				cutoff: "Cutoff", expIndex: "Exp_Index"},
			{family: spectral.LogParabola, form: formLogParabola,
				flux: "Flux_Density", index: "Spectral_Index", beta: "beta", pivot: "Pivot_Energy"},
		},
	},
	FourFGLP: {
		extdir: "$LATCAT_DATA_DIR/catalogs/Extended_archive_v15",
		pre:    fourFGLPSynthesize,
		spectrumRelabel: map[string]string{
			"PLExpCutoff": spectral.PLSuperExpCutoff,
		},
		ts:       tsCopyColumn,
		tsColumn: "Test_Statistic",
		post:     fourFGLPCopyCutoff,
	},
	FL8Y: {
		defaultFile:      "gll_psc_8year_v5.fit",
		extdir:           "$LATCAT_DATA_DIR/catalogs/Extended_archive_v18",
		extHDU:           "ExtendedSources",
		joinLeft:         "Extended_Source_Name",
		joinRight:        colSourceName,
		sortByName:       true,
		extendedFromXRef: true,
		spatialRelabel:   gaussRelabel,
		ts:               tsFromSignif,
		fills: []familyFill{
			{family: spectral.PowerLaw, form: formPowerLaw,
				flux: "Flux_Density", index: "PL_Index", pivot: "Pivot_Energy"},
			{family: spectral.PLSuperExpCutoff2, form: formExpfactor,
				flux: "Flux_Density", index: "PLEC_Index", pivot: "Pivot_Energy",
				expfactor: "PLEC_Expfactor", expIndex: "PLEC_Exp_Index"},
			{family: spectral.LogParabola, form: formLogParabola,
				flux: "Flux_Density", index: "LP_Index", beta: "LP_beta", pivot: "Pivot_Energy"},
		},
	},
	FourFGL: {
		defaultFile:      "gll_psc_v20.fit",
		extdir:           "$LATCAT_DATA_DIR/catalogs/Extended_8years",
		extHDU:           "ExtendedSources",
		joinLeft:         "Extended_Source_Name",
		joinRight:        colSourceName,
		sortByName:       true,
		extendedFromXRef: true,
		spectrumRelabel: map[string]string{
			spectral.PLSuperExpCutoff: spectral.PLSuperExpCutoff2,
		},
		spatialRelabel: gaussRelabel,
		ts:             tsFromSignif,
		fills:          fourFGLFills(spectral.PLSuperExpCutoff2),
	},
	FourFGLDR2: {
		defaultFile:      "gll_psc_v27.fit",
		extdir:           "$LATCAT_DATA_DIR/catalogs/Extended_8years",
		extHDU:           "ExtendedSources",
		joinLeft:         "Extended_Source_Name",
		joinRight:        colSourceName,
		sortByName:       true,
		extendedFromXRef: true,
		spectrumRelabel: map[string]string{
			spectral.PLSuperExpCutoff: spectral.PLSuperExpCutoff2,
		},
		spatialRelabel: gaussRelabel,
		ts:             tsFromSignif,
		fills:          fourFGLFills(spectral.PLSuperExpCutoff2),
	},
	FourFGLDR3: {
		defaultFile:      "gll_psc_v29.fit",
		extdir:           "$LATCAT_DATA_DIR/catalogs/Extended_12years",
		extHDU:           "ExtendedSources",
		joinLeft:         "Extended_Source_Name",
		joinRight:        colSourceName,
		sortByName:       true,
		extendedFromXRef: true,
		spectrumRelabel: map[string]string{
			spectral.PLSuperExpCutoff: spectral.PLSuperExpCutoff4,
		},
		spatialRelabel: gaussRelabel,
		ts:             tsFromSignif,
		fills:          fourFGLFills(spectral.PLSuperExpCutoff4),
	},
	FourFGLDR4: {
		defaultFile:      "gll_psc_v35.fit",
		extdir:           "$LATCAT_DATA_DIR/catalogs/Extended_14years",
		extHDU:           "ExtendedSources",
		joinLeft:         "Extended_Source_Name",
		joinRight:        colSourceName,
		sortByName:       true,
		extendedFromXRef: true,
		spectrumRelabel: map[string]string{
			spectral.PLSuperExpCutoff: spectral.PLSuperExpCutoff4,
		},
		spatialRelabel: gaussRelabel,
		ts:             tsFromSignif,
		fills:          fourFGLFills(spectral.PLSuperExpCutoff4),
	},
}

// fourFGLFills builds the 4FGL-era parameter mappings. The cutoff family is
// PLSuperExpCutoff2 through DR2 and PLSuperExpCutoff4 from DR3 on.
func fourFGLFills(cutoffFamily string) []familyFill {
	fills := []familyFill{
		{family: spectral.PowerLaw, form: formPowerLaw,
			flux: "PL_Flux_Density", index: "PL_Index", pivot: "Pivot_Energy"},
	}
	switch cutoffFamily {
	case spectral.PLSuperExpCutoff2:
		fills = append(fills, familyFill{family: cutoffFamily, form: formExpfactor,
			flux: "PLEC_Flux_Density", index: "PLEC_Index", pivot: "Pivot_Energy",
			expfactor: "PLEC_Expfactor", expIndex: "PLEC_Exp_Index"})
	case spectral.PLSuperExpCutoff4:
		fills = append(fills, familyFill{family: cutoffFamily, form: formScaledExpfactor,
			flux: "PLEC_Flux_Density", index: "PLEC_IndexS", pivot: "Pivot_Energy",
			expfactor: "PLEC_ExpfactorS", expIndex: "PLEC_Exp_Index"})
	}
	fills = append(fills, familyFill{family: spectral.LogParabola, form: formLogParabola,
		flux: "LP_Flux_Density", index: "LP_Index", beta: "LP_beta", pivot: "Pivot_Energy"})
	return fills
}

// Option adjusts a catalog load.
type Option func(*loadOptions)

type loadOptions struct {
	file   string
	extdir string
}

// WithFile overrides the release's bundled default catalog file.
func WithFile(path string) Option {
	return func(o *loadOptions) { o.file = path }
}

// WithExtDir overrides the release's bundled extension-archive directory.
func WithExtDir(dir string) Option {
	return func(o *loadOptions) { o.extdir = dir }
}

// Load normalizes one catalog file for a known release. With no options the
// release's bundled default file and extension archive are used.
func Load(r Release, opts ...Option) (*Catalog, error) {
	spec, ok := releaseSpecs[r]
	if !ok {
		return nil, errors.New(fmt.Errorf("%w: %s", ErrUnknownCatalog, r)).
			Component("catalog").
			Category(errors.CategoryUnknownCatalog).
			Build()
	}

	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	file := o.file
	if file == "" {
		file = spec.defaultFile
	}
	if file == "" {
		return nil, errors.Newf("catalog %s has no bundled file, a path is required", r).
			Component("catalog").
			Category(errors.CategoryValidation).
			Build()
	}
	extdir := o.extdir
	if extdir == "" {
		extdir = spec.extdir
	}

	path := conf.Setting().CatalogPath(file)
	f, err := fits.Open(path)
	if err != nil {
		return nil, err
	}
	cat, err := normalize(f, r, &spec, extdir)
	if err != nil {
		return nil, err
	}
	logger().Debug("catalog normalized",
		"release", r.String(), "path", path, "sources", cat.NumSources())
	return cat, nil
}

// normalize is the one generic routine every release goes through; all
// release differences enter through spec.
func normalize(f *fits.File, r Release, spec *releaseSpec, extdir string) (*Catalog, error) {
	src, err := readHDUTable(f, spec.srcHDU, r)
	if err != nil {
		return nil, err
	}
	for _, name := range spec.dropCols {
		src.RemoveColumn(name)
	}
	table.StripColumns(src)

	if spec.extHDU != "" {
		extsrc, err := readHDUTable(f, spec.extHDU, r)
		if err != nil {
			return nil, err
		}
		// Header metadata from the extension table must not leak into the
		// joined result.
		extsrc.ClearMeta()
		table.StripColumns(extsrc)
		if !extsrc.Has(colSpatialFunction) {
			n := extsrc.NumRows()
			vals := make([]string, n)
			for i := range vals {
				vals[i] = spatialMapDefault
			}
			if err := extsrc.SetColumn(table.NewStringColumn(colSpatialFunction, vals)); err != nil {
				return nil, err
			}
		}
		src, err = table.JoinTables(src, extsrc, spec.joinLeft, spec.joinRight, extJoinColumns)
		if err != nil {
			return nil, errors.New(fmt.Errorf("catalog %s: joining extended sources: %w", r, err)).
				Component("catalog").
				Category(errors.CategoryCatalogSchema).
				Build()
		}
	}

	if spec.pre != nil {
		if err := spec.pre(src); err != nil {
			return nil, err
		}
	}

	if spec.sortByName {
		if err := src.SortBy(colSourceName); err != nil {
			return nil, errors.New(fmt.Errorf("catalog %s: %w", r, err)).
				Component("catalog").
				Category(errors.CategoryCatalogSchema).
				Build()
		}
	}

	b, err := newBuilder(src, extdir, r)
	if err != nil {
		return nil, err
	}

	if spec.extendedFromXRef {
		recomputeExtendedFromXRef(b.tab, spec.joinLeft)
	}
	relabelColumn(b.tab, colSpectrumType, spec.spectrumRelabel)
	relabelColumn(b.tab, colSpatialFunction, spec.spatialRelabel)
	if err := applyTSRule(b.tab, spec); err != nil {
		return nil, err
	}
	if spec.post != nil {
		if err := spec.post(b); err != nil {
			return nil, err
		}
	}
	if err := fillParams(b.tab, spec.fills); err != nil {
		return nil, err
	}

	return b.finalize(), nil
}

// readHDUTable reads a table by extension name, or HDU index 1 when name is
// empty.
func readHDUTable(f *fits.File, name string, r Release) (*table.Table, error) {
	var h *fits.HDU
	var ok bool
	if name == "" {
		h, ok = f.HDU(1)
	} else {
		h, ok = f.HDUByName(name)
	}
	if !ok {
		return nil, errors.Newf("catalog %s: table HDU %q not found", r, name).
			Component("catalog").
			Category(errors.CategoryCatalogSchema).
			Context("release", r.String()).
			Build()
	}
	return h.Table()
}

// recomputeExtendedFromXRef overrides the base extended flag: a source is
// extended iff its extended-source cross-reference name is non-empty. Some
// releases carry Spatial_Function tags on point sources, so filename presence
// alone is not authoritative there.
func recomputeExtendedFromXRef(tab *table.Table, xrefCol string) {
	xref, ok := stringColumn(tab, xrefCol)
	if !ok {
		return
	}
	ext := make([]bool, len(xref))
	for i, name := range xref {
		ext[i] = strings.TrimSpace(name) != ""
	}
	_ = tab.SetColumn(table.NewBoolColumn(colExtended, ext))
	_ = tab.SetColumn(table.NewBoolColumn(colExtendedUpper, append([]bool(nil), ext...)))
}

// relabelColumn rewrites superseded string values in place.
func relabelColumn(tab *table.Table, name string, relabel map[string]string) {
	if len(relabel) == 0 {
		return
	}
	vals, ok := stringColumn(tab, name)
	if !ok {
		return
	}
	for i, v := range vals {
		if repl, ok := relabel[v]; ok {
			vals[i] = repl
		}
	}
}
