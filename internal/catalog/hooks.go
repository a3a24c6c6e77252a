package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/astroseek/latcat/internal/errors"
	"github.com/astroseek/latcat/internal/spectral"
	"github.com/astroseek/latcat/internal/table"
)

// sqrtTSBands are the 3FGL per-band significance columns summed into TS.
var sqrtTSBands = []string{
	"Sqrt_TS30_100", "Sqrt_TS100_300", "Sqrt_TS300_1000",
	"Sqrt_TS1000_3000", "Sqrt_TS3000_10000", "Sqrt_TS10000_100000",
}

// fpyCleanSpatialFilename maps the literal "None" placeholder some user
// catalogs carry to an empty filename, so the extended flag stays sound.
func fpyCleanSpatialFilename(tab *table.Table) error {
	vals, ok := stringColumn(tab, colSpatialFilename)
	if !ok {
		return nil
	}
	for i, v := range vals {
		if v == "None" {
			vals[i] = ""
		}
	}
	return nil
}

// fourFGLPSynthesize reshapes a preliminary 4FGL table: the source name lives
// in NickName, the curvature parameter in Beta, and extended sources carry no
// template filename, so one is synthesized from the source name.
func fourFGLPSynthesize(tab *table.Table) error {
	nick, ok := stringColumn(tab, "NickName")
	if !ok {
		return errors.New(fmt.Errorf("catalog 4FGLP: %w: NickName", ErrMissingColumn)).
			Component("catalog").
			Category(errors.CategoryCatalogSchema).
			Build()
	}
	names := append([]string(nil), nick...)
	if err := tab.SetColumn(table.NewStringColumn(colSourceName, names)); err != nil {
		return err
	}
	if beta, ok := floatColumn(tab, "Beta"); ok {
		if err := tab.SetColumn(table.NewFloatColumn("beta", append([]float64(nil), beta...))); err != nil {
			return err
		}
	}
	files := make([]string, len(names))
	if ext, ok := boolColumn(tab, colExtendedUpper); ok {
		for i, isExt := range ext {
			if isExt {
				files[i] = strings.ReplaceAll(names[i], " ", "") + ".fits"
			}
		}
	}
	return tab.SetColumn(table.NewStringColumn(colSpatialFilename, files))
}

// fourFGLPCopyCutoff aliases the preliminary Cutoff_Energy column under the
// name later releases use.
func fourFGLPCopyCutoff(b *builder) error {
	if cutoff, ok := floatColumn(b.tab, "Cutoff_Energy"); ok {
		return b.tab.SetColumn(table.NewFloatColumn("Cutoff", append([]float64(nil), cutoff...)))
	}
	return nil
}

// twoFHLDeriveSpectrum synthesizes the spectral columns the hard-source
// catalog omits. Every 2FHL source is a power law over the 50 GeV to 2 TeV
// band, so the differential flux density at the 50 GeV pivot follows from
// the integral flux and the spectral index.
func twoFHLDeriveSpectrum(b *builder) error {
	const (
		pivot = 50e3
		emin  = 50e3
		emax  = 2000e3
	)
	flux, ok := floatColumn(b.tab, "Flux50")
	if !ok {
		return errors.New(fmt.Errorf("catalog 2FHL: %w: Flux50", ErrMissingColumn)).
			Component("catalog").
			Category(errors.CategoryCatalogSchema).
			Build()
	}
	index, ok := floatColumn(b.tab, "Spectral_Index")
	if !ok {
		return errors.New(fmt.Errorf("catalog 2FHL: %w: Spectral_Index", ErrMissingColumn)).
			Component("catalog").
			Category(errors.CategoryCatalogSchema).
			Build()
	}
	n := len(flux)
	density := make([]float64, n)
	pivots := make([]float64, n)
	types := make([]string, n)
	for i := range flux {
		density[i] = spectral.PowerLawNorm(pivot, -index[i], emin, emax, flux[i])
		pivots[i] = pivot
		types[i] = spectral.PowerLaw
	}
	if err := b.tab.SetColumn(table.NewFloatColumn("Flux_Density", density)); err != nil {
		return err
	}
	if err := b.tab.SetColumn(table.NewFloatColumn("Pivot_Energy", pivots)); err != nil {
		return err
	}
	return b.tab.SetColumn(table.NewStringColumn(colSpectrumType, types))
}

// applyTSRule derives the TS column the way the release reports detection
// significance.
func applyTSRule(tab *table.Table, spec *releaseSpec) error {
	switch spec.ts {
	case tsNone:
		return nil
	case tsFromSignif:
		signif, ok := floatColumn(tab, "Signif_Avg")
		if !ok {
			return errors.New(fmt.Errorf("%w: Signif_Avg", ErrMissingColumn)).
				Component("catalog").
				Category(errors.CategoryCatalogSchema).
				Build()
		}
		ts := make([]float64, len(signif))
		for i, s := range signif {
			ts[i] = s * s
		}
		return tab.SetColumn(table.NewFloatColumn("TS", ts))
	case tsFromSqrtBands:
		ts := make([]float64, tab.NumRows())
		for _, band := range sqrtTSBands {
			vals, ok := floatColumn(tab, band)
			if !ok {
				// Smaller files do not carry every band; sum what exists.
				continue
			}
			for i, v := range vals {
				if !math.IsNaN(v) && !math.IsInf(v, 0) {
					ts[i] += v * v
				}
			}
		}
		if err := tab.SetColumn(table.NewFloatColumn("TS_value", ts)); err != nil {
			return err
		}
		return tab.SetColumn(table.NewFloatColumn("TS", append([]float64(nil), ts...)))
	case tsCopyColumn:
		vals, ok := floatColumn(tab, spec.tsColumn)
		if !ok {
			return errors.New(fmt.Errorf("%w: %s", ErrMissingColumn, spec.tsColumn)).
				Component("catalog").
				Category(errors.CategoryCatalogSchema).
				Build()
		}
		return tab.SetColumn(table.NewFloatColumn("TS", append([]float64(nil), vals...)))
	default:
		return nil
	}
}
