// Package catalog normalizes LAT source-catalog FITS files into one unified
// in-memory table representation with a consistent schema, spectral-model
// parameterization and extended-source metadata, regardless of which catalog
// release produced the file.
package catalog

import (
	"fmt"
	"log/slog"

	"github.com/astroseek/latcat/internal/errors"
	"github.com/astroseek/latcat/internal/logging"
	"github.com/astroseek/latcat/internal/skycoord"
	"github.com/astroseek/latcat/internal/table"
)

// logger resolves per call so that logging configured after package init
// (logging.Init or logging.InitFile) takes effect here.
func logger() *slog.Logger { return logging.ForService("catalog") }

// Sentinel errors for the fatal failure modes of a catalog load.
var (
	// ErrUnknownCatalog is returned when a release name token matches no
	// known catalog release.
	ErrUnknownCatalog = errors.NewStd("unrecognized catalog")

	// ErrSchemaVersion is returned when a file's version tag belongs to a
	// known release family but no known schema generation.
	ErrSchemaVersion = errors.NewStd("unrecognized catalog schema version")

	// ErrMissingColumn is returned when a column the release structurally
	// depends on (positions, the significance source, NickName) is absent.
	ErrMissingColumn = errors.NewStd("required column missing")
)

// Baseline column names guaranteed on every normalized catalog table.
const (
	colSourceName      = "Source_Name"
	colRA              = "RAJ2000"
	colDec             = "DEJ2000"
	colSpatialFilename = "Spatial_Filename"
	colSpatialFunction = "Spatial_Function"
	colSpectrumType    = "SpectrumType"
	colExtended        = "extended"
	colExtendedUpper   = "Extended"
	colExtdir          = "extdir"
	colParamValues     = "param_values"
)

// paramVectorSize is the fixed slot count of the per-row parameter vector.
const paramVectorSize = 10

// Catalog is a normalized source catalog: one table row per source plus
// cached equatorial and galactic positions. All derived state is computed at
// construction and immutable afterwards.
type Catalog struct {
	tab     *table.Table
	radec   [][2]float64
	glonlat [][2]float64
	extdir  string
	release Release
}

// Table returns the normalized columnar table.
func (c *Catalog) Table() *table.Table { return c.tab }

// RaDec returns the N×2 array of equatorial positions in degrees.
func (c *Catalog) RaDec() [][2]float64 { return c.radec }

// GlonLat returns the N×2 array of galactic positions in degrees.
func (c *Catalog) GlonLat() [][2]float64 { return c.glonlat }

// ExtDir returns the extension-archive directory recorded for this catalog.
func (c *Catalog) ExtDir() string { return c.extdir }

// Release identifies which normalizer produced this catalog.
func (c *Catalog) Release() Release { return c.release }

// NumSources returns the number of rows.
func (c *Catalog) NumSources() int { return c.tab.NumRows() }

// builder accumulates the normalization steps of one load. Callers never see
// a partially-built table; only finalize hands the entity out.
type builder struct {
	tab     *table.Table
	radec   [][2]float64
	glonlat [][2]float64
	extdir  string
	release Release
}

// newBuilder runs the base construction contract: derive sky positions from
// RAJ2000/DEJ2000, guarantee the baseline spatial columns, compute the
// extended flag from them, and broadcast the extension directory.
func newBuilder(tab *table.Table, extdir string, release Release) (*builder, error) {
	ra, okRA := floatColumn(tab, colRA)
	dec, okDec := floatColumn(tab, colDec)
	if !okRA || !okDec {
		return nil, errors.New(fmt.Errorf("catalog %s: %w: need %s and %s",
			release, ErrMissingColumn, colRA, colDec)).
			Component("catalog").
			Category(errors.CategoryCatalogSchema).
			Context("release", release.String()).
			Build()
	}

	n := tab.NumRows()
	b := &builder{tab: tab, extdir: extdir, release: release}

	// Positions are interpreted as degrees; LAT catalogs store RAJ2000 and
	// DEJ2000 in degrees throughout the lineage.
	b.radec = make([][2]float64, n)
	for i := 0; i < n; i++ {
		b.radec[i] = [2]float64{ra[i], dec[i]}
	}
	b.glonlat = skycoord.Convert(b.radec)

	for _, name := range []string{colSpatialFilename, colSpatialFunction} {
		if !tab.Has(name) {
			if err := tab.SetColumn(table.NewEmptyColumn(name, table.String, n, 0)); err != nil {
				return nil, err
			}
		}
	}

	fn, _ := stringColumn(tab, colSpatialFilename)
	sf, _ := stringColumn(tab, colSpatialFunction)
	ext := make([]bool, n)
	for i := 0; i < n; i++ {
		ext[i] = fn[i] != "" || sf[i] != ""
	}
	if err := tab.SetColumn(table.NewBoolColumn(colExtended, ext)); err != nil {
		return nil, err
	}

	extcol := make([]string, n)
	for i := range extcol {
		extcol[i] = extdir
	}
	if err := tab.SetColumn(table.NewStringColumn(colExtdir, extcol)); err != nil {
		return nil, err
	}

	return b, nil
}

// finalize hands out the immutable entity.
func (b *builder) finalize() *Catalog {
	return &Catalog{
		tab:     b.tab,
		radec:   b.radec,
		glonlat: b.glonlat,
		extdir:  b.extdir,
		release: b.release,
	}
}

// floatColumn resolves a float column, reporting presence explicitly.
func floatColumn(tab *table.Table, name string) ([]float64, bool) {
	c, ok := tab.Column(name)
	if !ok || c.Kind() != table.Float {
		return nil, false
	}
	return c.Floats(), true
}

// stringColumn resolves a string column, reporting presence explicitly.
func stringColumn(tab *table.Table, name string) ([]string, bool) {
	c, ok := tab.Column(name)
	if !ok || c.Kind() != table.String {
		return nil, false
	}
	return c.Strings(), true
}

// boolColumn resolves a bool column, reporting presence explicitly.
func boolColumn(tab *table.Table, name string) ([]bool, bool) {
	c, ok := tab.Column(name)
	if !ok || c.Kind() != table.Bool {
		return nil, false
	}
	return c.Bools(), true
}
