// Package latcat normalizes Fermi-LAT source catalogs. Heterogeneous catalog
// FITS releases are ingested into a single columnar table with a consistent
// schema: unified source names, sky positions in both equatorial and galactic
// frames, modern spectral-model labels, a fixed-layout spectral parameter
// vector per source, and extended-source metadata joined in from the release's
// template archive.
package latcat

import (
	"log/slog"

	"github.com/astroseek/latcat/internal/catalog"
	"github.com/astroseek/latcat/internal/conf"
	"github.com/astroseek/latcat/internal/logging"
	"github.com/astroseek/latcat/internal/table"
)

// Catalog is a normalized source catalog. See the methods on
// internal/catalog.Catalog: Table, RaDec, GlonLat, ExtDir, Release,
// NumSources.
type Catalog = catalog.Catalog

// Release identifies a catalog release generation.
type Release = catalog.Release

// Table is the columnar table a Catalog exposes.
type Table = table.Table

// Column is one typed column of a Table.
type Column = table.Column

// Option adjusts a catalog load.
type Option = catalog.Option

// Known release generations.
const (
	FPY        = catalog.FPY
	TwoFHL     = catalog.TwoFHL
	ThreeFGL   = catalog.ThreeFGL
	FourFGLP   = catalog.FourFGLP
	FL8Y       = catalog.FL8Y
	FourFGL    = catalog.FourFGL
	FourFGLDR2 = catalog.FourFGLDR2
	FourFGLDR3 = catalog.FourFGLDR3
	FourFGLDR4 = catalog.FourFGLDR4
)

// Sentinel errors, matchable with errors.Is through any wrapping.
var (
	ErrUnknownCatalog = catalog.ErrUnknownCatalog
	ErrSchemaVersion  = catalog.ErrSchemaVersion
	ErrMissingColumn  = catalog.ErrMissingColumn
)

// EnvDataDir is the environment variable pointing at the data root that
// holds bundled catalog files under <root>/catalogs.
const EnvDataDir = conf.EnvDataDir

// Create normalizes a catalog given either a published release name (such as
// "3FGL" or "4FGL-DR3") or a path to a catalog FITS file. Paths are matched
// to a known release by their header tags and column set; unrecognized files
// go through the generic normalizer.
func Create(nameOrPath string, opts ...Option) (*Catalog, error) {
	return catalog.Create(nameOrPath, opts...)
}

// Load normalizes a catalog for an explicitly chosen release.
func Load(r Release, opts ...Option) (*Catalog, error) {
	return catalog.Load(r, opts...)
}

// WithFile overrides the release's bundled default catalog file.
func WithFile(path string) Option { return catalog.WithFile(path) }

// WithExtDir overrides the release's bundled extension-archive directory.
func WithExtDir(dir string) Option { return catalog.WithExtDir(dir) }

// InitLogging switches the module's loggers from the default slog handler to
// the structured handlers. When a log file is configured (`logfile` key or
// LATCAT_LOG_FILE), structured logs go to that file with rotation and the
// returned close function flushes it; otherwise the close function is a
// no-op. Optional; embedding applications may prefer to leave slog's default
// in place, in which case module logs follow it.
func InitLogging() (func() error, error) {
	if path := conf.Setting().LogFile; path != "" {
		return logging.InitFile(path, slog.LevelDebug)
	}
	logging.Init()
	return func() error { return nil }, nil
}
