package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/astroseek/latcat/internal/conf"
	"github.com/astroseek/latcat/internal/errors"
	"github.com/astroseek/latcat/internal/fits"
)

// releaseTokens maps the published catalog names accepted by Create.
var releaseTokens = map[string]Release{
	"2FHL":     TwoFHL,
	"3FGL":     ThreeFGL,
	"FL8Y":     FL8Y,
	"4FGL":     FourFGL,
	"4FGL-DR2": FourFGLDR2,
	"4FGL-DR3": FourFGLDR3,
	"4FGL-DR4": FourFGLDR4,
}

// Signature columns separating the 4FGL cutoff-model generations.
const (
	sigPLECIndex  = "PLEC_Index"
	sigPLECIndexS = "PLEC_IndexS"
)

// Create normalizes a catalog given either a published release name or a path
// to a FITS file. Release names use the bundled default file for that
// release. Paths are resolved against the configured catalog directory and
// the release is detected from the file's header tags and column set; files
// matching no known release go through the generic normalizer.
func Create(nameOrPath string, opts ...Option) (*Catalog, error) {
	if r, ok := releaseTokens[nameOrPath]; ok {
		return Load(r, opts...)
	}
	lower := strings.ToLower(nameOrPath)
	if !strings.HasSuffix(lower, ".fit") && !strings.HasSuffix(lower, ".fits") {
		return nil, errors.New(fmt.Errorf("%w: %q", ErrUnknownCatalog, nameOrPath)).
			Component("catalog").
			Category(errors.CategoryUnknownCatalog).
			Context("name", nameOrPath).
			Build()
	}

	path := conf.Setting().CatalogPath(nameOrPath)
	f, err := fits.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := detectRelease(f, path)
	if err != nil {
		return nil, err
	}
	logger().Debug("catalog file dispatched", "path", path, "release", r.String())

	spec := releaseSpecs[r]
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	extdir := o.extdir
	if extdir == "" {
		extdir = spec.extdir
	}
	return normalize(f, r, &spec, extdir)
}

// detectRelease inspects the first extension's header tags and column set.
// Only the header is touched; no table is decoded until a release is chosen.
func detectRelease(f *fits.File, path string) (Release, error) {
	h, ok := f.HDU(1)
	if !ok {
		return FPY, errors.Newf("no table extension in %s", path).
			Component("catalog").
			Category(errors.CategoryCatalogSchema).
			Build()
	}
	cols := h.ColumnNames()

	switch name, _ := h.StringKey("CDS-NAME"); name {
	case "3FGL":
		return ThreeFGL, nil
	case "FL8Y":
		return FL8Y, nil
	case "4FGL":
		v, ok := headerVersion(h)
		if !ok {
			return FPY, errors.New(fmt.Errorf("%w: 4FGL file without a readable VERSION tag", ErrSchemaVersion)).
				Component("catalog").
				Category(errors.CategorySchemaVersion).
				Context("path", path).
				Build()
		}
		switch {
		case v >= 17 && v <= 22:
			if hasColumn(cols, sigPLECIndex) {
				return FourFGL, nil
			}
		case v >= 23 && v <= 27:
			if hasColumn(cols, sigPLECIndex) {
				return FourFGLDR2, nil
			}
		case v >= 28 && v <= 31:
			if hasColumn(cols, sigPLECIndexS) {
				return FourFGLDR3, nil
			}
		case v >= 32 && v <= 35:
			if hasColumn(cols, sigPLECIndexS) {
				return FourFGLDR4, nil
			}
		default:
			return FPY, errors.New(fmt.Errorf("%w: 4FGL version %d", ErrSchemaVersion, v)).
				Component("catalog").
				Category(errors.CategorySchemaVersion).
				Context("version", v).
				Build()
		}
		// An in-range version without its signature column falls through
		// to the structural checks below.
	}

	if strings.Contains(filepath.Base(path), "gll_psch_v08") {
		return TwoFHL, nil
	}
	if hasColumn(cols, "NickName") {
		return FourFGLP, nil
	}
	return FPY, nil
}

// headerVersion extracts the numeric part of the VERSION tag, which appears
// either as a bare integer or as a string like "v27".
func headerVersion(h *fits.HDU) (int, bool) {
	if v, ok := h.IntKey("VERSION"); ok {
		return v, true
	}
	s, ok := h.StringKey("VERSION")
	if !ok {
		return 0, false
	}
	digits := strings.Builder{}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	v := 0
	for _, r := range digits.String() {
		v = v*10 + int(r-'0')
	}
	return v, true
}

func hasColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
