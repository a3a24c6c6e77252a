package fits

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroseek/latcat/internal/fits/fitstest"
	"github.com/astroseek/latcat/internal/table"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.fits")
	err := fitstest.WriteFile(path,
		fitstest.HDU{
			ExtName: "LAT_Point_Source_Catalog",
			Cards: []fitstest.Card{
				{Key: "CDS-NAME", Value: "3FGL"},
				{Key: "VERSION", Value: "v16"},
			},
			Columns: []fitstest.Column{
				{Name: "Source_Name", Strings: []string{"J0001", "J0002", "J0003"}},
				{Name: "RAJ2000", Floats: []float64{10.5, 20.25, 30.125}},
				{Name: "Flags", Ints: []int64{-1, 0, 42}},
				{Name: "Variable", Bools: []bool{true, false, true}},
				{Name: "Flux_Band", Vecs: [][]float64{{1, 2}, {3, 4}, {5, 6}}},
			},
		},
		fitstest.HDU{
			ExtName: "ExtendedSources",
			Columns: []fitstest.Column{
				{Name: "Source_Name", Strings: []string{"W44"}},
				{Name: "Spatial_Filename", Strings: []string{"W44.fits"}},
			},
		},
	)
	require.NoError(t, err)
	return path
}

func TestOpenRoundTrip(t *testing.T) {
	f, err := Open(writeSample(t))
	require.NoError(t, err)
	require.Equal(t, 3, f.NumHDUs(), "primary plus two tables")

	h, ok := f.HDU(1)
	require.True(t, ok)
	assert.Equal(t, "LAT_Point_Source_Catalog", h.Name())

	name, ok := h.StringKey("CDS-NAME")
	require.True(t, ok)
	assert.Equal(t, "3FGL", name)
	version, ok := h.StringKey("VERSION")
	require.True(t, ok)
	assert.Equal(t, "v16", version)

	tab, err := h.Table()
	require.NoError(t, err)
	require.Equal(t, 3, tab.NumRows())

	src, _ := tab.Column("Source_Name")
	assert.Equal(t, table.String, src.Kind())
	assert.Equal(t, "J0001", src.Strings()[0])

	ra, _ := tab.Column("RAJ2000")
	assert.Equal(t, []float64{10.5, 20.25, 30.125}, ra.Floats())

	flags, _ := tab.Column("Flags")
	assert.Equal(t, []int64{-1, 0, 42}, flags.Ints())

	variable, _ := tab.Column("Variable")
	assert.Equal(t, []bool{true, false, true}, variable.Bools())

	band, _ := tab.Column("Flux_Band")
	assert.Equal(t, table.FloatVec, band.Kind())
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, band.Vecs())
}

func TestHDUByName(t *testing.T) {
	f, err := Open(writeSample(t))
	require.NoError(t, err)

	h, ok := f.HDUByName("ExtendedSources")
	require.True(t, ok)
	tab, err := h.Table()
	require.NoError(t, err)
	require.Equal(t, 1, tab.NumRows())

	fn, _ := tab.Column("Spatial_Filename")
	assert.Equal(t, "W44.fits", fn.Strings()[0])

	_, ok = f.HDUByName("NoSuchTable")
	assert.False(t, ok)
}

func TestTableMetaCarriesHeaderStrings(t *testing.T) {
	f, err := Open(writeSample(t))
	require.NoError(t, err)
	h, _ := f.HDU(1)
	tab, err := h.Table()
	require.NoError(t, err)

	v, ok := tab.Meta("CDS-NAME")
	require.True(t, ok)
	assert.Equal(t, "3FGL", v)
}

func TestStringPaddingIsPreserved(t *testing.T) {
	// Fixed-width fields pad with spaces; the reader must hand them back so
	// the normalizer's strip pass stays meaningful.
	path := filepath.Join(t.TempDir(), "pad.fits")
	require.NoError(t, fitstest.WriteFile(path, fitstest.HDU{
		ExtName: "T",
		Columns: []fitstest.Column{
			{Name: "Name", Width: 10, Strings: []string{"abc"}},
		},
	}))

	f, err := Open(path)
	require.NoError(t, err)
	h, _ := f.HDUByName("T")
	tab, err := h.Table()
	require.NoError(t, err)
	col, _ := tab.Column("Name")
	assert.Equal(t, "abc       ", col.Strings()[0])
}

func TestPrimaryHDUHasNoTable(t *testing.T) {
	f, err := Open(writeSample(t))
	require.NoError(t, err)
	h, _ := f.HDU(0)
	_, err = h.Table()
	assert.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.fits"))
	assert.Error(t, err)
}
