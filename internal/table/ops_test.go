package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leftFixture(t *testing.T) *Table {
	t.Helper()
	tab := New()
	require.NoError(t, tab.SetColumn(NewStringColumn("Source_Name", []string{"A", "B", "C", "D", "E"})))
	require.NoError(t, tab.SetColumn(NewFloatColumn("Flux", []float64{1, 2, 3, 4, 5})))
	return tab
}

func rightFixture(t *testing.T) *Table {
	t.Helper()
	tab := New()
	require.NoError(t, tab.SetColumn(NewStringColumn("Name", []string{"B", "D"})))
	require.NoError(t, tab.SetColumn(NewStringColumn("Spatial_Filename", []string{"b.fits", "d.fits"})))
	require.NoError(t, tab.SetColumn(NewFloatColumn("Model_SemiMajor", []float64{0.5, 1.5})))
	require.NoError(t, tab.SetColumn(NewIntColumn("Model_ID", []int64{10, 20})))
	require.NoError(t, tab.SetColumn(NewBoolColumn("Flag", []bool{true, true})))
	return tab
}

func TestJoinTablesFillValues(t *testing.T) {
	left := leftFixture(t)
	right := rightFixture(t)

	out, err := JoinTables(left, right, "Source_Name", "Name", nil)
	require.NoError(t, err)

	require.Equal(t, 5, out.NumRows(), "left outer join preserves left row count")
	names, _ := out.Column("Source_Name")
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names.Strings(), "row order preserved")

	fn, _ := out.Column("Spatial_Filename")
	assert.Equal(t, []string{"", "b.fits", "", "d.fits", ""}, fn.Strings())

	semi, _ := out.Column("Model_SemiMajor")
	for i, v := range semi.Floats() {
		switch i {
		case 1:
			assert.Equal(t, 0.5, v)
		case 3:
			assert.Equal(t, 1.5, v)
		default:
			assert.True(t, math.IsNaN(v), "unmatched float rows are NaN")
		}
	}

	id, _ := out.Column("Model_ID")
	assert.Equal(t, []int64{0, 10, 0, 20, 0}, id.Ints(), "unmatched int rows are zero")

	flag, _ := out.Column("Flag")
	assert.Equal(t, []bool{false, true, false, true, false}, flag.Bools())
}

func TestJoinTablesKeepList(t *testing.T) {
	left := leftFixture(t)
	right := rightFixture(t)

	out, err := JoinTables(left, right, "Source_Name", "Name",
		[]string{"Spatial_Filename", "Not_A_Column"})
	require.NoError(t, err)

	assert.True(t, out.Has("Spatial_Filename"))
	assert.False(t, out.Has("Model_SemiMajor"), "columns outside the keep list are dropped")
	assert.False(t, out.Has("Not_A_Column"), "missing requested columns are ignored")
}

func TestJoinTablesDoesNotMutateInputs(t *testing.T) {
	left := leftFixture(t)
	right := rightFixture(t)

	_, err := JoinTables(left, right, "Source_Name", "Name", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Spatial_Filename", "Model_SemiMajor", "Model_ID", "Flag"},
		right.Names(), "right key must not be renamed in the caller's table")
	key, _ := right.Column("Name")
	assert.Equal(t, []string{"B", "D"}, key.Strings())
	assert.Equal(t, []string{"Source_Name", "Flux"}, left.Names())
}

func TestJoinTablesMissingKey(t *testing.T) {
	left := leftFixture(t)
	right := rightFixture(t)

	_, err := JoinTables(left, right, "Nope", "Name", nil)
	assert.Error(t, err)
	_, err = JoinTables(left, right, "Source_Name", "Nope", nil)
	assert.Error(t, err)
}

func TestJoinTablesDuplicateRightKeysFirstWins(t *testing.T) {
	left := leftFixture(t)
	right := New()
	require.NoError(t, right.SetColumn(NewStringColumn("Name", []string{"B", "B"})))
	require.NoError(t, right.SetColumn(NewStringColumn("Tag", []string{"first", "second"})))

	out, err := JoinTables(left, right, "Source_Name", "Name", nil)
	require.NoError(t, err)
	require.Equal(t, 5, out.NumRows())
	tag, _ := out.Column("Tag")
	assert.Equal(t, "first", tag.Strings()[1])
}

func TestAddColumns(t *testing.T) {
	dst := leftFixture(t)
	src := rightFixture(t)
	require.NoError(t, src.SetColumn(NewStringColumn("Flux", []string{"x", "y"}))) // name collision, different kind

	AddColumns(dst, src)

	assert.Equal(t, []string{"Source_Name", "Flux", "Name", "Spatial_Filename", "Model_SemiMajor", "Model_ID", "Flag"},
		dst.Names())

	flux, _ := dst.Column("Flux")
	assert.Equal(t, Float, flux.Kind(), "existing columns are untouched")

	semi, _ := dst.Column("Model_SemiMajor")
	assert.Equal(t, 5, semi.Len(), "new columns sized to dst")
}

func TestStripColumns(t *testing.T) {
	tab := New()
	require.NoError(t, tab.SetColumn(NewStringColumn("Source_Name", []string{"  J0001  ", "J0002\t"})))
	require.NoError(t, tab.SetColumn(NewFloatColumn("Flux", []float64{1, 2})))

	StripColumns(tab)

	col, _ := tab.Column("Source_Name")
	assert.Equal(t, []string{"J0001", "J0002"}, col.Strings())
}

func TestRowToMap(t *testing.T) {
	tab := New()
	require.NoError(t, tab.SetColumn(NewStringColumn("Source_Name", []string{"J0001"})))
	require.NoError(t, tab.SetColumn(NewFloatColumn("Flux", []float64{1.5})))
	require.NoError(t, tab.SetColumn(NewBoolColumn("extended", []bool{true})))

	m := RowToMap(tab, 0)
	assert.Equal(t, "J0001", m["Source_Name"])
	assert.Equal(t, 1.5, m["Flux"])
	assert.Equal(t, true, m["extended"])
}
