// Package table implements the columnar table the catalog pipeline operates
// on: ordered, named, typed columns of equal length plus header metadata.
package table

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Kind identifies the element type of a column.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
	FloatVec // fixed-width vector of float64 per row
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case FloatVec:
		return "floatvec"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is one named column. Exactly one of the value slices is non-nil,
// selected by kind.
type Column struct {
	name   string
	kind   Kind
	width  int // vector width, FloatVec only
	str    []string
	ints   []int64
	floats []float64
	bools  []bool
	vecs   [][]float64
}

// NewStringColumn builds a string column over the given values.
func NewStringColumn(name string, vals []string) *Column {
	return &Column{name: name, kind: String, str: vals}
}

// NewIntColumn builds an int64 column over the given values.
func NewIntColumn(name string, vals []int64) *Column {
	return &Column{name: name, kind: Int, ints: vals}
}

// NewFloatColumn builds a float64 column over the given values.
func NewFloatColumn(name string, vals []float64) *Column {
	return &Column{name: name, kind: Float, floats: vals}
}

// NewBoolColumn builds a bool column over the given values.
func NewBoolColumn(name string, vals []bool) *Column {
	return &Column{name: name, kind: Bool, bools: vals}
}

// NewVecColumn builds a fixed-width vector column. Every row slice must have
// length width.
func NewVecColumn(name string, width int, vals [][]float64) *Column {
	return &Column{name: name, kind: FloatVec, width: width, vecs: vals}
}

// NewEmptyColumn builds a zero-valued column of the given kind and length.
// FloatVec rows are NaN-filled, matching the parameter-vector default.
func NewEmptyColumn(name string, kind Kind, length, width int) *Column {
	c := &Column{name: name, kind: kind, width: width}
	switch kind {
	case String:
		c.str = make([]string, length)
	case Int:
		c.ints = make([]int64, length)
	case Float:
		c.floats = make([]float64, length)
	case Bool:
		c.bools = make([]bool, length)
	case FloatVec:
		c.vecs = make([][]float64, length)
		for i := range c.vecs {
			row := make([]float64, width)
			for j := range row {
				row[j] = math.NaN()
			}
			c.vecs[i] = row
		}
	}
	return c
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column element kind.
func (c *Column) Kind() Kind { return c.kind }

// Width returns the vector width for FloatVec columns and 0 otherwise.
func (c *Column) Width() int { return c.width }

// Len returns the number of rows.
func (c *Column) Len() int {
	switch c.kind {
	case String:
		return len(c.str)
	case Int:
		return len(c.ints)
	case Float:
		return len(c.floats)
	case Bool:
		return len(c.bools)
	case FloatVec:
		return len(c.vecs)
	default:
		return 0
	}
}

// Strings returns the backing slice of a string column.
func (c *Column) Strings() []string { return c.str }

// Ints returns the backing slice of an int column.
func (c *Column) Ints() []int64 { return c.ints }

// Floats returns the backing slice of a float column.
func (c *Column) Floats() []float64 { return c.floats }

// Bools returns the backing slice of a bool column.
func (c *Column) Bools() []bool { return c.bools }

// Vecs returns the backing slice of a vector column.
func (c *Column) Vecs() [][]float64 { return c.vecs }

// Value returns the element at row i as an any.
func (c *Column) Value(i int) any {
	switch c.kind {
	case String:
		return c.str[i]
	case Int:
		return c.ints[i]
	case Float:
		return c.floats[i]
	case Bool:
		return c.bools[i]
	case FloatVec:
		return c.vecs[i]
	default:
		return nil
	}
}

// Copy returns a deep copy of the column.
func (c *Column) Copy() *Column {
	out := &Column{name: c.name, kind: c.kind, width: c.width}
	switch c.kind {
	case String:
		out.str = slices.Clone(c.str)
	case Int:
		out.ints = slices.Clone(c.ints)
	case Float:
		out.floats = slices.Clone(c.floats)
	case Bool:
		out.bools = slices.Clone(c.bools)
	case FloatVec:
		out.vecs = make([][]float64, len(c.vecs))
		for i, v := range c.vecs {
			out.vecs[i] = slices.Clone(v)
		}
	}
	return out
}

// rename is used by the join to align key column names.
func (c *Column) rename(name string) { c.name = name }

// reorder applies a row permutation: row i of the result is row perm[i].
func (c *Column) reorder(perm []int) {
	switch c.kind {
	case String:
		out := make([]string, len(perm))
		for i, p := range perm {
			out[i] = c.str[p]
		}
		c.str = out
	case Int:
		out := make([]int64, len(perm))
		for i, p := range perm {
			out[i] = c.ints[p]
		}
		c.ints = out
	case Float:
		out := make([]float64, len(perm))
		for i, p := range perm {
			out[i] = c.floats[p]
		}
		c.floats = out
	case Bool:
		out := make([]bool, len(perm))
		for i, p := range perm {
			out[i] = c.bools[p]
		}
		c.bools = out
	case FloatVec:
		out := make([][]float64, len(perm))
		for i, p := range perm {
			out[i] = c.vecs[p]
		}
		c.vecs = out
	}
}

// Table is an ordered collection of equal-length columns.
type Table struct {
	cols  []*Column
	index map[string]int
	meta  map[string]string
}

// New returns an empty table.
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// NumRows returns the row count (0 for a table with no columns).
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// SetColumn adds a column, or replaces an existing column of the same name
// in place (preserving column order). The column length must match the table
// unless the table is empty.
func (t *Table) SetColumn(col *Column) error {
	if len(t.cols) > 0 && col.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d",
			col.name, col.Len(), t.NumRows())
	}
	if i, ok := t.index[col.name]; ok {
		t.cols[i] = col
		return nil
	}
	t.index[col.name] = len(t.cols)
	t.cols = append(t.cols, col)
	return nil
}

// RemoveColumn drops the named column if present.
func (t *Table) RemoveColumn(name string) {
	i, ok := t.index[name]
	if !ok {
		return
	}
	t.cols = append(t.cols[:i], t.cols[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.cols); j++ {
		t.index[t.cols[j].name] = j
	}
}

// Copy returns a deep copy of the table, metadata included.
func (t *Table) Copy() *Table {
	out := New()
	for _, c := range t.cols {
		// SetColumn cannot fail here, lengths are consistent by construction.
		_ = out.SetColumn(c.Copy())
	}
	if t.meta != nil {
		out.meta = make(map[string]string, len(t.meta))
		for k, v := range t.meta {
			out.meta[k] = v
		}
	}
	return out
}

// Meta returns the header metadata value for a key.
func (t *Table) Meta(key string) (string, bool) {
	v, ok := t.meta[key]
	return v, ok
}

// SetMeta records a header metadata entry.
func (t *Table) SetMeta(key, value string) {
	if t.meta == nil {
		t.meta = make(map[string]string)
	}
	t.meta[key] = value
}

// ClearMeta drops all header metadata. Joined tables must not inherit the
// extension table's header.
func (t *Table) ClearMeta() {
	t.meta = nil
}

// SortBy stably sorts the rows by the named string column.
func (t *Table) SortBy(name string) error {
	col, ok := t.Column(name)
	if !ok {
		return fmt.Errorf("sort column %q not found", name)
	}
	if col.kind != String {
		return fmt.Errorf("sort column %q is %s, want string", name, col.kind)
	}
	keys := col.str
	perm := make([]int, len(keys))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return keys[perm[a]] < keys[perm[b]]
	})
	for _, c := range t.cols {
		c.reorder(perm)
	}
	return nil
}
