package table

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// AddColumns adds, for every column of src absent from dst, a zero-valued
// column of the same kind and width sized to dst's row count. Columns already
// present in dst are left alone. dst is mutated in place.
func AddColumns(dst, src *Table) {
	n := dst.NumRows()
	for _, c := range src.cols {
		if dst.Has(c.name) {
			continue
		}
		_ = dst.SetColumn(NewEmptyColumn(c.name, c.kind, n, c.width))
	}
}

// JoinTables performs a left outer join of left against right keyed on
// left[keyLeft] == right[keyRight]. Both key columns must be strings.
//
// Only keepRight columns (nil means all) are appended to the result; names
// missing from right are silently dropped from the request, and the join key
// itself is always retained. Unmatched left rows receive fill values: empty
// string, zero, NaN, or false by column kind. When right's key is not unique
// the first occurrence wins.
//
// Neither input is mutated; right is deep-copied before any renaming. The
// result has exactly left's row count and row order.
func JoinTables(left, right *Table, keyLeft, keyRight string, keepRight []string) (*Table, error) {
	lkey, ok := left.Column(keyLeft)
	if !ok {
		return nil, fmt.Errorf("join key %q not in left table", keyLeft)
	}
	if lkey.kind != String {
		return nil, fmt.Errorf("join key %q is %s, want string", keyLeft, lkey.kind)
	}
	if _, ok := right.Column(keyRight); !ok {
		return nil, fmt.Errorf("join key %q not in right table", keyRight)
	}

	right = right.Copy()

	cols := keepRight
	if cols == nil {
		cols = right.Names()
	} else {
		kept := make([]string, 0, len(cols))
		for _, c := range cols {
			if right.Has(c) {
				kept = append(kept, c)
			}
		}
		cols = kept
	}

	if keyLeft != keyRight {
		rk, _ := right.Column(keyRight)
		right.RemoveColumn(keyRight)
		rk.rename(keyLeft)
		if err := right.SetColumn(rk); err != nil {
			return nil, err
		}
	}
	if !slices.Contains(cols, keyLeft) {
		cols = append(cols, keyLeft)
	}

	rkey, ok := right.Column(keyLeft)
	if !ok || rkey.kind != String {
		return nil, fmt.Errorf("join key %q is not a string column in right table", keyRight)
	}
	match := make(map[string]int, rkey.Len())
	for i, k := range rkey.str {
		if _, dup := match[k]; !dup {
			match[k] = i
		}
	}

	out := left.Copy()
	n := out.NumRows()
	for _, name := range cols {
		if name == keyLeft {
			continue
		}
		src, _ := right.Column(name)
		if out.Has(name) {
			return nil, fmt.Errorf("join column %q already present in left table", name)
		}
		dst := NewEmptyColumn(name, src.kind, n, src.width)
		fillJoined(dst, src, lkey.str, match)
		if err := out.SetColumn(dst); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// fillJoined populates dst from src for matched keys and writes fill values
// elsewhere.
func fillJoined(dst, src *Column, keys []string, match map[string]int) {
	for i, k := range keys {
		j, ok := match[k]
		switch dst.kind {
		case String:
			if ok {
				dst.str[i] = src.str[j]
			} // else keep ""
		case Int:
			if ok {
				dst.ints[i] = src.ints[j]
			} // else keep 0
		case Float:
			if ok {
				dst.floats[i] = src.floats[j]
			} else {
				dst.floats[i] = math.NaN()
			}
		case Bool:
			if ok {
				dst.bools[i] = src.bools[j]
			} // else keep false
		case FloatVec:
			if ok {
				dst.vecs[i] = slices.Clone(src.vecs[j])
			} // else keep the NaN-filled row
		}
	}
}

// StripColumns trims leading and trailing whitespace from every string
// column, in place.
func StripColumns(t *Table) {
	for _, c := range t.cols {
		if c.kind != String {
			continue
		}
		for i, s := range c.str {
			c.str[i] = strings.TrimSpace(s)
		}
	}
}

// RowToMap converts one row into a column-name to value mapping.
func RowToMap(t *Table, row int) map[string]any {
	o := make(map[string]any, len(t.cols))
	for _, c := range t.cols {
		o[c.name] = c.Value(row)
	}
	return o
}
