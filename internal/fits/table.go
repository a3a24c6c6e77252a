package fits

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/astroseek/latcat/internal/errors"
	"github.com/astroseek/latcat/internal/table"
)

// Table decodes a BINTABLE HDU into a columnar table. Scalar columns map to
// string/int/float/bool columns; numeric columns with repeat > 1 become
// fixed-width vector columns. String header tags are copied into the table
// metadata.
func (h *HDU) Table() (*table.Table, error) {
	if h.class != "BINTABLE" {
		return nil, errors.Newf("fits: HDU %q is %s, not a binary table", h.Name(), h.class).
			Component("fits").
			Category(errors.CategoryFileParsing).
			Build()
	}
	tab, err := h.decodeTable()
	if err != nil {
		return nil, errors.New(fmt.Errorf("fits: decoding table %q: %w", h.Name(), err)).
			Component("fits").
			Category(errors.CategoryFileParsing).
			Context("extname", h.Name()).
			Build()
	}
	return tab, nil
}

func (h *HDU) decodeTable() (*table.Table, error) {
	if len(h.naxis) != 2 {
		return nil, fmt.Errorf("NAXIS = %d, want 2", len(h.naxis))
	}
	rowLen, nRows := h.naxis[0], h.naxis[1]
	tfields, ok := h.keys["TFIELDS"].(int)
	if !ok {
		return nil, fmt.Errorf("missing TFIELDS")
	}

	tab := table.New()
	offset := 0
	for i := 0; i < tfields; i++ {
		form, ok := h.keys[nth("TFORM", i+1)].(string)
		if !ok {
			return nil, fmt.Errorf("missing %s", nth("TFORM", i+1))
		}
		name, ok := h.keys[nth("TTYPE", i+1)].(string)
		if !ok {
			name = nth("COL", i+1)
		}

		repeat, code, err := parseForm(form)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}

		col, width, err := decodeColumn(h.data, name, code, repeat, offset, rowLen, nRows)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		offset += width
		if col != nil {
			if err := tab.SetColumn(col); err != nil {
				return nil, err
			}
		}
	}
	if offset > rowLen {
		return nil, fmt.Errorf("fields span %d bytes, NAXIS1 is %d", offset, rowLen)
	}

	for k, v := range h.keys {
		if s, ok := v.(string); ok {
			tab.SetMeta(k, s)
		}
	}
	return tab, nil
}

// parseForm splits a binary-table TFORM value into repeat count and type code.
func parseForm(form string) (repeat int, code byte, err error) {
	j := strings.IndexAny(form, "ABCDEIJKLMPQX")
	if j == -1 {
		return 0, 0, fmt.Errorf("invalid TFORM %q", form)
	}
	repeat = 1
	if j > 0 {
		r, err := strconv.Atoi(form[:j])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid TFORM repeat %q", form)
		}
		repeat = r
	}
	return repeat, form[j], nil
}

// decodeColumn reads one field out of the row-major table payload and returns
// the column plus the field's byte width within a row. Zero-repeat fields
// occupy no bytes and produce no column.
func decodeColumn(data []byte, name string, code byte, repeat, offset, rowLen, nRows int) (*table.Column, int, error) {
	if repeat == 0 {
		return nil, 0, nil
	}
	cell := func(row int) []byte {
		return data[row*rowLen+offset:]
	}

	switch code {
	case 'A':
		vals := make([]string, nRows)
		for r := 0; r < nRows; r++ {
			vals[r] = strings.TrimRight(string(cell(r)[:repeat]), "\x00")
		}
		return table.NewStringColumn(name, vals), repeat, nil

	case 'L':
		if repeat != 1 {
			return nil, 0, fmt.Errorf("logical arrays are not supported")
		}
		vals := make([]bool, nRows)
		for r := 0; r < nRows; r++ {
			vals[r] = cell(r)[0] == 'T'
		}
		return table.NewBoolColumn(name, vals), 1, nil

	case 'B', 'I', 'J', 'K':
		size := map[byte]int{'B': 1, 'I': 2, 'J': 4, 'K': 8}[code]
		read := func(b []byte) int64 {
			switch code {
			case 'B':
				return int64(b[0])
			case 'I':
				return int64(int16(binary.BigEndian.Uint16(b)))
			case 'J':
				return int64(int32(binary.BigEndian.Uint32(b)))
			default:
				return int64(binary.BigEndian.Uint64(b))
			}
		}
		if repeat == 1 {
			vals := make([]int64, nRows)
			for r := 0; r < nRows; r++ {
				vals[r] = read(cell(r))
			}
			return table.NewIntColumn(name, vals), size, nil
		}
		vecs := make([][]float64, nRows)
		for r := 0; r < nRows; r++ {
			b := cell(r)
			row := make([]float64, repeat)
			for k := 0; k < repeat; k++ {
				row[k] = float64(read(b[k*size:]))
			}
			vecs[r] = row
		}
		return table.NewVecColumn(name, repeat, vecs), size * repeat, nil

	case 'E', 'D':
		size := 4
		read := func(b []byte) float64 {
			return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
		}
		if code == 'D' {
			size = 8
			read = func(b []byte) float64 {
				return math.Float64frombits(binary.BigEndian.Uint64(b))
			}
		}
		if repeat == 1 {
			vals := make([]float64, nRows)
			for r := 0; r < nRows; r++ {
				vals[r] = read(cell(r))
			}
			return table.NewFloatColumn(name, vals), size, nil
		}
		vecs := make([][]float64, nRows)
		for r := 0; r < nRows; r++ {
			b := cell(r)
			row := make([]float64, repeat)
			for k := 0; k < repeat; k++ {
				row[k] = read(b[k*size:])
			}
			vecs[r] = row
		}
		return table.NewVecColumn(name, repeat, vecs), size * repeat, nil

	default:
		return nil, 0, fmt.Errorf("TFORM code %q is not supported", string(code))
	}
}
