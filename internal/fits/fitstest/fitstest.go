// Package fitstest writes minimal standard-conforming FITS files so tests can
// exercise the reader and the catalog pipeline against real files.
package fitstest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
)

const blockSize = 2880

// Card is an extra header record for a table HDU, e.g. CDS-NAME or VERSION.
type Card struct {
	Key   string
	Value any // string, int or bool
}

// Column is one binary-table column. Exactly one value slice must be set.
// Strings are written as A-fields of Width bytes (longest value when zero),
// ints as K, floats as D, bools as L, and vectors as nD with n taken from the
// first row.
type Column struct {
	Name    string
	Width   int
	Strings []string
	Ints    []int64
	Floats  []float64
	Bools   []bool
	Vecs    [][]float64
}

func (c *Column) rows() int {
	switch {
	case c.Strings != nil:
		return len(c.Strings)
	case c.Ints != nil:
		return len(c.Ints)
	case c.Floats != nil:
		return len(c.Floats)
	case c.Bools != nil:
		return len(c.Bools)
	default:
		return len(c.Vecs)
	}
}

func (c *Column) form() (string, int) {
	switch {
	case c.Strings != nil:
		w := c.Width
		for _, s := range c.Strings {
			if len(s) > w {
				w = len(s)
			}
		}
		if w == 0 {
			w = 1
		}
		return fmt.Sprintf("%dA", w), w
	case c.Ints != nil:
		return "K", 8
	case c.Floats != nil:
		return "D", 8
	case c.Bools != nil:
		return "L", 1
	default:
		n := 0
		if len(c.Vecs) > 0 {
			n = len(c.Vecs[0])
		}
		return fmt.Sprintf("%dD", n), 8 * n
	}
}

// HDU describes one binary-table extension.
type HDU struct {
	ExtName string
	Cards   []Card
	Columns []Column
}

// WriteFile writes a FITS file with an empty primary HDU followed by the
// given binary-table extensions.
func WriteFile(path string, hdus ...HDU) error {
	var out bytes.Buffer

	primary := []string{
		card("SIMPLE", true),
		card("BITPIX", 8),
		card("NAXIS", 0),
		card("EXTEND", true),
		"END",
	}
	writeHeader(&out, primary)

	for i := range hdus {
		if err := writeTable(&out, &hdus[i]); err != nil {
			return fmt.Errorf("fitstest: HDU %d: %w", i, err)
		}
	}
	return os.WriteFile(path, out.Bytes(), 0o644)
}

func writeTable(out *bytes.Buffer, h *HDU) error {
	nRows := 0
	rowLen := 0
	forms := make([]string, len(h.Columns))
	widths := make([]int, len(h.Columns))
	for i := range h.Columns {
		c := &h.Columns[i]
		if i == 0 {
			nRows = c.rows()
		} else if c.rows() != nRows {
			return fmt.Errorf("column %q has %d rows, want %d", c.Name, c.rows(), nRows)
		}
		forms[i], widths[i] = c.form()
		rowLen += widths[i]
	}

	cards := []string{
		cardStr("XTENSION", "BINTABLE"),
		card("BITPIX", 8),
		card("NAXIS", 2),
		card("NAXIS1", rowLen),
		card("NAXIS2", nRows),
		card("PCOUNT", 0),
		card("GCOUNT", 1),
		card("TFIELDS", len(h.Columns)),
	}
	for i := range h.Columns {
		cards = append(cards,
			cardStr(fmt.Sprintf("TTYPE%d", i+1), h.Columns[i].Name),
			cardStr(fmt.Sprintf("TFORM%d", i+1), forms[i]))
	}
	if h.ExtName != "" {
		cards = append(cards, cardStr("EXTNAME", h.ExtName))
	}
	for _, c := range h.Cards {
		cards = append(cards, card(c.Key, c.Value))
	}
	cards = append(cards, "END")
	writeHeader(out, cards)

	data := make([]byte, 0, nRows*rowLen)
	for r := 0; r < nRows; r++ {
		for i := range h.Columns {
			data = appendCell(data, &h.Columns[i], widths[i], r)
		}
	}
	out.Write(data)
	pad(out, len(data))
	return nil
}

func appendCell(data []byte, c *Column, width, row int) []byte {
	switch {
	case c.Strings != nil:
		s := c.Strings[row]
		if len(s) > width {
			s = s[:width]
		}
		data = append(data, s...)
		for i := len(s); i < width; i++ {
			data = append(data, ' ')
		}
	case c.Ints != nil:
		data = binary.BigEndian.AppendUint64(data, uint64(c.Ints[row]))
	case c.Floats != nil:
		data = binary.BigEndian.AppendUint64(data, math.Float64bits(c.Floats[row]))
	case c.Bools != nil:
		if c.Bools[row] {
			data = append(data, 'T')
		} else {
			data = append(data, 'F')
		}
	default:
		for _, v := range c.Vecs[row] {
			data = binary.BigEndian.AppendUint64(data, math.Float64bits(v))
		}
	}
	return data
}

// card formats one 80-byte header record.
func card(key string, value any) string {
	switch v := value.(type) {
	case string:
		return cardStr(key, v)
	case bool:
		b := "F"
		if v {
			b = "T"
		}
		return fmt.Sprintf("%-8s= %20s", key, b)
	case int:
		return fmt.Sprintf("%-8s= %20d", key, v)
	case int64:
		return fmt.Sprintf("%-8s= %20d", key, v)
	case float64:
		return fmt.Sprintf("%-8s= %20G", key, v)
	default:
		panic(fmt.Sprintf("fitstest: unsupported card value %T", value))
	}
}

func cardStr(key, value string) string {
	escaped := strings.ReplaceAll(value, "'", "''")
	return fmt.Sprintf("%-8s= '%s'", key, escaped)
}

// writeHeader writes cards padded to 80 bytes each, then pads the header to a
// block boundary with blank records.
func writeHeader(out *bytes.Buffer, cards []string) {
	start := out.Len()
	for _, c := range cards {
		if len(c) > 80 {
			c = c[:80]
		}
		out.WriteString(c)
		out.WriteString(strings.Repeat(" ", 80-len(c)))
	}
	pad(out, out.Len()-start)
}

// pad fills the output with spaces up to the next 2880-byte boundary of a
// segment that began `written` bytes ago.
func pad(out *bytes.Buffer, written int) {
	if rem := written % blockSize; rem != 0 {
		out.WriteString(strings.Repeat(" ", blockSize-rem))
	}
}
