// Package fits reads the subset of the FITS standard that LAT source
// catalogs use: a primary header followed by binary-table extensions. Tables
// decode into columnar tables; scalar header tags are readable without
// touching the table payload.
package fits

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/astroseek/latcat/internal/errors"
)

const blockSize = 2880 // FITS files are sequences of 2880-byte blocks

// HDU is one header/data unit: parsed header cards plus, for binary tables,
// the raw table payload.
type HDU struct {
	keys  map[string]any
	naxis []int
	class string // SIMPLE, IMAGE, TABLE or BINTABLE
	data  []byte // raw payload, BINTABLE only
}

// File is a fully parsed FITS file.
type File struct {
	hdus []*HDU
}

// Open reads and parses every HDU of the FITS file at path. Image payloads
// are skipped; binary-table payloads are retained for decoding.
func Open(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("fits: reading %s: %w", path, err)).
			Component("fits").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	f, err := parse(raw)
	if err != nil {
		return nil, errors.New(fmt.Errorf("fits: parsing %s: %w", path, err)).
			Component("fits").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}
	return f, nil
}

func parse(raw []byte) (*File, error) {
	f := &File{}
	off := 0
	for off < len(raw) {
		h, next, err := parseHeader(raw, off)
		if err != nil {
			return nil, err
		}
		off = next

		if _, ok := h.keys["SIMPLE"]; ok {
			h.class = "SIMPLE"
		} else if x, ok := h.keys["XTENSION"].(string); ok {
			h.class = x
		} else {
			return nil, fmt.Errorf("HDU %d has neither SIMPLE nor XTENSION", len(f.hdus))
		}

		size, err := h.dataSize()
		if err != nil {
			return nil, err
		}
		padded := (size + blockSize - 1) / blockSize * blockSize
		if off+size > len(raw) {
			return nil, fmt.Errorf("truncated data segment in HDU %d", len(f.hdus))
		}
		if h.class == "BINTABLE" {
			h.data = raw[off : off+size]
		}
		off += padded
		f.hdus = append(f.hdus, h)
	}
	if len(f.hdus) == 0 {
		return nil, fmt.Errorf("no HDUs found")
	}
	return f, nil
}

// dataSize returns the payload size in bytes before block padding.
func (h *HDU) dataSize() (int, error) {
	if len(h.naxis) == 0 {
		return 0, nil
	}
	bitpix, ok := h.keys["BITPIX"].(int)
	if !ok {
		return 0, fmt.Errorf("missing BITPIX")
	}
	prod := 1
	for _, n := range h.naxis {
		prod *= n
	}
	pcount := 0
	if p, ok := h.keys["PCOUNT"].(int); ok {
		pcount = p
	}
	gcount := 1
	if g, ok := h.keys["GCOUNT"].(int); ok && g > 0 {
		gcount = g
	}
	abs := bitpix
	if abs < 0 {
		abs = -abs
	}
	return abs / 8 * gcount * (pcount + prod), nil
}

// NumHDUs returns the number of header/data units.
func (f *File) NumHDUs() int { return len(f.hdus) }

// HDU returns the i'th header/data unit.
func (f *File) HDU(i int) (*HDU, bool) {
	if i < 0 || i >= len(f.hdus) {
		return nil, false
	}
	return f.hdus[i], true
}

// HDUByName returns the HDU whose EXTNAME matches name.
func (f *File) HDUByName(name string) (*HDU, bool) {
	for _, h := range f.hdus {
		if ext, ok := h.keys["EXTNAME"].(string); ok && ext == name {
			return h, true
		}
	}
	return nil, false
}

// Name returns the HDU's EXTNAME, or "" when absent.
func (h *HDU) Name() string {
	ext, _ := h.keys["EXTNAME"].(string)
	return ext
}

// ColumnNames returns the TTYPE column names declared in a table HDU header,
// without decoding the payload. Useful for schema fingerprinting.
func (h *HDU) ColumnNames() []string {
	n, ok := h.keys["TFIELDS"].(int)
	if !ok {
		return nil
	}
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if name, ok := h.keys[nth("TTYPE", i)].(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// StringKey reads a scalar string header tag.
func (h *HDU) StringKey(name string) (string, bool) {
	v, ok := h.keys[name].(string)
	return v, ok
}

// IntKey reads a scalar integer header tag.
func (h *HDU) IntKey(name string) (int, bool) {
	v, ok := h.keys[name].(int)
	return v, ok
}

// parseHeader reads header blocks starting at off until the END card and
// returns the HDU plus the offset of the data segment that follows.
func parseHeader(raw []byte, off int) (*HDU, int, error) {
	keys := make(map[string]any, 50)
	h := &HDU{keys: keys}

	for {
		if off+blockSize > len(raw) {
			return nil, 0, fmt.Errorf("truncated header block at offset %d", off)
		}
		block := raw[off : off+blockSize]
		off += blockSize

		for i := 0; i < blockSize/80; i++ {
			card := string(block[i*80 : (i+1)*80])
			parseCard(card, keys)
		}
		if _, done := keys["END"]; done {
			break
		}
	}

	if n, ok := keys["NAXIS"].(int); ok {
		h.naxis = make([]int, n)
		for i := 0; i < n; i++ {
			v, ok := keys[nth("NAXIS", i+1)].(int)
			if !ok {
				return nil, 0, fmt.Errorf("missing %s", nth("NAXIS", i+1))
			}
			h.naxis[i] = v
		}
	}
	return h, off, nil
}

// parseCard decodes one 80-byte header record into keys.
func parseCard(card string, keys map[string]any) {
	key := strings.TrimSpace(card[:8])
	if key == "" {
		return
	}
	if card[8:10] != "= " { // the standard fixes the value indicator position
		if _, ok := keys[key]; !ok {
			keys[key] = nil
		}
		return
	}

	s := strings.TrimSpace(card[10:])
	if s == "" {
		keys[key] = nil
		return
	}

	if s[0] == '\'' {
		if v, err := parseQuoted(s); err == nil {
			keys[key] = v
		}
		return
	}

	if j := strings.Index(s, "/"); j != -1 {
		s = s[:j]
	}
	value := strings.TrimSpace(s)
	if value == "" {
		keys[key] = nil
		return
	}

	switch first := value[0]; {
	case first >= '0' && first <= '9' || first == '+' || first == '-':
		if strings.ContainsAny(value, ".DE") {
			value = strings.Replace(value, "D", "E", 1)
			if x, err := strconv.ParseFloat(value, 64); err == nil {
				keys[key] = x
			}
		} else {
			if x, err := strconv.ParseInt(value, 10, 64); err == nil {
				keys[key] = int(x)
			}
		}
	case first == 'T':
		keys[key] = true
	case first == 'F':
		keys[key] = false
	}
}

// parseQuoted decodes a FITS string value: single quotes, doubled quotes as
// escapes, trailing blanks insignificant.
func parseQuoted(s string) (string, error) {
	var buf strings.Builder
	state := 0
	for _, char := range s {
		quote := char == '\''
		switch state {
		case 0:
			if !quote {
				return "", fmt.Errorf("string does not start with a quote")
			}
			state = 1
		case 1:
			if quote {
				state = 2
			} else {
				buf.WriteRune(char)
			}
		case 2:
			if quote {
				buf.WriteRune(char)
				state = 1
			} else {
				return strings.TrimRight(buf.String(), " "), nil
			}
		}
	}
	if state == 2 {
		return strings.TrimRight(buf.String(), " "), nil
	}
	return "", fmt.Errorf("string ends prematurely")
}

// nth concatenates a key prefix with a 1-based index, e.g. TFORM3.
func nth(prefix string, n int) string {
	return fmt.Sprintf("%s%d", prefix, n)
}
