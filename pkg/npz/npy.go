package npz

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// npy format constants. A v1.0 header is the 6-byte magic, two version
// bytes, a little-endian uint16 header length, and a Python-literal header
// dict padded with spaces to a 64-byte boundary and terminated by a newline.
var npyMagic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

const npyHeaderAlign = 64

// Array is one archive member: raw little-endian element data described by
// a numpy type string and a shape.
type Array struct {
	// Descr is the numpy typestr, e.g. "<u2" for little-endian uint16.
	Descr string

	// Shape holds the array dimensions. A nil or empty shape means 0-d.
	Shape []int

	// Data is the element data in row-major order.
	Data []byte
}

// Int64s builds a 1-D "<i8" Array from vals. Index arrays are stored in
// this form, matching numpy's default integer type.
func Int64s(vals []int64) Array {
	data := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(data[i*8:], uint64(v))
	}
	return Array{Descr: "<i8", Shape: []int{len(vals)}, Data: data}
}

// itemSize extracts the element byte width from a numpy typestr.
func itemSize(descr string) (int, error) {
	if len(descr) < 3 {
		return 0, fmt.Errorf("invalid numpy typestr %q", descr)
	}
	n, err := strconv.Atoi(descr[2:])
	if err != nil {
		return 0, fmt.Errorf("invalid numpy typestr %q", descr)
	}
	return n, nil
}

// shapeTuple renders a shape as a Python tuple literal: "()", "(5,)",
// "(2, 3)".
func shapeTuple(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	default:
		parts := make([]string, len(shape))
		for i, d := range shape {
			parts[i] = strconv.Itoa(d)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
}

// encodeNPY renders the full .npy byte stream for arr.
func encodeNPY(arr Array) ([]byte, error) {
	size, err := itemSize(arr.Descr)
	if err != nil {
		return nil, err
	}
	count := 1
	for _, d := range arr.Shape {
		count *= d
	}
	if len(arr.Data) != count*size {
		return nil, fmt.Errorf("array data is %d bytes, want %d for shape %v dtype %s",
			len(arr.Data), count*size, arr.Shape, arr.Descr)
	}

	headerDict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }",
		arr.Descr, shapeTuple(arr.Shape))

	// Pad so the data section starts on a 64-byte boundary.
	preamble := len(npyMagic) + 2 + 2
	total := preamble + len(headerDict) + 1 // trailing newline
	padded := ((total + npyHeaderAlign - 1) / npyHeaderAlign) * npyHeaderAlign
	headerLen := padded - preamble

	out := make([]byte, 0, padded+len(arr.Data))
	out = append(out, npyMagic...)
	out = append(out, 1, 0)
	var lenBytes [2]byte
	binary.LittleEndian.PutUint16(lenBytes[:], uint16(headerLen))
	out = append(out, lenBytes[:]...)
	out = append(out, headerDict...)
	for i := len(headerDict); i < headerLen-1; i++ {
		out = append(out, ' ')
	}
	out = append(out, '\n')
	out = append(out, arr.Data...)
	return out, nil
}
