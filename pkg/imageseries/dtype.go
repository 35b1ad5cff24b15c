package imageseries

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Dtype identifies the element type of every pixel in a series. The on-disk
// encodings produced by the writers always use the little-endian form of the
// dtype, regardless of host byte order.
type Dtype string

// Supported element types. 64-bit integer types are deliberately absent:
// frames are held as float64 grids, which represent every type below exactly.
const (
	Uint8   Dtype = "uint8"
	Int8    Dtype = "int8"
	Uint16  Dtype = "uint16"
	Int16   Dtype = "int16"
	Uint32  Dtype = "uint32"
	Int32   Dtype = "int32"
	Float32 Dtype = "float32"
	Float64 Dtype = "float64"
)

// dtypeInfo carries the per-type constants used for encoding.
type dtypeInfo struct {
	itemSize int
	// descr is the numpy array-protocol type string ("typestr"):
	// one byte-order character ("<" little-endian, "|" not relevant),
	// one kind character ("u", "i", "f"), and the byte width.
	descr string
}

var dtypes = map[Dtype]dtypeInfo{
	Uint8:   {1, "|u1"},
	Int8:    {1, "|i1"},
	Uint16:  {2, "<u2"},
	Int16:   {2, "<i2"},
	Uint32:  {4, "<u4"},
	Int32:   {4, "<i4"},
	Float32: {4, "<f4"},
	Float64: {8, "<f8"},
}

// ParseDtype maps a dtype name such as "uint16" to its Dtype value.
func ParseDtype(name string) (Dtype, error) {
	dt := Dtype(name)
	if _, ok := dtypes[dt]; !ok {
		return "", fmt.Errorf("unsupported dtype %q", name)
	}
	return dt, nil
}

// DtypeFromDescr maps a numpy type string such as "<u2" back to its Dtype.
func DtypeFromDescr(descr string) (Dtype, error) {
	for dt, info := range dtypes {
		if info.descr == descr {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unsupported numpy typestr %q", descr)
}

// String returns the dtype name.
func (dt Dtype) String() string { return string(dt) }

// ItemSize returns the number of bytes one element occupies.
func (dt Dtype) ItemSize() int { return dtypes[dt].itemSize }

// NumpyDescr returns the numpy type string for the dtype, e.g. "<u2" for
// uint16. The same string serves as the zarr dtype field.
func (dt Dtype) NumpyDescr() string { return dtypes[dt].descr }

// EncodeLE encodes vals into the dtype's little-endian binary form.
// Values are truncated toward zero for integer dtypes; callers are expected
// to hold in-range integral values when the dtype is integral.
func (dt Dtype) EncodeLE(vals []float64) []byte {
	buf := make([]byte, len(vals)*dt.ItemSize())
	switch dt {
	case Uint8:
		for i, v := range vals {
			buf[i] = byte(uint8(v))
		}
	case Int8:
		for i, v := range vals {
			buf[i] = byte(int8(v))
		}
	case Uint16:
		for i, v := range vals {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
		}
	case Int16:
		for i, v := range vals {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v)))
		}
	case Uint32:
		for i, v := range vals {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
		}
	case Int32:
		for i, v := range vals {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(v)))
		}
	case Float32:
		for i, v := range vals {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
		}
	case Float64:
		for i, v := range vals {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
	}
	return buf
}

// DecodeLE decodes little-endian binary data produced by EncodeLE back into
// float64 values. The data length must be a multiple of the element size.
func (dt Dtype) DecodeLE(data []byte) ([]float64, error) {
	size := dt.ItemSize()
	if len(data)%size != 0 {
		return nil, fmt.Errorf("decode %s: %d bytes is not a multiple of element size %d", dt, len(data), size)
	}
	vals := make([]float64, len(data)/size)
	switch dt {
	case Uint8:
		for i := range vals {
			vals[i] = float64(data[i])
		}
	case Int8:
		for i := range vals {
			vals[i] = float64(int8(data[i]))
		}
	case Uint16:
		for i := range vals {
			vals[i] = float64(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case Int16:
		for i := range vals {
			vals[i] = float64(int16(binary.LittleEndian.Uint16(data[i*2:])))
		}
	case Uint32:
		for i := range vals {
			vals[i] = float64(binary.LittleEndian.Uint32(data[i*4:]))
		}
	case Int32:
		for i := range vals {
			vals[i] = float64(int32(binary.LittleEndian.Uint32(data[i*4:])))
		}
	case Float32:
		for i := range vals {
			vals[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
	case Float64:
		for i := range vals {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
	}
	return vals, nil
}
