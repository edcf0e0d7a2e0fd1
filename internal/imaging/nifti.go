// Package imaging reads NIfTI-1 volumes and renders display slices.
package imaging

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var (
	ErrNotNIfTI        = errors.New("not a NIfTI-1 file")
	ErrUnsupportedType = errors.New("unsupported NIfTI datatype")
)

// NIfTI-1 datatype codes.
const (
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
)

const headerSize = 348

// Volume is a 3D scalar volume with scaling already applied.
type Volume struct {
	Dims [3]int
	data []float64
}

// At returns the voxel at (i, j, k).
func (v *Volume) At(i, j, k int) float64 {
	// NIfTI stores data in Fortran order: i varies fastest.
	return v.data[i+v.Dims[0]*(j+v.Dims[1]*k)]
}

// LoadNIfTI reads a .nii or .nii.gz file from disk.
func LoadNIfTI(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeNIfTI(f)
}

// DecodeNIfTI reads a NIfTI-1 volume, transparently ungzipping.
func DecodeNIfTI(r io.Reader) (*Volume, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(2)
	if err != nil {
		return nil, ErrNotNIfTI
	}
	var src io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotNIfTI, err)
		}
		defer gz.Close()
		src = gz
	}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(src, header); err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrNotNIfTI)
	}

	// sizeof_hdr doubles as the endianness probe.
	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(header[0:4]) != headerSize {
		order = binary.BigEndian
		if order.Uint32(header[0:4]) != headerSize {
			return nil, ErrNotNIfTI
		}
	}

	ndim := int(int16(order.Uint16(header[40:42])))
	if ndim < 3 {
		return nil, fmt.Errorf("%w: need a 3D volume, got %d dims", ErrNotNIfTI, ndim)
	}
	var dims [3]int
	for i := 0; i < 3; i++ {
		dims[i] = int(int16(order.Uint16(header[42+2*i : 44+2*i])))
		if dims[i] <= 0 {
			return nil, fmt.Errorf("%w: non-positive extent", ErrNotNIfTI)
		}
	}

	datatype := int(int16(order.Uint16(header[70:72])))
	voxOffset := int64(math.Float32frombits(order.Uint32(header[108:112])))
	sclSlope := float64(math.Float32frombits(order.Uint32(header[112:116])))
	sclInter := float64(math.Float32frombits(order.Uint32(header[116:120])))
	if sclSlope == 0 {
		sclSlope, sclInter = 1, 0
	}

	if voxOffset < headerSize {
		voxOffset = headerSize + 4
	}
	if _, err := io.CopyN(io.Discard, src, voxOffset-headerSize); err != nil {
		return nil, fmt.Errorf("%w: truncated before voxel data", ErrNotNIfTI)
	}

	n := dims[0] * dims[1] * dims[2]
	data, err := readVoxels(src, order, datatype, n)
	if err != nil {
		return nil, err
	}
	if sclSlope != 1 || sclInter != 0 {
		for i := range data {
			data[i] = data[i]*sclSlope + sclInter
		}
	}

	return &Volume{Dims: dims, data: data}, nil
}

func readVoxels(r io.Reader, order binary.ByteOrder, datatype, n int) ([]float64, error) {
	var size int
	switch datatype {
	case dtUint8, dtInt8:
		size = 1
	case dtInt16, dtUint16:
		size = 2
	case dtInt32, dtFloat32:
		size = 4
	case dtFloat64:
		size = 8
	default:
		return nil, fmt.Errorf("%w: code %d", ErrUnsupportedType, datatype)
	}

	raw := make([]byte, n*size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: truncated voxel data", ErrNotNIfTI)
	}

	data := make([]float64, n)
	for i := 0; i < n; i++ {
		chunk := raw[i*size : (i+1)*size]
		switch datatype {
		case dtUint8:
			data[i] = float64(chunk[0])
		case dtInt8:
			data[i] = float64(int8(chunk[0]))
		case dtInt16:
			data[i] = float64(int16(order.Uint16(chunk)))
		case dtUint16:
			data[i] = float64(order.Uint16(chunk))
		case dtInt32:
			data[i] = float64(int32(order.Uint32(chunk)))
		case dtFloat32:
			data[i] = float64(math.Float32frombits(order.Uint32(chunk)))
		case dtFloat64:
			data[i] = math.Float64frombits(order.Uint64(chunk))
		}
	}
	return data, nil
}
