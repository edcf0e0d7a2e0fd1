package imaging

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// buildNIfTI serializes a float32 NIfTI-1 volume, little endian, Fortran
// voxel order.
func buildNIfTI(t *testing.T, dims [3]int, voxel func(i, j, k int) float64) []byte {
	t.Helper()

	header := make([]byte, 348)
	binary.LittleEndian.PutUint32(header[0:4], 348)
	binary.LittleEndian.PutUint16(header[40:42], 3) // ndim
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint16(header[42+2*i:44+2*i], uint16(dims[i]))
	}
	binary.LittleEndian.PutUint16(header[70:72], 16) // float32
	binary.LittleEndian.PutUint16(header[72:74], 32) // bitpix
	binary.LittleEndian.PutUint32(header[108:112], math.Float32bits(352))
	copy(header[344:348], "n+1\x00")

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(make([]byte, 4)) // extension flag

	for k := 0; k < dims[2]; k++ {
		for j := 0; j < dims[1]; j++ {
			for i := 0; i < dims[0]; i++ {
				var cell [4]byte
				binary.LittleEndian.PutUint32(cell[:], math.Float32bits(float32(voxel(i, j, k))))
				buf.Write(cell[:])
			}
		}
	}
	return buf.Bytes()
}

func TestDecodeNIfTI(t *testing.T) {
	dims := [3]int{4, 3, 2}
	raw := buildNIfTI(t, dims, func(i, j, k int) float64 {
		return float64(i + 10*j + 100*k)
	})

	vol, err := DecodeNIfTI(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeNIfTI: %v", err)
	}
	if vol.Dims != dims {
		t.Fatalf("dims = %v, want %v", vol.Dims, dims)
	}

	for k := 0; k < dims[2]; k++ {
		for j := 0; j < dims[1]; j++ {
			for i := 0; i < dims[0]; i++ {
				want := float64(i + 10*j + 100*k)
				if got := vol.At(i, j, k); got != want {
					t.Fatalf("At(%d,%d,%d) = %v, want %v", i, j, k, got, want)
				}
			}
		}
	}
}

func TestDecodeNIfTIGzipped(t *testing.T) {
	raw := buildNIfTI(t, [3]int{2, 2, 2}, func(i, j, k int) float64 {
		return float64(i + j + k)
	})

	var gzBuf bytes.Buffer
	gz := gzip.NewWriter(&gzBuf)
	gz.Write(raw)
	gz.Close()

	vol, err := DecodeNIfTI(bytes.NewReader(gzBuf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeNIfTI(gz): %v", err)
	}
	if got := vol.At(1, 1, 1); got != 3 {
		t.Errorf("At(1,1,1) = %v, want 3", got)
	}
}

func TestDecodeNIfTIRejectsGarbage(t *testing.T) {
	if _, err := DecodeNIfTI(bytes.NewReader([]byte("definitely not a volume"))); !errors.Is(err, ErrNotNIfTI) {
		t.Errorf("expected ErrNotNIfTI, got %v", err)
	}
}

func TestDecodeNIfTIRejectsTruncated(t *testing.T) {
	raw := buildNIfTI(t, [3]int{4, 4, 4}, func(i, j, k int) float64 { return 1 })
	if _, err := DecodeNIfTI(bytes.NewReader(raw[:400])); err == nil {
		t.Error("expected error for truncated voxel data")
	}
}
