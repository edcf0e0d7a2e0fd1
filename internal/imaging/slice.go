package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// DefaultWindow is the percentile window used for display normalization.
var DefaultWindow = [2]float64{0, 99}

// MaxDisplaySize caps either dimension of a rendered slice.
const MaxDisplaySize = 512

var (
	ErrBadAxis       = errors.New("axis must be 0, 1 or 2")
	ErrSliceIndexOOB = errors.New("slice index out of bounds")
)

// DefaultSliceIndex is the middle slice along an axis, floor division.
func DefaultSliceIndex(extent int) int {
	return extent / 2
}

// ExtractSlice pulls the 2D plane at sliceIdx along axis. The returned matrix
// is indexed rows-first over the two remaining axes in order.
func ExtractSlice(vol *Volume, axis, sliceIdx int) ([][]float64, error) {
	if axis < 0 || axis > 2 {
		return nil, ErrBadAxis
	}
	if sliceIdx < 0 || sliceIdx >= vol.Dims[axis] {
		return nil, ErrSliceIndexOOB
	}

	var rows, cols int
	var at func(a, b int) float64
	switch axis {
	case 0:
		rows, cols = vol.Dims[1], vol.Dims[2]
		at = func(a, b int) float64 { return vol.At(sliceIdx, a, b) }
	case 1:
		rows, cols = vol.Dims[0], vol.Dims[2]
		at = func(a, b int) float64 { return vol.At(a, sliceIdx, b) }
	default:
		rows, cols = vol.Dims[0], vol.Dims[1]
		at = func(a, b int) float64 { return vol.At(a, b, sliceIdx) }
	}

	m := make([][]float64, rows)
	for a := 0; a < rows; a++ {
		m[a] = make([]float64, cols)
		for b := 0; b < cols; b++ {
			m[a][b] = at(a, b)
		}
	}
	return m, nil
}

// Percentile computes the p-th percentile (0..100) with linear interpolation
// between the closest ranks.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// WindowToGray clips the slice to the [pLow, pHigh] percentile range of its
// own intensities and linearly rescales to 0..255.
func WindowToGray(m [][]float64, pLow, pHigh float64) [][]uint8 {
	flat := make([]float64, 0, len(m)*len(m[0]))
	for _, row := range m {
		flat = append(flat, row...)
	}
	vmin := Percentile(flat, pLow)
	vmax := Percentile(flat, pHigh)

	out := make([][]uint8, len(m))
	for a, row := range m {
		out[a] = make([]uint8, len(row))
		for b, v := range row {
			if vmax <= vmin {
				continue
			}
			if v < vmin {
				v = vmin
			}
			if v > vmax {
				v = vmax
			}
			out[a][b] = uint8((v - vmin) / (vmax - vmin) * 255)
		}
	}
	return out
}

// SlicePNG renders one slice of the volume as a grayscale PNG: percentile
// window, 0..255 rescale, 90 degree counterclockwise rotation for display
// orientation, downscale if either dimension exceeds MaxDisplaySize.
// sliceIdx < 0 selects the middle slice.
func SlicePNG(vol *Volume, axis, sliceIdx int, pLow, pHigh float64) ([]byte, error) {
	if axis < 0 || axis > 2 {
		return nil, ErrBadAxis
	}
	if sliceIdx < 0 {
		sliceIdx = DefaultSliceIndex(vol.Dims[axis])
	}

	m, err := ExtractSlice(vol, axis, sliceIdx)
	if err != nil {
		return nil, err
	}
	gray := WindowToGray(m, pLow, pHigh)
	rotated := rot90(gray)

	img := toGrayImage(rotated)
	img = downscale(img, MaxDisplaySize)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rot90 rotates counterclockwise: (r, c) -> (c, r).
func rot90(m [][]uint8) [][]uint8 {
	rows := len(m)
	cols := len(m[0])
	out := make([][]uint8, cols)
	for i := 0; i < cols; i++ {
		out[i] = make([]uint8, rows)
		for j := 0; j < rows; j++ {
			out[i][j] = m[j][cols-1-i]
		}
	}
	return out
}

func toGrayImage(m [][]uint8) *image.Gray {
	h := len(m)
	w := len(m[0])
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = m[y][x]
		}
	}
	return img
}

func downscale(img *image.Gray, maxSize int) *image.Gray {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
