package imaging

import (
	"bytes"
	"image/png"
	"testing"
)

func TestDefaultSliceIndex(t *testing.T) {
	tests := []struct {
		extent, want int
	}{
		{10, 5},
		{11, 5},
		{1, 0},
		{2, 1},
		{256, 128},
	}
	for _, tt := range tests {
		if got := DefaultSliceIndex(tt.extent); got != tt.want {
			t.Errorf("DefaultSliceIndex(%d) = %d, want %d", tt.extent, got, tt.want)
		}
	}
}

func TestExtractSlice(t *testing.T) {
	dims := [3]int{4, 3, 2}
	raw := buildNIfTI(t, dims, func(i, j, k int) float64 {
		return float64(i + 10*j + 100*k)
	})
	vol, err := DecodeNIfTI(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeNIfTI: %v", err)
	}

	// Axial plane (axis 2): rows over i, cols over j.
	m, err := ExtractSlice(vol, 2, 1)
	if err != nil {
		t.Fatalf("ExtractSlice: %v", err)
	}
	if len(m) != 4 || len(m[0]) != 3 {
		t.Fatalf("slice shape = %dx%d, want 4x3", len(m), len(m[0]))
	}
	if m[2][1] != float64(2+10*1+100*1) {
		t.Errorf("m[2][1] = %v, want %v", m[2][1], float64(2+10+100))
	}

	// Sagittal plane (axis 0): rows over j, cols over k.
	m, err = ExtractSlice(vol, 0, 3)
	if err != nil {
		t.Fatalf("ExtractSlice axis 0: %v", err)
	}
	if len(m) != 3 || len(m[0]) != 2 {
		t.Fatalf("axis-0 slice shape = %dx%d, want 3x2", len(m), len(m[0]))
	}
	if m[1][1] != float64(3+10*1+100*1) {
		t.Errorf("m[1][1] = %v, want %v", m[1][1], float64(3+10+100))
	}
}

func TestExtractSliceBounds(t *testing.T) {
	raw := buildNIfTI(t, [3]int{2, 2, 2}, func(i, j, k int) float64 { return 0 })
	vol, _ := DecodeNIfTI(bytes.NewReader(raw))

	if _, err := ExtractSlice(vol, 3, 0); err != ErrBadAxis {
		t.Errorf("axis 3: got %v, want ErrBadAxis", err)
	}
	if _, err := ExtractSlice(vol, 0, 2); err != ErrSliceIndexOOB {
		t.Errorf("index 2: got %v, want ErrSliceIndexOOB", err)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	if got := Percentile(values, 0); got != 0 {
		t.Errorf("p0 = %v", got)
	}
	if got := Percentile(values, 100); got != 9 {
		t.Errorf("p100 = %v", got)
	}
	if got := Percentile(values, 50); got != 4.5 {
		t.Errorf("p50 = %v, want 4.5", got)
	}
}

func TestWindowToGrayBoundaries(t *testing.T) {
	// 16x16 ramp.
	m := make([][]float64, 16)
	for a := range m {
		m[a] = make([]float64, 16)
		for b := range m[a] {
			m[a][b] = float64(a*16 + b)
		}
	}

	gray := WindowToGray(m, 0, 100)
	if gray[0][0] != 0 {
		t.Errorf("minimum pixel = %d, want 0", gray[0][0])
	}
	if gray[15][15] != 255 {
		t.Errorf("maximum pixel = %d, want 255", gray[15][15])
	}
}

// Re-applying the window must not push pixels already at the boundaries any
// further.
func TestWindowToGrayIdempotentAtBoundaries(t *testing.T) {
	m := make([][]float64, 20)
	for a := range m {
		m[a] = make([]float64, 20)
		for b := range m[a] {
			m[a][b] = float64(a*20 + b)
		}
	}

	first := WindowToGray(m, 0, 99)

	asFloat := make([][]float64, len(first))
	for a := range first {
		asFloat[a] = make([]float64, len(first[a]))
		for b := range first[a] {
			asFloat[a][b] = float64(first[a][b])
		}
	}
	second := WindowToGray(asFloat, 0, 99)

	for a := range first {
		for b := range first[a] {
			if first[a][b] == 0 && second[a][b] != 0 {
				t.Fatalf("pixel (%d,%d) moved off the low boundary: %d", a, b, second[a][b])
			}
			if first[a][b] == 255 && second[a][b] != 255 {
				t.Fatalf("pixel (%d,%d) moved off the high boundary: %d", a, b, second[a][b])
			}
		}
	}
}

func TestSlicePNGDefaultMiddleSlice(t *testing.T) {
	// Extent 10 along axis 2: middle slice must be index 5. Encode the
	// slice index into the voxel values so the rendered plane is
	// distinguishable.
	dims := [3]int{8, 8, 10}
	raw := buildNIfTI(t, dims, func(i, j, k int) float64 {
		if k == 5 {
			return float64(i * j)
		}
		return 0
	})
	vol, err := DecodeNIfTI(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeNIfTI: %v", err)
	}

	data, err := SlicePNG(vol, 2, -1, DefaultWindow[0], DefaultWindow[1])
	if err != nil {
		t.Fatalf("SlicePNG: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}

	// Slice 5 carries a gradient; any other slice would be uniform zero and
	// encode to a flat black image.
	bounds := img.Bounds()
	uniform := true
	first, _, _, _ := img.At(bounds.Min.X, bounds.Min.Y).RGBA()
	for y := bounds.Min.Y; y < bounds.Max.Y && uniform; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r != first {
				uniform = false
				break
			}
		}
	}
	if uniform {
		t.Error("middle slice rendered uniform; default index did not hit extent/2")
	}
}

func TestSlicePNGRotation(t *testing.T) {
	// A 6x4 axial slice rotates to a 4x6 image.
	dims := [3]int{6, 4, 3}
	raw := buildNIfTI(t, dims, func(i, j, k int) float64 { return float64(i + j + k) })
	vol, _ := DecodeNIfTI(bytes.NewReader(raw))

	data, err := SlicePNG(vol, 2, 0, 0, 100)
	if err != nil {
		t.Fatalf("SlicePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Errorf("rotated dimensions = %dx%d, want 6x4", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestSlicePNGDownscale(t *testing.T) {
	dims := [3]int{600, 300, 1}
	raw := buildNIfTI(t, dims, func(i, j, k int) float64 { return float64(i % 7) })
	vol, err := DecodeNIfTI(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeNIfTI: %v", err)
	}

	data, err := SlicePNG(vol, 2, 0, 0, 100)
	if err != nil {
		t.Fatalf("SlicePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w > MaxDisplaySize || h > MaxDisplaySize {
		t.Errorf("downscale failed: %dx%d exceeds %d", w, h, MaxDisplaySize)
	}
	// The rotated plane is 600 wide by 300 tall, aspect ratio 2:1.
	ratio := float64(w) / float64(h)
	if ratio < 1.9 || ratio > 2.1 {
		t.Errorf("aspect ratio drifted: %dx%d", w, h)
	}
}
