package segmentation

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"
)

func TestSegmentReturnsConstantMask(t *testing.T) {
	first := Segment("aGVsbG8=")
	second := Segment("d29ybGQ=")

	if first != second {
		t.Fatalf("segmentation is not deterministic: %+v vs %+v", first, second)
	}
	if first.Width != 1 || first.Height != 1 {
		t.Errorf("mask dimensions = %dx%d, want 1x1", first.Width, first.Height)
	}
}

func TestSegmentMaskDecodes(t *testing.T) {
	result := Segment("")

	raw, err := base64.StdEncoding.DecodeString(result.MaskB64)
	if err != nil {
		t.Fatalf("mask is not valid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("mask is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Errorf("decoded mask = %dx%d, want 1x1", img.Bounds().Dx(), img.Bounds().Dy())
	}
}
