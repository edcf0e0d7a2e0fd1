// Package segmentation is a stand-in for the real model-backed segmentation
// service. It returns a constant mask so the job pipeline can be exercised
// end to end before the model is wired in.
package segmentation

// Result holds the segmentation output for one image.
type Result struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	MaskB64 string `json:"mask_b64"`
}

// tinyWhitePNGB64 is a 1x1 white PNG.
const tinyWhitePNGB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAAAAAA6fptVAA" +
	"AADklEQVR4nGL6DwgAAP//AQUBAlrdOc0AAAAASUVORK5CYII="

// Segment accepts a base64-encoded image and returns a 1x1 white mask.
// TODO: replace with the SynthSeg-backed implementation once the model
// endpoint is available.
func Segment(imageB64 string) Result {
	_ = imageB64
	return Result{Width: 1, Height: 1, MaskB64: tinyWhitePNGB64}
}
