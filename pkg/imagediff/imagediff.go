// Package imagediff compares element screenshots. It is how toggle state
// (e.g. the favorite heart) is verified when the accessibility tree does not
// expose it: a tap that changes the state must change the rendered pixels.
//
// A pixel comparison cannot tell which state is shown, only that it changed,
// and it also reacts to unrelated rendering changes inside the element bounds.
package imagediff

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// Options tune the comparison.
type Options struct {
	// Tolerance is the per-channel difference (0-255) below which pixels are equal.
	Tolerance uint8
	// MinRatio is the fraction of differing pixels above which images differ.
	MinRatio float64
}

// DefaultOptions absorb anti-aliasing and compression noise.
func DefaultOptions() Options {
	return Options{Tolerance: 8, MinRatio: 0.001}
}

// Result describes how two images differ.
type Result struct {
	Identical  bool // byte-identical encodings
	DiffPixels int
	Total      int
	Ratio      float64
	Changed    bool
	Resized    bool // second image was scaled to the first's size
}

func (r Result) String() string {
	if r.Identical {
		return "identical"
	}
	return fmt.Sprintf("%d/%d pixels differ (%.2f%%)", r.DiffPixels, r.Total, r.Ratio*100)
}

// Compare decodes two PNGs and compares them pixel by pixel.
func Compare(before, after []byte, opts Options) (Result, error) {
	if bytes.Equal(before, after) {
		return Result{Identical: true}, nil
	}

	a, err := png.Decode(bytes.NewReader(before))
	if err != nil {
		return Result{}, fmt.Errorf("decode first image: %w", err)
	}
	b, err := png.Decode(bytes.NewReader(after))
	if err != nil {
		return Result{}, fmt.Errorf("decode second image: %w", err)
	}
	return CompareImages(a, b, opts), nil
}

// Changed reports whether two PNG screenshots differ beyond DefaultOptions.
func Changed(before, after []byte) (bool, error) {
	r, err := Compare(before, after, DefaultOptions())
	if err != nil {
		return false, err
	}
	return r.Changed, nil
}

// CompareImages compares decoded images. When sizes differ the second image is
// scaled to the first's bounds before comparing.
func CompareImages(a, b image.Image, opts Options) Result {
	ra := toRGBA(a)
	rb, resized := normalize(b, ra.Bounds())

	res := Result{Resized: resized}
	bounds := ra.Bounds()
	res.Total = bounds.Dx() * bounds.Dy()
	if res.Total == 0 {
		return res
	}

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			pa := ra.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			pb := rb.RGBAAt(x, y)
			if !pixelEqual(pa, pb, opts.Tolerance) {
				res.DiffPixels++
			}
		}
	}
	res.Ratio = float64(res.DiffPixels) / float64(res.Total)
	res.Changed = res.DiffPixels > 0 && res.Ratio >= opts.MinRatio
	return res
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// normalize returns img as RGBA with origin (0,0) and the size of target.
func normalize(img image.Image, target image.Rectangle) (*image.RGBA, bool) {
	dst := image.NewRGBA(image.Rect(0, 0, target.Dx(), target.Dy()))
	src := img.Bounds()
	if src.Dx() == target.Dx() && src.Dy() == target.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
		return dst, false
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst, true
}

func pixelEqual(a, b color.RGBA, tolerance uint8) bool {
	return absDiff(a.R, b.R) <= tolerance &&
		absDiff(a.G, b.G) <= tolerance &&
		absDiff(a.B, b.B) <= tolerance &&
		absDiff(a.A, b.A) <= tolerance
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
