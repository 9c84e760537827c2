package imagediff

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	diffColor  = color.RGBA{R: 255, A: 255}
	labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	labelBg    = color.RGBA{A: 200}
)

// Highlight renders after with differing pixels painted red and a summary
// label in the top-left corner. Used as a failure artifact.
func Highlight(before, after []byte, opts Options) ([]byte, error) {
	a, err := png.Decode(bytes.NewReader(before))
	if err != nil {
		return nil, fmt.Errorf("decode first image: %w", err)
	}
	b, err := png.Decode(bytes.NewReader(after))
	if err != nil {
		return nil, fmt.Errorf("decode second image: %w", err)
	}

	ra := toRGBA(a)
	rb, _ := normalize(b, ra.Bounds())
	res := CompareImages(a, b, opts)

	out := image.NewRGBA(rb.Bounds())
	draw.Draw(out, out.Bounds(), rb, image.Point{}, draw.Src)
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			pa := ra.RGBAAt(ra.Bounds().Min.X+x, ra.Bounds().Min.Y+y)
			if !pixelEqual(pa, rb.RGBAAt(x, y), opts.Tolerance) {
				out.SetRGBA(x, y, diffColor)
			}
		}
	}
	drawLabel(out, res.String())

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 4
	height := face.Metrics().Height.Ceil() + 2
	bg := image.Rect(0, 0, width, height).Intersect(img.Bounds())
	draw.Draw(img, bg, image.NewUniform(labelBg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(2, face.Metrics().Ascent.Ceil()+1),
	}
	d.DrawString(text)
}
