// Package imageio decodes PNG source images into the dense row-major RGB
// grid the vectorize package expects.
package imageio

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/kwv/pxvectorize/vectorize"
)

// DecodePNG decodes a PNG image and normalizes it to a dense row-major
// []vectorize.RGB grid, row 0 at the top. Paletted, gray and NRGBA source
// images are all converted the same way: a 1:1 per-pixel copy into an
// NRGBA buffer, so a source pixel's exact color survives untouched
// regardless of its original color model. No resampling is involved —
// vectorize treats every source pixel as one grid cell, so scaling the
// decoded image here would change the algorithm's input semantics, not
// just its encoding.
func DecodePNG(r io.Reader) (width, height int, pixels []vectorize.RGB, err error) {
	src, err := png.Decode(r)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decoding PNG: %w", err)
	}

	bounds := src.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0, 0, nil, fmt.Errorf("decoded PNG has zero dimension (%dx%d)", width, height)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	pixels = make([]vectorize.RGB, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := dst.PixOffset(x, y)
			pixels[y*width+x] = vectorize.RGB{R: dst.Pix[o], G: dst.Pix[o+1], B: dst.Pix[o+2]}
		}
	}

	return width, height, pixels, nil
}
