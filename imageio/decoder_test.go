package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int, fill func(x, y int) color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill(x, y))
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodePNGTwoByOne(t *testing.T) {
	data := encodeTestPNG(t, 2, 1, func(x, y int) color.Color {
		if x == 0 {
			return color.NRGBA{0, 0, 0, 255}
		}
		return color.NRGBA{255, 255, 255, 255}
	})

	w, h, pixels, err := DecodePNG(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if w != 2 || h != 1 {
		t.Fatalf("dims = %dx%d, want 2x1", w, h)
	}
	if len(pixels) != 2 {
		t.Fatalf("len(pixels) = %d, want 2", len(pixels))
	}
	if pixels[0].R != 0 || pixels[0].G != 0 || pixels[0].B != 0 {
		t.Fatalf("pixels[0] = %+v, want black", pixels[0])
	}
	if pixels[1].R != 255 || pixels[1].G != 255 || pixels[1].B != 255 {
		t.Fatalf("pixels[1] = %+v, want white", pixels[1])
	}
}

func TestDecodePNGPaletted(t *testing.T) {
	pal := color.Palette{color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 255, 0, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
	img.SetColorIndex(0, 0, 0)
	img.SetColorIndex(1, 0, 1)
	img.SetColorIndex(0, 1, 1)
	img.SetColorIndex(1, 1, 0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	w, h, pixels, err := DecodePNG(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if w != 2 || h != 2 || len(pixels) != 4 {
		t.Fatalf("dims/len = %dx%d/%d, want 2x2/4", w, h, len(pixels))
	}
	if pixels[0].R != 255 || pixels[0].G != 0 {
		t.Fatalf("pixels[0] = %+v, want red", pixels[0])
	}
	if pixels[1].G != 255 || pixels[1].R != 0 {
		t.Fatalf("pixels[1] = %+v, want green", pixels[1])
	}
}

func TestDecodePNGInvalidData(t *testing.T) {
	if _, _, _, err := DecodePNG(bytes.NewReader([]byte("not a png"))); err == nil {
		t.Fatal("expected error decoding invalid PNG data")
	}
}
