package snapshot

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(40 * x), G: uint8(100 * y), B: 7, A: 255})
		}
	}
	return img
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"mandel.png", PNG},
		{"out/MANDEL.PNG", PNG},
		{"a.bmp", BMP},
		{"a.tif", TIFF},
		{"a.tiff", TIFF},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("FormatFor(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}

	for _, name := range []string{"a.jpg", "noext"} {
		if _, err := FormatFor(name); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("FormatFor(%q): got %v, want ErrUnknownFormat", name, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	want := testImage()
	decoders := map[Format]func(*bytes.Buffer) (image.Image, error){
		PNG:  func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) },
		BMP:  func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) },
		TIFF: func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(b) },
	}
	for f, decode := range decoders {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, want, f); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := decode(&buf)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			for y := 0; y < 2; y++ {
				for x := 0; x < 3; x++ {
					r1, g1, b1, _ := got.At(x, y).RGBA()
					r2, g2, b2, _ := want.At(x, y).RGBA()
					if r1 != r2 || g1 != g2 || b1 != b2 {
						t.Errorf("pixel (%d, %d) differs", x, y)
					}
				}
			}
		})
	}

	if err := Encode(&bytes.Buffer{}, want, "gif"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("gif: got %v, want ErrUnknownFormat", err)
	}
}

func TestSave(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mandel.png")
	if err := Save(name, testImage()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode saved file: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds: %v", img.Bounds())
	}

	if err := Save(filepath.Join(t.TempDir(), "mandel.jpg"), testImage()); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("jpg: got %v, want ErrUnknownFormat", err)
	}
}
