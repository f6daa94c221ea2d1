package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// FrameImage converts a packed RGB frame of the given dimensions
// into an image.
func FrameImage(frame []byte, width, height int) (*image.RGBA, error) {
	if len(frame) < width*height*3 {
		return nil, fmt.Errorf("frame has %d bytes, expected %d", len(frame), width*height*3)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			img.SetRGBA(x, y, color.RGBA{R: frame[i], G: frame[i+1], B: frame[i+2], A: 0xFF})
		}
	}
	return img, nil
}

// ScaleImage scales img by factor using nearest neighbour sampling,
// so each source pixel becomes a solid factor x factor block.
func ScaleImage(img image.Image, factor int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SavePNG encodes img as a PNG at path, creating parent folders.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
