// Package display turns Space Invaders video RAM into images.
//
// The monitor is mounted rotated, so the 256x224 raster the hardware
// scans out becomes a 224x256 portrait picture: video RAM is stored column
// by column, 32 bytes per column, least significant bit at the bottom.
// The cabinet's coloured gel strips are applied as a fixed overlay.
package display

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Screen dimensions after rotation.
const (
	Width  = 224
	Height = 256
)

var (
	Black = color.RGBA{0x00, 0x00, 0x00, 0xFF}
	White = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	Red   = color.RGBA{0xFF, 0x20, 0x20, 0xFF}
	Green = color.RGBA{0x20, 0xFF, 0x20, 0xFF}
)

// Overlay returns the gel colour at screen position (x, y).
func Overlay(x, y int) color.RGBA {
	switch {
	case y >= 32 && y < 64:
		return Red
	case y >= 184 && y < 240:
		return Green
	case y >= 240 && x >= 16 && x < 134:
		return Green
	}
	return White
}

// NewImage returns a blank screen-sized image.
func NewImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, Width, Height))
}

// Render draws vram (7K, starting at 2400h) into img, which must be
// Width x Height. Short vram leaves the remaining columns black.
func Render(vram []byte, img *image.RGBA) {
	for x := 0; x < Width; x++ {
		for b := 0; b < Height/8; b++ {
			i := x*Height/8 + b
			var v uint8
			if i < len(vram) {
				v = vram[i]
			}
			for bit := 0; bit < 8; bit++ {
				y := Height - 1 - (b*8 + bit)
				c := Black
				if v&(1<<bit) != 0 {
					c = Overlay(x, y)
				}
				off := img.PixOffset(x, y)
				img.Pix[off+0] = c.R
				img.Pix[off+1] = c.G
				img.Pix[off+2] = c.B
				img.Pix[off+3] = c.A
			}
		}
	}
}

// Scale returns img enlarged n times with nearest-neighbour sampling.
func Scale(img *image.RGBA, n int) *image.RGBA {
	if n <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*n, b.Dy()*n))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
