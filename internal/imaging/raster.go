// Package imaging decodes chat images into raw pixel buffers and compares them.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"line-quiz-bot/internal/domain"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Raster is a decoded image laid out row by row, Channels bytes per pixel.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Len is the number of bytes the buffer is expected to hold.
func (r Raster) Len() int {
	return r.Width * r.Height * r.Channels
}

// Decode turns encoded image bytes into a raw buffer. Opaque images are packed as
// RGB, anything with transparency as RGBA.
func Decode(data []byte) (Raster, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Raster{}, fmt.Errorf("%w: %v", domain.ErrUndecodableImage, err)
	}
	return FromImage(img), nil
}

// FromImage converts any image.Image into a Raster.
func FromImage(img image.Image) Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	if !isOpaque(nrgba) {
		pix := make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
			pix = append(pix, row...)
		}
		return Raster{Width: w, Height: h, Channels: 4, Pix: pix}
	}

	pix := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			pix = append(pix, row[x], row[x+1], row[x+2])
		}
	}
	return Raster{Width: w, Height: h, Channels: 3, Pix: pix}
}

func isOpaque(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 3; x < len(row); x += 4 {
			if row[x] != 0xff {
				return false
			}
		}
	}
	return true
}
