package render

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// Raster resamples a master bitmap. Non-square masters are centered on a
// transparent square canvas first.
type Raster struct {
	master *image.RGBA
}

func NewRaster(img image.Image) *Raster {
	b := img.Bounds()
	edge := max(b.Dx(), b.Dy())
	square := image.NewRGBA(image.Rect(0, 0, edge, edge))
	at := image.Pt((edge-b.Dx())/2, (edge-b.Dy())/2)
	draw.Draw(square, image.Rectangle{Min: at, Max: at.Add(b.Size())}, img, b.Min, draw.Src)
	return &Raster{master: square}
}

func DecodeRaster(r io.Reader) (*Raster, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return NewRaster(img), nil
}

func OpenRaster(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := DecodeRaster(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (r *Raster) Render(size int) (image.Image, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return Resize(r.master, size), nil
}

// Resize scales src to size x size with Catmull-Rom filtering.
func Resize(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
	return dst
}
