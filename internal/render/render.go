// Package render produces square icon artwork at arbitrary sizes.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

var ErrInvalidSize = errors.New("render: invalid size")

// Source draws the icon at size x size pixels.
type Source interface {
	Render(size int) (image.Image, error)
}

// Cached wraps a Source so each size is drawn once per run.
type Cached struct {
	src   Source
	cache map[int]*image.RGBA
}

func NewCached(src Source) *Cached {
	return &Cached{src: src, cache: make(map[int]*image.RGBA)}
}

func (c *Cached) Render(size int) (image.Image, error) {
	if img, ok := c.cache[size]; ok {
		return img, nil
	}
	img, err := c.src.Render(size)
	if err != nil {
		return nil, err
	}
	rgba := toRGBA(img)
	c.cache[size] = rgba
	return rgba, nil
}

func checkSize(size int) error {
	if size < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
