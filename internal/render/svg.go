package render

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// SVG rasterizes an SVG document. The source is parsed again for every
// size because oksvg mutates the icon's transform on SetTarget.
type SVG struct {
	data []byte
}

func NewSVG(r io.Reader) (*SVG, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// Parse once up front so a broken document fails before any output.
	if _, err := oksvg.ReadIconStream(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	return &SVG{data: data}, nil
}

func OpenSVG(path string) (*SVG, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	s, err := NewSVG(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *SVG) Render(size int) (image.Image, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(s.data))
	if err != nil {
		return nil, err
	}

	icon.SetTarget(0, 0, float64(size), float64(size))
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	gv := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(size, size, gv)
	icon.Draw(dasher, 1.0)

	return rgba, nil
}
