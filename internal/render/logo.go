package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// Logo is the procedurally drawn application mark: a vertical gradient
// rounded square carrying a white ring, a filled centre dot and four ticks
// crossing the ring.
type Logo struct {
	Top, Bottom color.RGBA
	Foreground  color.RGBA
}

func DefaultLogo() Logo {
	return Logo{
		Top:        color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff},
		Bottom:     color.RGBA{R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff},
		Foreground: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// Proportions are relative to the icon edge and were taken from the 512px
// master artwork.
const (
	outerRingRatio = 0.275
	innerDotRatio  = 0.117
	tickRatio      = 0.058
)

func (l Logo) Render(size int) (image.Image, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	s := float64(size)
	dc := gg.NewContext(size, size)

	grad := gg.NewLinearGradient(0, 0, 0, s)
	grad.AddColorStop(0, l.Top)
	grad.AddColorStop(1, l.Bottom)
	dc.SetFillStyle(grad)
	dc.DrawRoundedRectangle(0, 0, s, s, float64(size/4))
	dc.Fill()

	center := float64(size / 2)
	outer := math.Floor(s * outerRingRatio)
	inner := math.Floor(s * innerDotRatio)
	tick := math.Floor(s * tickRatio)
	lineWidth := math.Max(2, float64(size/16))

	dc.SetColor(l.Foreground)
	dc.SetLineWidth(lineWidth)
	dc.DrawCircle(center, center, outer-lineWidth/2)
	dc.Stroke()

	dc.DrawCircle(center, center, inner)
	dc.Fill()

	dc.SetLineCapButt()
	for _, d := range [][2]float64{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
		dc.DrawLine(
			center+d[0]*(outer-tick), center+d[1]*(outer-tick),
			center+d[0]*(outer+tick), center+d[1]*(outer+tick),
		)
		dc.Stroke()
	}

	return dc.Image(), nil
}
