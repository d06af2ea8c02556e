// Package render draws the beam envelope of a finished run. It only
// reads sample positions, radii and element geometry.
package render

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/wildstyl3r/gbeam/internal/optics"
)

type Options struct {
	Width, Height int
	Margin        float64 // [px]
}

var DefaultOptions = Options{Width: 1200, Height: 600, Margin: 40}

// frame maps axis coordinates to pixels.
type frame struct {
	zMin, zMax float64
	wMax       float64
	opts       Options
}

func newFrame(positions, radius []float64, opts Options) (frame, error) {
	if len(positions) < 2 || len(positions) != len(radius) {
		return frame{}, fmt.Errorf("render: need matching positions and radii, got %d and %d", len(positions), len(radius))
	}
	f := frame{zMin: positions[0], zMax: positions[len(positions)-1], opts: opts}
	for _, w := range radius {
		if !math.IsNaN(w) && !math.IsInf(w, 0) {
			f.wMax = max(f.wMax, w)
		}
	}
	if f.wMax == 0 || f.zMax <= f.zMin {
		return frame{}, fmt.Errorf("render: empty plot range")
	}
	f.wMax *= 1.25
	return f, nil
}

func (f frame) x(z float64) float64 {
	return f.opts.Margin + (z-f.zMin)/(f.zMax-f.zMin)*(float64(f.opts.Width)-2*f.opts.Margin)
}

func (f frame) y(w float64) float64 {
	half := float64(f.opts.Height) / 2
	return half - w/f.wMax*(half-f.opts.Margin)
}

// halfHeight is the drawn half height of an element, capped to the plot.
func (f frame) halfHeight(e optics.Element) float64 {
	if e.Diameter() <= 0 {
		return f.wMax
	}
	return min(e.Diameter()/2, f.wMax)
}

// Envelope draws ±radius against position and a marker per element,
// and saves the picture as PNG.
func Envelope(path string, positions, radius []float64, elements []optics.Element, opts Options) error {
	f, err := newFrame(positions, radius, opts)
	if err != nil {
		return err
	}
	dc := gg.NewContext(opts.Width, opts.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	dc.SetRGB(0.7, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(f.x(f.zMin), f.y(0), f.x(f.zMax), f.y(0))
	if err := dc.Stroke(); err != nil {
		return err
	}

	dc.SetRGB(0.12, 0.47, 0.71)
	dc.SetLineWidth(2)
	for _, sign := range []float64{1, -1} {
		pen := false
		for i, w := range radius {
			if math.IsNaN(w) {
				pen = false
				continue
			}
			if pen {
				dc.LineTo(f.x(positions[i]), f.y(sign*w))
			} else {
				dc.MoveTo(f.x(positions[i]), f.y(sign*w))
				pen = true
			}
		}
	}
	if err := dc.Stroke(); err != nil {
		return err
	}

	dc.SetRGB(1, 0.5, 0.05)
	for _, e := range elements {
		h := f.halfHeight(e)
		switch l := e.(type) {
		case optics.ThinLens:
			dc.DrawLine(f.x(l.Z), f.y(-h), f.x(l.Z), f.y(h))
		case optics.ThickLens:
			f.surface(dc, l.Z, l.R1, h)
			f.surface(dc, l.Z+l.Thickness, l.R2, h)
		}
	}
	if err := dc.Stroke(); err != nil {
		return err
	}
	return dc.SavePNG(path)
}

// surface traces the sag z(h) = z0 + c·h² / (1 + sqrt(1 - c²h²)) of a
// spherical surface with curvature c = 1/R. Heights beyond |R| are left
// out.
func (f frame) surface(dc *gg.Context, z0, radius, halfHeight float64) {
	const steps = 100
	c := 0.
	if !math.IsInf(radius, 0) {
		c = 1 / radius
	}
	pen := false
	for i := range steps + 1 {
		h := -halfHeight + 2*halfHeight*float64(i)/steps
		root := 1 - c*c*h*h
		if root < 0 {
			pen = false
			continue
		}
		z := z0 + c*h*h/(1+math.Sqrt(root))
		if pen {
			dc.LineTo(f.x(z), f.y(h))
		} else {
			dc.MoveTo(f.x(z), f.y(h))
			pen = true
		}
	}
}
