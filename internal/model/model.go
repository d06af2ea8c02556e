package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/gbeam/internal/config"
	"github.com/wildstyl3r/gbeam/internal/constants"
	"github.com/wildstyl3r/gbeam/internal/optics"
)

// Model drives a beam through a set of elements over a uniform grid.
// Run does not modify the Model, so one Model may be run concurrently.
type Model struct {
	Beam     optics.Beam
	Elements []optics.Element
	Distance float64
	Samples  int
}

// Result holds one sample per grid position. Radius and Curvature are NaN
// for grid positions inside a thick element.
type Result struct {
	Positions []float64
	Radius    []float64
	Curvature []float64
	// Elements as placed during the run, sorted and shifted.
	Elements []optics.Element
	// Origin is the index in Model.Elements of each entry of Elements.
	Origin []int
	// Clipped lists indices into Elements whose aperture is smaller than
	// the beam at that element.
	Clipped []int
	Beam    optics.Beam
}

func NewModel(beam optics.Beam, elements []optics.Element, distance float64, samples int) Model {
	if samples == 0 {
		samples = constants.DefaultSamples
	}
	return Model{
		Beam:     beam,
		Elements: elements,
		Distance: distance,
		Samples:  samples,
	}
}

// FromParameters builds the beam and the element list of a configured run.
func FromParameters(p config.RunParameters) (Model, error) {
	beam, err := optics.NewBeam(p.Start, p.Waist, p.Wavelength, p.Focus)
	if err != nil {
		return Model{}, err
	}
	elements := make([]optics.Element, 0, len(p.Lenses)+len(p.ThickLenses))
	for _, l := range p.Lenses {
		elements = append(elements, optics.ThinLens{
			Z:        l.Location,
			Focal:    l.Focal,
			Aperture: l.Diameter,
		})
	}
	for _, l := range p.ThickLenses {
		elements = append(elements, optics.ThickLens{
			Z:         l.Location,
			R1:        l.R1,
			R2:        l.R2,
			Thickness: l.Thickness,
			Index:     l.Index,
			Aperture:  l.Diameter,
		})
	}
	return NewModel(beam, elements, p.Distance, p.Samples), nil
}

// place sorts and validates the elements and moves them, all by the same
// offset, so that none lies before the beam start. origin maps each
// placed element to its index in m.Elements. A moved placement is
// validated again, so the walk only meets spans that were checked.
func (m *Model) place() (placed []optics.Element, origin []int, err error) {
	placed, origin, err = optics.Arrange(m.Elements)
	if err != nil || len(placed) == 0 || placed[0].Location() >= m.Beam.Z() {
		return placed, origin, err
	}
	optics.Logger().Debug("shifting elements to beam start",
		slog.Float64("offset", m.Beam.Z()-placed[0].Location()),
		slog.Float64("z", m.Beam.Z()))
	moved, order, err := optics.Arrange(optics.ShiftTo(placed, m.Beam.Z()))
	if err != nil {
		var ee *optics.ElementError
		if errors.As(err, &ee) {
			ee.Index = origin[ee.Index]
		}
		return nil, nil, err
	}
	remapped := make([]int, len(order))
	for i, j := range order {
		remapped[i] = origin[j]
	}
	return moved, remapped, nil
}

// Run samples the beam radius on Samples evenly spaced positions from the
// beam start to Beam.Z()+Distance. Distance must be finite and not
// negative: the grid only runs downstream, even though the beam itself
// can be propagated backwards.
func (m *Model) Run() (Result, error) {
	if m.Samples < 2 {
		return Result{}, fmt.Errorf("%w: %d samples, need at least 2", optics.ErrConfiguration, m.Samples)
	}
	if !(m.Distance >= 0) || math.IsInf(m.Distance, 0) {
		return Result{}, fmt.Errorf("%w: propagation distance %g", optics.ErrConfiguration, m.Distance)
	}
	elements, origin, err := m.place()
	if err != nil {
		return Result{}, err
	}

	beam := m.Beam
	r := Result{
		Positions: floats.Span(make([]float64, m.Samples), beam.Z(), beam.Z()+m.Distance),
		Radius:    make([]float64, m.Samples),
		Curvature: make([]float64, m.Samples),
		Elements:  elements,
		Origin:    origin,
	}

	next := 0                 // first element not yet crossed
	skipUntil := math.Inf(-1) // grid positions below this lie inside a thick element
	for i, target := range r.Positions {
		if target < skipUntil {
			r.Radius[i], r.Curvature[i] = math.NaN(), math.NaN()
			continue
		}
		for ; next < len(elements) && elements[next].Location() < target; next++ {
			e := elements[next]
			// Unreachable for a placement accepted by place: a thick lens
			// leaves the beam exactly at the end of its checked span.
			if e.Location() < beam.Z() {
				return r, &optics.ElementError{
					Index:    origin[next],
					Location: e.Location(),
					Err:      fmt.Errorf("%w: beam already at z=%g", optics.ErrCollision, beam.Z()),
				}
			}
			beam = beam.PropagateTo(e.Location())
			if clipped(beam, e) {
				r.Clipped = append(r.Clipped, next)
			}
			if beam, err = beam.Apply(e); err != nil {
				return r, &optics.ElementError{Index: origin[next], Location: e.Location(), Err: err}
			}
			optics.Logger().Debug("element crossed",
				slog.Int("element", next),
				slog.Float64("z", beam.Z()))
			if e.Extent() > 0 {
				skipUntil = beam.Z()
			}
		}
		if target < beam.Z() {
			r.Radius[i], r.Curvature[i] = math.NaN(), math.NaN()
			continue
		}
		beam = beam.PropagateTo(target)
		if r.Radius[i], err = beam.Radius(); err != nil {
			return r, fmt.Errorf("sample %d at z=%g: %w", i, target, err)
		}
		r.Curvature[i] = beam.CurvatureRadius()
	}
	r.Beam = beam
	return r, nil
}

func clipped(beam optics.Beam, e optics.Element) bool {
	if e.Diameter() <= 0 {
		return false
	}
	w, err := beam.Radius()
	if err != nil || w <= e.Diameter()*constants.ClipWarningRatio {
		return false
	}
	optics.Logger().Warn("beam clipped by aperture",
		slog.Float64("z", e.Location()),
		slog.Float64("radius", w),
		slog.Float64("diameter", e.Diameter()))
	return true
}
