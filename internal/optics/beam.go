package optics

import (
	"fmt"
	"math"
)

// Beam is the state of a Gaussian beam at an axial position. Methods
// return a new Beam; a Beam is never changed in place.
type Beam struct {
	z          float64
	wavelength float64
	q          complex128
}

// NewBeam places a beam at z0 whose waist of radius w0 lies focus
// further along the axis.
func NewBeam(z0, w0, wavelength, focus float64) (Beam, error) {
	switch {
	case !(w0 > 0) || math.IsInf(w0, 0):
		return Beam{}, fmt.Errorf("%w: waist radius %g", ErrConfiguration, w0)
	case !(wavelength > 0) || math.IsInf(wavelength, 0):
		return Beam{}, fmt.Errorf("%w: wavelength %g", ErrConfiguration, wavelength)
	case math.IsNaN(z0) || math.IsInf(z0, 0):
		return Beam{}, fmt.Errorf("%w: start position %g", ErrConfiguration, z0)
	case math.IsNaN(focus) || math.IsInf(focus, 0):
		return Beam{}, fmt.Errorf("%w: focus distance %g", ErrConfiguration, focus)
	}
	b := Beam{
		z:          z0,
		wavelength: wavelength,
		q:          ComplexQ(math.Inf(1), w0, wavelength),
	}
	b = b.Propagate(-focus)
	b.z = z0
	return b, nil
}

func (b Beam) Z() float64          { return b.z }
func (b Beam) Wavelength() float64 { return b.wavelength }
func (b Beam) Q() complex128       { return b.q }

// Transform applies m to q without moving the beam.
func (b Beam) Transform(m ABCD) Beam {
	b.q = m.Apply(b.q)
	return b
}

// Propagate moves the beam by distance, which may be negative.
func (b Beam) Propagate(distance float64) Beam {
	b = b.Transform(Translation(distance))
	b.z += distance
	return b
}

// PropagateTo moves the beam to z. The position is set exactly rather
// than accumulated.
func (b Beam) PropagateTo(z float64) Beam {
	b = b.Transform(Translation(z - b.z))
	b.z = z
	return b
}

func (b Beam) ApplyThinLens(focal float64) Beam {
	return b.Transform(ThinLensMatrix(focal))
}

// ApplyThickLens traverses the lens; z advances by its thickness.
func (b Beam) ApplyThickLens(l ThickLens) Beam {
	b = b.Transform(l.Matrix())
	b.z += l.Thickness
	return b
}

// Apply dispatches on the element variant.
func (b Beam) Apply(e Element) (Beam, error) {
	v, ok := variant(e)
	if !ok {
		return b, fmt.Errorf("%w: unrecognized element %T", ErrConfiguration, e)
	}
	switch l := v.(type) {
	case ThinLens:
		return b.ApplyThinLens(l.Focal), nil
	case ThickLens:
		return b.ApplyThickLens(l), nil
	}
	return b, nil
}

// SetFocus moves the waist implied by the current state distance further
// along the axis. z is unchanged.
func (b Beam) SetFocus(distance float64) Beam {
	z := b.z
	b = b.Propagate(-distance)
	b.z = z
	return b
}

func (b Beam) Radius() (float64, error) {
	return Radius(b.q, b.wavelength)
}

func (b Beam) CurvatureRadius() float64 {
	return CurvatureRadius(b.q)
}

// Waist returns the position and radius of the waist of the current
// state, wherever it lies along the axis.
func (b Beam) Waist() (z, radius float64) {
	return b.z - real(b.q), math.Sqrt(-b.wavelength * imag(b.q) / math.Pi)
}

func (b Beam) String() string {
	return fmt.Sprintf("Beam{z=%g λ=%g q=%g}", b.z, b.wavelength, b.q)
}
