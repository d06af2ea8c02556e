package optics

import (
	"cmp"
	"math"
	"slices"
)

// Element is an optical component placed on the axis. The variant set is
// closed: ThinLens and ThickLens.
type Element interface {
	// Location is the axial position of the entry surface.
	Location() float64
	// Extent is the axial length the element occupies.
	Extent() float64
	// Diameter of the clear aperture; used for rendering and clipping.
	Diameter() float64
	// Matrix is the transform from the entry to the exit surface.
	Matrix() ABCD

	shifted(offset float64) Element
	check() error
}

// ThinLens has zero axial extent.
type ThinLens struct {
	Z        float64
	Focal    float64
	Aperture float64
}

func (l ThinLens) Location() float64 { return l.Z }
func (l ThinLens) Extent() float64   { return 0 }
func (l ThinLens) Diameter() float64 { return l.Aperture }
func (l ThinLens) Matrix() ABCD      { return ThinLensMatrix(l.Focal) }

func (l ThinLens) shifted(offset float64) Element {
	l.Z += offset
	return l
}

func (l ThinLens) check() error {
	switch {
	case math.IsNaN(l.Z) || math.IsInf(l.Z, 0):
		return errorString("non-finite location")
	case l.Focal == 0 || math.IsNaN(l.Focal):
		return errorString("focal length must be non-zero")
	}
	return nil
}

// ThickLens occupies [Z, Z+Thickness). R1 and R2 are the radii of the
// entry and exit surfaces, positive when the centre of curvature lies
// downstream; ±inf is a plane surface.
type ThickLens struct {
	Z         float64
	R1, R2    float64
	Thickness float64
	Index     float64
	Aperture  float64
}

func (l ThickLens) Location() float64 { return l.Z }
func (l ThickLens) Extent() float64   { return l.Thickness }
func (l ThickLens) Diameter() float64 { return l.Aperture }

// Matrix is exit · translate(t) · entry. The entry refraction has
// focal length R1·n/(n-1), the exit refraction R2/(1-n).
func (l ThickLens) Matrix() ABCD {
	entry := ABCD{A: 1, C: -(l.Index - 1) / l.Index * inverse(l.R1), D: 1 / l.Index}
	exit := ABCD{A: 1, C: -(1 - l.Index) * inverse(l.R2), D: l.Index}
	return entry.Then(Translation(l.Thickness)).Then(exit)
}

func (l ThickLens) shifted(offset float64) Element {
	l.Z += offset
	return l
}

func (l ThickLens) check() error {
	switch {
	case math.IsNaN(l.Z) || math.IsInf(l.Z, 0):
		return errorString("non-finite location")
	case !(l.Index > 0) || math.IsInf(l.Index, 0):
		return errorString("refractive index must be positive")
	case !(l.Thickness >= 0) || math.IsInf(l.Thickness, 0):
		return errorString("thickness must be finite and non-negative")
	case l.R1 == 0 || l.R2 == 0 || math.IsNaN(l.R1) || math.IsNaN(l.R2):
		return errorString("surface radius must be non-zero")
	}
	return nil
}

type errorString string

func (e errorString) Error() string { return string(e) }

// Span returns the half-open interval [start, end) occupied by e.
func Span(e Element) (start, end float64) {
	return e.Location(), e.Location() + e.Extent()
}

// variant resolves pointer forms to the value variants.
func variant(e Element) (Element, bool) {
	switch v := e.(type) {
	case ThinLens, ThickLens:
		return v, true
	case *ThinLens:
		if v != nil {
			return *v, true
		}
	case *ThickLens:
		if v != nil {
			return *v, true
		}
	}
	return nil, false
}

// SortElements validates elements and returns a sorted copy, ascending
// by location. Two elements may not share a location and a thick lens
// span may not contain another element; the latter is an ErrCollision.
// Errors carry the index of the element in the input slice.
func SortElements(elements []Element) ([]Element, error) {
	sorted, _, err := Arrange(elements)
	return sorted, err
}

// Arrange is SortElements that also reports, for every sorted element,
// its index in the input slice.
func Arrange(elements []Element) (sorted []Element, origin []int, err error) {
	type indexed struct {
		index int
		e     Element
	}
	placed := make([]indexed, 0, len(elements))
	for i, e := range elements {
		v, ok := variant(e)
		if !ok {
			return nil, nil, elementErrorf(i, math.NaN(), ErrConfiguration, "unrecognized element %T", e)
		}
		if err := v.check(); err != nil {
			return nil, nil, elementErrorf(i, v.Location(), ErrConfiguration, "%v", err)
		}
		placed = append(placed, indexed{i, v})
	}
	slices.SortStableFunc(placed, func(a, b indexed) int {
		return cmp.Compare(a.e.Location(), b.e.Location())
	})

	sorted = make([]Element, len(placed))
	origin = make([]int, len(placed))
	for i, s := range placed {
		sorted[i], origin[i] = s.e, s.index
		if i == 0 {
			continue
		}
		prev := placed[i-1]
		if s.e.Location() == prev.e.Location() {
			return nil, nil, elementErrorf(s.index, s.e.Location(), ErrConfiguration,
				"shares its location with element %d", prev.index)
		}
		if _, end := Span(prev.e); s.e.Location() < end {
			return nil, nil, elementErrorf(s.index, s.e.Location(), ErrCollision,
				"inside element %d spanning [%g, %g)", prev.index, prev.e.Location(), end)
		}
	}
	return sorted, origin, nil
}

// Shift returns copies of elements moved by offset along the axis.
func Shift(elements []Element, offset float64) []Element {
	out := make([]Element, len(elements))
	for i, e := range elements {
		out[i] = e.shifted(offset)
	}
	return out
}

// ShiftTo moves elements by one offset so that elements[0] lies exactly
// at z. The first element is corrected a second time since
// z0 + (z - z0) may round away from z.
func ShiftTo(elements []Element, z float64) []Element {
	if len(elements) == 0 {
		return nil
	}
	out := Shift(elements, z-elements[0].Location())
	out[0] = out[0].shifted(z - out[0].Location())
	return out
}
