package optics

import (
	"fmt"
	"math"
)

// RayleighRange is π·w²/λ.
func RayleighRange(waist, wavelength float64) float64 {
	return math.Pi * waist * waist / wavelength
}

// ComplexQ builds q = 1 / (1/R + i/zR) from the wavefront curvature
// radius and the beam radius. R = ±inf is a flat wavefront.
func ComplexQ(curvatureRadius, radius, wavelength float64) complex128 {
	return 1 / complex(inverse(curvatureRadius), 1/RayleighRange(radius, wavelength))
}

// Radius returns sqrt((λ/π) / Im(1/q)). For Im(1/q) <= 0 it returns NaN
// together with an error wrapping ErrDomain.
func Radius(q complex128, wavelength float64) (float64, error) {
	im := imag(1 / q)
	if !(im > 0) {
		return math.NaN(), fmt.Errorf("%w: Im(1/q) = %g", ErrDomain, im)
	}
	return math.Sqrt(wavelength / math.Pi / im), nil
}

// CurvatureRadius returns 1 / Re(1/q); +inf at a waist.
func CurvatureRadius(q complex128) float64 {
	re := real(1 / q)
	if re == 0 {
		return math.Inf(1)
	}
	return 1 / re
}

// ApplyMatrix is m.Apply(q).
func ApplyMatrix(q complex128, m ABCD) complex128 {
	return m.Apply(q)
}
