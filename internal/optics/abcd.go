package optics

import "math"

// ABCD is a ray transfer matrix [[A,B],[C,D]] acting on (q,1).
type ABCD struct {
	A, B, C, D float64
}

func Identity() ABCD {
	return ABCD{A: 1, D: 1}
}

// Translation is free-space propagation over distance.
func Translation(distance float64) ABCD {
	m := Identity()
	m.B = distance
	return m
}

// ThinLensMatrix returns the matrix of a thin lens. An infinite focal
// length gives the identity.
func ThinLensMatrix(focal float64) ABCD {
	m := Identity()
	m.C = -inverse(focal)
	return m
}

// Mul returns m·n, the transform that applies n first and then m.
func (m ABCD) Mul(n ABCD) ABCD {
	return ABCD{
		A: math.FMA(m.A, n.A, m.B*n.C),
		B: math.FMA(m.A, n.B, m.B*n.D),
		C: math.FMA(m.C, n.A, m.D*n.C),
		D: math.FMA(m.C, n.B, m.D*n.D),
	}
}

// Then composes transforms in traversal order: m.Then(n) applies m, then n.
func (m ABCD) Then(n ABCD) ABCD {
	return n.Mul(m)
}

func (m ABCD) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// Apply returns (A·q + B) / (C·q + D).
func (m ABCD) Apply(q complex128) complex128 {
	return (complex(m.A, 0)*q + complex(m.B, 0)) / (complex(m.C, 0)*q + complex(m.D, 0))
}

// inverse treats 1/±inf as 0.
func inverse(x float64) float64 {
	if math.IsInf(x, 0) {
		return 0
	}
	return 1 / x
}
