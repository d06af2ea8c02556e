package render

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
)

// ASCII plots the finite radius samples for a terminal. Samples inside
// thick elements are dropped, which closes the gap in the plot.
func ASCII(positions, radius []float64, width, height int) string {
	var finite []float64
	for _, w := range radius {
		if !math.IsNaN(w) && !math.IsInf(w, 0) {
			finite = append(finite, w)
		}
	}
	if len(finite) == 0 || len(positions) == 0 {
		return ""
	}
	return asciigraph.Plot(finite,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("w(z), z in [%g, %g]", positions[0], positions[len(positions)-1])),
	)
}
