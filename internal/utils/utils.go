package utils

import (
	"math"
	"slices"

	"golang.org/x/exp/constraints"
)

// NanArgmin returns the index of the smallest non-NaN value, or -1 when
// there is none.
func NanArgmin[T constraints.Float](arr []T) (argmin int) {
	argmin = -1
	for i := range arr {
		if math.IsNaN(float64(arr[i])) {
			continue
		}
		if argmin < 0 || arr[i] < arr[argmin] {
			argmin = i
		}
	}
	return
}

// CountNaN counts NaN entries.
func CountNaN[T constraints.Float](arr []T) (n int) {
	for i := range arr {
		if math.IsNaN(float64(arr[i])) {
			n++
		}
	}
	return
}

func IntAbs(a int) int {
	if a < 0 {
		return -a
	} else {
		return a
	}
}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}
