package config

import (
	"fmt"

	"github.com/wildstyl3r/gbeam/internal/utils"
)

var unitToBase = map[string]float64{
	"nm": 1e-3, // [um]
	"um": 1,    // [um]
	"mm": 1e3,  // [um]
	"cm": 1e4,  // [um]
	"m":  1e6,  // [um]
}

type UnitClass int

const (
	Length UnitClass = iota
)

var unitsInClass = map[UnitClass][]string{
	Length: {"nm", "um", "mm", "cm", "m"},
}

var classesOfUnits = map[string]UnitClass{
	"nm": Length,
	"um": Length,
	"mm": Length,
	"cm": Length,
	"m":  Length,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

var defaultUnits = []string{"um"}

// checkUnits rejects unknown units and two units of one class, and
// appends a default unit for every class not mentioned.
func checkUnits(units []string) ([]string, error) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			return nil, fmt.Errorf("unknown unit %q", unit)
		}
		if _, some := classes[class]; some {
			return nil, fmt.Errorf("unit conflict: %q", unit)
		}
		classes[class] = struct{}{}
	}
	extended := append([]string(nil), units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return extended, nil
}

// Convert rescales v between the given units and the base units
// (micrometres). direct converts into base units.
func Convert(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		absPower := utils.IntAbs(uc.Power)
		if direct == (uc.Power > 0) {
			for range absPower {
				v *= unitToBase[*unit]
			}
		} else {
			for range absPower {
				v /= unitToBase[*unit]
			}
		}
	}
	return v
}

// LengthUnit names the length unit in effect for units.
func LengthUnit(units []string) string {
	if unit := utils.Intersect(unitsInClass[Length], units); unit != nil {
		return *unit
	}
	return defaultUnits[0]
}
