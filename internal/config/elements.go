package config

import (
	"fmt"
	"math"
)

// UnmarshalTOML leaves an omitted Diameter as NaN; it is replaced by the
// default aperture once lengths are in base units.
func (l *LensParameters) UnmarshalTOML(data any) error {
	*l = LensParameters{Diameter: math.NaN()}
	fields := map[string]*float64{
		"Location": &l.Location,
		"Focal":    &l.Focal,
		"Diameter": &l.Diameter,
	}
	return decodeFloats(data, fields, "Location", "Focal")
}

// UnmarshalTOML defaults omitted surface radii to +inf (plane) and an
// omitted Index to 1.
func (l *ThickLensParameters) UnmarshalTOML(data any) error {
	*l = ThickLensParameters{
		R1:       math.Inf(1),
		R2:       math.Inf(1),
		Index:    1,
		Diameter: math.NaN(),
	}
	fields := map[string]*float64{
		"Location":  &l.Location,
		"R1":        &l.R1,
		"R2":        &l.R2,
		"Thickness": &l.Thickness,
		"Index":     &l.Index,
		"Diameter":  &l.Diameter,
	}
	return decodeFloats(data, fields, "Location", "Thickness")
}

func decodeFloats(data any, fields map[string]*float64, required ...string) error {
	table, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("expected a table, got %T", data)
	}
	for key, value := range table {
		field, known := fields[key]
		if !known {
			return fmt.Errorf("unknown key %q", key)
		}
		switch v := value.(type) {
		case float64:
			*field = v
		case int64:
			*field = float64(v)
		default:
			return fmt.Errorf("%s: expected a number, got %T", key, value)
		}
	}
	for _, key := range required {
		if _, some := table[key]; !some {
			return fmt.Errorf("missing %s", key)
		}
	}
	return nil
}
