package config

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/facette/natsort"

	"github.com/wildstyl3r/gbeam/internal/constants"
	"github.com/wildstyl3r/gbeam/internal/utils"
)

type Config struct {
	OutputDir string
	Runs      map[string]RunParameters
	RunParameters

	InputUnits  []string
	OutputUnits []string
}

// LoadConfig decodes <configFileName>.toml. Run parameters are not yet
// resolved; see RunParameters.CheckAndUnify.
func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.DecodeFile(strings.TrimSuffix(configFileName, ".toml")+".toml", &config)
	if err != nil {
		return config, meta, err
	}
	return config, meta, config.checkUnits()
}

// DecodeConfig is LoadConfig for TOML text.
func DecodeConfig(data string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.Decode(data, &config)
	if err != nil {
		return config, meta, err
	}
	return config, meta, config.checkUnits()
}

// UnknownKeys is meta.Undecoded without the keys of lens tables. Those
// tables decode through UnmarshalTOML, which rejects unknown keys itself,
// and their keys are never marked as decoded.
func UnknownKeys(meta toml.MetaData) []toml.Key {
	var unknown []toml.Key
	for _, key := range meta.Undecoded() {
		if !isLensKey(key) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

// isLensKey matches keys below Lenses, ThickLenses and their per-run
// forms Runs.<name>.Lenses, Runs.<name>.ThickLenses.
func isLensKey(key toml.Key) bool {
	table := func(name string) bool { return name == "Lenses" || name == "ThickLenses" }
	switch {
	case len(key) >= 2 && table(key[0]):
		return true
	case len(key) >= 4 && key[0] == "Runs" && table(key[2]):
		return true
	}
	return false
}

func (c *Config) checkUnits() (err error) {
	if c.InputUnits, err = checkUnits(c.InputUnits); err != nil {
		return fmt.Errorf("input units: %w", err)
	}
	if len(c.OutputUnits) == 0 {
		c.OutputUnits = c.InputUnits
	}
	if c.OutputUnits, err = checkUnits(c.OutputUnits); err != nil {
		return fmt.Errorf("output units: %w", err)
	}
	if len(c.Runs) == 0 {
		return fmt.Errorf("no runs provided")
	}
	return nil
}

// RunNames lists the runs in natural order.
func (c *Config) RunNames() []string {
	names := make([]string, 0, len(c.Runs))
	for name := range c.Runs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return natsort.Compare(names[i], names[j])
	})
	return names
}

type LensParameters struct {
	Location float64 // [length]
	Focal    float64 // [length]
	Diameter float64 // [length]
}

type ThickLensParameters struct {
	Location  float64 // [length] entry surface
	R1, R2    float64 // [length]
	Thickness float64 // [length]
	Index     float64
	Diameter  float64 // [length]
}

type RunParameters struct {
	Start      float64 // [length]
	Waist      float64 // [length] waist radius
	Wavelength float64 // [length]
	Focus      float64 // [length] waist distance ahead of Start
	Distance   float64 // [length]
	Samples    int

	LensFile    string // "location focal" per line
	Lenses      []LensParameters
	ThickLenses []ThickLensParameters

	MakeDir bool

	_outputUnits []string
}

func (p *RunParameters) OutputUnits() []string {
	return p._outputUnits
}

var defaultValues = map[string]any{ // in base units
	"Start":      0.,
	"Wavelength": constants.DefaultWavelength,
	"Samples":    constants.DefaultSamples,
	"MakeDir":    false,
}

var requiredFields = []string{"Waist", "Focus", "Distance"}

var valueUnits = map[string][]UnitElement{
	"Start":      {{Class: Length, Power: 1}},
	"Waist":      {{Class: Length, Power: 1}},
	"Wavelength": {{Class: Length, Power: 1}},
	"Focus":      {{Class: Length, Power: 1}},
	"Distance":   {{Class: Length, Power: 1}},
}

var lengthUnit = []UnitElement{{Class: Length, Power: 1}}

func (p *RunParameters) toBase(parameterNames, units []string) {
	reflected := reflect.ValueOf(p).Elem()
	for _, name := range parameterNames {
		field := reflected.FieldByName(name)
		if classes, some := valueUnits[name]; some && field.CanFloat() {
			field.SetFloat(Convert(field.Float(), classes, units, true))
		}
	}
}

func (p *RunParameters) elementsToBase(units []string) {
	conv := func(v float64) float64 { return Convert(v, lengthUnit, units, true) }
	for i := range p.Lenses {
		l := &p.Lenses[i]
		l.Location, l.Focal, l.Diameter = conv(l.Location), conv(l.Focal), conv(l.Diameter)
		if math.IsNaN(l.Diameter) {
			l.Diameter = constants.DefaultApertureDiameter
		}
	}
	for i := range p.ThickLenses {
		l := &p.ThickLenses[i]
		l.Location, l.Thickness, l.Diameter = conv(l.Location), conv(l.Thickness), conv(l.Diameter)
		l.R1, l.R2 = conv(l.R1), conv(l.R2)
		if math.IsNaN(l.Diameter) {
			l.Diameter = constants.DefaultApertureDiameter
		}
	}
}

/*
field value priority:
1. run
2. global
3. default
*/

// CheckAndUnify fills p, decoded from [Runs.<runName>], with global values
// and defaults, reads its LensFile and converts lengths to base units.
func (p *RunParameters) CheckAndUnify(runName string, config *Config, meta *toml.MetaData) error {
	var discovered []string
	runReflect := reflect.ValueOf(p).Elem()
	globalReflect := reflect.ValueOf(&config.RunParameters).Elem()
	runType := runReflect.Type()
	for i := range runType.NumField() {
		fieldName := runType.Field(i).Name
		if !runType.Field(i).IsExported() {
			continue
		}
		if meta.IsDefined("Runs", runName, fieldName) {
			discovered = append(discovered, fieldName)
		} else if meta.IsDefined(fieldName) {
			runReflect.Field(i).Set(globalReflect.Field(i))
			discovered = append(discovered, fieldName)
		}
	}

	var missing []string
	for _, field := range requiredFields {
		if !slices.Contains(discovered, field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("run %s: required fields not found: %v", runName, missing)
	}

	// element slices are shared with the global config until copied
	p.Lenses = slices.Clone(p.Lenses)
	p.ThickLenses = slices.Clone(p.ThickLenses)
	if p.LensFile != "" {
		pairs, err := utils.ReadFloatPairs(p.LensFile)
		if err != nil {
			return fmt.Errorf("run %s: lens file: %w", runName, err)
		}
		for _, pair := range pairs {
			p.Lenses = append(p.Lenses, LensParameters{Location: pair[0], Focal: pair[1], Diameter: math.NaN()})
		}
	}

	p.toBase(discovered, config.InputUnits)
	p.elementsToBase(config.InputUnits)

	for fieldName, value := range defaultValues {
		if !slices.Contains(discovered, fieldName) {
			runReflect.FieldByName(fieldName).Set(reflect.ValueOf(value))
		}
	}
	p._outputUnits = config.OutputUnits
	return nil
}
