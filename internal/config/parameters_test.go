package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/wildstyl3r/gbeam/internal/constants"
)

const twoRuns = `
OutputDir = "out"
InputUnits = ["mm"]
Wavelength = 0.001064
Distance = 200

[[Lenses]]
Location = 100
Focal = 50

[Runs.run10]
Waist = 0.05
Focus = 50

[Runs.run2]
Waist = 0.05
Focus = 50
Samples = 11
Wavelength = 0.000633

  [[Runs.run2.Lenses]]
  Location = 100
  Focal = 50
  Diameter = 25

  [[Runs.run2.ThickLenses]]
  Location = 120
  Thickness = 5
  R1 = 100
  Index = 1.5
`

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func unify(t *testing.T, cfg *Config, name string) RunParameters {
	t.Helper()
	_, meta, err := DecodeConfig(twoRuns)
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.Runs[name]
	if err := p.CheckAndUnify(name, cfg, &meta); err != nil {
		t.Fatalf("CheckAndUnify(%s) error = %v", name, err)
	}
	return p
}

func TestDecodeConfig(t *testing.T) {
	cfg, _, err := DecodeConfig(twoRuns)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if got := cfg.RunNames(); !slices.Equal(got, []string{"run2", "run10"}) {
		t.Errorf("RunNames() = %v", got)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if !slices.Equal(cfg.OutputUnits, []string{"mm"}) {
		t.Errorf("OutputUnits = %v, want the input units", cfg.OutputUnits)
	}
}

func TestUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"fixture", twoRuns, nil},
		{"run lenses", `
[Runs.a]
Waist = 1
[[Runs.a.Lenses]]
Location = 1
Focal = 2
[[Runs.a.ThickLenses]]
Location = 5
Thickness = 1
`, nil},
		{"typos", `
Wavelenght = 1
[Runs.a]
Waist = 1
Focal = 2
[[Lenses]]
Location = 1
Focal = 2
`, []string{"Wavelenght", "Runs.a.Focal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, meta, err := DecodeConfig(tt.data)
			if err != nil {
				t.Fatalf("DecodeConfig() error = %v", err)
			}
			var got []string
			for _, key := range UnknownKeys(meta) {
				got = append(got, key.String())
			}
			slices.Sort(got)
			want := slices.Sorted(slices.Values(tt.want))
			if !slices.Equal(got, want) {
				t.Errorf("UnknownKeys() = %v, want %v", got, want)
			}
		})
	}
}

func TestCheckAndUnify(t *testing.T) {
	cfg, _, _ := DecodeConfig(twoRuns)

	p := unify(t, &cfg, "run2")
	tests := []struct {
		name      string
		got, want float64
	}{
		{"Start default", p.Start, 0},
		{"Waist", p.Waist, 50},
		{"Focus", p.Focus, 50e3},
		{"Distance from globals", p.Distance, 200e3},
		{"Wavelength from run", p.Wavelength, 0.633},
		{"lens location", p.Lenses[0].Location, 100e3},
		{"lens focal", p.Lenses[0].Focal, 50e3},
		{"lens diameter", p.Lenses[0].Diameter, 25e3},
		{"thick location", p.ThickLenses[0].Location, 120e3},
		{"thick thickness", p.ThickLenses[0].Thickness, 5e3},
		{"thick R1", p.ThickLenses[0].R1, 100e3},
		{"thick index", p.ThickLenses[0].Index, 1.5},
		{"thick default diameter", p.ThickLenses[0].Diameter, constants.DefaultApertureDiameter},
	}
	for _, tt := range tests {
		if !closeTo(tt.got, tt.want) {
			t.Errorf("%s = %g, want %g", tt.name, tt.got, tt.want)
		}
	}
	if p.Samples != 11 {
		t.Errorf("Samples = %d, want 11", p.Samples)
	}
	if !math.IsInf(p.ThickLenses[0].R2, 1) {
		t.Errorf("omitted R2 = %g, want +Inf", p.ThickLenses[0].R2)
	}
	if !slices.Equal(p.OutputUnits(), []string{"mm"}) {
		t.Errorf("OutputUnits() = %v", p.OutputUnits())
	}

	q := unify(t, &cfg, "run10")
	if q.Samples != constants.DefaultSamples {
		t.Errorf("default Samples = %d", q.Samples)
	}
	if !closeTo(q.Wavelength, constants.DefaultWavelength) {
		t.Errorf("global Wavelength = %g, want %g", q.Wavelength, constants.DefaultWavelength)
	}
	if len(q.Lenses) != 1 || !closeTo(q.Lenses[0].Location, 100e3) || q.Lenses[0].Diameter != constants.DefaultApertureDiameter {
		t.Errorf("inherited lenses = %+v", q.Lenses)
	}
	if cfg.Lenses[0].Location != 100 {
		t.Errorf("global lens changed to %g", cfg.Lenses[0].Location)
	}
}

func TestCheckAndUnifyMissing(t *testing.T) {
	cfg, meta, err := DecodeConfig(`
[Runs.a]
Waist = 50
`)
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.Runs["a"]
	err = p.CheckAndUnify("a", &cfg, &meta)
	if err == nil || !strings.Contains(err.Error(), "Focus") || !strings.Contains(err.Error(), "Distance") {
		t.Errorf("CheckAndUnify() error = %v, want missing Focus and Distance", err)
	}
}

func TestLensFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lenses.txt")
	if err := os.WriteFile(path, []byte("# location focal\n100000 50000\n\n150000 50000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, meta, err := DecodeConfig(fmt.Sprintf(`
[Runs.file]
Waist = 50
Focus = 50000
Distance = 200000
LensFile = %q
`, path))
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.Runs["file"]
	if err := p.CheckAndUnify("file", &cfg, &meta); err != nil {
		t.Fatalf("CheckAndUnify() error = %v", err)
	}
	if len(p.Lenses) != 2 || p.Lenses[1].Location != 150000 || p.Lenses[1].Diameter != constants.DefaultApertureDiameter {
		t.Errorf("Lenses = %+v", p.Lenses)
	}

	p = cfg.Runs["file"]
	p.LensFile = filepath.Join(t.TempDir(), "missing.txt")
	if err := p.CheckAndUnify("file", &cfg, &meta); err == nil {
		t.Errorf("missing lens file accepted")
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no runs", `OutputDir = "x"`},
		{"unknown unit", "InputUnits = [\"inch\"]\n[Runs.a]\nWaist = 1"},
		{"unit conflict", "InputUnits = [\"mm\", \"cm\"]\n[Runs.a]\nWaist = 1"},
		{"lens without focal", "[Runs.a]\n[[Runs.a.Lenses]]\nLocation = 1"},
		{"unknown lens key", "[Runs.a]\n[[Runs.a.Lenses]]\nLocation = 1\nFocal = 2\nColor = 3"},
		{"lens value type", "[Runs.a]\n[[Runs.a.Lenses]]\nLocation = \"near\"\nFocal = 2"},
		{"thick lens without thickness", "[Runs.a]\n[[Runs.a.ThickLenses]]\nLocation = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeConfig(tt.data); err == nil {
				t.Errorf("DecodeConfig() accepted %q", tt.data)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	name := filepath.Join(t.TempDir(), "beam")
	if err := os.WriteFile(name+".toml", []byte(twoRuns), 0600); err != nil {
		t.Fatal(err)
	}
	for _, arg := range []string{name, name + ".toml"} {
		cfg, _, err := LoadConfig(arg)
		if err != nil {
			t.Fatalf("LoadConfig(%q) error = %v", arg, err)
		}
		if len(cfg.Runs) != 2 {
			t.Errorf("LoadConfig(%q) found %d runs", arg, len(cfg.Runs))
		}
	}
	if _, _, err := LoadConfig(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Errorf("LoadConfig() of a missing file succeeded")
	}
}
