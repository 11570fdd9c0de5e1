package document

import (
	"errors"
	"strings"
	"testing"
)

func sampleDoc(t *testing.T) Value {
	t.Helper()
	doc, err := Parse([]byte(`{
		"simulation": {
			"startEpoch": 1000,
			"globalFrameOrigin": "SSB",
			"spiceKernels": ["a.bsp", "b.tpc"],
			"preloadSpiceData": false
		},
		"bodies": {
			"Earth": {"useDefaultSettings": true, "mass": 5.97e24},
			"Sat": {"ephemeris": {"type": "constant", "state": [1, 2, 3, 4, 5, 6]}}
		},
		"propagators": [{"centralBodies": ["Earth"]}],
		"grid": [[1, 2], [3, 4]],
		"nothing": null
	}`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestGet_Present(t *testing.T) {
	t.Parallel()
	doc := sampleDoc(t)

	start, err := Get[float64](doc, MustPath("simulation.startEpoch"))
	if err != nil || start != 1000 {
		t.Errorf("startEpoch = %v, %v; want 1000", start, err)
	}
	origin, err := Get[string](doc, MustPath("simulation.globalFrameOrigin"))
	if err != nil || origin != "SSB" {
		t.Errorf("globalFrameOrigin = %q, %v; want SSB", origin, err)
	}
	kernels, err := Get[[]string](doc, MustPath("simulation.spiceKernels"))
	if err != nil || len(kernels) != 2 || kernels[1] != "b.tpc" {
		t.Errorf("spiceKernels = %v, %v", kernels, err)
	}
	preload, err := Get(doc, MustPath("simulation.preloadSpiceData"), true)
	if err != nil || preload {
		t.Errorf("preloadSpiceData = %v, %v; want false (document wins over default)", preload, err)
	}
	central, err := Get[string](doc, MustPath("propagators[0].centralBodies[0]"))
	if err != nil || central != "Earth" {
		t.Errorf("propagators[0].centralBodies[0] = %q, %v", central, err)
	}
	grid, err := Get[[][]float64](doc, MustPath("grid"))
	if err != nil || len(grid) != 2 || grid[1][0] != 3 {
		t.Errorf("grid = %v, %v", grid, err)
	}
	n, err := Get[int](doc, MustPath("simulation.startEpoch"))
	if err != nil || n != 1000 {
		t.Errorf("int startEpoch = %d, %v", n, err)
	}
	bodies, err := Get[map[string]Value](doc, MustPath("bodies"))
	if err != nil || len(bodies) != 2 {
		t.Errorf("bodies = %v, %v", bodies, err)
	}
}

func TestGet_DefaultWhenAbsent(t *testing.T) {
	t.Parallel()
	doc := sampleDoc(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing leaf", "simulation.endEpoch"},
		{"missing branch", "integrator.stepSize"},
		{"index out of range", "propagators[3]"},
		{"explicit null", "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Get(doc, MustPath(tt.path), 42.0)
			if err != nil {
				t.Fatalf("Get with default: %v", err)
			}
			if got != 42 {
				t.Errorf("got %v, want default 42", got)
			}
		})
	}
}

func TestGet_MissingRequired(t *testing.T) {
	t.Parallel()
	doc := sampleDoc(t)

	_, err := Get[float64](doc, MustPath("simulation.endEpoch"))
	if !errors.Is(err, ErrMissingSetting) {
		t.Fatalf("err = %v, want ErrMissingSetting", err)
	}
	var se *SettingError
	if !errors.As(err, &se) {
		t.Fatalf("err is %T, want *SettingError", err)
	}
	if se.Path != "simulation.endEpoch" {
		t.Errorf("Path = %q, want simulation.endEpoch", se.Path)
	}
}

func TestGet_TypeMismatch(t *testing.T) {
	t.Parallel()
	doc := sampleDoc(t)

	tests := []struct {
		name string
		run  func() error
		path string
	}{
		{"string as number", func() error {
			_, err := Get[float64](doc, MustPath("simulation.globalFrameOrigin"))
			return err
		}, "simulation.globalFrameOrigin"},
		{"number as bool", func() error {
			_, err := Get[bool](doc, MustPath("simulation.startEpoch"))
			return err
		}, "simulation.startEpoch"},
		{"map as list", func() error {
			_, err := Get[[]string](doc, MustPath("bodies"))
			return err
		}, "bodies"},
		{"oversized number as int", func() error {
			_, err := Get[int](doc, MustPath("bodies.Earth.mass"))
			return err
		}, ""},
		{"mixed list", func() error {
			_, err := Get[[]float64](doc, MustPath("propagators"))
			return err
		}, "propagators"},
		{"mismatch ignores default", func() error {
			_, err := Get(doc, MustPath("simulation.globalFrameOrigin"), 1.0)
			return err
		}, "simulation.globalFrameOrigin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.run()
			if !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("err = %v, want ErrTypeMismatch", err)
			}
			if tt.path != "" && !strings.HasPrefix(err.Error(), tt.path+":") {
				t.Errorf("error %q does not lead with path %q", err, tt.path)
			}
		})
	}
}

func TestHas(t *testing.T) {
	t.Parallel()
	doc := sampleDoc(t)
	if !Has(doc, MustPath("bodies.Sat.ephemeris.state")) {
		t.Error("expected bodies.Sat.ephemeris.state to exist")
	}
	if Has(doc, MustPath("nothing")) {
		t.Error("null should not count as present")
	}
	if Has(doc, MustPath("bodies.Moon")) {
		t.Error("bodies.Moon should be absent")
	}
}
