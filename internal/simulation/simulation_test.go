package simulation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/papapumpkin/meridian/internal/bodies"
	"github.com/papapumpkin/meridian/internal/document"
	"github.com/papapumpkin/meridian/internal/environment"
	"github.com/papapumpkin/meridian/internal/kernel"
)

const baseDocument = `{
	"simulation": {
		"startEpoch": 1000,
		"endEpoch": 5000,
		"globalFrameOrigin": "SSB",
		"globalFrameOrientation": "ECLIPJ2000",
		"spiceKernels": ["naif0012.tls", "de430.bsp"]
	},
	"bodies": {
		"Sun": {"useDefaultSettings": true, "mass": 1.989e30},
		"Earth": {
			"ephemeris": {"type": "constant", "constantState": [1.5e11, 0, 0, 0, 29780, 0]},
			"gravityField": {"type": "pointMass", "gravitationalParameter": 3.986004418e14}
		},
		"Moon": {
			"ephemeris": {
				"type": "kepler",
				"frameOrigin": "Earth",
				"frameOrientation": "J2000",
				"initialStateInKeplerianElements": [3.844e8, 0.0549, 0.09, 0, 0, 0],
				"epochOfInitialState": 0,
				"centralBodyGravitationalParameter": 3.986004418e14
			}
		}
	},
	"propagators": {"centralBodies": ["Earth"]},
	"integrator": {"type": "rungeKutta4", "stepSize": 10}
}`

// fakeBackend records the active kernel set and rejects any path whose
// base name starts with "bad".
type fakeBackend struct {
	loaded []string
	clears int
}

func (b *fakeBackend) ClearKernels() error {
	b.clears++
	b.loaded = nil
	return nil
}

func (b *fakeBackend) LoadKernel(path string) error {
	if strings.HasPrefix(filepath.Base(path), "bad") {
		return os.ErrNotExist
	}
	b.loaded = append(b.loaded, path)
	return nil
}

// fakeService answers every kernel query with fixed values.
type fakeService struct{}

func (fakeService) State(target, observer, orientation string, t float64) ([6]float64, error) {
	return [6]float64{t, 0, 0, 1, 0, 0}, nil
}

func (fakeService) RotationAngle(from, to string, t float64) (float64, error) {
	return 0.25, nil
}

type recordingEngine struct {
	got *Context
}

func (e *recordingEngine) Propagate(_ context.Context, c *Context) error {
	e.got = c
	return nil
}

func parse(t *testing.T, src string) document.Value {
	t.Helper()
	doc, err := document.Parse([]byte(src), document.FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

// withSimulation patches doc with a value under "simulation".
func withSimulation(t *testing.T, key string, v document.Value) document.Value {
	t.Helper()
	doc := parse(t, baseDocument)
	sim, _ := doc.Field("simulation")
	return doc.With("simulation", sim.With(key, v))
}

func newSimulation(doc document.Value, opts ...Option) (*Simulation, *fakeBackend) {
	b := &fakeBackend{}
	base := []Option{WithBackend(b), WithKernelDir("/kernels"), WithQueriers(fakeService{}, fakeService{})}
	return New(doc, append(base, opts...)...), b
}

func TestReset_Ready(t *testing.T) {
	t.Parallel()
	s, backend := newSimulation(parse(t, baseDocument))
	if s.Stage() != StageUnloaded || s.Context() != nil {
		t.Fatalf("new simulation: stage %v, context %v", s.Stage(), s.Context())
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Stage() != StageReady {
		t.Fatalf("stage = %v, want ready", s.Stage())
	}
	c := s.Context()

	if lo, hi := c.Window.Expand(c.StartEpoch, c.EndEpoch); lo != 700 || hi != 5300 {
		t.Errorf("window = (%v, %v), want (700, 5300)", lo, hi)
	}
	wantKernels := []string{"/kernels/naif0012.tls", "/kernels/de430.bsp"}
	if diff := cmp.Diff(wantKernels, c.LoadedKernels); diff != "" {
		t.Errorf("loaded kernels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantKernels, backend.loaded); diff != "" {
		t.Errorf("backend kernels (-want +got):\n%s", diff)
	}
	if c.Arcs != 1 {
		t.Errorf("arcs = %d, want 1", c.Arcs)
	}
	if c.Integrator == nil || c.Integrator.InitialTime != 1000 || c.Integrator.InitialStepSize != 10 {
		t.Errorf("integrator = %+v", c.Integrator)
	}

	sun := c.BodySettings["Sun"]
	want := bodies.InterpolatedSpiceEphemeris{InitialTime: 700, FinalTime: 5300, TimeStep: bodies.DefaultInterpolationStep}
	if diff := cmp.Diff(bodies.EphemerisModel(want), sun.Ephemeris.Model); diff != "" {
		t.Errorf("Sun ephemeris (-want +got):\n%s", diff)
	}
	if sun.Mass == nil || *sun.Mass != 1.989e30 {
		t.Errorf("Sun mass override lost: %v", sun.Mass)
	}

	for name, bs := range c.BodySettings {
		if bs.Ephemeris != nil && bs.Ephemeris.FrameOrientation != "ECLIPJ2000" {
			t.Errorf("%s ephemeris orientation = %s", name, bs.Ephemeris.FrameOrientation)
		}
		if bs.Rotation != nil && bs.Rotation.OriginalFrame != "ECLIPJ2000" {
			t.Errorf("%s rotation original frame = %s", name, bs.Rotation.OriginalFrame)
		}
	}
	if got := c.Bodies.Names(); !cmp.Equal(got, []string{"Earth", "Moon", "Sun"}) {
		t.Errorf("bodies = %v", got)
	}
	if _, ok := c.Bodies["Moon"].Ephemeris.(*environment.TranslatedEphemeris); !ok {
		t.Errorf("Moon ephemeris is %T, want translated to the global origin", c.Bodies["Moon"].Ephemeris)
	}
	moon, err := c.Bodies["Moon"].Ephemeris.State(0)
	if err != nil {
		t.Fatalf("Moon state: %v", err)
	}
	if moon[0] < 1.5e11 {
		t.Errorf("Moon state %v not offset by Earth", moon)
	}
}

func TestReset_Idempotent(t *testing.T) {
	t.Parallel()
	doc := parse(t, baseDocument)
	first, _ := newSimulation(doc)
	second, _ := newSimulation(doc)
	if err := first.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := second.Reset(); err != nil {
		t.Fatal(err)
	}
	opts := cmp.Options{
		cmpopts.IgnoreFields(Context{}, "PassID", "Bodies"),
		cmpopts.EquateNaNs(),
	}
	if diff := cmp.Diff(first.Context(), second.Context(), opts); diff != "" {
		t.Errorf("contexts differ (-first +second):\n%s", diff)
	}
	if first.Context().PassID == second.Context().PassID {
		t.Error("passes share an ID")
	}

	// Re-resolving the emitted document reproduces it.
	emitted := first.Context().Document()
	again, _ := newSimulation(emitted)
	if err := again.Reset(); err != nil {
		t.Fatalf("Reset(Document()): %v", err)
	}
	if !again.Context().Document().Equal(emitted) {
		t.Errorf("document round trip changed settings:\n%s\n%s", jsonOf(t, emitted), jsonOf(t, again.Context().Document()))
	}
	if diff := cmp.Diff(first.Context().BodySettings, again.Context().BodySettings); diff != "" {
		t.Errorf("body settings after round trip (-first +again):\n%s", diff)
	}

	// Resetting the same simulation again is also idempotent.
	before := first.Context()
	if err := first.Reset(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, first.Context(), opts); diff != "" {
		t.Errorf("second pass differs (-before +after):\n%s", diff)
	}
}

func jsonOf(t *testing.T, v document.Value) string {
	t.Helper()
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestReset_NoPreload(t *testing.T) {
	t.Parallel()
	s, _ := newSimulation(withSimulation(t, keyPreloadSpiceData, document.Bool(false)))
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	c := s.Context()
	if c.Window.Defined() {
		t.Errorf("window %+v should be undefined", c.Window)
	}
	if _, ok := c.BodySettings["Sun"].Ephemeris.Model.(bodies.DirectSpiceEphemeris); !ok {
		t.Errorf("Sun ephemeris = %T, want direct spice", c.BodySettings["Sun"].Ephemeris.Model)
	}
}

func TestReset_CalendarEpochs(t *testing.T) {
	t.Parallel()
	doc := withSimulation(t, keyStartEpoch, document.String("2000-01-01T12:00:00Z"))
	sim, _ := doc.Field("simulation")
	doc = doc.With("simulation", sim.With(keyEndEpoch, document.String("2000-01-01 12:16:40")))

	s, _ := newSimulation(doc)
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if c := s.Context(); c.StartEpoch != 0 || c.EndEpoch != 1000 {
		t.Errorf("epochs = [%v, %v], want [0, 1000]", c.StartEpoch, c.EndEpoch)
	}
}

func TestReset_Errors(t *testing.T) {
	t.Parallel()

	drop := func(key string) func(*testing.T) document.Value {
		return func(t *testing.T) document.Value {
			doc := parse(t, baseDocument)
			sim, _ := doc.Field("simulation")
			return doc.With("simulation", sim.With(key, document.Null()))
		}
	}
	set := func(key string, v document.Value) func(*testing.T) document.Value {
		return func(t *testing.T) document.Value { return withSimulation(t, key, v) }
	}
	top := func(key string, v document.Value) func(*testing.T) document.Value {
		return func(t *testing.T) document.Value { return parse(t, baseDocument).With(key, v) }
	}

	tests := []struct {
		name     string
		doc      func(*testing.T) document.Value
		wantErr  error
		wantPath string
	}{
		{"missing start epoch", drop(keyStartEpoch), document.ErrMissingSetting, "simulation.startEpoch"},
		{"missing frame origin", drop(keyGlobalFrameOrigin), document.ErrMissingSetting, "simulation.globalFrameOrigin"},
		{"empty orientation", set(keyGlobalFrameOrientation, document.String("")), document.ErrInvalidSetting, "simulation.globalFrameOrientation"},
		{"epoch as bool", set(keyEndEpoch, document.Bool(true)), document.ErrTypeMismatch, "simulation.endEpoch"},
		{"bad calendar", set(keyEndEpoch, document.String("soon")), document.ErrInvalidSetting, "simulation.endEpoch"},
		{"end before start", set(keyEndEpoch, document.Number(10)), ErrInvalidSetting, "simulation.endEpoch"},
		{"preload as string", set(keyPreloadSpiceData, document.String("yes")), document.ErrTypeMismatch, "simulation.preloadSpiceData"},
		{"missing bodies", top("bodies", document.Null()), document.ErrMissingSetting, "bodies"},
		{"propagators scalar", top("propagators", document.Number(3)), document.ErrTypeMismatch, "propagators"},
		{"missing integrator", top("integrator", document.Null()), document.ErrMissingSetting, "integrator.type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newSimulation(tt.doc(t))
			err := s.Reset()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var se *document.SettingError
			if !errors.As(err, &se) || se.Path != tt.wantPath {
				t.Errorf("err = %v, want path %s", err, tt.wantPath)
			}
			if s.Stage() != StageUnloaded || s.Context() != nil {
				t.Errorf("failed pass left stage %v, context %v", s.Stage(), s.Context())
			}
		})
	}
}

func TestReset_MissingQuerier(t *testing.T) {
	t.Parallel()
	s := New(parse(t, baseDocument), WithBackend(&fakeBackend{}))
	if err := s.Reset(); !errors.Is(err, environment.ErrMissingQuerier) {
		t.Fatalf("err = %v, want ErrMissingQuerier", err)
	}
}

func TestReset_KernelFailureLeavesNoContext(t *testing.T) {
	t.Parallel()
	s, backend := newSimulation(parse(t, baseDocument))
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	bad := document.List(document.String("naif0012.tls"), document.String("bad.bsp"))
	s.SetDocument(withSimulation(t, keySpiceKernels, bad))
	if s.Stage() != StageUnloaded || s.Context() != nil {
		t.Fatal("SetDocument kept the previous context")
	}
	err := s.Reset()
	if !errors.Is(err, kernel.ErrKernelLoad) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want kernel load failure", err)
	}
	var le *kernel.LoadError
	if !errors.As(err, &le) || le.Index != 1 {
		t.Errorf("err = %v, want LoadError at index 1", err)
	}
	if len(backend.loaded) != 0 {
		t.Errorf("backend kept a partial kernel set: %v", backend.loaded)
	}
	if s.Context() != nil || s.Stage() != StageUnloaded {
		t.Errorf("failed pass exposed stage %v", s.Stage())
	}
}
