package simulation

import (
	"fmt"
	"time"

	"github.com/papapumpkin/meridian/internal/bodies"
	"github.com/papapumpkin/meridian/internal/document"
	"github.com/papapumpkin/meridian/internal/environment"
	"github.com/papapumpkin/meridian/internal/integrator"
	"github.com/papapumpkin/meridian/internal/kernel"
	"github.com/papapumpkin/meridian/internal/orientation"
	"github.com/papapumpkin/meridian/internal/telemetry"
)

// Document paths read by the stages.
var (
	pathSimulation  = document.MustPath("simulation")
	pathBodies      = document.MustPath("bodies")
	pathPropagators = document.MustPath("propagators")
	pathIntegrator  = document.MustPath("integrator")
)

// Keys under "simulation".
const (
	keyStartEpoch             = "startEpoch"
	keyEndEpoch               = "endEpoch"
	keyGlobalFrameOrigin      = "globalFrameOrigin"
	keyGlobalFrameOrientation = "globalFrameOrientation"
	keySpiceKernels           = "spiceKernels"
	keyPreloadSpiceData       = "preloadSpiceData"
)

// epochLayouts are the accepted calendar forms for epochs, all read as UTC.
var epochLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

type stage struct {
	stage Stage
	run   func(*Context) error
}

func (s *Simulation) stages() []stage {
	return []stage{
		{StageGeneral, s.resolveGeneral},
		{StageSpice, s.resolveSpice},
		{StageBodies, s.resolveBodies},
		{StageAccelerations, s.resolveAccelerations},
		{StagePropagators, s.resolvePropagators},
		{StageIntegrator, s.resolveIntegrator},
		{StageReady, s.resolveOutput},
	}
}

func (s *Simulation) resolveGeneral(c *Context) error {
	var err error
	if c.StartEpoch, err = epoch(s.doc, pathSimulation.Key(keyStartEpoch)); err != nil {
		return err
	}
	if c.EndEpoch, err = epoch(s.doc, pathSimulation.Key(keyEndEpoch)); err != nil {
		return err
	}
	if !(c.StartEpoch < c.EndEpoch) {
		return document.Invalid(pathSimulation.Key(keyEndEpoch),
			"end epoch %v is not after start epoch %v", c.EndEpoch, c.StartEpoch)
	}
	if c.GlobalFrameOrigin, err = nonEmpty(s.doc, pathSimulation.Key(keyGlobalFrameOrigin)); err != nil {
		return err
	}
	if c.GlobalFrameOrientation, err = nonEmpty(s.doc, pathSimulation.Key(keyGlobalFrameOrientation)); err != nil {
		return err
	}
	return nil
}

func (s *Simulation) resolveSpice(c *Context) error {
	var err error
	if c.Kernels, err = document.Get(s.doc, pathSimulation.Key(keySpiceKernels), []string{}); err != nil {
		return err
	}
	if c.PreloadSpiceData, err = document.Get(s.doc, pathSimulation.Key(keyPreloadSpiceData), true); err != nil {
		return err
	}
	c.Window = kernel.WindowFor(c.PreloadSpiceData)

	if c.LoadedKernels, err = s.kernels.Reload(c.Kernels); err != nil {
		s.metrics.SetKernels(0)
		return err
	}
	s.metrics.SetKernels(len(c.LoadedKernels))
	for i, p := range c.LoadedKernels {
		s.emit(telemetry.Event{Kind: telemetry.KindKernelLoaded, PassID: c.PassID, Stage: StageSpice.String(),
			Data: map[string]any{"index": i, "path": p}})
	}
	return nil
}

func (s *Simulation) resolveBodies(c *Context) error {
	start, end := c.Window.Expand(c.StartEpoch, c.EndEpoch)
	m, err := bodies.Merge(s.doc, pathBodies, s.defaults, start, end)
	if err != nil {
		return err
	}
	bodies.EnforceFrame(m, c.GlobalFrameOrientation)
	if err := bodies.CheckFrames(m, c.GlobalFrameOrientation); err != nil {
		return err
	}
	b, err := environment.Create(m, s.queriers)
	if err != nil {
		return err
	}
	if err := environment.SetGlobalFrame(b, c.GlobalFrameOrigin, c.GlobalFrameOrientation); err != nil {
		return err
	}
	c.BodySettings = m
	c.Bodies = b
	return nil
}

// Acceleration models are assembled by the propagation engine.
func (s *Simulation) resolveAccelerations(*Context) error {
	return nil
}

// resolvePropagators only counts arcs; propagator settings themselves are
// interpreted by the propagation engine.
func (s *Simulation) resolvePropagators(c *Context) error {
	v, ok := document.Lookup(s.doc, pathPropagators)
	switch {
	case !ok || v.IsNull():
		c.Arcs = 0
	case v.Kind() == document.KindMap:
		c.Arcs = 1
	case v.Kind() == document.KindList:
		c.Arcs = v.Len()
	default:
		return &document.SettingError{
			Path: pathPropagators.String(),
			Want: "map or list",
			Got:  v.Kind().String(),
			Err:  document.ErrTypeMismatch,
		}
	}
	return nil
}

func (s *Simulation) resolveIntegrator(c *Context) error {
	settings, err := integrator.Resolve(s.doc, pathIntegrator, c.StartEpoch)
	if err != nil {
		return err
	}
	c.Integrator = settings
	return nil
}

// Output settings are consumed by the propagation engine.
func (s *Simulation) resolveOutput(*Context) error {
	return nil
}

// epoch reads seconds since J2000 either as a number or as a calendar
// string in one of epochLayouts.
func epoch(doc document.Value, path document.Path) (float64, error) {
	v, err := document.Get[document.Value](doc, path)
	if err != nil {
		return 0, err
	}
	if f, ok := v.AsNumber(); ok {
		return f, nil
	}
	str, ok := v.AsString()
	if !ok {
		return 0, &document.SettingError{
			Path: path.String(),
			Want: "number or calendar string",
			Got:  v.Kind().String(),
			Err:  document.ErrTypeMismatch,
		}
	}
	for _, layout := range epochLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return orientation.SecondsSinceJ2000(t), nil
		}
	}
	return 0, document.Invalid(path, "unrecognized calendar date %q", str)
}

func nonEmpty(doc document.Value, path document.Path) (string, error) {
	v, err := document.Get[string](doc, path)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", document.Invalid(path, "must not be empty")
	}
	return v, nil
}

// String summarizes c for logs and CLI output.
func (c *Context) String() string {
	return fmt.Sprintf("epochs [%g, %g] frame %s/%s, %d bodies, %d kernels, %d arcs, integrator %v",
		c.StartEpoch, c.EndEpoch, c.GlobalFrameOrigin, c.GlobalFrameOrientation,
		len(c.Bodies), len(c.LoadedKernels), c.Arcs, c.Integrator)
}
