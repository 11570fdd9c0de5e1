// Package simulation drives a resolution pass: it turns a configuration
// document into a fully wired Context by running a fixed sequence of
// stages (general settings, ephemeris kernels, bodies, accelerations,
// propagators, integrator, output). Every Reset replays all stages from
// scratch; the resulting Context is published only when every stage
// succeeded.
//
// A Simulation is not safe for concurrent use, and passes that share a
// kernel backend must be serialized by the caller.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papapumpkin/meridian/internal/bodies"
	"github.com/papapumpkin/meridian/internal/document"
	"github.com/papapumpkin/meridian/internal/environment"
	"github.com/papapumpkin/meridian/internal/integrator"
	"github.com/papapumpkin/meridian/internal/kernel"
	"github.com/papapumpkin/meridian/internal/metrics"
	"github.com/papapumpkin/meridian/internal/provenance"
	"github.com/papapumpkin/meridian/internal/telemetry"
)

// Sentinel errors returned by the orchestrator.
var (
	// ErrIncompleteConfiguration indicates Run was called before resolution
	// reached StageReady or without propagator settings.
	ErrIncompleteConfiguration = errors.New("incomplete configuration")
	// ErrUnsupportedConfiguration indicates a resolved configuration the
	// run step rejects, such as multi-arc propagation.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
	// ErrInvalidSetting is document.ErrInvalidSetting, re-exported for callers
	// that only import this package.
	ErrInvalidSetting = document.ErrInvalidSetting
)

// Stage is a position in the resolution state machine.
type Stage int

// Stages in resolution order.
const (
	StageUnloaded Stage = iota
	StageGeneral
	StageSpice
	StageBodies
	StageAccelerations
	StagePropagators
	StageIntegrator
	StageReady
)

var stageNames = [...]string{
	StageUnloaded:      "unloaded",
	StageGeneral:       "general",
	StageSpice:         "spice",
	StageBodies:        "bodies",
	StageAccelerations: "accelerations",
	StagePropagators:   "propagators",
	StageIntegrator:    "integrator",
	StageReady:         "ready",
}

// String returns the lower-case stage name.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Context is the product of one successful resolution pass. It is not
// modified after Reset publishes it.
type Context struct {
	PassID string

	StartEpoch             float64
	EndEpoch               float64
	GlobalFrameOrigin      string
	GlobalFrameOrientation string

	// Kernels lists the kernel paths as written in the document;
	// LoadedKernels holds the resolved paths handed to the backend.
	Kernels          []string
	LoadedKernels    []string
	PreloadSpiceData bool
	Window           kernel.Window

	BodySettings bodies.Map
	Bodies       environment.Bodies

	// Arcs is the number of propagation arcs: zero without propagator
	// settings, one for a single propagator map, len for a list.
	Arcs int

	Integrator *integrator.Settings
}

// Engine runs a propagation over a resolved Context.
type Engine interface {
	Propagate(ctx context.Context, c *Context) error
}

// Simulation owns a configuration document and the Context resolved from it.
type Simulation struct {
	doc    document.Value
	source string

	kernels  kernel.Manager
	defaults bodies.DefaultsProvider
	queriers environment.Options

	log       zerolog.Logger
	telemetry *telemetry.Emitter
	metrics   *metrics.Recorder
	history   *provenance.Store

	stage Stage
	ctx   *Context
}

// New creates an unresolved Simulation for doc. Call Reset to resolve it.
func New(doc document.Value, opts ...Option) *Simulation {
	s := &Simulation{
		doc:      doc,
		defaults: bodies.Builtin{},
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open loads the document at path (expanding includes), records path as the
// source, and resolves it.
func Open(path string, opts ...Option) (*Simulation, error) {
	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, err
	}
	s := New(doc, append([]Option{WithSource(path)}, opts...)...)
	if err := s.Reset(); err != nil {
		return s, err
	}
	return s, nil
}

// SetDocument replaces the document and drops any resolved Context.
func (s *Simulation) SetDocument(doc document.Value) {
	s.doc = doc
	s.stage = StageUnloaded
	s.ctx = nil
}

// OriginalSettings returns the document as given, before resolution.
func (s *Simulation) OriginalSettings() document.Value {
	return s.doc
}

// Stage reports how far the last pass got. It is StageReady after a
// successful Reset and StageUnloaded otherwise.
func (s *Simulation) Stage() Stage {
	return s.stage
}

// Context returns the resolved Context, or nil unless the stage is Ready.
func (s *Simulation) Context() *Context {
	if s.stage != StageReady {
		return nil
	}
	return s.ctx
}

// Source returns the path the document was loaded from, if any.
func (s *Simulation) Source() string {
	return s.source
}

// Reset runs a full resolution pass from StageUnloaded. On failure the
// Simulation is left Unloaded with no Context and the error carries the
// failing stage.
func (s *Simulation) Reset() error {
	s.stage = StageUnloaded
	s.ctx = nil

	c := &Context{PassID: telemetry.NewPassID()}
	log := s.log.With().Str("pass", c.PassID).Logger()
	s.emit(telemetry.Event{Kind: telemetry.KindPassStart, PassID: c.PassID, Data: map[string]string{"source": s.source}})
	log.Info().Str("source", s.source).Msg("resolution started")
	began := time.Now()

	for _, st := range s.stages() {
		t0 := time.Now()
		if err := st.run(c); err != nil {
			s.fail(c, st.stage, err)
			return fmt.Errorf("resolving %s: %w", st.stage, err)
		}
		d := time.Since(t0)
		s.metrics.ObserveStage(st.stage.String(), d)
		s.emit(telemetry.Event{Kind: telemetry.KindStageDone, PassID: c.PassID, Stage: st.stage.String(),
			Data: map[string]float64{"seconds": d.Seconds()}})
		log.Debug().Stringer("stage", st.stage).Dur("took", d).Msg("stage resolved")
	}

	s.ctx = c
	s.stage = StageReady
	s.metrics.PassDone(metrics.OutcomeReady)
	s.metrics.SetBodies(len(c.Bodies))
	s.emit(telemetry.Event{Kind: telemetry.KindPassDone, PassID: c.PassID,
		Data: map[string]int{"bodies": len(c.Bodies), "kernels": len(c.LoadedKernels), "arcs": c.Arcs}})
	s.record(c, "")
	log.Info().Int("bodies", len(c.Bodies)).Dur("took", time.Since(began)).Msg("resolution ready")
	return nil
}

func (s *Simulation) fail(c *Context, stage Stage, err error) {
	s.metrics.PassDone(metrics.OutcomeFailed)
	s.emit(telemetry.Event{Kind: telemetry.KindPassFailed, PassID: c.PassID, Stage: stage.String(),
		Data: map[string]string{"error": err.Error()}})
	s.record(c, err.Error())
	s.log.Error().Str("pass", c.PassID).Stringer("stage", stage).Err(err).Msg("resolution failed")
}

// Run hands the resolved Context to engine. It fails with
// ErrIncompleteConfiguration before StageReady or without propagator
// settings, and with ErrUnsupportedConfiguration for multi-arc setups.
func (s *Simulation) Run(ctx context.Context, engine Engine) error {
	c := s.Context()
	if c == nil {
		return fmt.Errorf("%w: resolution stage is %s", ErrIncompleteConfiguration, s.stage)
	}
	switch {
	case c.Arcs == 0:
		return fmt.Errorf("%w: no propagator settings", ErrIncompleteConfiguration)
	case c.Arcs > 1:
		return fmt.Errorf("%w: multi-arc propagation (%d arcs)", ErrUnsupportedConfiguration, c.Arcs)
	case engine == nil:
		return fmt.Errorf("%w: no propagation engine", ErrIncompleteConfiguration)
	}
	return engine.Propagate(ctx, c)
}

// Document re-emits the resolved settings. It fails with
// ErrIncompleteConfiguration unless the stage is Ready.
func (s *Simulation) Document() (document.Value, error) {
	c := s.Context()
	if c == nil {
		return document.Value{}, fmt.Errorf("%w: resolution stage is %s", ErrIncompleteConfiguration, s.stage)
	}
	return c.Document(), nil
}

func (s *Simulation) emit(evt telemetry.Event) {
	if s.telemetry == nil {
		return
	}
	evt.Timestamp = time.Now()
	if err := s.telemetry.Emit(evt); err != nil {
		s.log.Warn().Err(err).Str("kind", evt.Kind).Msg("telemetry event dropped")
	}
}

// record stores the pass in the history database. Failures are logged and
// never fail the pass.
func (s *Simulation) record(c *Context, failure string) {
	if s.history == nil {
		return
	}
	p := provenance.Pass{PassID: c.PassID, Source: s.source, Outcome: provenance.OutcomeReady}
	if failure != "" {
		p.Outcome = provenance.OutcomeFailed
		p.Error = failure
	} else {
		data, err := c.Document().MarshalJSON()
		if err != nil {
			s.log.Warn().Err(err).Msg("encoding resolved document for history")
			return
		}
		p.Document = string(data)
	}
	if _, err := s.history.Record(context.Background(), p); err != nil {
		s.log.Warn().Err(err).Msg("recording pass history")
	}
}
