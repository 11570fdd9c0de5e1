package simulation

import (
	"github.com/rs/zerolog"

	"github.com/papapumpkin/meridian/internal/bodies"
	"github.com/papapumpkin/meridian/internal/environment"
	"github.com/papapumpkin/meridian/internal/kernel"
	"github.com/papapumpkin/meridian/internal/metrics"
	"github.com/papapumpkin/meridian/internal/provenance"
	"github.com/papapumpkin/meridian/internal/telemetry"
)

// Option configures a Simulation.
type Option func(*Simulation)

// WithBackend sets the ephemeris kernel backend cleared and reloaded on
// every pass. Without one, any non-empty spiceKernels list fails.
func WithBackend(b kernel.Backend) Option {
	return func(s *Simulation) { s.kernels.Backend = b }
}

// WithKernelDir resolves relative kernel paths against dir.
func WithKernelDir(dir string) Option {
	return func(s *Simulation) { s.kernels.Dir = dir }
}

// WithDefaults replaces the built-in body defaults.
func WithDefaults(p bodies.DefaultsProvider) Option {
	return func(s *Simulation) { s.defaults = p }
}

// WithQueriers sets the kernel-backed state and orientation services used
// by spice ephemeris and rotation models.
func WithQueriers(states environment.StateQuerier, orientations environment.OrientationQuerier) Option {
	return func(s *Simulation) {
		s.queriers = environment.Options{States: states, Orientations: orientations}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithTelemetry streams pass events to e.
func WithTelemetry(e *telemetry.Emitter) Option {
	return func(s *Simulation) { s.telemetry = e }
}

// WithMetrics records pass metrics in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Simulation) { s.metrics = r }
}

// WithHistory records every pass in st.
func WithHistory(st *provenance.Store) Option {
	return func(s *Simulation) { s.history = st }
}

// WithSource records where the document came from. Watch reloads it from
// this path.
func WithSource(path string) Option {
	return func(s *Simulation) { s.source = path }
}
