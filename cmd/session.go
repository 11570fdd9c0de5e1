package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/meridian/internal/config"
	"github.com/papapumpkin/meridian/internal/document"
	"github.com/papapumpkin/meridian/internal/logging"
	"github.com/papapumpkin/meridian/internal/provenance"
	"github.com/papapumpkin/meridian/internal/simulation"
	"github.com/papapumpkin/meridian/internal/spice"
	"github.com/papapumpkin/meridian/internal/telemetry"
)

// session bundles the collaborators shared by commands that resolve
// documents. Close releases them.
type session struct {
	cfg     config.Config
	pool    *spice.Pool
	history *provenance.Store
	opts    []simulation.Option
	closers []func() error
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}
	pool, err := spice.NewPool()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, pool: pool}
	s.opts = []simulation.Option{
		simulation.WithBackend(pool),
		simulation.WithKernelDir(cfg.KernelDir),
		simulation.WithLogger(logging.New("meridian", level, cmd.ErrOrStderr())),
	}

	if cfg.TelemetryPath != "" {
		em, err := telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return nil, err
		}
		s.opts = append(s.opts, simulation.WithTelemetry(em))
		s.closers = append(s.closers, em.Close)
	}
	if cfg.HistoryDB != "" {
		store, err := provenance.Open(commandContext(cmd), cfg.HistoryDB)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.history = store
		s.opts = append(s.opts, simulation.WithHistory(store))
		s.closers = append(s.closers, store.Close)
	}
	return s, nil
}

// load reads and merges paths in order and returns an unresolved
// Simulation. A single path becomes the Simulation's source.
func (s *session) load(paths []string, extra ...simulation.Option) (*simulation.Simulation, error) {
	doc, err := document.LoadFiles(paths...)
	if err != nil {
		return nil, err
	}
	opts := append([]simulation.Option{}, s.opts...)
	if len(paths) == 1 {
		opts = append(opts, simulation.WithSource(paths[0]))
	}
	return simulation.New(doc, append(opts, extra...)...), nil
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	s.closers = nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
