package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/meridian/internal/metrics"
	"github.com/papapumpkin/meridian/internal/simulation"
	"github.com/papapumpkin/meridian/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-resolve a settings document whenever it or a sibling file changes",
	Long: `Resolves FILE, then watches its directory and runs a fresh resolution
pass after every change to a json, toml or yaml file there. Failed passes
are reported and watching continues.

With --metrics-addr, Prometheus metrics are served at /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	_ = viper.BindPFlag("metrics_addr", watchCmd.Flags().Lookup("metrics-addr"))
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	printer := ui.NewTo(cmd.ErrOrStderr())

	var extra []simulation.Option
	if addr := sess.cfg.MetricsAddr; addr != "" {
		reg := prometheus.NewRegistry()
		rec, err := metrics.New(reg)
		if err != nil {
			return err
		}
		extra = append(extra, simulation.WithMetrics(rec))
		srv := &http.Server{Addr: addr, Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				printer.Error(fmt.Sprintf("metrics server: %v", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		printer.Info("serving metrics on " + addr + "/metrics")
	}

	sim, err := sess.load(args, extra...)
	if err != nil {
		return err
	}
	printer.PassStarted(args[0])
	start := time.Now()
	if err := sim.Reset(); err != nil {
		printer.PassFailed(err)
	} else {
		printer.PassReady(sim.Context(), time.Since(start))
	}

	printer.Info("watching for changes, Ctrl-C to stop")
	return sim.Watch(ctx, func(file string, err error) {
		if err != nil {
			printer.PassFailed(fmt.Errorf("after change to %s: %w", file, err))
			return
		}
		printer.PassReady(sim.Context(), 0)
	})
}

func metricsMux(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	return mux
}
