package simulation

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papapumpkin/meridian/internal/document"
	"github.com/papapumpkin/meridian/internal/metrics"
	"github.com/papapumpkin/meridian/internal/provenance"
	"github.com/papapumpkin/meridian/internal/telemetry"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("before resolution", func(t *testing.T) {
		t.Parallel()
		s, _ := newSimulation(parse(t, baseDocument))
		if err := s.Run(context.Background(), &recordingEngine{}); !errors.Is(err, ErrIncompleteConfiguration) {
			t.Errorf("err = %v, want ErrIncompleteConfiguration", err)
		}
		if _, err := s.Document(); !errors.Is(err, ErrIncompleteConfiguration) {
			t.Errorf("Document err = %v, want ErrIncompleteConfiguration", err)
		}
	})

	tests := []struct {
		name        string
		propagators document.Value
		wantErr     error
	}{
		{"single arc", parse(t, `{"centralBodies": ["Earth"]}`), nil},
		{"single arc list", parse(t, `[{"centralBodies": ["Earth"]}]`), nil},
		{"multi arc", parse(t, `[{}, {}]`), ErrUnsupportedConfiguration},
		{"no propagators", document.Null(), ErrIncompleteConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newSimulation(parse(t, baseDocument).With("propagators", tt.propagators))
			if err := s.Reset(); err != nil {
				t.Fatalf("Reset: %v", err)
			}
			engine := &recordingEngine{}
			err := s.Run(context.Background(), engine)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && engine.got != s.Context() {
				t.Error("engine did not receive the resolved context")
			}
			if tt.wantErr != nil && engine.got != nil {
				t.Error("engine ran on a rejected configuration")
			}
		})
	}
}

func TestOriginalSettings(t *testing.T) {
	t.Parallel()
	doc := parse(t, baseDocument)
	s, _ := newSimulation(doc)
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if !s.OriginalSettings().Equal(doc) {
		t.Error("OriginalSettings changed by resolution")
	}
}

func TestReset_Instrumentation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	em, err := telemetry.NewEmitter(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	if err != nil {
		t.Fatal(err)
	}
	store, err := provenance.Open(context.Background(), filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	s, _ := newSimulation(parse(t, baseDocument),
		WithTelemetry(em), WithMetrics(rec), WithHistory(store), WithSource("main.json"))
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	s.SetDocument(withSimulation(t, keyStartEpoch, document.Null()))
	if err := s.Reset(); err == nil {
		t.Fatal("expected failure without startEpoch")
	}
	if err := em.Close(); err != nil {
		t.Fatal(err)
	}

	kinds := readKinds(t, filepath.Join(dir, "events.jsonl"))
	want := []string{telemetry.KindPassStart}
	want = append(want, telemetry.KindStageDone)
	want = append(want, telemetry.KindKernelLoaded, telemetry.KindKernelLoaded)
	for range 6 {
		want = append(want, telemetry.KindStageDone)
	}
	want = append(want, telemetry.KindPassDone, telemetry.KindPassStart, telemetry.KindPassFailed)
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("event kinds (-want +got):\n%s", diff)
	}

	const wantMetrics = `
# HELP meridian_resolution_passes_total Total number of resolution passes by outcome.
# TYPE meridian_resolution_passes_total counter
meridian_resolution_passes_total{outcome="failed"} 1
meridian_resolution_passes_total{outcome="ready"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(wantMetrics), "meridian_resolution_passes_total"); err != nil {
		t.Error(err)
	}

	latest, err := store.Latest(context.Background(), "main.json")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !strings.Contains(latest.Document, `"globalFrameOrigin":"SSB"`) {
		t.Errorf("recorded document = %s", latest.Document)
	}
	all, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Outcome != provenance.OutcomeFailed || !strings.Contains(all[0].Error, "simulation.startEpoch") {
		t.Errorf("history = %+v", all)
	}
}

func readKinds(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var kinds []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var evt telemetry.Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			t.Fatalf("bad event line %q: %v", sc.Text(), err)
		}
		kinds = append(kinds, evt.Kind)
	}
	return kinds
}
