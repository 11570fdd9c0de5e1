package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDocument = `{
	"simulation": {
		"startEpoch": 0,
		"endEpoch": 86400,
		"globalFrameOrigin": "SSB",
		"globalFrameOrientation": "ECLIPJ2000"
	},
	"bodies": {
		"Earth": {"ephemeris": {"type": "constant", "constantState": [1.5e11, 0, 0, 0, 29780, 0]}},
		"Moon": {
			"ephemeris": {
				"type": "kepler",
				"frameOrigin": "Earth",
				"initialStateInKeplerianElements": [3.844e8, 0.0549, 0.09, 0, 0, 0],
				"epochOfInitialState": 0,
				"centralBodyGravitationalParameter": 3.986004418e14
			}
		}
	},
	"integrator": {"type": "rungeKutta4", "stepSize": 60}
}`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "main.json", testDocument)
	history := filepath.Join(dir, "history.db")

	out, errOut, err := execute(t, "resolve", "--history-db", history, "--format", "yaml", "--bodies", doc)
	if err != nil {
		t.Fatalf("resolve: %v\nstderr:\n%s", err, errOut)
	}
	for _, want := range []string{"globalFrameOrigin: SSB", "frameOrientation: ECLIPJ2000", "type: rungeKutta4"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(errOut, "✓ ready") || !strings.Contains(errOut, "kepler") {
		t.Errorf("stderr summary missing:\n%s", errOut)
	}

	out, _, err = execute(t, "history", "--history-db", history, "--show")
	if err != nil {
		t.Fatalf("history --show: %v", err)
	}
	if !strings.Contains(out, `"globalFrameOrigin":"SSB"`) {
		t.Errorf("history document = %s", out)
	}
}

func TestResolveCommand_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "main.json", testDocument)
	overlay := writeFile(t, dir, "override.yaml", "simulation:\n  endEpoch: 3600\n")

	out, errOut, err := execute(t, "resolve", "--history-db", "", "--format", "json", base, overlay)
	if err != nil {
		t.Fatalf("resolve: %v\nstderr:\n%s", err, errOut)
	}
	if !strings.Contains(out, `"endEpoch": 3600`) {
		t.Errorf("overlay not applied:\n%s", out)
	}
}

func TestValidateCommand_ReportsPath(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", testDocument)
	bad := writeFile(t, dir, "bad.json", strings.Replace(testDocument, `"startEpoch": 0,`, "", 1))

	_, errOut, err := execute(t, "validate", "--history-db", "", good, bad)
	if !errors.Is(err, errValidation) {
		t.Fatalf("err = %v, want errValidation", err)
	}
	if !strings.Contains(errOut, "✓ "+good) {
		t.Errorf("good document not reported:\n%s", errOut)
	}
	if !strings.Contains(errOut, "simulation.startEpoch") {
		t.Errorf("missing path not reported:\n%s", errOut)
	}
}

func TestOrientCommand(t *testing.T) {
	out, _, err := execute(t, "orient", "--time", "2000-01-01T12:00:00Z", "--convention", "iau-2000-b")
	if err != nil {
		t.Fatalf("orient: %v", err)
	}
	for _, want := range []string{"2000-01-01T12:00:00Z", "iau_2000_b", "GMST", "ERA"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, _, err := execute(t, "orient", "--convention", "iau_1976"); err == nil {
		t.Error("expected error for unknown convention")
	}
}

func TestKernelsCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "de430.bsp", "DAF/SPK \x00\x00binary")
	writeFile(t, dir, "naif0012.tls", "KPL/LSK\n\\begindata\n")
	doc := writeFile(t, dir, "main.json", `{"simulation": {"spiceKernels": ["naif0012.tls", "de430.bsp"]}}`)

	out, _, err := execute(t, "kernels", "--history-db", "", "--kernel-dir", dir, doc)
	if err != nil {
		t.Fatalf("kernels: %v", err)
	}
	if !strings.Contains(out, "KPL/LSK") || !strings.Contains(out, "DAF/SPK") {
		t.Errorf("kernel types missing:\n%s", out)
	}
	if strings.Index(out, "naif0012.tls") > strings.Index(out, "de430.bsp") {
		t.Errorf("kernels not listed in load order:\n%s", out)
	}
}

func TestPrintEvent(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		pass   string
		want   []string
		absent bool
	}{
		{
			name: "stage event",
			line: `{"ts":"2025-01-01T10:00:00Z","kind":"stage_done","pass":"p1","stage":"bodies","data":{"seconds":0.5}}`,
			want: []string{"[10:00:00]", "stage_done", "pass=p1", "stage=bodies", "seconds=0.5"},
		},
		{
			name:   "filtered pass",
			line:   `{"ts":"2025-01-01T10:00:00Z","kind":"pass_start","pass":"p2"}`,
			pass:   "p1",
			absent: true,
		},
		{
			name: "malformed line",
			line: `not json`,
			want: []string{"??? not json"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printEvent(&buf, tt.line, tt.pass)
			got := buf.String()
			if tt.absent {
				if got != "" {
					t.Errorf("expected no output, got %q", got)
				}
				return
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
		})
	}
}
