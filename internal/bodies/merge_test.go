package bodies

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/papapumpkin/meridian/internal/document"
)

// recordingProvider wraps Builtin and remembers what it was asked for.
type recordingProvider struct {
	calls      int
	names      []string
	start, end float64
}

func (p *recordingProvider) DefaultSettings(names []string, start, end float64) (Map, error) {
	p.calls++
	p.names = append([]string(nil), names...)
	p.start, p.end = start, end
	return Builtin{}.DefaultSettings(names, start, end)
}

const mixedBodies = `{"bodies": {
	"Earth": {"useDefaultSettings": true, "mass": 5.97e24},
	"Moon": {"useDefaultSettings": true, "ephemeris": {"frameOrigin": "Earth"}},
	"Probe": {"useDefaultSettings": false,
		"ephemeris": {"type": "constant", "frameOrigin": "Earth", "frameOrientation": "J2000",
			"constantState": [7000000, 0, 0, 0, 7500, 0]}}
}}`

func TestMerge_PartitionsByUseDefault(t *testing.T) {
	t.Parallel()
	doc := mustDoc(t, mixedBodies)
	p := &recordingProvider{}

	m, err := Merge(doc, document.MustPath("bodies"), p, 700, 5300)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if p.calls != 1 || strings.Join(p.names, ",") != "Earth,Moon" {
		t.Errorf("provider asked for %v in %d calls, want [Earth Moon] once", p.names, p.calls)
	}
	if p.start != 700 || p.end != 5300 {
		t.Errorf("provider interval = (%v, %v), want (700, 5300)", p.start, p.end)
	}
	if got := m.Names(); strings.Join(got, ",") != "Earth,Moon,Probe" {
		t.Fatalf("names = %v", got)
	}

	if m["Earth"].Mass == nil || *m["Earth"].Mass != 5.97e24 {
		t.Errorf("document mass should win over defaults")
	}
	if _, ok := m["Earth"].Gravity.Model.(PointMassGravity); !ok {
		t.Errorf("Earth gravity = %T, want default point mass", m["Earth"].Gravity.Model)
	}
	if m["Moon"].Ephemeris.FrameOrigin != "Earth" {
		t.Errorf("Moon origin = %q, want document override", m["Moon"].Ephemeris.FrameOrigin)
	}
	if _, ok := m["Moon"].Ephemeris.Model.(InterpolatedSpiceEphemeris); !ok {
		t.Errorf("Moon ephemeris = %T, want default kept", m["Moon"].Ephemeris.Model)
	}
	if m["Probe"].Rotation != nil || m["Probe"].Gravity != nil {
		t.Error("document-seeded body should not receive default models")
	}
}

func TestMerge_NoDefaultsRequested(t *testing.T) {
	t.Parallel()
	doc := mustDoc(t, `{"bodies": {"Probe": {"mass": 10}}}`)
	p := &recordingProvider{}
	if _, err := Merge(doc, document.MustPath("bodies"), p, 0, 1); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times for a document with no default bodies", p.calls)
	}
}

func TestMerge_UndefinedWindowUsesDirectSpice(t *testing.T) {
	t.Parallel()
	doc := mustDoc(t, `{"bodies": {"Mars": {"useDefaultSettings": true}}}`)
	m, err := Merge(doc, document.MustPath("bodies"), Builtin{}, math.NaN(), math.NaN())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if _, ok := m["Mars"].Ephemeris.Model.(DirectSpiceEphemeris); !ok {
		t.Errorf("Mars ephemeris = %T, want directSpice", m["Mars"].Ephemeris.Model)
	}
}

func TestMerge_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		provider DefaultsProvider
		wantErr  error
	}{
		{"missing bodies", `{"simulation": {}}`, Builtin{}, document.ErrMissingSetting},
		{"bodies not a map", `{"bodies": [1]}`, Builtin{}, document.ErrTypeMismatch},
		{"unknown default body", `{"bodies": {"Vulcan": {"useDefaultSettings": true}}}`, Builtin{}, ErrNoDefaultSettings},
		{"no provider", `{"bodies": {"Earth": {"useDefaultSettings": true}}}`, nil, ErrNoDefaultSettings},
		{"useDefaultSettings not bool", `{"bodies": {"Earth": {"useDefaultSettings": "yes"}}}`, Builtin{}, document.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Merge(mustDoc(t, tt.doc), document.MustPath("bodies"), tt.provider, 0, 1)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnforceFrame(t *testing.T) {
	t.Parallel()
	m, err := Merge(mustDoc(t, mixedBodies), document.MustPath("bodies"), Builtin{}, 700, 5300)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckFrames(m, "J2000"); !errors.Is(err, ErrInconsistentFrame) {
		t.Fatalf("CheckFrames before enforcement = %v, want ErrInconsistentFrame", err)
	}

	EnforceFrame(m, "J2000")
	for _, name := range m.Names() {
		s := m[name]
		if s.Ephemeris != nil && s.Ephemeris.FrameOrientation != "J2000" {
			t.Errorf("%s ephemeris orientation = %q", name, s.Ephemeris.FrameOrientation)
		}
		if s.Rotation != nil && s.Rotation.OriginalFrame != "J2000" {
			t.Errorf("%s rotation original frame = %q", name, s.Rotation.OriginalFrame)
		}
	}
	if err := CheckFrames(m, "J2000"); err != nil {
		t.Errorf("CheckFrames after enforcement: %v", err)
	}
}

func TestCheckFrames_NamesOffendingField(t *testing.T) {
	t.Parallel()
	m := Map{
		"Probe": {Rotation: &RotationSettings{OriginalFrame: "J2000", TargetFrame: "Body", Model: SpiceRotation{}}},
	}
	err := CheckFrames(m, "ECLIPJ2000")
	if !errors.Is(err, ErrInconsistentFrame) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "bodies.Probe.rotationModel.originalFrame") {
		t.Errorf("err = %v, want field path", err)
	}
}
