package bodies

import (
	"fmt"

	"github.com/papapumpkin/meridian/internal/document"
)

// Keys of a body sub-document.
const (
	KeyUseDefaultSettings = "useDefaultSettings"
	KeyMass               = "mass"
	KeyEphemeris          = "ephemeris"
	KeyRotationModel      = "rotationModel"
	KeyGravityField       = "gravityField"
	KeyType               = "type"
)

// Frame defaults for ephemerides decoded from the document alone. The frame
// orientation is overwritten by EnforceFrame before bodies are built.
const (
	DefaultFrameOrigin      = "SSB"
	DefaultFrameOrientation = "ECLIPJ2000"
)

// DefaultInterpolationStep is the sampling step, in seconds, of
// interpolated kernel ephemerides.
const DefaultInterpolationStep = 300.0

// Decode builds settings entirely from the document at path.
func Decode(doc document.Value, path document.Path) (*Settings, error) {
	s := &Settings{}
	if err := s.Overlay(doc, path); err != nil {
		return nil, err
	}
	return s, nil
}

// Overlay applies the body sub-document at path on top of s. A model
// sub-document whose type differs from the current model replaces it;
// otherwise only the fields it names change.
func (s *Settings) Overlay(doc document.Value, path document.Path) error {
	v, ok := document.Lookup(doc, path)
	if !ok || v.IsNull() {
		return nil
	}
	if v.Kind() != document.KindMap {
		return &document.SettingError{
			Path: path.String(),
			Want: "map",
			Got:  v.Kind().String(),
			Err:  document.ErrTypeMismatch,
		}
	}

	if document.Has(doc, path.Key(KeyMass)) {
		m, err := document.Get[float64](doc, path.Key(KeyMass))
		if err != nil {
			return err
		}
		s.Mass = &m
	}
	if document.Has(doc, path.Key(KeyEphemeris)) {
		e, err := overlayEphemeris(s.Ephemeris, doc, path.Key(KeyEphemeris))
		if err != nil {
			return err
		}
		s.Ephemeris = e
	}
	if document.Has(doc, path.Key(KeyRotationModel)) {
		r, err := overlayRotation(s.Rotation, doc, path.Key(KeyRotationModel))
		if err != nil {
			return err
		}
		s.Rotation = r
	}
	if document.Has(doc, path.Key(KeyGravityField)) {
		g, err := overlayGravity(s.Gravity, doc, path.Key(KeyGravityField))
		if err != nil {
			return err
		}
		s.Gravity = g
	}
	return nil
}

// reader decodes fields below one path and keeps the first error. When keep
// is set, current field values serve as defaults.
type reader struct {
	doc  document.Value
	at   document.Path
	keep bool
	err  error
}

func read[T any](r *reader, key string, dst *T) {
	if r.err != nil {
		return
	}
	if r.keep {
		optional(r, key, dst)
		return
	}
	v, err := document.Get[T](r.doc, r.at.Key(key))
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

func optional[T any](r *reader, key string, dst *T) {
	if r.err != nil {
		return
	}
	v, err := document.Get(r.doc, r.at.Key(key), *dst)
	if err != nil {
		r.err = err
		return
	}
	*dst = v
}

func vector(r *reader, key string, dst *[6]float64) {
	if r.err != nil {
		return
	}
	p := r.at.Key(key)
	if r.keep && !document.Has(r.doc, p) {
		return
	}
	v, err := document.Get[[]float64](r.doc, p)
	if err != nil {
		r.err = err
		return
	}
	if len(v) != 6 {
		r.err = document.Invalid(p, "want 6 components, got %d", len(v))
		return
	}
	copy(dst[:], v)
}

func (r *reader) fail(key, format string, args ...any) {
	if r.err == nil {
		r.err = document.Invalid(r.at.Key(key), format, args...)
	}
}

// modelType reads the type tag and reports whether the current model can be
// kept (same or absent tag).
func modelType(doc document.Value, at document.Path, current string) (string, bool, error) {
	kind, err := document.Get(doc, at.Key(KeyType), "")
	if err != nil {
		return "", false, err
	}
	if current != "" && (kind == "" || kind == current) {
		return current, true, nil
	}
	if kind == "" {
		return "", false, document.Missing(at.Key(KeyType))
	}
	return kind, false, nil
}

func unknownModel(at document.Path, kind string) error {
	return &document.SettingError{
		Path: at.Key(KeyType).String(),
		Err:  fmt.Errorf("%w %q", ErrUnknownModel, kind),
	}
}

func overlayEphemeris(cur *EphemerisSettings, doc document.Value, at document.Path) (*EphemerisSettings, error) {
	out := EphemerisSettings{FrameOrigin: DefaultFrameOrigin, FrameOrientation: DefaultFrameOrientation}
	current := ""
	if cur != nil {
		out = *cur
		out.Model = cloneEphemeris(cur.Model)
		if cur.Model != nil {
			current = string(cur.Model.EphemerisKind())
		}
	}
	kind, keep, err := modelType(doc, at, current)
	if err != nil {
		return nil, err
	}
	if !keep {
		switch EphemerisKind(kind) {
		case EphemerisConstant:
			out.Model = ConstantEphemeris{}
		case EphemerisKepler:
			out.Model = KeplerEphemeris{}
		case EphemerisTabulated:
			out.Model = TabulatedEphemeris{}
		case EphemerisDirectSpice:
			out.Model = DirectSpiceEphemeris{}
		case EphemerisInterpolatedSpice:
			out.Model = InterpolatedSpiceEphemeris{TimeStep: DefaultInterpolationStep}
		default:
			return nil, unknownModel(at, kind)
		}
	}

	r := &reader{doc: doc, at: at, keep: keep}
	optional(r, "frameOrigin", &out.FrameOrigin)
	optional(r, "frameOrientation", &out.FrameOrientation)

	switch m := out.Model.(type) {
	case ConstantEphemeris:
		vector(r, "constantState", &m.State)
		out.Model = m
	case KeplerEphemeris:
		vector(r, "initialStateInKeplerianElements", &m.InitialElements)
		read(r, "epochOfInitialState", &m.Epoch)
		read(r, "centralBodyGravitationalParameter", &m.CentralBodyGravitationalParameter)
		if e := m.InitialElements[1]; e < 0 || e >= 1 {
			r.fail("initialStateInKeplerianElements", "eccentricity %v outside [0, 1)", e)
		}
		if m.CentralBodyGravitationalParameter <= 0 {
			r.fail("centralBodyGravitationalParameter", "must be positive")
		}
		out.Model = m
	case TabulatedEphemeris:
		out.Model = readTabulated(r, m)
	case InterpolatedSpiceEphemeris:
		read(r, "initialTime", &m.InitialTime)
		read(r, "finalTime", &m.FinalTime)
		optional(r, "timeStep", &m.TimeStep)
		if m.TimeStep <= 0 {
			r.fail("timeStep", "must be positive")
		}
		if m.FinalTime <= m.InitialTime {
			r.fail("finalTime", "must be after initialTime")
		}
		out.Model = m
	}
	if r.err != nil {
		return nil, r.err
	}
	return &out, nil
}

func readTabulated(r *reader, m TabulatedEphemeris) TabulatedEphemeris {
	optional(r, "epochs", &m.Epochs)
	if r.err == nil && (!r.keep || document.Has(r.doc, r.at.Key("states"))) {
		var rows [][]float64
		read(r, "states", &rows)
		states := make([][6]float64, len(rows))
		for i, row := range rows {
			if len(row) != 6 {
				r.fail("states", "row %d has %d components, want 6", i, len(row))
				break
			}
			copy(states[i][:], row)
		}
		m.States = states
	}
	if len(m.Epochs) == 0 {
		r.fail("epochs", "at least one sample is required")
	}
	if len(m.Epochs) != len(m.States) {
		r.fail("states", "%d states for %d epochs", len(m.States), len(m.Epochs))
	}
	for i := 1; i < len(m.Epochs); i++ {
		if m.Epochs[i] <= m.Epochs[i-1] {
			r.fail("epochs", "epochs must be strictly increasing at index %d", i)
			break
		}
	}
	return m
}

func overlayRotation(cur *RotationSettings, doc document.Value, at document.Path) (*RotationSettings, error) {
	var out RotationSettings
	current := ""
	if cur != nil {
		out = *cur
		if cur.Model != nil {
			current = string(cur.Model.RotationKind())
		}
	}
	kind, keep, err := modelType(doc, at, current)
	if err != nil {
		return nil, err
	}
	if !keep {
		switch RotationKind(kind) {
		case RotationSimple:
			out.Model = SimpleRotation{}
		case RotationSpice:
			out.Model = SpiceRotation{}
		default:
			return nil, unknownModel(at, kind)
		}
	}

	r := &reader{doc: doc, at: at, keep: keep}
	optional(r, "originalFrame", &out.OriginalFrame)
	frames := &reader{doc: doc, at: at, keep: cur != nil}
	read(frames, "targetFrame", &out.TargetFrame)
	if frames.err != nil {
		return nil, frames.err
	}

	if m, ok := out.Model.(SimpleRotation); ok {
		read(r, "initialTime", &m.InitialTime)
		read(r, "rightAscension", &m.RightAscension)
		read(r, "declination", &m.Declination)
		read(r, "initialMeridian", &m.InitialMeridian)
		read(r, "rotationRate", &m.RotationRate)
		out.Model = m
	}
	if r.err != nil {
		return nil, r.err
	}
	return &out, nil
}
