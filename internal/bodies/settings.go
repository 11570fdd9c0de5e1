// Package bodies holds per-body environment settings and the rules that
// combine built-in defaults with a configuration document.
//
// Settings are variants keyed by a model-kind tag: each ephemeris, rotation
// and gravity model carries only the fields it needs.
package bodies

import (
	"errors"
	"sort"
)

// Errors returned while decoding or validating body settings.
var (
	ErrUnknownModel      = errors.New("unknown model type")
	ErrNoDefaultSettings = errors.New("no default settings for body")
	ErrInconsistentFrame = errors.New("inconsistent frame orientation")
)

// EphemerisKind tags an ephemeris model.
type EphemerisKind string

// Ephemeris model kinds.
const (
	EphemerisConstant          EphemerisKind = "constant"
	EphemerisKepler            EphemerisKind = "kepler"
	EphemerisTabulated         EphemerisKind = "tabulated"
	EphemerisDirectSpice       EphemerisKind = "directSpice"
	EphemerisInterpolatedSpice EphemerisKind = "interpolatedSpice"
)

// RotationKind tags a rotation model.
type RotationKind string

// Rotation model kinds.
const (
	RotationSimple RotationKind = "simple"
	RotationSpice  RotationKind = "spice"
)

// GravityKind tags a gravity field model.
type GravityKind string

// Gravity field model kinds.
const (
	GravityPointMass                      GravityKind = "pointMass"
	GravitySphericalHarmonic              GravityKind = "sphericalHarmonic"
	GravityTimeDependentSphericalHarmonic GravityKind = "timeDependentSphericalHarmonic"
)

// EphemerisModel is one of the ephemeris variants below.
type EphemerisModel interface {
	EphemerisKind() EphemerisKind
}

// RotationModel is one of the rotation variants below.
type RotationModel interface {
	RotationKind() RotationKind
}

// GravityModel is one of the gravity field variants below.
type GravityModel interface {
	GravityKind() GravityKind
}

// EphemerisSettings describes where a body is and in which frame.
type EphemerisSettings struct {
	FrameOrigin      string
	FrameOrientation string
	Model            EphemerisModel
}

// ConstantEphemeris is a fixed Cartesian state.
type ConstantEphemeris struct {
	State [6]float64
}

// KeplerEphemeris is an unperturbed two-body orbit. InitialElements are
// semi-major axis, eccentricity, inclination, argument of periapsis,
// longitude of the ascending node and true anomaly.
type KeplerEphemeris struct {
	InitialElements                   [6]float64
	Epoch                             float64
	CentralBodyGravitationalParameter float64
}

// TabulatedEphemeris interpolates between sampled states. Epochs are
// strictly increasing and parallel to States.
type TabulatedEphemeris struct {
	Epochs []float64
	States [][6]float64
}

// DirectSpiceEphemeris queries the kernel service on every call.
type DirectSpiceEphemeris struct{}

// InterpolatedSpiceEphemeris samples the kernel service once over
// [InitialTime, FinalTime] at TimeStep.
type InterpolatedSpiceEphemeris struct {
	InitialTime float64
	FinalTime   float64
	TimeStep    float64
}

// EphemerisKind implements EphemerisModel.
func (ConstantEphemeris) EphemerisKind() EphemerisKind { return EphemerisConstant }

// EphemerisKind implements EphemerisModel.
func (KeplerEphemeris) EphemerisKind() EphemerisKind { return EphemerisKepler }

// EphemerisKind implements EphemerisModel.
func (TabulatedEphemeris) EphemerisKind() EphemerisKind { return EphemerisTabulated }

// EphemerisKind implements EphemerisModel.
func (DirectSpiceEphemeris) EphemerisKind() EphemerisKind { return EphemerisDirectSpice }

// EphemerisKind implements EphemerisModel.
func (InterpolatedSpiceEphemeris) EphemerisKind() EphemerisKind {
	return EphemerisInterpolatedSpice
}

// RotationSettings describes a body-fixed frame relative to OriginalFrame.
type RotationSettings struct {
	OriginalFrame string
	TargetFrame   string
	Model         RotationModel
}

// SimpleRotation is uniform rotation about a fixed pole. Angles are radians,
// RotationRate is radians per second.
type SimpleRotation struct {
	InitialTime     float64
	RightAscension  float64
	Declination     float64
	InitialMeridian float64
	RotationRate    float64
}

// SpiceRotation takes orientation from the kernel service.
type SpiceRotation struct{}

// RotationKind implements RotationModel.
func (SimpleRotation) RotationKind() RotationKind { return RotationSimple }

// RotationKind implements RotationModel.
func (SpiceRotation) RotationKind() RotationKind { return RotationSpice }

// GravitySettings wraps a gravity field model.
type GravitySettings struct {
	Model GravityModel
}

// PointMassGravity is a central field.
type PointMassGravity struct {
	GravitationalParameter float64
}

// SphericalHarmonicGravity holds normalized coefficients indexed
// [degree][order].
type SphericalHarmonicGravity struct {
	GravitationalParameter float64
	ReferenceRadius        float64
	Cosine                 [][]float64
	Sine                   [][]float64
	AssociatedFrame        string
}

// VariationKind tags a coefficient variation.
type VariationKind string

// Coefficient variation kinds.
const (
	VariationSecular  VariationKind = "secular"
	VariationPeriodic VariationKind = "periodic"
)

// CoefficientVariation changes one cosine/sine coefficient pair over time.
// Secular variations use the rate fields (per second); periodic ones use
// the amplitudes, Frequency (radians per second) and Phase.
type CoefficientVariation struct {
	Kind            VariationKind
	Degree          int
	Order           int
	CosineRate      float64
	SineRate        float64
	CosineAmplitude float64
	SineAmplitude   float64
	Frequency       float64
	Phase           float64
}

// TimeDependentSphericalHarmonicGravity adds variations, referenced to
// ReferenceEpoch, to nominal spherical harmonic coefficients.
type TimeDependentSphericalHarmonicGravity struct {
	SphericalHarmonicGravity
	ReferenceEpoch float64
	Variations     []CoefficientVariation
}

// GravityKind implements GravityModel.
func (PointMassGravity) GravityKind() GravityKind { return GravityPointMass }

// GravityKind implements GravityModel.
func (SphericalHarmonicGravity) GravityKind() GravityKind { return GravitySphericalHarmonic }

// GravityKind implements GravityModel.
func (TimeDependentSphericalHarmonicGravity) GravityKind() GravityKind {
	return GravityTimeDependentSphericalHarmonic
}

// Settings is everything needed to build one body. Nil members mean the
// body has no such model.
type Settings struct {
	Mass      *float64
	Ephemeris *EphemerisSettings
	Rotation  *RotationSettings
	Gravity   *GravitySettings
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := &Settings{}
	if s.Mass != nil {
		m := *s.Mass
		out.Mass = &m
	}
	if s.Ephemeris != nil {
		e := *s.Ephemeris
		e.Model = cloneEphemeris(e.Model)
		out.Ephemeris = &e
	}
	if s.Rotation != nil {
		r := *s.Rotation
		out.Rotation = &r
	}
	if s.Gravity != nil {
		out.Gravity = &GravitySettings{Model: cloneGravity(s.Gravity.Model)}
	}
	return out
}

func cloneEphemeris(m EphemerisModel) EphemerisModel {
	if t, ok := m.(TabulatedEphemeris); ok {
		t.Epochs = append([]float64(nil), t.Epochs...)
		t.States = append([][6]float64(nil), t.States...)
		return t
	}
	return m
}

func cloneGravity(m GravityModel) GravityModel {
	switch g := m.(type) {
	case SphericalHarmonicGravity:
		return g.clone()
	case TimeDependentSphericalHarmonicGravity:
		g.SphericalHarmonicGravity = g.SphericalHarmonicGravity.clone()
		g.Variations = append([]CoefficientVariation(nil), g.Variations...)
		return g
	}
	return m
}

func (g SphericalHarmonicGravity) clone() SphericalHarmonicGravity {
	g.Cosine = cloneMatrix(g.Cosine)
	g.Sine = cloneMatrix(g.Sine)
	return g
}

func cloneMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Map is the set of body settings keyed by body name.
type Map map[string]*Settings

// Names returns the body names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
