package environment

import (
	"fmt"
	"math"

	"github.com/papapumpkin/meridian/internal/bodies"
)

// PointMass is a central gravity field.
type PointMass struct {
	mu float64
}

// GravitationalParameter returns GM in m^3/s^2.
func (g PointMass) GravitationalParameter() float64 { return g.mu }

// SphericalHarmonicField holds fixed normalized coefficients.
type SphericalHarmonicField struct {
	mu     float64
	radius float64
	frame  string
	cosine [][]float64
	sine   [][]float64
}

func newSphericalHarmonicField(s bodies.SphericalHarmonicGravity) *SphericalHarmonicField {
	return &SphericalHarmonicField{
		mu:     s.GravitationalParameter,
		radius: s.ReferenceRadius,
		frame:  s.AssociatedFrame,
		cosine: copyMatrix(s.Cosine),
		sine:   copyMatrix(s.Sine),
	}
}

// GravitationalParameter returns GM in m^3/s^2.
func (g *SphericalHarmonicField) GravitationalParameter() float64 { return g.mu }

// ReferenceRadius returns the normalization radius in m.
func (g *SphericalHarmonicField) ReferenceRadius() float64 { return g.radius }

// Frame names the body-fixed frame the coefficients refer to.
func (g *SphericalHarmonicField) Frame() string { return g.frame }

// Coefficients returns copies of the cosine and sine coefficients.
func (g *SphericalHarmonicField) Coefficients() ([][]float64, [][]float64) {
	return copyMatrix(g.cosine), copyMatrix(g.sine)
}

// TimeDependentField is a spherical harmonic field whose coefficients are
// nominal values plus secular and periodic variations. Call Update to move
// the current coefficients to a new epoch.
type TimeDependentField struct {
	SphericalHarmonicField
	nominalCosine  [][]float64
	nominalSine    [][]float64
	referenceEpoch float64
	variations     []bodies.CoefficientVariation
	current        float64
}

func newTimeDependentField(s bodies.TimeDependentSphericalHarmonicGravity) (*TimeDependentField, error) {
	for _, v := range s.Variations {
		if !inRange(s.Cosine, v.Degree, v.Order) || !inRange(s.Sine, v.Degree, v.Order) {
			return nil, fmt.Errorf("%w: variation at degree %d order %d", ErrCoefficientIndex, v.Degree, v.Order)
		}
	}
	f := &TimeDependentField{
		SphericalHarmonicField: *newSphericalHarmonicField(s.SphericalHarmonicGravity),
		nominalCosine:          copyMatrix(s.Cosine),
		nominalSine:            copyMatrix(s.Sine),
		referenceEpoch:         s.ReferenceEpoch,
		variations:             append([]bodies.CoefficientVariation(nil), s.Variations...),
		current:                math.NaN(),
	}
	f.Update(s.ReferenceEpoch)
	return f, nil
}

// Update recomputes the current coefficients at t.
func (g *TimeDependentField) Update(t float64) {
	g.cosine = copyMatrix(g.nominalCosine)
	g.sine = copyMatrix(g.nominalSine)
	dt := t - g.referenceEpoch
	for _, v := range g.variations {
		switch v.Kind {
		case bodies.VariationSecular:
			g.cosine[v.Degree][v.Order] += v.CosineRate * dt
			g.sine[v.Degree][v.Order] += v.SineRate * dt
		case bodies.VariationPeriodic:
			arg := v.Frequency*dt + v.Phase
			g.cosine[v.Degree][v.Order] += v.CosineAmplitude * math.Cos(arg)
			g.sine[v.Degree][v.Order] += v.SineAmplitude * math.Sin(arg)
		}
	}
	g.current = t
}

// CurrentTime returns the epoch of the last Update.
func (g *TimeDependentField) CurrentTime() float64 { return g.current }

// SetNominalCosine replaces one nominal cosine coefficient.
func (g *TimeDependentField) SetNominalCosine(degree, order int, value float64) error {
	return setCoefficient(g.nominalCosine, degree, order, value)
}

// SetNominalSine replaces one nominal sine coefficient.
func (g *TimeDependentField) SetNominalSine(degree, order int, value float64) error {
	return setCoefficient(g.nominalSine, degree, order, value)
}

// ClearVariations drops every variation. Current coefficients change on
// the next Update.
func (g *TimeDependentField) ClearVariations() {
	g.variations = nil
}

func inRange(m [][]float64, degree, order int) bool {
	return degree >= 0 && degree < len(m) && order >= 0 && order < len(m[degree])
}

func setCoefficient(m [][]float64, degree, order int, value float64) error {
	if !inRange(m, degree, order) {
		return fmt.Errorf("%w: degree %d order %d", ErrCoefficientIndex, degree, order)
	}
	m[degree][order] = value
	return nil
}

func copyMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
