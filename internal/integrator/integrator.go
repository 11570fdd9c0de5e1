// Package integrator resolves numerical integrator settings from a
// configuration document.
package integrator

import (
	"fmt"

	"github.com/papapumpkin/meridian/internal/document"
)

// Kind names an integration scheme.
type Kind string

// Supported integrators.
const (
	Euler                      Kind = "euler"
	RungeKutta4                Kind = "rungeKutta4"
	RungeKuttaVariableStepSize Kind = "rungeKuttaVariableStepSize"
)

// CoefficientSet names an embedded Runge-Kutta tableau.
type CoefficientSet string

// Supported coefficient sets.
const (
	RungeKuttaFehlberg45      CoefficientSet = "rungeKuttaFehlberg45"
	RungeKuttaFehlberg56      CoefficientSet = "rungeKuttaFehlberg56"
	RungeKuttaFehlberg78      CoefficientSet = "rungeKuttaFehlberg78"
	RungeKutta87DormandPrince CoefficientSet = "rungeKutta87DormandPrince"
)

// Defaults for variable step-size control.
const (
	DefaultErrorTolerance        = 1e-12
	DefaultSafetyFactor          = 0.8
	DefaultMaximumFactorIncrease = 4.0
	DefaultMinimumFactorDecrease = 0.1
)

// Settings is a resolved integrator configuration. Variable is non-nil
// only for RungeKuttaVariableStepSize.
type Settings struct {
	Kind                          Kind
	InitialTime                   float64
	InitialStepSize               float64
	SaveFrequency                 int
	AssessTerminationOnMinorSteps bool
	Variable                      *VariableStep
}

// VariableStep holds step-size control settings.
type VariableStep struct {
	Coefficients           CoefficientSet
	MinimumStepSize        float64
	MaximumStepSize        float64
	RelativeErrorTolerance float64
	AbsoluteErrorTolerance float64
	SafetyFactor           float64
	MaximumFactorIncrease  float64
	MinimumFactorDecrease  float64
}

// Resolve reads the integrator sub-document at path. initialTime defaults
// to anchor, normally the simulation start epoch.
func Resolve(doc document.Value, path document.Path, anchor float64) (*Settings, error) {
	kind, err := document.Get[string](doc, path.Key("type"))
	if err != nil {
		return nil, err
	}
	s := &Settings{Kind: Kind(kind)}
	if s.InitialTime, err = document.Get(doc, path.Key("initialTime"), anchor); err != nil {
		return nil, err
	}
	if s.SaveFrequency, err = document.Get(doc, path.Key("saveFrequency"), 1); err != nil {
		return nil, err
	}
	if s.SaveFrequency < 1 {
		return nil, document.Invalid(path.Key("saveFrequency"), "must be at least 1, got %d", s.SaveFrequency)
	}
	if s.AssessTerminationOnMinorSteps, err = document.Get(doc, path.Key("assessTerminationOnMinorSteps"), false); err != nil {
		return nil, err
	}

	switch s.Kind {
	case Euler, RungeKutta4:
		step := path.Key("stepSize")
		if s.InitialStepSize, err = document.Get[float64](doc, step); err != nil {
			return nil, err
		}
		if s.InitialStepSize <= 0 {
			return nil, document.Invalid(step, "must be positive, got %v", s.InitialStepSize)
		}
	case RungeKuttaVariableStepSize:
		step := path.Key("initialStepSize")
		if s.InitialStepSize, err = document.Get[float64](doc, step); err != nil {
			return nil, err
		}
		if s.InitialStepSize <= 0 {
			return nil, document.Invalid(step, "must be positive, got %v", s.InitialStepSize)
		}
		if s.Variable, err = resolveVariable(doc, path); err != nil {
			return nil, err
		}
	default:
		return nil, document.Invalid(path.Key("type"), "unknown integrator %q", kind)
	}
	return s, nil
}

func resolveVariable(doc document.Value, path document.Path) (*VariableStep, error) {
	set, err := document.Get[string](doc, path.Key("rungeKuttaCoefficientSet"))
	if err != nil {
		return nil, err
	}
	v := &VariableStep{Coefficients: CoefficientSet(set)}
	switch v.Coefficients {
	case RungeKuttaFehlberg45, RungeKuttaFehlberg56, RungeKuttaFehlberg78, RungeKutta87DormandPrince:
	default:
		return nil, document.Invalid(path.Key("rungeKuttaCoefficientSet"), "unknown coefficient set %q", set)
	}

	fields := []struct {
		key      string
		dst      *float64
		def      float64
		required bool
	}{
		{"minimumStepSize", &v.MinimumStepSize, 0, true},
		{"maximumStepSize", &v.MaximumStepSize, 0, true},
		{"relativeErrorTolerance", &v.RelativeErrorTolerance, DefaultErrorTolerance, false},
		{"absoluteErrorTolerance", &v.AbsoluteErrorTolerance, DefaultErrorTolerance, false},
		{"safetyFactorForNextStepSize", &v.SafetyFactor, DefaultSafetyFactor, false},
		{"maximumFactorIncreaseForNextStepSize", &v.MaximumFactorIncrease, DefaultMaximumFactorIncrease, false},
		{"minimumFactorDecreaseForNextStepSize", &v.MinimumFactorDecrease, DefaultMinimumFactorDecrease, false},
	}
	for _, f := range fields {
		var err error
		if f.required {
			*f.dst, err = document.Get[float64](doc, path.Key(f.key))
		} else {
			*f.dst, err = document.Get(doc, path.Key(f.key), f.def)
		}
		if err != nil {
			return nil, err
		}
		if *f.dst <= 0 {
			return nil, document.Invalid(path.Key(f.key), "must be positive, got %v", *f.dst)
		}
	}
	if v.MinimumStepSize > v.MaximumStepSize {
		return nil, document.Invalid(path.Key("minimumStepSize"),
			"%v exceeds maximumStepSize %v", v.MinimumStepSize, v.MaximumStepSize)
	}
	return v, nil
}

// Document renders s as an integrator sub-document.
func (s *Settings) Document() document.Value {
	f := map[string]document.Value{
		"type":                          document.String(string(s.Kind)),
		"initialTime":                   document.Number(s.InitialTime),
		"saveFrequency":                 document.Number(float64(s.SaveFrequency)),
		"assessTerminationOnMinorSteps": document.Bool(s.AssessTerminationOnMinorSteps),
	}
	if s.Variable == nil {
		f["stepSize"] = document.Number(s.InitialStepSize)
		return document.Map(f)
	}
	v := s.Variable
	f["initialStepSize"] = document.Number(s.InitialStepSize)
	f["rungeKuttaCoefficientSet"] = document.String(string(v.Coefficients))
	f["minimumStepSize"] = document.Number(v.MinimumStepSize)
	f["maximumStepSize"] = document.Number(v.MaximumStepSize)
	f["relativeErrorTolerance"] = document.Number(v.RelativeErrorTolerance)
	f["absoluteErrorTolerance"] = document.Number(v.AbsoluteErrorTolerance)
	f["safetyFactorForNextStepSize"] = document.Number(v.SafetyFactor)
	f["maximumFactorIncreaseForNextStepSize"] = document.Number(v.MaximumFactorIncrease)
	f["minimumFactorDecreaseForNextStepSize"] = document.Number(v.MinimumFactorDecrease)
	return document.Map(f)
}

// String summarizes s for logs.
func (s *Settings) String() string {
	if s.Variable != nil {
		return fmt.Sprintf("%s(%s, h0=%g, h∈[%g, %g])", s.Kind, s.Variable.Coefficients,
			s.InitialStepSize, s.Variable.MinimumStepSize, s.Variable.MaximumStepSize)
	}
	return fmt.Sprintf("%s(h=%g)", s.Kind, s.InitialStepSize)
}
