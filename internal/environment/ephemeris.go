package environment

import (
	"fmt"
	"math"
	"sort"
)

type frame struct {
	origin      string
	orientation string
}

func (f frame) Origin() string      { return f.origin }
func (f frame) Orientation() string { return f.orientation }

// ConstantEphemeris always returns the same state.
type ConstantEphemeris struct {
	frame
	state [6]float64
}

// NewConstantEphemeris returns a fixed-state ephemeris.
func NewConstantEphemeris(state [6]float64, origin, orientation string) *ConstantEphemeris {
	return &ConstantEphemeris{frame: frame{origin, orientation}, state: state}
}

// State returns the fixed state.
func (e *ConstantEphemeris) State(float64) ([6]float64, error) { return e.state, nil }

// KeplerEphemeris propagates an unperturbed elliptic orbit.
type KeplerEphemeris struct {
	frame
	elements [6]float64
	epoch    float64
	mu       float64
	m0       float64
}

// keplerTolerance bounds the eccentric anomaly error of the Newton solve.
const keplerTolerance = 1e-14

// NewKeplerEphemeris builds a two-body ephemeris. elements are a, e, i,
// argument of periapsis, RAAN and true anomaly at epoch.
func NewKeplerEphemeris(elements [6]float64, epoch, mu float64, origin, orientation string) (*KeplerEphemeris, error) {
	a, ecc := elements[0], elements[1]
	if a <= 0 || ecc < 0 || ecc >= 1 {
		return nil, fmt.Errorf("kepler ephemeris: only elliptic orbits are supported (a=%v, e=%v)", a, ecc)
	}
	if mu <= 0 {
		return nil, fmt.Errorf("kepler ephemeris: gravitational parameter %v must be positive", mu)
	}
	nu := elements[5]
	e0 := 2 * math.Atan(math.Sqrt((1-ecc)/(1+ecc))*math.Tan(nu/2))
	return &KeplerEphemeris{
		frame:    frame{origin, orientation},
		elements: elements,
		epoch:    epoch,
		mu:       mu,
		m0:       e0 - ecc*math.Sin(e0),
	}, nil
}

// State solves Kepler's equation at t and converts to Cartesian.
func (e *KeplerEphemeris) State(t float64) ([6]float64, error) {
	a, ecc, inc, argp, raan := e.elements[0], e.elements[1], e.elements[2], e.elements[3], e.elements[4]
	n := math.Sqrt(e.mu / (a * a * a))
	mean := math.Mod(e.m0+n*(t-e.epoch), 2*math.Pi)

	ea := mean
	if ecc > 0.8 {
		ea = math.Pi
	}
	for i := 0; i < 50; i++ {
		d := (ea - ecc*math.Sin(ea) - mean) / (1 - ecc*math.Cos(ea))
		ea -= d
		if math.Abs(d) < keplerTolerance {
			break
		}
	}

	nu := 2 * math.Atan2(math.Sqrt(1+ecc)*math.Sin(ea/2), math.Sqrt(1-ecc)*math.Cos(ea/2))
	r := a * (1 - ecc*math.Cos(ea))
	p := a * (1 - ecc*ecc)
	h := math.Sqrt(e.mu / p)
	px, py := r*math.Cos(nu), r*math.Sin(nu)
	vx, vy := -h*math.Sin(nu), h*(ecc+math.Cos(nu))

	cO, sO := math.Cos(raan), math.Sin(raan)
	cw, sw := math.Cos(argp), math.Sin(argp)
	ci, si := math.Cos(inc), math.Sin(inc)
	rot := [3][2]float64{
		{cO*cw - sO*sw*ci, -cO*sw - sO*cw*ci},
		{sO*cw + cO*sw*ci, -sO*sw + cO*cw*ci},
		{sw * si, cw * si},
	}
	var s [6]float64
	for k := 0; k < 3; k++ {
		s[k] = rot[k][0]*px + rot[k][1]*py
		s[k+3] = rot[k][0]*vx + rot[k][1]*vy
	}
	return s, nil
}

// TabulatedEphemeris interpolates linearly between samples.
type TabulatedEphemeris struct {
	frame
	epochs []float64
	states [][6]float64
}

// NewTabulatedEphemeris copies the samples. epochs must be strictly
// increasing and parallel to states.
func NewTabulatedEphemeris(epochs []float64, states [][6]float64, origin, orientation string) (*TabulatedEphemeris, error) {
	if len(epochs) == 0 || len(epochs) != len(states) {
		return nil, fmt.Errorf("tabulated ephemeris: %d epochs for %d states", len(epochs), len(states))
	}
	for i := 1; i < len(epochs); i++ {
		if epochs[i] <= epochs[i-1] {
			return nil, fmt.Errorf("tabulated ephemeris: epochs not increasing at index %d", i)
		}
	}
	return &TabulatedEphemeris{
		frame:  frame{origin, orientation},
		epochs: append([]float64(nil), epochs...),
		states: append([][6]float64(nil), states...),
	}, nil
}

// State returns ErrOutOfRange outside the sampled interval.
func (e *TabulatedEphemeris) State(t float64) ([6]float64, error) {
	first, last := e.epochs[0], e.epochs[len(e.epochs)-1]
	if math.IsNaN(t) || t < first || t > last {
		return [6]float64{}, fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, t, first, last)
	}
	i := sort.SearchFloat64s(e.epochs, t)
	if e.epochs[i] == t {
		return e.states[i], nil
	}
	t0, t1 := e.epochs[i-1], e.epochs[i]
	w := (t - t0) / (t1 - t0)
	var s [6]float64
	for k := range s {
		s[k] = e.states[i-1][k] + w*(e.states[i][k]-e.states[i-1][k])
	}
	return s, nil
}

// SpiceEphemeris queries the kernel service on every call.
type SpiceEphemeris struct {
	frame
	target  string
	querier StateQuerier
}

// NewSpiceEphemeris returns a direct kernel-service ephemeris for target.
func NewSpiceEphemeris(q StateQuerier, target, origin, orientation string) *SpiceEphemeris {
	return &SpiceEphemeris{frame: frame{origin, orientation}, target: target, querier: q}
}

// State delegates to the querier.
func (e *SpiceEphemeris) State(t float64) ([6]float64, error) {
	return e.querier.State(e.target, e.origin, e.orientation, t)
}

// NewInterpolatedSpiceEphemeris samples q over [start, end] every step
// seconds, always including end, and returns the resulting table.
func NewInterpolatedSpiceEphemeris(q StateQuerier, target, origin, orientation string, start, end, step float64) (*TabulatedEphemeris, error) {
	if !(end > start) || !(step > 0) {
		return nil, fmt.Errorf("interpolated ephemeris: invalid interval [%v, %v] step %v", start, end, step)
	}
	n := int(math.Ceil((end-start)/step)) + 1
	epochs := make([]float64, 0, n)
	states := make([][6]float64, 0, n)
	for i := 0; i < n; i++ {
		t := math.Min(start+float64(i)*step, end)
		if len(epochs) > 0 && t <= epochs[len(epochs)-1] {
			break
		}
		s, err := q.State(target, origin, orientation, t)
		if err != nil {
			return nil, fmt.Errorf("sampling %s at %v: %w", target, t, err)
		}
		epochs = append(epochs, t)
		states = append(states, s)
	}
	return NewTabulatedEphemeris(epochs, states, origin, orientation)
}

// TranslatedEphemeris expresses a body's state relative to the global
// origin by adding the state of its own origin body.
type TranslatedEphemeris struct {
	local  Ephemeris
	origin Ephemeris
	global string
}

// State is the local state plus the origin body's global state.
func (e *TranslatedEphemeris) State(t float64) ([6]float64, error) {
	s, err := e.local.State(t)
	if err != nil {
		return s, err
	}
	o, err := e.origin.State(t)
	if err != nil {
		return s, fmt.Errorf("origin %s: %w", e.local.Origin(), err)
	}
	for k := range s {
		s[k] += o[k]
	}
	return s, nil
}

// Origin returns the global frame origin.
func (e *TranslatedEphemeris) Origin() string { return e.global }

// Orientation is unchanged by translation.
func (e *TranslatedEphemeris) Orientation() string { return e.local.Orientation() }

// Local returns the untranslated ephemeris.
func (e *TranslatedEphemeris) Local() Ephemeris { return e.local }
