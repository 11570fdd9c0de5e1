package bodies

import (
	"fmt"
	"math"
	"strings"
)

// DefaultsProvider supplies built-in settings for named bodies over an
// interval. start and end may be NaN when ephemeris data is not preloaded.
type DefaultsProvider interface {
	DefaultSettings(names []string, start, end float64) (Map, error)
}

// gravitationalParameters in m^3/s^2 (DE430 / IAU 2015 nominal values).
var gravitationalParameters = map[string]float64{
	"Sun":     1.32712440041e20,
	"Mercury": 2.2031780000e13,
	"Venus":   3.24858592000e14,
	"Earth":   3.98600441800e14,
	"Moon":    4.90280006600e12,
	"Mars":    4.28283752140e13,
	"Jupiter": 1.26712764800e17,
	"Saturn":  3.79405852000e16,
	"Uranus":  5.79454860000e15,
	"Neptune": 6.83652710058e15,
	"Pluto":   9.75500000000e11,
}

// Builtin provides table-backed defaults for the Sun, the planets, the
// Moon and Pluto.
type Builtin struct{}

// DefaultSettings returns one entry per name. Ephemerides are interpolated
// from the kernel service over [start, end] when both are defined and
// queried directly otherwise.
func (Builtin) DefaultSettings(names []string, start, end float64) (Map, error) {
	interpolate := !math.IsNaN(start) && !math.IsNaN(end) && end > start
	out := make(Map, len(names))
	for _, name := range names {
		mu, ok := gravitationalParameters[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrNoDefaultSettings, name)
		}
		var eph EphemerisModel = DirectSpiceEphemeris{}
		if interpolate {
			eph = InterpolatedSpiceEphemeris{
				InitialTime: start,
				FinalTime:   end,
				TimeStep:    DefaultInterpolationStep,
			}
		}
		out[name] = &Settings{
			Ephemeris: &EphemerisSettings{
				FrameOrigin:      DefaultFrameOrigin,
				FrameOrientation: DefaultFrameOrientation,
				Model:            eph,
			},
			Rotation: &RotationSettings{
				OriginalFrame: DefaultFrameOrientation,
				TargetFrame:   "IAU_" + strings.ToUpper(name),
				Model:         SpiceRotation{},
			},
			Gravity: &GravitySettings{Model: PointMassGravity{GravitationalParameter: mu}},
		}
	}
	return out, nil
}
