// Package environment instantiates runtime bodies from resolved body
// settings and wires their ephemerides to the global frame.
package environment

import (
	"errors"
	"sort"
)

// Errors returned while building or finalizing bodies.
var (
	ErrOutOfRange         = errors.New("epoch outside ephemeris range")
	ErrInconsistentFrame  = errors.New("inconsistent frame orientation")
	ErrUnknownFrameOrigin = errors.New("unknown frame origin")
	ErrFrameCycle         = errors.New("frame origin cycle")
	ErrMissingQuerier     = errors.New("no ephemeris service configured")
	ErrCoefficientIndex   = errors.New("coefficient index out of range")
)

// GravitationalConstant in m^3 kg^-1 s^-2 (CODATA 2018).
const GravitationalConstant = 6.67430e-11

// Ephemeris gives a body's Cartesian state (position in m, velocity in m/s)
// relative to Origin, with axes along Orientation.
type Ephemeris interface {
	State(t float64) ([6]float64, error)
	Origin() string
	Orientation() string
}

// RotationModel gives the rotation angle, in [0, 2π), of the body-fixed
// frame about its pole.
type RotationModel interface {
	RotationAngle(t float64) (float64, error)
	Frames() (from, to string)
}

// GravityField is a body's gravitational field.
type GravityField interface {
	GravitationalParameter() float64
}

// StateQuerier is the ephemeris side of the external kernel service.
type StateQuerier interface {
	State(target, observer, orientation string, t float64) ([6]float64, error)
}

// OrientationQuerier is the orientation side of the external kernel service.
type OrientationQuerier interface {
	RotationAngle(from, to string, t float64) (float64, error)
}

// Body is a runtime body. Nil models mean the body has none. Mass is zero
// when neither a mass nor a gravity field was configured.
type Body struct {
	Name      string
	Mass      float64
	Ephemeris Ephemeris
	Rotation  RotationModel
	Gravity   GravityField
}

// Bodies is the runtime body collection keyed by name.
type Bodies map[string]*Body

// Names returns the body names in sorted order.
func (b Bodies) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
