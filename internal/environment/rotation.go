package environment

import (
	"github.com/papapumpkin/meridian/internal/orientation"
)

// SimpleRotation turns at a constant rate about a fixed pole.
type SimpleRotation struct {
	from, to        string
	initialTime     float64
	rightAscension  float64
	declination     float64
	initialMeridian float64
	rate            float64
}

// NewSimpleRotation returns a uniform rotation model.
func NewSimpleRotation(from, to string, initialTime, rightAscension, declination, initialMeridian, rate float64) *SimpleRotation {
	return &SimpleRotation{
		from:            from,
		to:              to,
		initialTime:     initialTime,
		rightAscension:  rightAscension,
		declination:     declination,
		initialMeridian: initialMeridian,
		rate:            rate,
	}
}

// RotationAngle is W0 + rate·(t − t0), normalized.
func (r *SimpleRotation) RotationAngle(t float64) (float64, error) {
	return orientation.NormalizeAngle(r.initialMeridian + r.rate*(t-r.initialTime)), nil
}

// Frames returns the original and body-fixed frame names.
func (r *SimpleRotation) Frames() (string, string) { return r.from, r.to }

// Pole returns the right ascension and declination of the rotation axis.
func (r *SimpleRotation) Pole() (float64, float64) { return r.rightAscension, r.declination }

// SpiceRotation takes the rotation angle from the kernel service.
type SpiceRotation struct {
	from, to string
	querier  OrientationQuerier
}

// NewSpiceRotation returns a kernel-service rotation model.
func NewSpiceRotation(q OrientationQuerier, from, to string) *SpiceRotation {
	return &SpiceRotation{from: from, to: to, querier: q}
}

// RotationAngle delegates to the querier and normalizes the result.
func (r *SpiceRotation) RotationAngle(t float64) (float64, error) {
	a, err := r.querier.RotationAngle(r.from, r.to, t)
	if err != nil {
		return 0, err
	}
	return orientation.NormalizeAngle(a), nil
}

// Frames returns the original and body-fixed frame names.
func (r *SpiceRotation) Frames() (string, string) { return r.from, r.to }
