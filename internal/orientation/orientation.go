// Package orientation computes Earth orientation angles: the Earth
// rotation angle, Greenwich mean sidereal time, and the celestial
// intermediate pole and origin. Every function is pure and safe for
// concurrent use.
//
// Times are seconds since a reference Julian day, which keeps precision
// when the reference is near the epoch of interest.
package orientation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// ErrUnknownConvention is returned for an unrecognized precession-nutation
// convention.
var ErrUnknownConvention = errors.New("unknown precession-nutation convention")

// JulianDayJ2000 is the Julian day of 2000-01-01T12:00:00.
const JulianDayJ2000 = 2451545.0

const (
	secondsPerDay     = 86400.0
	daysPerCentury    = 36525.0
	arcsecToRadians   = math.Pi / (180 * 3600)
	microarcsecToRads = arcsecToRadians * 1e-6
	twoPi             = 2 * math.Pi
	arcsecPerTurn     = 1296000.0
)

// Convention selects the precession-nutation model.
type Convention int

// Supported conventions.
const (
	IAU2000A Convention = iota
	IAU2000B
	IAU2006
)

// String returns the configuration name of c.
func (c Convention) String() string {
	switch c {
	case IAU2000A:
		return "iau_2000_a"
	case IAU2000B:
		return "iau_2000_b"
	case IAU2006:
		return "iau_2006"
	}
	return fmt.Sprintf("Convention(%d)", int(c))
}

// ParseConvention accepts iau_2000_a, iau_2000_b and iau_2006, ignoring
// case and dashes.
func ParseConvention(s string) (Convention, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "iau_2000_a", "iau2000a":
		return IAU2000A, nil
	case "iau_2000_b", "iau2000b":
		return IAU2000B, nil
	case "iau_2006", "iau2006":
		return IAU2006, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownConvention, s)
}

// NormalizeAngle maps a to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

// JulianDay returns the Julian day of t in t's own time scale.
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	jd := satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	return jd + float64(t.Nanosecond())/1e9/secondsPerDay
}

// SecondsSinceJ2000 returns the seconds elapsed from J2000 to t, treating
// t's clock reading as the simulation time scale.
func SecondsSinceJ2000(t time.Time) float64 {
	t = t.UTC()
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	return float64(t.Unix()-j2000.Unix()) + float64(t.Nanosecond())/1e9
}

// centuries converts seconds since referenceJulianDay into Julian
// centuries since J2000.
func centuries(seconds, referenceJulianDay float64) float64 {
	return ((referenceJulianDay - JulianDayJ2000) + seconds/secondsPerDay) / daysPerCentury
}
