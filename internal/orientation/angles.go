package orientation

import (
	"fmt"
	"math"
)

// EarthRotationAngle returns the IERS 2010 Earth rotation angle, in
// [0, 2π), at ut1 seconds since referenceJulianDay (UT1 scale).
func EarthRotationAngle(ut1, referenceJulianDay float64) float64 {
	tu := (referenceJulianDay - JulianDayJ2000) + ut1/secondsPerDay
	// The integer part of tu contributes whole turns; drop it first.
	frac := math.Mod(tu, 1)
	return NormalizeAngle(twoPi * (frac + 0.7790572732640 + 0.00273781191135448*tu))
}

// GreenwichMeanSiderealTime returns GMST, in [0, 2π), consistent with the
// given convention. tt and ut1 are seconds since referenceJulianDay in the
// TT and UT1 scales.
func GreenwichMeanSiderealTime(tt, ut1, referenceJulianDay float64, conv Convention) (float64, error) {
	t := centuries(tt, referenceJulianDay)
	var poly float64
	switch conv {
	case IAU2000A, IAU2000B:
		poly = precessionArcsec(gmstPrecession2000[:], t)
	case IAU2006:
		poly = precessionArcsec(gmstPrecession2006[:], t)
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnknownConvention, conv)
	}
	return NormalizeAngle(EarthRotationAngle(ut1, referenceJulianDay) + poly*arcsecToRadians), nil
}

// GMST precession polynomial coefficients in arcseconds, lowest power first.
var (
	gmstPrecession2000 = [...]float64{0.014506, 4612.15739966, 1.39667721, -0.00009344, 0.00001882}
	gmstPrecession2006 = [...]float64{0.014506, 4612.156534, 1.3915817, -0.00000044, -0.000029956, -0.0000000368}
)

// precessionArcsec sums c[k]·t^k with each term reduced to one turn, so
// the result stays finite for any finite t. A term that overflows float64
// has an ulp far wider than a turn, carries no angle, and is skipped.
func precessionArcsec(c []float64, t float64) float64 {
	sum, pow := 0.0, 1.0
	for _, ck := range c {
		if term := ck * pow; !math.IsInf(term, 0) && !math.IsNaN(term) {
			sum += math.Mod(term, arcsecPerTurn)
		}
		pow *= t
	}
	return sum
}
