package orientation

import (
	"fmt"
	"math"
)

// nutationTerm is one periodic term of the CIP coordinate series.
// Amplitudes are microarcseconds; mult multiplies the fundamental
// arguments (l, l', F, D, Ω).
type nutationTerm struct {
	mult   [5]float64
	xs, xc float64
	ys, yc float64
}

// Leading lunisolar terms of the IERS 2010 X/Y series, largest first.
var cipTerms = []nutationTerm{
	{mult: [5]float64{0, 0, 0, 0, 1}, xs: -6844318.44, xc: 1328.67, ys: 1538.18, yc: 9205236.26},
	{mult: [5]float64{0, 0, 2, -2, 2}, xs: -523908.04, xc: -544.75, ys: -458.66, yc: 573033.42},
	{mult: [5]float64{0, 0, 2, 0, 2}, xs: -90552.22, xc: 111.23, ys: 137.41, yc: 97846.69},
	{mult: [5]float64{0, 0, 0, 0, 2}, xs: 82168.76, xc: -27.64, ys: -29.05, yc: -89618.24},
	{mult: [5]float64{0, 1, 0, 0, 0}, xs: 58707.02, xc: 470.05, ys: -17.40, yc: 1.18},
}

// Terms used by the truncated IAU 2000B model.
const truncatedTerms = 3

// cioTerm is one periodic term of s + XY/2 in microarcseconds.
type cioTerm struct {
	mult   [5]float64
	ss, sc float64
}

var cioTerms = []cioTerm{
	{mult: [5]float64{0, 0, 0, 0, 1}, ss: -2640.73, sc: 0.39},
	{mult: [5]float64{0, 0, 0, 0, 2}, ss: -63.53, sc: 0.02},
	{mult: [5]float64{0, 0, 2, -2, 3}, ss: -11.75, sc: -0.01},
	{mult: [5]float64{0, 0, 2, -2, 1}, ss: -11.21, sc: -0.01},
}

// precession holds the polynomial parts, in arcseconds (X, Y) and
// microarcseconds (s + XY/2), of one convention.
type precession struct {
	x, y, s [6]float64
}

var (
	precession2000 = precession{
		x: [6]float64{-0.01661699, 2004.19174288, -0.42721905, -0.19862054, -0.00004605, 0.00000598},
		y: [6]float64{-0.00695078, -0.02538199, -22.40725099, 0.00184228, 0.00111306, 0.00000099},
		s: [6]float64{94.0, 3808.35, -119.94, -72574.09, 27.70, 15.61},
	}
	precession2006 = precession{
		x: [6]float64{-0.016617, 2004.191898, -0.4297829, -0.19861834, 0.000007578, 0.0000059285},
		y: [6]float64{-0.006951, -0.025896, -22.4072747, 0.00190059, 0.001112526, 0.0000001358},
		s: [6]float64{94.0, 3808.65, -122.68, -72574.11, 27.98, 15.62},
	}
)

// CIPAndCIOLocator returns the celestial intermediate pole coordinates X
// and Y and the CIO locator s, all in radians, at tt seconds since
// referenceJulianDay (TT scale). The values are small signed angles and
// are not normalized.
func CIPAndCIOLocator(tt, referenceJulianDay float64, conv Convention) ([2]float64, float64, error) {
	var p precession
	terms := cipTerms
	switch conv {
	case IAU2000A:
		p = precession2000
	case IAU2000B:
		p = precession2000
		terms = cipTerms[:truncatedTerms]
	case IAU2006:
		p = precession2006
	default:
		return [2]float64{}, 0, fmt.Errorf("%w: %v", ErrUnknownConvention, conv)
	}

	t := centuries(tt, referenceJulianDay)
	args := fundamentalArguments(t)

	x := polynomial(p.x, t) * arcsecToRadians
	y := polynomial(p.y, t) * arcsecToRadians
	for _, term := range terms {
		a := argument(term.mult, args)
		sa, ca := math.Sincos(a)
		x += (term.xs*sa + term.xc*ca) * microarcsecToRads
		y += (term.ys*sa + term.yc*ca) * microarcsecToRads
	}

	s := polynomial(p.s, t)
	for _, term := range cioTerms {
		sa, ca := math.Sincos(argument(term.mult, args))
		s += term.ss*sa + term.sc*ca
	}
	s = s*microarcsecToRads - x*y/2
	return [2]float64{x, y}, s, nil
}

// fundamentalArguments returns the Delaunay arguments l, l', F, D, Ω in
// radians (IERS Conventions 2010, eq. 5.43).
func fundamentalArguments(t float64) [5]float64 {
	arcsec := [5]float64{
		485868.249036 + t*(1717915923.2178+t*(31.8792+t*(0.051635-0.00024470*t))),
		1287104.79305 + t*(129596581.0481+t*(-0.5532+t*(0.000136-0.00001149*t))),
		335779.526232 + t*(1739527262.8478+t*(-12.7512+t*(-0.001037+0.00000417*t))),
		1072260.70369 + t*(1602961601.2090+t*(-6.3706+t*(0.006593-0.00003169*t))),
		450160.398036 + t*(-6962890.5431+t*(7.4722+t*(0.007702-0.00005939*t))),
	}
	var out [5]float64
	for i, a := range arcsec {
		out[i] = math.Mod(a, arcsecPerTurn) * arcsecToRadians
	}
	return out
}

func argument(mult, args [5]float64) float64 {
	var a float64
	for i := range mult {
		a += mult[i] * args[i]
	}
	return a
}

func polynomial(c [6]float64, t float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*t + c[i]
	}
	return v
}
