// Package dateutil provides the serial-date arithmetic, day-count and
// compounding conversions, and the bisection solver shared by the bond
// schedule, yield and lattice calibration code.
package dateutil

import (
	"errors"
	"math"
	"time"
)

// ErrBracketSign is returned by Bisect when the function has the same sign
// at both ends of the search bracket.
var ErrBracketSign = errors.New("dateutil: bisect: f(left) and f(right) have the same sign")

// epoch is the serial-date origin used throughout the reference data feeds
// (day 0 is 1899-12-31, matching the spreadsheet convention the bond
// reference CSVs were exported from).
var epoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)

// SerialDate returns the floating serial day count for d relative to the
// 1899-12-31 epoch.
func SerialDate(d time.Time) float64 {
	return d.Sub(epoch).Hours() / 24
}

// YearFrac returns the year fraction between a and b under the given day
// count convention. ACT/360 is the default; ACT/365 is also supported.
func YearFrac(a, b time.Time, dayCount string) float64 {
	return YearFracDays(b.Sub(a).Hours()/24, dayCount)
}

// YearFracDays is YearFrac for a caller that already has an elapsed day
// count rather than a pair of dates (the lattice's AI schedule works in
// fractional serial-date offsets, not calendar times).
func YearFracDays(days float64, dayCount string) float64 {
	switch dayCount {
	case "ACT/365":
		return days / 365.0
	case "ACT/360", "":
		return days / 360.0
	default:
		return days / 360.0
	}
}

// DCtoCC converts a discretely-compounded rate (compounding frequency f per
// year) to the equivalent continuously-compounded rate.
func DCtoCC(r, f float64) float64 {
	return f * math.Log(1+r/f)
}

// CCtoDC converts a continuously-compounded rate to the equivalent
// discretely-compounded rate at frequency f.
func CCtoDC(r, f float64) float64 {
	return f * (math.Exp(r/f) - 1)
}

const (
	bisectLeft  = -0.9999
	bisectRight = 1000.0
	bisectXTol  = 1e-6
	bisectFTol  = 1e-6
)

// Bisect finds x such that f(x) is within tolerance of zero, searching the
// fixed bracket [-0.9999, 1000.0]. It returns ErrBracketSign if f does not
// change sign across the bracket.
func Bisect(f func(x float64) float64) (float64, error) {
	left, right := bisectLeft, bisectRight
	leftF, rightF := f(left), f(right)

	if math.Abs(leftF) < bisectFTol {
		return left, nil
	}
	if math.Abs(rightF) < bisectFTol {
		return right, nil
	}
	if leftF*rightF > 0.0 {
		return 0, ErrBracketSign
	}

	for right-left > bisectXTol {
		mid := 0.5 * (left + right)
		midF := f(mid)

		if math.Abs(midF) < bisectFTol {
			return mid, nil
		}

		if midF*leftF < 0.0 {
			right = mid
		} else {
			left = mid
		}
	}

	return 0.5 * (left + right), nil
}
