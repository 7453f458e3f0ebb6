// Package yieldcalc implements the closed-form clean-price-from-yield
// calculation and the YTM/YTC/YTW bisection solves that share the bond's
// coupon schedule with the OAS lattice.
package yieldcalc

import (
	"math"
	"time"

	"bondoas/internal/bond"
	"bondoas/internal/curve"
	"bondoas/internal/dateutil"
)

// CleanPrice returns the clean price of b at yield y, as of valueDate. It
// returns 0 if valueDate is after the bond's maturity.
func CleanPrice(b bond.Bond, y float64, valueDate time.Time) float64 {
	if valueDate.After(b.MaturityDate) {
		return 0
	}

	schedule := bond.BuildSchedule(b)
	last := len(schedule) - 1
	idx := bond.NextDateIdx(schedule, valueDate)

	var accrued float64
	if idx > 0 && idx <= last {
		accrued = b.FaceValue * schedule[idx-1].Rate * dateutil.YearFrac(schedule[idx-1].Date, valueDate, b.DayCount)
	}

	freq := float64(b.CouponFreq)
	var dirty float64

	if idx <= last {
		tMaturity := yearsFrom(valueDate, schedule[last].Date)
		if tMaturity >= 0 {
			dirty += b.Redemption * math.Pow(1+y/freq, -tMaturity*freq)
		}
	}

	start := idx
	if start < 1 {
		start = 1
	}
	for k := start; k <= last; k++ {
		t := yearsFrom(valueDate, schedule[k].Date)
		if t < 0 {
			continue
		}
		amount := b.FaceValue * schedule[k-1].Rate * schedule[k-1].Tenor
		dirty += amount * math.Pow(1+y/freq, -t*freq)
	}

	return dirty - accrued
}

// yearsFrom converts a calendar span to years using the 365.25-day
// convention the lattice and yield solves share.
func yearsFrom(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / 365.25
}

// YTM solves for the yield to maturity that reproduces price as of
// valueDate.
func YTM(b bond.Bond, price float64, valueDate time.Time) (float64, error) {
	return dateutil.Bisect(func(y float64) float64 {
		return CleanPrice(b, y, valueDate) - price
	})
}

// YTC returns the yield to the bond's next call date, computed on a
// maturity-overridden copy of b. It returns (0, false, nil) when the bond
// is not callable.
func YTC(b bond.Bond, price float64, valueDate time.Time) (ytc float64, ok bool, err error) {
	if !b.IsCallable() {
		return 0, false, nil
	}
	callBond := b.WithMaturity(b.NextCallDate, b.NextCallPrice)
	y, err := YTM(callBond, price, valueDate)
	if err != nil {
		return 0, false, err
	}
	return y, true, nil
}

// callStepDays is the candidate-date step YTW walks from the next call date
// to maturity.
const callStepDays = 7

// YTW enumerates the straight YTM plus one candidate "call" date every
// callStepDays from the next call date to maturity, and returns the
// minimum yield together with the date that achieves it.
func YTW(b bond.Bond, price float64, valueDate time.Time) (ytw float64, ytwDate time.Time, err error) {
	ytw, err = YTM(b, price, valueDate)
	if err != nil {
		return 0, time.Time{}, err
	}
	ytwDate = b.MaturityDate

	if !b.IsCallable() {
		return ytw, ytwDate, nil
	}

	for callDate := b.NextCallDate; !callDate.After(b.MaturityDate); callDate = callDate.AddDate(0, 0, callStepDays) {
		candidate := b.WithMaturity(callDate, b.NextCallPrice)
		y, cerr := YTM(candidate, price, valueDate)
		if cerr != nil {
			continue
		}
		if y < ytw {
			ytw = y
			ytwDate = callDate
		}
	}

	return ytw, ytwDate, nil
}

// TreasurySpread looks up the treasury rate at the bond's maturity tenor on
// the given curve. The caller computes ytm - rate.
func TreasurySpread(b bond.Bond, treasuryCurve curve.Curve, interpolate bool) (tenor time.Time, rate float64, err error) {
	rate, err = treasuryCurve.RateAt(b.MaturityDate, interpolate)
	return b.MaturityDate, rate, err
}
