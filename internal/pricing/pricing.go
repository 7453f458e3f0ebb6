// Package pricing assembles the yield, spread and option-adjusted-spread
// results for a single bond into one immutable bundle.
package pricing

import (
	"time"

	"bondoas/internal/bond"
	"bondoas/internal/curve"
	"bondoas/internal/oas"
	"bondoas/internal/yieldcalc"
)

// Result is the full output of pricing one bond as of one value date
// against one market price.
type Result struct {
	Bond        bond.Bond
	ValueDate   time.Time
	MarketPrice float64

	YTM float64

	YTC       float64
	Callable  bool

	YTW     float64
	YTWDate time.Time

	TreasuryTenor  time.Time
	TreasuryRate   float64
	TreasurySpread float64

	JTD float64

	OAS float64
}

// Price runs the full yield/spread/OAS pipeline for bond b against a
// spot curve (used to build the OAS lattice) and a par curve (used for the
// treasury spread lookup).
func Price(cfg oas.ModelConfig, b bond.Bond, spotCurve, parCurve curve.Curve, valueDate time.Time, marketPrice, seedSpread float64) (Result, error) {
	r := Result{
		Bond:        b,
		ValueDate:   valueDate,
		MarketPrice: marketPrice,
		JTD:         b.JTD(marketPrice),
	}

	ytm, err := yieldcalc.YTM(b, marketPrice, valueDate)
	if err != nil {
		return Result{}, err
	}
	r.YTM = ytm

	ytc, callable, err := yieldcalc.YTC(b, marketPrice, valueDate)
	if err != nil {
		return Result{}, err
	}
	r.YTC, r.Callable = ytc, callable

	ytw, ytwDate, err := yieldcalc.YTW(b, marketPrice, valueDate)
	if err != nil {
		return Result{}, err
	}
	r.YTW, r.YTWDate = ytw, ytwDate

	tenor, parRate, err := yieldcalc.TreasurySpread(b, parCurve, true)
	if err != nil {
		return Result{}, err
	}
	r.TreasuryTenor, r.TreasuryRate = tenor, parRate
	r.TreasurySpread = ytm - parRate

	engine, err := oas.New(cfg, b, spotCurve, valueDate)
	if err != nil {
		return Result{}, err
	}
	engine.ShiftSpread(seedSpread)
	spread, err := engine.Calibrate(marketPrice)
	if err != nil {
		return Result{}, err
	}
	r.OAS = spread

	return r, nil
}
