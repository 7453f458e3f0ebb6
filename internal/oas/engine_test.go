package oas

import (
	"math"
	"testing"
	"time"

	"bondoas/internal/bond"
	"bondoas/internal/curve"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func flatBondAndCurve(rate float64) (bond.Bond, curve.Curve) {
	b := bond.Bond{
		ID:            "TEST",
		EffectiveDate: mustDate("2020-01-01"),
		MaturityDate:  mustDate("2025-01-01"),
		CouponRate:    0.05,
		CouponFreq:    2,
	}.WithDefaults()

	c := curve.New(b.EffectiveDate)
	c.Append(mustDate("2021-01-01"), rate)
	c.Append(mustDate("2030-01-01"), rate)
	return b, c
}

func TestEngineRejectsValueDateAtOrAfterMaturity(t *testing.T) {
	b, c := flatBondAndCurve(0.03)
	cfg := DefaultModelConfig()
	cfg.YearlySteps = 12
	if _, err := New(cfg, b, c, b.MaturityDate); err != ErrValueDateOutsideBondLife {
		t.Fatalf("expected ErrValueDateOutsideBondLife, got %v", err)
	}
}

func TestPriceAtParWhenCouponEqualsFlatCurve(t *testing.T) {
	b, c := flatBondAndCurve(0.05)
	cfg := DefaultModelConfig()
	cfg.YearlySteps = 12

	e, err := New(cfg, b, c, b.EffectiveDate)
	if err != nil {
		t.Fatalf("unexpected error building engine: %v", err)
	}
	price, err := e.Price()
	if err != nil {
		t.Fatalf("unexpected error pricing: %v", err)
	}
	if math.Abs(price.Clean-100) > 2.0 {
		t.Fatalf("clean price = %v, want ~100 for a par bond on a flat curve at the coupon rate", price.Clean)
	}
}

func TestCalibrateConvergesToTargetClean(t *testing.T) {
	b, c := flatBondAndCurve(0.04)
	cfg := DefaultModelConfig()
	cfg.YearlySteps = 12

	e, err := New(cfg, b, c, b.EffectiveDate)
	if err != nil {
		t.Fatalf("unexpected error building engine: %v", err)
	}

	target := 97.0
	spread, err := e.Calibrate(target)
	if err != nil {
		t.Fatalf("unexpected error calibrating: %v", err)
	}
	if math.Abs(spread) > 0.2 {
		t.Fatalf("spread = %v, outside a plausible range for a ~3pt price gap", spread)
	}

	price, err := e.Price()
	if err != nil {
		t.Fatalf("unexpected error re-pricing: %v", err)
	}
	if math.Abs(price.Clean-target) > 0.05 {
		t.Fatalf("calibrated clean price = %v, want within tolerance of %v", price.Clean, target)
	}
}

func TestCallableBondPriceBoundedByCallPrice(t *testing.T) {
	b, c := flatBondAndCurve(0.02)
	b.NextCallSet = true
	// Callable from the value date on, so the call cap already applies at
	// step 0 and no pre-call coupons sit on top of it.
	b.NextCallDate = b.EffectiveDate
	b.NextCallPrice = 101

	cfg := DefaultModelConfig()
	cfg.YearlySteps = 12

	e, err := New(cfg, b, c, b.EffectiveDate)
	if err != nil {
		t.Fatalf("unexpected error building engine: %v", err)
	}
	price, err := e.Price()
	if err != nil {
		t.Fatalf("unexpected error pricing: %v", err)
	}
	if price.Dirty > 101+1e-6 {
		t.Fatalf("dirty price = %v, should be capped near the call price for a deep-in-the-money call", price.Dirty)
	}
}
