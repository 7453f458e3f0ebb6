package pricing

import (
	"math"
	"testing"
	"time"

	"bondoas/internal/bond"
	"bondoas/internal/curve"
	"bondoas/internal/oas"
	"bondoas/internal/yieldcalc"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPriceAssemblesFullBundle(t *testing.T) {
	b := bond.Bond{
		ID:            "TEST",
		EffectiveDate: mustDate("2020-01-01"),
		MaturityDate:  mustDate("2025-01-01"),
		CouponRate:    0.05,
		CouponFreq:    2,
	}.WithDefaults()

	spot := curve.New(b.EffectiveDate)
	spot.Append(mustDate("2021-01-01"), 0.04)
	spot.Append(mustDate("2030-01-01"), 0.04)

	par := curve.New(b.EffectiveDate)
	par.Append(mustDate("2021-01-01"), 0.035)
	par.Append(mustDate("2030-01-01"), 0.035)

	cfg := oas.DefaultModelConfig()
	cfg.YearlySteps = 12

	result, err := Price(cfg, b, spot, par, b.EffectiveDate, 98.0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Callable {
		t.Fatalf("non-callable bond should not report Callable=true")
	}
	if math.Abs(result.JTD-(98.0-b.RecoveryRate*100)) > 1e-9 {
		t.Fatalf("JTD = %v, mismatch", result.JTD)
	}
	if math.Abs(result.TreasurySpread-(result.YTM-result.TreasuryRate)) > 1e-9 {
		t.Fatalf("TreasurySpread inconsistent with YTM - TreasuryRate")
	}
	if !result.YTWDate.Equal(b.MaturityDate) {
		t.Fatalf("YTWDate = %v, want maturity for a non-callable bond", result.YTWDate)
	}
}

func TestPriceCallableBondReportsYTC(t *testing.T) {
	b := bond.Bond{
		ID:            "TEST",
		EffectiveDate: mustDate("2020-01-01"),
		MaturityDate:  mustDate("2025-01-01"),
		CouponRate:    0.05,
		CouponFreq:    2,
		NextCallSet:   true,
		NextCallDate:  mustDate("2022-01-01"),
		NextCallPrice: 102,
	}.WithDefaults()

	spot := curve.New(b.EffectiveDate)
	spot.Append(mustDate("2021-01-01"), 0.04)
	spot.Append(mustDate("2030-01-01"), 0.04)

	par := curve.New(b.EffectiveDate)
	par.Append(mustDate("2021-01-01"), 0.035)
	par.Append(mustDate("2030-01-01"), 0.035)

	cfg := oas.DefaultModelConfig()
	cfg.YearlySteps = 12

	result, err := Price(cfg, b, spot, par, b.EffectiveDate, 99.0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Callable {
		t.Fatalf("callable bond should report Callable=true")
	}
	wantYTC, _, err := yieldcalc.YTC(b, 99.0, b.EffectiveDate)
	if err != nil {
		t.Fatalf("unexpected error computing YTC: %v", err)
	}
	if math.Abs(result.YTC-wantYTC) > 1e-12 {
		t.Fatalf("YTC = %v, want %v", result.YTC, wantYTC)
	}
}
