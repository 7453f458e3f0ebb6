package yieldcalc

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

func plainBond() bond.Bond {
	return bond.Bond{
		ID:            "TEST",
		EffectiveDate: mustDate("2020-01-01"),
		MaturityDate:  mustDate("2030-01-01"),
		CouponRate:    0.05,
		CouponFreq:    2,
	}.WithDefaults()
}

func callableBond() bond.Bond {
	b := plainBond()
	b.NextCallSet = true
	b.NextCallDate = mustDate("2025-01-01")
	b.NextCallPrice = 102
	return b
}

func TestCleanPriceAtParAtCouponRate(t *testing.T) {
	// Under ACT/360 each coupon is rate * days/360, which pays more than the
	// nominal rate per year and prices above par; ACT/365 accrual pays the
	// nominal rate, so the bond prices at par at its coupon-rate yield.
	b := plainBond()
	b.DayCount = "ACT/365"
	price := CleanPrice(b, 0.05, b.EffectiveDate)
	if math.Abs(price-100) > 0.5 {
		t.Fatalf("price at coupon-rate yield = %v, want ~100", price)
	}
}

func TestCleanPriceDecreasesWithYield(t *testing.T) {
	b := plainBond()
	low := CleanPrice(b, 0.03, b.EffectiveDate)
	high := CleanPrice(b, 0.07, b.EffectiveDate)
	if !(low > high) {
		t.Fatalf("price should decrease as yield rises: low=%v high=%v", low, high)
	}
}

func TestCleanPriceAfterMaturityIsZero(t *testing.T) {
	b := plainBond()
	price := CleanPrice(b, 0.05, b.MaturityDate.AddDate(1, 0, 0))
	if price != 0 {
		t.Fatalf("price after maturity = %v, want 0", price)
	}
}

func TestYTMRoundTripsCleanPrice(t *testing.T) {
	b := plainBond()
	vd := mustDate("2022-01-01")
	price := CleanPrice(b, 0.06, vd)
	y, err := YTM(b, price, vd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(y-0.06) > 1e-4 {
		t.Fatalf("YTM = %v, want ~0.06", y)
	}
}

func TestYTCNotCallableReturnsFalse(t *testing.T) {
	b := plainBond()
	_, ok, err := YTC(b, 100, b.EffectiveDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("YTC should report not-ok for a non-callable bond")
	}
}

func TestYTCUsesCallDateAndPrice(t *testing.T) {
	b := callableBond()
	vd := mustDate("2022-01-01")
	price := CleanPrice(b.WithMaturity(b.NextCallDate, b.NextCallPrice), 0.07, vd)
	y, ok, err := YTC(b, price, vd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true for a callable bond")
	}
	if math.Abs(y-0.07) > 1e-4 {
		t.Fatalf("YTC = %v, want ~0.07", y)
	}
}

func TestYTWFallsBackToMaturityWhenNotCallable(t *testing.T) {
	b := plainBond()
	vd := mustDate("2022-01-01")
	price := CleanPrice(b, 0.05, vd)
	y, date, err := YTW(b, price, vd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !date.Equal(b.MaturityDate) {
		t.Fatalf("YTW date = %v, want maturity %v", date, b.MaturityDate)
	}
	if math.Abs(y-0.05) > 1e-4 {
		t.Fatalf("YTW = %v, want ~0.05", y)
	}
}

func TestYTWPicksLowerOfCallAndMaturity(t *testing.T) {
	b := callableBond()
	vd := mustDate("2022-01-01")
	price := CleanPrice(b.WithMaturity(b.NextCallDate, b.NextCallPrice), 0.09, vd)
	y, date, err := YTW(b, price, vd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if date.After(b.MaturityDate) || date.Before(b.NextCallDate) {
		t.Fatalf("YTW date %v outside [call, maturity]", date)
	}
	if y > 0.09+1e-3 {
		t.Fatalf("YTW = %v, want <= ~0.09", y)
	}
}

func TestTreasurySpreadLooksUpAtMaturity(t *testing.T) {
	b := plainBond()
	c := curve.New(b.EffectiveDate)
	c.Append(b.MaturityDate.AddDate(0, 0, -1), 0.02)
	c.Append(b.MaturityDate.AddDate(0, 0, 1), 0.04)
	tenor, rate, err := TreasurySpread(b, c, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tenor.Equal(b.MaturityDate) {
		t.Fatalf("tenor = %v, want %v", tenor, b.MaturityDate)
	}
	if math.Abs(rate-0.03) > 1e-6 {
		t.Fatalf("rate = %v, want ~0.03", rate)
	}
}
