// Package bond models a callable fixed-coupon bond and its derived coupon
// schedule. A Bond is built once from a reference record and never mutated
// by the pricing core; yield calculations that need a shortened maturity
// (YTC/YTW) operate on a value copy, never on the canonical bond.
package bond

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the bond descriptor's invariants. These are
// ContractErrors: fatal for the solve, surfaced once at setup.
var (
	ErrBadCouponFreq     = errors.New("bond: coupon frequency must be 1, 2, 4 or 12")
	ErrBadCouponRate     = errors.New("bond: coupon rate must be in [0, 1)")
	ErrScheduleOrder     = errors.New("bond: effective date must be on or before maturity date")
	ErrBadCallDate       = errors.New("bond: next call date must fall between effective date and maturity date")
	ErrBadCallPrice      = errors.New("bond: next call price must be in (0, 2*face]")
	ErrMissingMaturity   = errors.New("bond: maturity date is required")
	ErrMissingEffective  = errors.New("bond: effective date is required")
	ErrValueDateAfterMat = errors.New("bond: value date is after maturity date")
)

// Bond is an immutable descriptor for a callable fixed-coupon bond.
type Bond struct {
	// ID is an opaque identifier (e.g. a CUSIP); the core never interprets it.
	ID string

	IssueDate     time.Time
	EffectiveDate time.Time
	MaturityDate  time.Time

	CouponRate float64 // decimal, e.g. 0.045
	CouponFreq int     // periods per year: 1, 2, 4 or 12
	DayCount   string  // default "ACT/360"

	FaceValue   float64 // default 100
	Redemption  float64 // default 100
	NextCallSet bool
	NextCallDate  time.Time
	NextCallPrice float64

	RecoveryRate float64 // default 0.75, used for JTD
}

// WithDefaults returns a copy of b with the documented defaults applied for
// any zero-valued optional field.
func (b Bond) WithDefaults() Bond {
	if b.FaceValue == 0 {
		b.FaceValue = 100
	}
	if b.Redemption == 0 {
		b.Redemption = 100
	}
	if b.DayCount == "" {
		b.DayCount = "ACT/360"
	}
	if b.RecoveryRate == 0 {
		b.RecoveryRate = 0.75
	}
	return b
}

// Validate checks the bond descriptor's invariants. It does not check the
// first-coupon ordering directly; BuildSchedule enforces that by
// construction.
func (b Bond) Validate() error {
	if b.MaturityDate.IsZero() {
		return ErrMissingMaturity
	}
	if b.EffectiveDate.IsZero() {
		return ErrMissingEffective
	}
	if b.EffectiveDate.After(b.MaturityDate) {
		return ErrScheduleOrder
	}
	switch b.CouponFreq {
	case 1, 2, 4, 12:
	default:
		return ErrBadCouponFreq
	}
	if b.CouponRate < 0 || b.CouponRate >= 1 {
		return ErrBadCouponRate
	}
	if b.NextCallSet {
		if b.NextCallDate.Before(b.EffectiveDate) || b.NextCallDate.After(b.MaturityDate) {
			return ErrBadCallDate
		}
		if b.NextCallPrice <= 0 || b.NextCallPrice > 2*b.FaceValue {
			return ErrBadCallPrice
		}
	}
	return nil
}

// WithMaturity returns a value copy of b with the maturity and redemption
// overridden — the shape YTC/YTW use so the canonical bond is never mutated.
func (b Bond) WithMaturity(maturity time.Time, redemption float64) Bond {
	cp := b
	cp.MaturityDate = maturity
	cp.Redemption = redemption
	return cp
}

// IsCallable reports whether the bond carries a next call date.
func (b Bond) IsCallable() bool {
	return b.NextCallSet
}

// JTD returns the jump-to-default loss for a given market price:
// price - recovery*100.
func (b Bond) JTD(marketPrice float64) float64 {
	return marketPrice - b.RecoveryRate*100
}

func (b Bond) String() string {
	return fmt.Sprintf("%s %.3f%% %s", b.ID, b.CouponRate*100, b.MaturityDate.Format("2006-01-02"))
}
