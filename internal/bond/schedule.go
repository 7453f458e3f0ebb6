package bond

import (
	"time"

	"bondoas/internal/dateutil"
)

// Coupon is one entry in a bond's coupon schedule: the cash coupon paid on
// Date at Rate, with Tenor the year fraction from this entry's date to the
// next entry's date under the bond's day count (zero on the terminal entry).
// The coupon paid at entry k is therefore Rate * Tenor of entry k-1.
//
// Entry 0 is the "stub" anchored at the effective date; entries 1..N are
// real coupons; entry N coincides with maturity.
type Coupon struct {
	Date  time.Time
	Rate  float64
	Tenor float64
}

// BuildSchedule constructs the coupon schedule for b: it steps backward
// from maturity in 12/frequency-month increments to find the first real
// coupon date, then steps forward emitting an entry every period, stopping
// once the next step would land within 15 days of maturity, and always
// closes with a terminal entry at maturity.
func BuildSchedule(b Bond) []Coupon {
	monthsPerPeriod := 12 / b.CouponFreq

	schedule := []Coupon{{Date: b.EffectiveDate, Rate: b.CouponRate}}

	firstCouponDate := b.MaturityDate
	for curr := b.MaturityDate; curr.After(b.EffectiveDate); curr = curr.AddDate(0, -monthsPerPeriod, 0) {
		firstCouponDate = curr
	}

	maxDate := b.MaturityDate.AddDate(0, 0, -15)

	curr := firstCouponDate
	for curr.Before(maxDate) {
		prev := &schedule[len(schedule)-1]
		prev.Tenor = dateutil.YearFrac(prev.Date, curr, b.DayCount)
		schedule = append(schedule, Coupon{Date: curr, Rate: b.CouponRate})
		curr = curr.AddDate(0, monthsPerPeriod, 0)
	}

	prev := &schedule[len(schedule)-1]
	prev.Tenor = dateutil.YearFrac(prev.Date, b.MaturityDate, b.DayCount)
	schedule = append(schedule, Coupon{Date: b.MaturityDate, Rate: b.CouponRate})

	return schedule
}

// NextDateIdx returns the smallest index i such that schedule[i].Date is on
// or after valueDate. If no such entry exists it returns len(schedule).
func NextDateIdx(schedule []Coupon, valueDate time.Time) int {
	for i, c := range schedule {
		if !c.Date.Before(valueDate) {
			return i
		}
	}
	return len(schedule)
}

// ScheduleTenorSum returns the sum of tenors across entries 0..N, used by
// the invariant that it equals the year fraction from effective to
// maturity.
func ScheduleTenorSum(schedule []Coupon) float64 {
	var sum float64
	for _, c := range schedule {
		sum += c.Tenor
	}
	return sum
}
