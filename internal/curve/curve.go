// Package curve holds an ordered zero-rate term structure sampled at fixed
// dates, with nearest/linear interpolation for arbitrary query dates.
package curve

import (
	"errors"
	"time"

	"bondoas/internal/dateutil"
)

// ErrEmptyCurve is returned when a rate is queried on a curve with no
// samples.
var ErrEmptyCurve = errors.New("curve: no samples loaded")

// Sample is one (date, zero-rate) point on the curve, with its serial date
// cached for interpolation arithmetic.
type Sample struct {
	Date   time.Time
	Rate   float64 // semi-annually compounded decimal
	Serial float64
}

// Curve is a zero-rate term structure for a given value date, plus the two
// Hull-White policy constants carried alongside it.
type Curve struct {
	ValueDate     time.Time
	Samples       []Sample
	IRVol         float64 // annualized short-rate volatility, sigma
	MeanReversion float64 // a
}

// New returns a Curve for valueDate with the default policy constants.
func New(valueDate time.Time) Curve {
	return Curve{
		ValueDate:     valueDate,
		IRVol:         0.20,
		MeanReversion: 0.05,
	}
}

// Append adds a sample. Samples must be appended in strictly increasing
// date order; callers that load from an unordered source should sort first.
func (c *Curve) Append(rateDate time.Time, rate float64) {
	c.Samples = append(c.Samples, Sample{
		Date:   rateDate,
		Rate:   rate,
		Serial: dateutil.SerialDate(rateDate),
	})
}

// RateAt returns the zero rate for date. When interpolate is true, the rate
// is linearly interpolated between the bracketing samples on serial date;
// otherwise the nearer neighbor is returned (ties favor the earlier
// sample). Out-of-range queries clamp to the first or last sample.
func (c Curve) RateAt(date time.Time, interpolate bool) (float64, error) {
	return c.RateAtSerial(dateutil.SerialDate(date), interpolate)
}

// RateAtSerial is RateAt for a caller that already has a serial date (the
// lattice builder queries rates at fractional-year offsets that do not
// correspond to a calendar time.Time).
func (c Curve) RateAtSerial(serial float64, interpolate bool) (float64, error) {
	if len(c.Samples) == 0 {
		return 0, ErrEmptyCurve
	}

	for i, s := range c.Samples {
		if serial > s.Serial {
			continue
		}
		if i == 0 {
			return s.Rate, nil
		}
		prev := c.Samples[i-1]
		if interpolate {
			period := s.Serial - prev.Serial
			dt := serial - prev.Serial
			return prev.Rate + (s.Rate-prev.Rate)*dt/period, nil
		}
		if serial-prev.Serial <= s.Serial-serial {
			return prev.Rate, nil
		}
		return s.Rate, nil
	}

	return c.Samples[len(c.Samples)-1].Rate, nil
}
