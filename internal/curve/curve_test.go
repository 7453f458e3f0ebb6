package curve

import (
	"math"
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleCurve() Curve {
	c := New(mustDate("2020-01-01"))
	c.Append(mustDate("2020-07-01"), 0.01)
	c.Append(mustDate("2021-01-01"), 0.02)
	return c
}

func TestRateAtInterpolated(t *testing.T) {
	c := sampleCurve()
	got, err := c.RateAt(mustDate("2020-10-01"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.015) > 1e-6 {
		t.Fatalf("RateAt interpolated = %v, want ~0.015", got)
	}
}

func TestRateAtNearestFavorsEarlier(t *testing.T) {
	c := sampleCurve()
	got, err := c.RateAt(mustDate("2020-10-01"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.01 {
		t.Fatalf("RateAt nearest = %v, want 0.01", got)
	}
}

func TestRateAtLinearOverFullDomain(t *testing.T) {
	c := sampleCurve()
	d1, d2 := c.Samples[0], c.Samples[1]
	for _, alpha := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		serial := alpha*d1.Serial + (1-alpha)*d2.Serial
		want := alpha*d1.Rate + (1-alpha)*d2.Rate
		got, err := c.RateAtSerial(serial, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("alpha=%v: got %v, want %v", alpha, got, want)
		}
	}
}

func TestRateAtEmptyCurve(t *testing.T) {
	c := New(mustDate("2020-01-01"))
	if _, err := c.RateAt(mustDate("2020-01-01"), true); err != ErrEmptyCurve {
		t.Fatalf("expected ErrEmptyCurve, got %v", err)
	}
}

func TestRateAtClampsOutOfRange(t *testing.T) {
	c := sampleCurve()
	before, _ := c.RateAt(mustDate("2019-01-01"), true)
	if before != 0.01 {
		t.Fatalf("before range = %v, want 0.01", before)
	}
	after, _ := c.RateAt(mustDate("2030-01-01"), true)
	if after != 0.02 {
		t.Fatalf("after range = %v, want 0.02", after)
	}
}
