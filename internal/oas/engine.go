package oas

import (
	"errors"
	"math"
	"time"

	"bondoas/internal/bond"
	"bondoas/internal/curve"
	"bondoas/internal/dateutil"
	"bondoas/internal/lattice"
)

// ErrValueDateOutsideBondLife is returned when valueDate is on or after the
// bond's maturity date: there is nothing left to price.
var ErrValueDateOutsideBondLife = errors.New("oas: value date is outside the bond's remaining life")

// Engine prices a single callable bond on its calibrated short-rate tree.
// An Engine is built once per (bond, curve, valueDate) and can be repriced
// repeatedly at different credit spreads without rebuilding the tree.
type Engine struct {
	cfg       ModelConfig
	bond      bond.Bond
	valueDate time.Time

	tree *lattice.Tree

	numSteps int
	dT       float64

	couponSchedule []float64
	aiSchedule     []float64
	callPrice      []float64

	accruedInterest float64
	spread          float64
}

// New builds and calibrates the tree for bond b against curve c as of
// valueDate, and derives the coupon/accrued-interest/call schedules.
func New(cfg ModelConfig, b bond.Bond, c curve.Curve, valueDate time.Time) (*Engine, error) {
	if !valueDate.Before(b.MaturityDate) {
		return nil, ErrValueDateOutsideBondLife
	}

	valueDateSerial := dateutil.SerialDate(valueDate)
	years := (dateutil.SerialDate(b.MaturityDate) - valueDateSerial) / 365.25
	dT := 1.0 / float64(cfg.YearlySteps)
	numSteps := int(years/dT + 0.1)

	tree, err := lattice.Build(c, valueDateSerial, numSteps, cfg.YearlySteps, c.IRVol, c.MeanReversion)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		bond:      b,
		valueDate: valueDate,
		tree:      tree,
		numSteps:  numSteps,
		dT:        dT,
	}

	schedule := bond.BuildSchedule(b)
	e.setAccruedInterest(schedule)
	e.setCouponSchedule(schedule, valueDateSerial)
	e.setAISchedule(schedule, valueDateSerial)
	e.setCallSchedule(valueDateSerial)

	return e, nil
}

func (e *Engine) setAccruedInterest(schedule []bond.Coupon) {
	idx := bond.NextDateIdx(schedule, e.valueDate)
	if idx == 0 || idx > len(schedule)-1 {
		e.accruedInterest = 0
		return
	}
	e.accruedInterest = e.bond.FaceValue * schedule[idx-1].Rate *
		dateutil.YearFrac(schedule[idx-1].Date, e.valueDate, e.bond.DayCount)
}

// setCouponSchedule places each remaining coupon's cash amount at the
// lattice step nearest its pay date.
func (e *Engine) setCouponSchedule(schedule []bond.Coupon, valueDateSerial float64) {
	e.couponSchedule = make([]float64, e.numSteps+1)

	nextIdx := bond.NextDateIdx(schedule, e.valueDate)
	if nextIdx < 1 {
		nextIdx = 1
	}

	for i := nextIdx; i < len(schedule); i++ {
		c := schedule[i]
		amount := e.bond.FaceValue * schedule[i-1].Rate * schedule[i-1].Tenor

		steps := (dateutil.SerialDate(c.Date) - valueDateSerial) / 365.25 / e.dT
		k := int(steps + 0.5)
		if k < 0 {
			k = 0
		}
		if k > e.numSteps {
			k = e.numSteps
		}
		e.couponSchedule[k] = amount
	}
}

// setAISchedule linearly accretes interest since the last coupon date,
// evaluated at each step's calendar time. The terminal step is left at
// zero: the terminal payoff already carries redemption and the call
// trigger's own accrued interest.
func (e *Engine) setAISchedule(schedule []bond.Coupon, valueDateSerial float64) {
	e.aiSchedule = make([]float64, e.numSteps+1)
	nextIdx := bond.NextDateIdx(schedule, e.valueDate)

	for i := 0; i < e.numSteps; i++ {
		t := float64(i)*e.dT*365.25 + valueDateSerial

		for nextIdx < len(schedule) && t > dateutil.SerialDate(schedule[nextIdx].Date) {
			nextIdx++
		}

		if nextIdx == 0 || nextIdx > len(schedule)-1 {
			e.aiSchedule[i] = 0
			continue
		}

		days := t - dateutil.SerialDate(schedule[nextIdx-1].Date)
		e.aiSchedule[i] = e.bond.FaceValue * schedule[nextIdx-1].Rate * dateutil.YearFracDays(days, e.bond.DayCount)
	}
}

func (e *Engine) setCallSchedule(valueDateSerial float64) {
	e.callPrice = make([]float64, e.numSteps+1)
	for i := range e.callPrice {
		e.callPrice[i] = math.Inf(1)
	}
	if !e.bond.IsCallable() {
		return
	}

	callSerial := dateutil.SerialDate(e.bond.NextCallDate)
	for i := 0; i < e.numSteps; i++ {
		t := float64(i)*e.dT*365.25 + valueDateSerial
		if t >= callSerial {
			e.callPrice[i] = e.bond.NextCallPrice
		}
	}
}

// ShiftSpread overlays a credit spread shift across the whole tree. A
// positive spread widens every rate; Price reflects the shift immediately.
func (e *Engine) ShiftSpread(delta float64) {
	e.tree.ShiftCreditSpread(delta)
	e.spread += delta
}

// Spread returns the spread currently overlaid on the tree.
func (e *Engine) Spread() float64 { return e.spread }

// priceResult carries both price conventions out of backward induction.
type priceResult struct {
	Dirty float64
	Clean float64
}

// Price runs backward induction over the calibrated (and possibly
// spread-shifted) tree and returns the dirty and clean price.
func (e *Engine) Price() (priceResult, error) {
	n := e.numSteps
	jMax := e.tree.JMax
	priceLength := min(n+1, jMax)
	if priceLength <= 0 {
		return priceResult{}, lattice.ErrIndexOutOfRange
	}

	prob := e.tree.Prob
	probUp, probMid, probDown := prob.ProbUp(), prob.ProbMid(), prob.ProbDown()

	priceUp1 := make([]float64, priceLength)
	priceDown1 := make([]float64, priceLength)
	priceUp := make([]float64, priceLength)
	priceDown := make([]float64, priceLength)

	redemption := e.bond.Redemption
	terminalCallPay := e.callPrice[n] + e.aiSchedule[n]
	terminal := redemption + e.couponSchedule[n]
	if terminal >= e.callPrice[n] {
		terminal = math.Min(terminal, terminalCallPay)
	}
	priceNode1 := terminal
	for i := 0; i < priceLength; i++ {
		priceUp1[i] = terminal
		priceDown1[i] = terminal
	}

	var priceNode float64

	for i := n - 1; i >= 0; i-- {
		branch := e.tree.Branches[i]
		size := branch.Size()
		callPay := e.callPrice[i] + e.aiSchedule[i]
		callTrigger := e.callPrice[i]

		for j := 0; j < size; j++ {
			rate := branch.UpRate(j)
			var p1, p2, p3, v1, v2, v3 float64
			if j < jMax-1 {
				idx, err := prob.Index(j + 1)
				if err != nil {
					return priceResult{}, err
				}
				p1, p2, p3 = probUp[idx], probMid[idx], probDown[idx]
				v1 = priceUp1[j+1]
				v2 = priceUp1[j]
				if j > 0 {
					v3 = priceUp1[j-1]
				} else {
					v3 = priceNode1
				}
			} else {
				p1, p2, p3 = prob.TopProbHigh(), prob.TopProbMid(), prob.TopProbLow()
				v1, v2, v3 = priceUp1[j], priceUp1[j-1], priceUp1[j-2]
			}
			priceUp[j] = (p1*v1+p2*v2+p3*v3)*math.Exp(-rate*e.dT) + e.couponSchedule[i]
			if priceUp[j] >= callTrigger {
				priceUp[j] = math.Min(priceUp[j], callPay)
			}
		}

		rate := branch.NodeRate()
		idx, err := prob.Index(0)
		if err != nil {
			return priceResult{}, err
		}
		p1, p2, p3 := probUp[idx], probMid[idx], probDown[idx]
		v1, v2, v3 := priceUp1[0], priceNode1, priceDown1[0]
		priceNode = (p1*v1+p2*v2+p3*v3)*math.Exp(-rate*e.dT) + e.couponSchedule[i]
		if priceNode >= callTrigger {
			priceNode = math.Min(priceNode, callPay)
		}

		for j := 0; j < size; j++ {
			rate := branch.DownRate(j)
			var p1, p2, p3, v1, v2, v3 float64
			if j < jMax-1 {
				idx, err := prob.Index(-j - 1)
				if err != nil {
					return priceResult{}, err
				}
				p1, p2, p3 = probUp[idx], probMid[idx], probDown[idx]
				if j > 0 {
					v1 = priceDown1[j-1]
				} else {
					v1 = priceNode1
				}
				v2 = priceDown1[j]
				v3 = priceDown1[j+1]
			} else {
				p1, p2, p3 = prob.BottomProbHigh(), prob.BottomProbMid(), prob.BottomProbLow()
				v1, v2, v3 = priceDown1[j-2], priceDown1[j-1], priceDown1[j]
			}
			priceDown[j] = (p1*v1+p2*v2+p3*v3)*math.Exp(-rate*e.dT) + e.couponSchedule[i]
			if priceDown[j] >= callTrigger {
				priceDown[j] = math.Min(priceDown[j], callPay)
			}
		}

		if i > 0 {
			copy(priceDown1, priceDown)
			copy(priceUp1, priceUp)
			priceNode1 = priceNode
		}
	}

	return priceResult{Dirty: priceNode, Clean: priceNode - e.accruedInterest}, nil
}

// Calibrate solves for the credit spread (overlaid on the already-seeded
// spread) that reprices the tree to targetClean, starting the Newton
// search from the engine's current spread.
func (e *Engine) Calibrate(targetClean float64) (float64, error) {
	price, err := e.Price()
	if err != nil {
		return 0, err
	}
	diff := price.Clean - targetClean

	for iter := 0; math.Abs(diff) > e.cfg.NewtonTolerance && iter < e.cfg.NewtonMaxIterations; iter++ {
		bump := e.cfg.NewtonBumpSpread
		e.ShiftSpread(bump)
		bumped, err := e.Price()
		if err != nil {
			return 0, err
		}

		rho := (bumped.Dirty - price.Dirty) / bump
		if math.Abs(rho) < 0.001 {
			return e.spread, nil
		}

		delta := diff / rho
		e.ShiftSpread(-bump - delta)

		price, err = e.Price()
		if err != nil {
			return 0, err
		}
		diff = price.Clean - targetClean
	}

	return e.spread, nil
}
