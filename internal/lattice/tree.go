package lattice

import (
	"math"

	"bondoas/internal/dateutil"
)

// Tree is a fully calibrated short-rate lattice: one TreeBranch per time
// step, each scaled so the tree reproduces the input curve's discount
// factors exactly at every step.
type Tree struct {
	Branches []*TreeBranch
	Prob     NodeProbability
	DT       float64
	NumSteps int
	JMax     int
	U, D     float64
}

// Build constructs and calibrates a tree with numSteps steps of length
// 1/yearlySteps years, rooted at valueDateSerial, under volatility vol and
// mean reversion a, reading zero rates from src.
func Build(src RateSource, valueDateSerial float64, numSteps, yearlySteps int, vol, meanReversion float64) (*Tree, error) {
	dT := 1.0 / float64(yearlySteps)
	jMax := jMaxFromStep(yearlySteps, meanReversion)
	u := math.Exp(vol * math.Sqrt(3.0*dT))
	d := 1.0 / u

	prob := NodeProbability{}
	prob.SetJMax(jMax)
	prob.SetNodeProbability(dT, meanReversion)

	branches := make([]*TreeBranch, numSteps+1)
	for i := 0; i <= numSteps; i++ {
		length := min(i, jMax)
		b := NewTreeBranch(length)
		b.SetUpBranch(u, jMax)
		b.SetDownBranch(d, jMax)
		branches[i] = b
	}

	if err := branches[0].AdjustTreeNodes(src, valueDateSerial, dT, nil, &prob); err != nil {
		return nil, err
	}

	for i := 1; i <= numSteps; i++ {
		dateSerial := valueDateSerial + float64(i+1)*dT*365.25
		rate, err := src.RateAtSerial(dateSerial, true)
		if err != nil {
			return nil, err
		}
		rate = dateutil.DCtoCC(rate, 2)
		dF := math.Exp(-rate * float64(i+1) * dT)

		if err := branches[i].AdjustTreeNodes(src, valueDateSerial, dT, branches[i-1], &prob); err != nil {
			return nil, err
		}

		multiplier, err := branches[i].CalcRatesAdjustMultiplier(dT, dF)
		if err != nil {
			return nil, err
		}
		branches[i].AdjustRatesByMultiplier(multiplier)
	}

	return &Tree{
		Branches: branches,
		Prob:     prob,
		DT:       dT,
		NumSteps: numSteps,
		JMax:     jMax,
		U:        u,
		D:        d,
	}, nil
}

// ShiftCreditSpread adds spread to every rate on every branch.
func (t *Tree) ShiftCreditSpread(spread float64) {
	for _, b := range t.Branches {
		b.AdjustRatesByCreditSpread(spread)
	}
}

// UnshiftCreditSpread undoes ShiftCreditSpread.
func (t *Tree) UnshiftCreditSpread(spread float64) {
	for _, b := range t.Branches {
		b.AdjustRatesByRemoveCreditSpread(spread)
	}
}
