package lattice

import (
	"errors"
	"math"

	"bondoas/internal/dateutil"
)

// ErrMultiplierBracket is returned by CalcRatesAdjustMultiplier when the
// discount-factor target falls outside what any multiplier in [0, 1] on
// this branch's rates can reach.
var ErrMultiplierBracket = errors.New("lattice: no multiplier bracket reproduces the target discount factor")

// RateSource supplies a zero rate at an arbitrary serial-date offset; a
// curve.Curve satisfies this directly.
type RateSource interface {
	RateAtSerial(serial float64, interpolate bool) (float64, error)
}

// TreeBranch is one time step of the short-rate tree: a center node plus
// `size` nodes above and below it, each carrying a continuously-compounded
// short rate and an Arrow-Debreu Q-weight (the value today of $1 paid at
// that node and nothing elsewhere).
type TreeBranch struct {
	size int
	node float64
	up   []float64
	down []float64

	qNode float64
	qUp   []float64
	qDown []float64
}

// NewTreeBranch returns a branch with n nodes on each side of center.
func NewTreeBranch(n int) *TreeBranch {
	b := &TreeBranch{}
	b.SetBranch(n)
	return b
}

// SetBranch (re)sizes the branch to n nodes on each side of center.
func (t *TreeBranch) SetBranch(n int) {
	t.size = n
	t.node = 1.0
	t.up = make([]float64, n)
	t.down = make([]float64, n)
	t.qNode = 0
	t.qUp = make([]float64, n)
	t.qDown = make([]float64, n)
}

// SetUpBranch fills the up-multiplier ladder: up[i] = up[i-1]*u while i is
// below limit (the reflecting level), and flat beyond it.
func (t *TreeBranch) SetUpBranch(u float64, limit int) {
	if t.size <= 0 {
		return
	}
	t.up[0] = u
	for i := 1; i < t.size; i++ {
		if i < limit {
			t.up[i] = t.up[i-1] * u
		} else {
			t.up[i] = t.up[i-1]
		}
	}
}

// SetDownBranch is SetUpBranch's mirror for the down side.
func (t *TreeBranch) SetDownBranch(d float64, limit int) {
	if t.size <= 0 {
		return
	}
	t.down[0] = d
	for i := 1; i < t.size; i++ {
		if i < limit {
			t.down[i] = t.down[i-1] * d
		} else {
			t.down[i] = t.down[i-1]
		}
	}
}

func (t *TreeBranch) Size() int           { return t.size }
func (t *TreeBranch) Node() float64       { return t.node }
func (t *TreeBranch) UpRate(i int) float64   { return t.up[i] }
func (t *TreeBranch) DownRate(i int) float64 { return t.down[i] }
func (t *TreeBranch) NodeRate() float64   { return t.node }
func (t *TreeBranch) QNode() float64      { return t.qNode }
func (t *TreeBranch) QUpNode() []float64  { return t.qUp }
func (t *TreeBranch) QDownNode() []float64 { return t.qDown }

// AdjustTreeNodes propagates Arrow-Debreu Q-weights from prev into t. When
// t has zero size (the root branch) it instead seeds the branch's single
// node rate directly from src at todaySerial + one step, and gives it full
// weight. prev is nil only in that root case.
func (t *TreeBranch) AdjustTreeNodes(src RateSource, todaySerial, dT float64, prev *TreeBranch, p *NodeProbability) error {
	jMax := p.JMax()

	if t.size == 0 {
		rate, err := src.RateAtSerial(todaySerial+365.25*dT, true)
		if err != nil {
			return err
		}
		t.node = dateutil.DCtoCC(rate, 2)
		t.qNode = 1
		return nil
	}

	preQUp, preQDown, preQNode := prev.qUp, prev.qDown, prev.qNode
	preRUp, preRDown, preRNode := prev.up, prev.down, prev.node
	preSize := prev.size

	probUp, probMid, probDown := p.ProbUp(), p.ProbMid(), p.ProbDown()

	var q1, q2, q3, r1, r2, r3, p1, p2, p3 float64

	if t.size > 1 {
		q1, r1 = preQUp[0], preRUp[0]
		idx, err := p.Index(1)
		if err != nil {
			return err
		}
		p1 = probDown[idx]

		q3, r3 = preQDown[0], preRDown[0]
		idx, err = p.Index(-1)
		if err != nil {
			return err
		}
		p3 = probUp[idx]
	}

	q2, r2 = preQNode, preRNode
	idx, err := p.Index(0)
	if err != nil {
		return err
	}
	p2 = probMid[idx]

	t.qNode = q1*p1*math.Exp(-r1*dT) + q2*p2*math.Exp(-r2*dT) + q3*p3*math.Exp(-r3*dT)

	for i := 0; i < t.size; i++ {
		var q0, r0, p0 float64
		var haveQ0 bool
		q1, r1, p1 = 0, 0, 0
		q2, r2, p2 = 0, 0, 0
		q3, r3, p3 = 0, 0, 0

		switch {
		case i > preSize-1:
			if i > 0 {
				q3, r3 = preQUp[i-1], preRUp[i-1]
				idx, err = p.Index(i)
			} else {
				q3, r3 = preQNode, preRNode
				idx, err = p.Index(0)
			}
			if err != nil {
				return err
			}
			p3 = probUp[idx]

		case i == preSize-1:
			q2, r2 = preQUp[i], preRUp[i]
			if i == jMax-1 {
				p2 = p.TopProbHigh()
			} else {
				idx, err = p.Index(i + 1)
				if err != nil {
					return err
				}
				p2 = probMid[idx]
			}
			if i == 0 {
				q3, r3 = preQNode, preRNode
				idx, err = p.Index(0)
			} else {
				q3, r3 = preQUp[i-1], preRUp[i-1]
				idx, err = p.Index(i)
			}
			if err != nil {
				return err
			}
			p3 = probUp[idx]

		default:
			q1, r1 = preQUp[i+1], preRUp[i+1]
			if i+2 == jMax {
				p1 = p.TopProbMid()
			} else {
				idx, err = p.Index(i + 2)
				if err != nil {
					return err
				}
				p1 = probDown[idx]
			}

			q2, r2 = preQUp[i], preRUp[i]
			idx, err = p.Index(i + 1)
			if err != nil {
				return err
			}
			p2 = probMid[idx]

			if i > 0 {
				q3, r3 = preQUp[i-1], preRUp[i-1]
				idx, err = p.Index(i)
			} else {
				q3, r3 = preQNode, preRNode
				idx, err = p.Index(0)
			}
			if err != nil {
				return err
			}
			p3 = probUp[idx]

			if i+3 == jMax && i+2 < preSize {
				q0, r0 = preQUp[i+2], preRUp[i+2]
				p0 = p.TopProbLow()
				haveQ0 = true
			}
		}

		t.qUp[i] = q1*p1*math.Exp(-r1*dT) + q2*p2*math.Exp(-r2*dT) + q3*p3*math.Exp(-r3*dT)
		if haveQ0 {
			t.qUp[i] += q0 * p0 * math.Exp(-r0*dT)
		}
	}

	for i := 0; i < t.size; i++ {
		var q0, r0, p0 float64
		var haveQ0 bool
		q1, r1, p1 = 0, 0, 0
		q2, r2, p2 = 0, 0, 0
		q3, r3, p3 = 0, 0, 0

		switch {
		case i > preSize-1:
			if i > 0 {
				q1, r1 = preQDown[i-1], preRDown[i-1]
				idx, err = p.Index(-i)
			} else {
				q1, r1 = preQNode, preRNode
				idx, err = p.Index(0)
			}
			if err != nil {
				return err
			}
			p1 = probDown[idx]

		case i == preSize-1:
			q2, r2 = preQDown[i], preRDown[i]
			if i == jMax-1 {
				p2 = p.BottomProbLow()
			} else {
				idx, err = p.Index(-i - 1)
				if err != nil {
					return err
				}
				p2 = probMid[idx]
			}
			if i == 0 {
				q1, r1 = preQNode, preRNode
				idx, err = p.Index(0)
			} else {
				q1, r1 = preQDown[i-1], preRDown[i-1]
				idx, err = p.Index(-i)
			}
			if err != nil {
				return err
			}
			p1 = probDown[idx]

		default:
			q3, r3 = preQDown[i+1], preRDown[i+1]
			if i+2 == jMax {
				p3 = p.BottomProbMid()
			} else {
				idx, err = p.Index(-i - 2)
				if err != nil {
					return err
				}
				p3 = probUp[idx]
			}

			q2, r2 = preQDown[i], preRDown[i]
			idx, err = p.Index(-i - 1)
			if err != nil {
				return err
			}
			p2 = probMid[idx]

			if i > 0 {
				q1, r1 = preQDown[i-1], preRDown[i-1]
				idx, err = p.Index(-i)
			} else {
				q1, r1 = preQNode, preRNode
				idx, err = p.Index(0)
			}
			if err != nil {
				return err
			}
			p1 = probDown[idx]

			if i+3 == jMax && i+2 < preSize {
				q0, r0 = preQDown[i+2], preRDown[i+2]
				p0 = p.BottomProbHigh()
				haveQ0 = true
			}
		}

		t.qDown[i] = q1*p1*math.Exp(-r1*dT) + q2*p2*math.Exp(-r2*dT) + q3*p3*math.Exp(-r3*dT)
		if haveQ0 {
			t.qDown[i] += q0 * p0 * math.Exp(-r0*dT)
		}
	}

	return nil
}

// CalcRatesAdjustMultiplier bisects for the multiplier m such that scaling
// every rate on this branch by m reproduces the target discount factor dF
// from today to this step.
func (t *TreeBranch) CalcRatesAdjustMultiplier(dT, dF float64) (float64, error) {
	left, right := 0.0, 1.0

	sumL := t.qNode * math.Exp(-left*t.node*dT)
	sumR := t.qNode * math.Exp(-right*t.node*dT)
	for i := 0; i < t.size; i++ {
		sumL += t.qUp[i] * math.Exp(-left*t.up[i]*dT)
		sumL += t.qDown[i] * math.Exp(-left*t.down[i]*dT)
		sumR += t.qUp[i] * math.Exp(-right*t.up[i]*dT)
		sumR += t.qDown[i] * math.Exp(-right*t.down[i]*dT)
	}
	if sumL < dF || sumR > dF {
		return 0, ErrMultiplierBracket
	}

	sum := sumR
	mid := right
	for math.Abs(sum-dF) > 1e-6 && math.Abs(left-right) > 1e-5 {
		mid = (left + right) / 2
		sum = t.qNode * math.Exp(-mid*t.node*dT)
		for i := 0; i < t.size; i++ {
			up := t.qUp[i] * math.Exp(-mid*t.up[i]*dT)
			if up < 1e-50 || up > 1e+50 {
				up = 0
			}
			sum += up

			down := t.qDown[i] * math.Exp(-mid*t.down[i]*dT)
			if down < 1e-50 || down > 1e+50 {
				down = 0
			}
			sum += down
		}
		if sum < dF {
			right = mid
		}
		if sum > dF {
			left = mid
		}
	}

	return mid, nil
}

// AdjustRatesByMultiplier scales every rate on the branch by m.
func (t *TreeBranch) AdjustRatesByMultiplier(m float64) {
	t.node *= m
	for i := 0; i < t.size; i++ {
		t.up[i] *= m
		t.down[i] *= m
	}
}

// AdjustRatesByCreditSpread shifts every rate on the branch by spread
// (a discrete, semi-annually compounded amount) and converts back to
// continuous compounding.
func (t *TreeBranch) AdjustRatesByCreditSpread(spread float64) {
	t.node = dateutil.DCtoCC(dateutil.CCtoDC(t.node, 2)+spread, 2)
	for i := 0; i < t.size; i++ {
		t.up[i] = dateutil.DCtoCC(dateutil.CCtoDC(t.up[i], 2)+spread, 2)
		t.down[i] = dateutil.DCtoCC(dateutil.CCtoDC(t.down[i], 2)+spread, 2)
	}
}

// AdjustRatesByRemoveCreditSpread undoes AdjustRatesByCreditSpread.
func (t *TreeBranch) AdjustRatesByRemoveCreditSpread(spread float64) {
	t.node = dateutil.DCtoCC(dateutil.CCtoDC(t.node, 2)-spread, 2)
	for i := 0; i < t.size; i++ {
		t.up[i] = dateutil.DCtoCC(dateutil.CCtoDC(t.up[i], 2)-spread, 2)
		t.down[i] = dateutil.DCtoCC(dateutil.CCtoDC(t.down[i], 2)-spread, 2)
	}
}
