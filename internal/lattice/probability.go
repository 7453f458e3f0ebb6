// Package lattice builds and calibrates the Hull-White single-factor
// trinomial short-rate tree: the branching probabilities, the per-step
// tree nodes, and the Arrow-Debreu Q-weight propagation and drift
// calibration that make the tree consistent with an input zero curve.
package lattice

import (
	"errors"
)

// ErrIndexOutOfRange is returned by NodeProbability.Index when the
// requested branching level falls outside [-jMax+1, jMax-1].
var ErrIndexOutOfRange = errors.New("lattice: branching index out of range")

// NodeProbability holds the interior trinomial branching probabilities for
// every level j in [-jMax+1, jMax-1], plus the six boundary probabilities
// used at the reflecting edges j = +-jMax.
type NodeProbability struct {
	jMax int

	// probUp[i], probMid[i], probDown[i] are indexed by Index(j); they hold
	// the probability of the up/mid/down branch out of level j.
	probUp   []float64
	probMid  []float64
	probDown []float64

	// Boundary probabilities at j = +jMax (reflecting down) and j = -jMax
	// (reflecting up).
	topHigh, topMid, topLow    float64
	bottomHigh, bottomMid, bottomLow float64
}

// JMax returns the configured branching limit.
func (p NodeProbability) JMax() int { return p.jMax }

func (p NodeProbability) ProbUp() []float64   { return p.probUp }
func (p NodeProbability) ProbMid() []float64  { return p.probMid }
func (p NodeProbability) ProbDown() []float64 { return p.probDown }

func (p NodeProbability) TopProbHigh() float64 { return p.topHigh }
func (p NodeProbability) TopProbMid() float64  { return p.topMid }
func (p NodeProbability) TopProbLow() float64  { return p.topLow }

func (p NodeProbability) BottomProbHigh() float64 { return p.bottomHigh }
func (p NodeProbability) BottomProbMid() float64  { return p.bottomMid }
func (p NodeProbability) BottomProbLow() float64  { return p.bottomLow }

// SetJMax sets the branching limit; callers must call SetNodeProbability
// afterward to populate the probability tables.
func (p *NodeProbability) SetJMax(jMax int) { p.jMax = jMax }

// Index maps a branching level j (for j in -jMax+1 .. jMax-1) to its slot
// in the probUp/probMid/probDown tables.
func (p NodeProbability) Index(j int) (int, error) {
	if j <= -p.jMax || j >= p.jMax {
		return 0, ErrIndexOutOfRange
	}
	return j + p.jMax - 1, nil
}

// SetNodeProbability computes the interior and boundary branching
// probabilities for mean reversion a over a step of length dT.
func (p *NodeProbability) SetNodeProbability(dT, a float64) {
	n := 2*p.jMax - 1
	p.probUp = make([]float64, n)
	p.probMid = make([]float64, n)
	p.probDown = make([]float64, n)

	for i := 0; i < n; i++ {
		j := float64(i - p.jMax + 1)
		p.probUp[i] = 1.0/6.0 + (a*a*j*j*dT*dT-a*j*dT)/2.0
		p.probMid[i] = 2.0/3.0 - a*a*j*j*dT*dT
		p.probDown[i] = 1 - p.probUp[i] - p.probMid[i]
	}

	jm := float64(p.jMax)

	p.topHigh = 7.0/6.0 + (a*a*jm*jm*dT*dT-3*a*jm*dT)/2.0
	p.topMid = -1.0/3.0 - a*a*jm*jm*dT*dT + 2*a*jm*dT
	p.topLow = 1 - p.topHigh - p.topMid

	p.bottomHigh = 1.0/6.0 + (a*a*jm*jm*dT*dT+a*(-jm)*dT)/2.0
	p.bottomMid = -1.0/3.0 - a*a*jm*jm*dT*dT - 2*a*(-jm)*dT
	p.bottomLow = 1 - p.bottomHigh - p.bottomMid
}

// jMaxFromStep returns the reflecting-boundary index for a tree stepping
// yearlySteps times per year under mean reversion a, matching the
// 0.184 stability bound used to keep the trinomial weights non-negative.
func jMaxFromStep(yearlySteps int, a float64) int {
	return int(0.184 * float64(yearlySteps) / a)
}
