package lattice

import (
	"math"
	"testing"

	"bondoas/internal/dateutil"
)

func TestNodeProbabilitySumsToOne(t *testing.T) {
	p := NodeProbability{}
	p.SetJMax(5)
	p.SetNodeProbability(0.01, 0.05)

	for i := range p.probUp {
		sum := p.probUp[i] + p.probMid[i] + p.probDown[i]
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("interior probabilities at slot %d sum to %v, want 1", i, sum)
		}
	}
	if math.Abs(p.topHigh+p.topMid+p.topLow-1) > 1e-9 {
		t.Fatalf("top boundary probabilities do not sum to 1")
	}
	if math.Abs(p.bottomHigh+p.bottomMid+p.bottomLow-1) > 1e-9 {
		t.Fatalf("bottom boundary probabilities do not sum to 1")
	}
}

func TestIndexOutOfRange(t *testing.T) {
	p := NodeProbability{}
	p.SetJMax(3)
	p.SetNodeProbability(0.01, 0.05)

	if _, err := p.Index(3); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange at j=jMax, got %v", err)
	}
	if _, err := p.Index(-3); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange at j=-jMax, got %v", err)
	}
	if idx, err := p.Index(0); err != nil || idx != 2 {
		t.Fatalf("Index(0) = (%v, %v), want (2, nil)", idx, err)
	}
}

// flatCurve is a RateSource that returns the same rate everywhere, used to
// check the tree calibrates to a trivial term structure.
type flatCurve struct {
	rate float64
}

func (c flatCurve) RateAtSerial(serial float64, interpolate bool) (float64, error) {
	return c.rate, nil
}

func TestBuildCalibratesRootNodeToCurve(t *testing.T) {
	src := flatCurve{rate: 0.04}
	tree, err := Build(src, 0, 20, 100, 0.01, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Branches[0].Size() != 0 {
		t.Fatalf("root branch size = %d, want 0", tree.Branches[0].Size())
	}
	// The root node rate is the continuously-compounded equivalent of the
	// flat semi-annual curve rate.
	root := tree.Branches[0].NodeRate()
	if root <= 0 || root >= 0.1 {
		t.Fatalf("root node rate = %v, want a small positive continuous rate", root)
	}
}

func TestBuildProducesCalibratedDiscountFactors(t *testing.T) {
	src := flatCurve{rate: 0.03}
	numSteps := 10
	tree, err := Build(src, 0, numSteps, 50, 0.01, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i <= numSteps; i++ {
		// Each Q-weight discounted one step at its calibrated node rate must
		// sum to the curve's discount factor for step i+1.
		b := tree.Branches[i]
		sum := b.QNode() * math.Exp(-b.NodeRate()*tree.DT)
		for j := 0; j < b.Size(); j++ {
			sum += b.QUpNode()[j] * math.Exp(-b.UpRate(j)*tree.DT)
			sum += b.QDownNode()[j] * math.Exp(-b.DownRate(j)*tree.DT)
		}

		rate := dateutil.DCtoCC(src.rate, 2)
		wantDF := math.Exp(-rate * float64(i+1) * tree.DT)
		if math.Abs(sum-wantDF) > 1e-6 {
			t.Fatalf("step %d: sum of one-step-discounted Q-weights = %v, want the calibrated discount factor %v", i, sum, wantDF)
		}
	}
}
