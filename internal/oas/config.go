// Package oas prices a callable bond on a Hull-White trinomial short-rate
// lattice and solves for the option-adjusted spread that reproduces a
// given market price.
package oas

// ModelConfig holds the lattice and solver policy knobs that are not
// carried on the bond or curve themselves.
type ModelConfig struct {
	YearlySteps          int     // tree steps per year
	RecoveryRate         float64 // not read by the engine or pricing; JTD uses the bond's own RecoveryRate
	FaceValue            float64
	NewtonTolerance      float64 // clean-price convergence tolerance, in price points
	NewtonMaxIterations  int
	NewtonBumpSpread     float64 // finite-difference bump used to estimate spread sensitivity
}

// DefaultModelConfig returns the conventional lattice: 100 steps/year,
// a 1 cent Newton tolerance, at most 10 iterations, bumping by 10bp.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		YearlySteps:         100,
		RecoveryRate:        0.75,
		FaceValue:           100,
		NewtonTolerance:     0.01,
		NewtonMaxIterations: 10,
		NewtonBumpSpread:    newtonBumpSpread,
	}
}

// newtonBumpSpread is the finite-difference step used to estimate dPrice/dSpread
// during OAS calibration: 10 basis points.
const newtonBumpSpread = 0.001
