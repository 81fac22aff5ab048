package analysis

import "math"

// LikelihoodBand maps an upper bound on centipawn loss to the likelihood a
// human plays a non-obvious move in that band. Bands are ordered by ascending
// MaxCPLoss and the first matching band wins. A ComplexityGated band defers
// to the complexity-dependent likelihoods in Weights instead of its flat
// Likelihood value.
type LikelihoodBand struct {
	MaxCPLoss       float64
	Likelihood      float64
	ComplexityGated bool
}

// Weights holds the calibration constants of the human-likelihood model.
// Values are injected at construction so tests can substitute alternates;
// the defaults are heuristic placeholders pending empirical validation.
type Weights struct {
	ObviousLikelihood float64
	Bands             []LikelihoodBand

	// Complexity gate for the near-perfect band: finding a best move in a
	// hard position is unlikely for a human, in an easy one it is routine.
	ComplexityThreshold float64
	ComplexLikelihood   float64
	SimpleLikelihood    float64

	CaptureBonus        float64
	BackwardFactor      float64
	BackwardCPLossLimit float64

	EnginePenaltyPerMove float64
	EnginePenaltyCap     float64

	SuspiciousThreshold float64
}

// DefaultWeights returns the shipped calibration.
func DefaultWeights() Weights {
	return Weights{
		ObviousLikelihood: 0.95,
		Bands: []LikelihoodBand{
			{MaxCPLoss: 5, ComplexityGated: true},
			{MaxCPLoss: 20, Likelihood: 0.8},
			{MaxCPLoss: 50, Likelihood: 0.9},
			{MaxCPLoss: math.Inf(1), Likelihood: 0.95},
		},
		ComplexityThreshold:  0.7,
		ComplexLikelihood:    0.3,
		SimpleLikelihood:     0.7,
		CaptureBonus:         0.1,
		BackwardFactor:       0.6,
		BackwardCPLossLimit:  10,
		EnginePenaltyPerMove: 0.02,
		EnginePenaltyCap:     0.3,
		SuspiciousThreshold:  0.5,
	}
}

// baseLikelihood resolves the band table for a non-obvious move.
func (w Weights) baseLikelihood(cpLoss, complexity float64) float64 {
	for _, band := range w.Bands {
		if cpLoss > band.MaxCPLoss {
			continue
		}
		if band.ComplexityGated {
			if complexity > w.ComplexityThreshold {
				return w.ComplexLikelihood
			}
			return w.SimpleLikelihood
		}
		return band.Likelihood
	}
	// An empty or non-exhaustive band table falls back to certainty that a
	// human could have played the move.
	return 1.0
}
