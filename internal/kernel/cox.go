package kernel

import "math"

// Cox is the Cox proportional hazards partial likelihood. Rows are sorted
// by decreasing outcome time before fitting; denom is a reverse-cumulative
// sum (the risk set), so denom[k] = Σ e over all rows with time ≥ time[k].
//
// Stratified requests per-stratum risk sets (the accumulator resets at
// stratum boundaries, bsccs::StratifiedCoxProportionalHazards). ExactTies
// requests Breslow tie handling: all simultaneous events share the same
// risk-set denominator (bsccs::BreslowTiedCoxProportionalHazards).
type Cox struct {
	Stratified bool
	ExactTies  bool
}

func (Cox) Name() string { return NameCox }

func (c Cox) Traits() Traits {
	grouping := Ordered
	if c.ExactTies {
		grouping = OrderedWithTies
	}
	return Traits{
		Grouping:                     grouping,
		SortPid:                      true,
		CumulativeGradientAndHessian: true,
		ResetableAccumulators:        c.Stratified,
		ExactTies:                    c.ExactTies,
		HasTwoNumeratorTerms:         true,
		LikelihoodHasDenominator:     true,
		PrecomputeGradient:           true,
	}
}

func (Cox) DenomNullValue() float64             { return 0 }
func (Cox) ObservationCount(y float64) float64   { return y }
func (Cox) OffsExpXBeta(_, xBeta, _ float64) float64 { return math.Exp(xBeta) }

func (Cox) GradientNumeratorContrib(x, e, _, _ float64) float64 { return e * x }
func (Cox) GradientNumerator2Contrib(x, e float64) float64     { return e * x * x }

func (Cox) IncrementGradientAndHessian(numer, numer2, denom, nEvents float64, isIndicator, _ bool) (float64, float64) {
	t := numer / denom
	g := nEvents * t
	var h float64
	if isIndicator {
		h = g * (1 - t)
	} else {
		h = nEvents * (numer2/denom - t*t)
	}
	return g, h
}

func (Cox) LogLikeNumeratorContrib(y, xBeta float64) float64 { return y * xBeta }
func (Cox) LogLikeDenominatorContrib(nGroup, accDenom float64) float64 {
	return nGroup * math.Log(accDenom)
}
func (Cox) LogLikeFixedTermsContrib(float64, float64) float64 { return 0 }
func (Cox) PredictEstimate(float64) float64                   { return 0 }
