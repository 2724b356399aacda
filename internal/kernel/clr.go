package kernel

import "math"

// ConditionalLogistic is stratified (conditional) logistic regression: the
// denominator is summed within each stratum (pid), and the group's
// nEvents-weighted reduction is always applied regardless of the optimizer's
// user-weight flag, matching bsccs::ConditionalLogisticRegression.
type ConditionalLogistic struct{}

func (ConditionalLogistic) Name() string { return NameConditionalLogistic }

func (ConditionalLogistic) Traits() Traits {
	return Traits{
		Grouping:                 Grouped,
		SortPid:                  true,
		HasTwoNumeratorTerms:     true,
		LikelihoodHasDenominator: true,
		PrecomputeGradient:       true,
	}
}

func (ConditionalLogistic) DenomNullValue() float64             { return 0 }
func (ConditionalLogistic) ObservationCount(float64) float64     { return 1 }
func (ConditionalLogistic) OffsExpXBeta(_, xBeta, _ float64) float64 { return math.Exp(xBeta) }

func (ConditionalLogistic) GradientNumeratorContrib(x, e, _, _ float64) float64 { return e * x }
func (ConditionalLogistic) GradientNumerator2Contrib(x, e float64) float64     { return e * x * x }

// IncrementGradientAndHessian applies the group's event count (passed as
// weight) unconditionally: nEvents is always the multiplier, never the
// optional cross-validation weight.
func (ConditionalLogistic) IncrementGradientAndHessian(numer, numer2, denom, nEvents float64, isIndicator, _ bool) (float64, float64) {
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

func (ConditionalLogistic) LogLikeNumeratorContrib(y, xBeta float64) float64 { return y * xBeta }
func (ConditionalLogistic) LogLikeDenominatorContrib(nGroup, denom float64) float64 {
	return nGroup * math.Log(denom)
}
func (ConditionalLogistic) LogLikeFixedTermsContrib(_, _ float64) float64 { return 0 }
func (ConditionalLogistic) PredictEstimate(float64) float64         { return 0 }
