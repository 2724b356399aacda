package kernel

import "math"

// Logistic is ordinary (unconditional) logistic regression: one row is one
// group, denom[g] = 1 + exp(xβ_g). The row offset is not used.
type Logistic struct{}

func (Logistic) Name() string { return NameLogistic }

func (Logistic) Traits() Traits {
	return Traits{
		Grouping:                 Independent,
		HasTwoNumeratorTerms:     true,
		LikelihoodHasDenominator: true,
		PrecomputeGradient:       true,
	}
}

func (Logistic) DenomNullValue() float64             { return 1 }
func (Logistic) ObservationCount(float64) float64     { return 1 }
func (Logistic) OffsExpXBeta(_, xBeta, _ float64) float64 { return math.Exp(xBeta) }

func (Logistic) GradientNumeratorContrib(x, e, _, _ float64) float64 { return e * x }
func (Logistic) GradientNumerator2Contrib(x, e float64) float64     { return e * x * x }

func (Logistic) IncrementGradientAndHessian(numer, numer2, denom, weight float64, isIndicator, weighted bool) (float64, float64) {
	g := numer / denom
	dg := g
	if weighted {
		dg = weight * g
	}
	var dh float64
	if isIndicator {
		dh = g * (1 - g)
	} else {
		dh = numer2/denom - g*g
	}
	if weighted {
		dh *= weight
	}
	return dg, dh
}

func (Logistic) LogLikeNumeratorContrib(y, xBeta float64) float64 { return y * xBeta }
func (Logistic) LogLikeDenominatorContrib(_, denom float64) float64 {
	return math.Log(denom)
}
func (Logistic) LogLikeFixedTermsContrib(_, _ float64) float64 { return 0 }

func (Logistic) PredictEstimate(xBeta float64) float64 {
	t := math.Exp(xBeta)
	return t / (t + 1)
}
