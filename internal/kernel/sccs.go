package kernel

import "math"

// SelfControlledCaseSeries is a stratified Poisson with a per-row offset
// (exposure time): each row contributes offs_k*exp(xβ_k) to its stratum's
// denominator, and the stratum's event count nEvents weights the reduction.
type SelfControlledCaseSeries struct{}

func (SelfControlledCaseSeries) Name() string { return NameSelfControlledSeries }

func (SelfControlledCaseSeries) Traits() Traits {
	return Traits{
		Grouping:                 Grouped,
		SortPid:                  true,
		HasTwoNumeratorTerms:     true,
		LikelihoodHasDenominator: true,
		LikelihoodHasFixedTerms:  true,
		PrecomputeGradient:       true,
	}
}

func (SelfControlledCaseSeries) DenomNullValue() float64         { return 0 }
func (SelfControlledCaseSeries) ObservationCount(y float64) float64 { return y }

func (SelfControlledCaseSeries) OffsExpXBeta(offs, xBeta, _ float64) float64 {
	return offs * math.Exp(xBeta)
}

func (SelfControlledCaseSeries) GradientNumeratorContrib(x, e, _, _ float64) float64 { return e * x }
func (SelfControlledCaseSeries) GradientNumerator2Contrib(x, e float64) float64     { return e * x * x }

func (SelfControlledCaseSeries) IncrementGradientAndHessian(numer, numer2, denom, nEvents float64, isIndicator, _ bool) (float64, float64) {
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

func (SelfControlledCaseSeries) LogLikeNumeratorContrib(y, xBeta float64) float64 { return y * xBeta }
func (SelfControlledCaseSeries) LogLikeDenominatorContrib(nGroup, denom float64) float64 {
	return nGroup * math.Log(denom)
}

// LogLikeFixedTermsContrib follows the TEST_CONSTANT_SCCS branch of the
// source: the fixed term is y*log(offset), not -log(y!), since SCCS offsets
// carry the exposure time rather than a unit count.
func (SelfControlledCaseSeries) LogLikeFixedTermsContrib(y, offs float64) float64 {
	return y * math.Log(offs)
}

func (SelfControlledCaseSeries) PredictEstimate(float64) float64 { return 0 }
