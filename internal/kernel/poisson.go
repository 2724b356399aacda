package kernel

import "math"

// Poisson is ordinary (unconditional) Poisson regression. Unlike Logistic,
// its reduction uses numer/numer2 directly rather than dividing by denom:
// denom[g]=exp(xβ_g) already equals the per-row mean, so numer=x*mean and
// numer2=x²*mean are themselves the gradient/Hessian contributions.
type Poisson struct{}

func (Poisson) Name() string { return NamePoisson }

func (Poisson) Traits() Traits {
	return Traits{
		Grouping:                 Independent,
		HasTwoNumeratorTerms:     true,
		LikelihoodHasDenominator: true,
		LikelihoodHasFixedTerms:  true,
		PrecomputeGradient:       true,
	}
}

func (Poisson) DenomNullValue() float64             { return 0 }
func (Poisson) ObservationCount(float64) float64     { return 1 }
func (Poisson) OffsExpXBeta(_, xBeta, _ float64) float64 { return math.Exp(xBeta) }

func (Poisson) GradientNumeratorContrib(x, e, _, _ float64) float64 { return e * x }
func (Poisson) GradientNumerator2Contrib(x, e float64) float64     { return e * x * x }

func (Poisson) IncrementGradientAndHessian(numer, numer2, _, weight float64, isIndicator, weighted bool) (float64, float64) {
	if isIndicator {
		v := numer
		if weighted {
			v *= weight
		}
		return v, v
	}
	dg, dh := numer, numer2
	if weighted {
		dg *= weight
		dh *= weight
	}
	return dg, dh
}

func (Poisson) LogLikeNumeratorContrib(y, xBeta float64) float64 { return y * xBeta }
func (Poisson) LogLikeDenominatorContrib(_, denom float64) float64 {
	return denom
}

// LogLikeFixedTermsContrib is -log(y!), the Poisson normalizing constant.
func (Poisson) LogLikeFixedTermsContrib(y, _ float64) float64 {
	sum := 0.0
	for i := 2; i <= int(y); i++ {
		sum -= math.Log(float64(i))
	}
	return sum
}

func (Poisson) PredictEstimate(xBeta float64) float64 { return math.Exp(xBeta) }
